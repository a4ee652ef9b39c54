// internal/clock/clock_test.go
package clock

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepeatTicks(t *testing.T) {
	fc := clockwork.NewFakeClock()
	s := New(fc)

	var count atomic.Int32
	task := s.Repeat(time.Second, func() bool {
		count.Add(1)
		return true
	})
	defer task.Cancel()

	for i := 1; i <= 3; i++ {
		fc.Advance(time.Second)
		want := int32(i)
		require.Eventually(t, func() bool { return count.Load() == want },
			time.Second, time.Millisecond, "expected %d ticks", want)
	}
}

func TestRepeatStopsWhenCallbackReturnsFalse(t *testing.T) {
	fc := clockwork.NewFakeClock()
	s := New(fc)

	var count atomic.Int32
	s.Repeat(time.Second, func() bool {
		count.Add(1)
		return false
	})

	fc.Advance(time.Second)
	require.Eventually(t, func() bool { return count.Load() == 1 }, time.Second, time.Millisecond)

	fc.Advance(time.Second)
	fc.Advance(time.Second)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(1), count.Load(), "callback should not run after returning false")
}

func TestCancelStopsTicksAndIsIdempotent(t *testing.T) {
	fc := clockwork.NewFakeClock()
	s := New(fc)

	var count atomic.Int32
	task := s.Repeat(time.Second, func() bool {
		count.Add(1)
		return true
	})

	task.Cancel()
	task.Cancel() // must be a no-op

	fc.Advance(time.Second)
	fc.Advance(time.Second)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(0), count.Load(), "cancelled task must never fire")
}

func TestAfterFiresOnce(t *testing.T) {
	fc := clockwork.NewFakeClock()
	s := New(fc)

	var count atomic.Int32
	s.After(2*time.Second, func() { count.Add(1) })

	fc.Advance(time.Second)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(0), count.Load(), "should not fire before the delay")

	fc.Advance(time.Second)
	require.Eventually(t, func() bool { return count.Load() == 1 }, time.Second, time.Millisecond)
}

func TestAfterCancel(t *testing.T) {
	fc := clockwork.NewFakeClock()
	s := New(fc)

	var count atomic.Int32
	task := s.After(time.Second, func() { count.Add(1) })
	task.Cancel()

	fc.Advance(2 * time.Second)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(0), count.Load())
}
