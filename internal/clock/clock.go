// internal/clock/clock.go
package clock

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Service schedules the repeating and one-shot callbacks that drive timed phase
// transitions. It wraps a clockwork.Clock so production code runs on the wall
// clock while tests substitute a fake one.
//
// Cancellation is not instantaneous: a tick that has already been delivered when
// Cancel is called will still invoke the callback. Callers that mutate shared
// state from a callback must therefore re-validate a generation token of their
// own before acting.
type Service struct {
	clock clockwork.Clock
}

// New returns a Service backed by the given clock. Pass clockwork.NewRealClock()
// in production and clockwork.NewFakeClock() in tests.
func New(c clockwork.Clock) *Service {
	return &Service{clock: c}
}

// Now reports the service's current time.
func (s *Service) Now() time.Time {
	return s.clock.Now()
}

// Task is a handle to a scheduled callback. Cancel is safe to call any number of
// times from any goroutine.
type Task struct {
	stop chan struct{}
	once sync.Once
}

// Cancel stops the task. Cancelling an already-fired or already-cancelled task
// is a no-op.
func (t *Task) Cancel() {
	t.once.Do(func() { close(t.stop) })
}

// Repeat invokes fn once per interval until fn returns false or the returned
// Task is cancelled. fn runs on the task's own goroutine; invocations never
// overlap.
func (s *Service) Repeat(interval time.Duration, fn func() bool) *Task {
	t := &Task{stop: make(chan struct{})}
	// Create the ticker before spawning the goroutine so the schedule is
	// registered with the clock by the time Repeat returns.
	ticker := s.clock.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-t.stop:
				return
			case <-ticker.Chan():
				// Prefer cancellation over a tick that raced with it.
				select {
				case <-t.stop:
					return
				default:
				}
				if !fn() {
					return
				}
			}
		}
	}()
	return t
}

// After invokes fn once after the given delay unless the Task is cancelled first.
func (s *Service) After(delay time.Duration, fn func()) *Task {
	t := &Task{stop: make(chan struct{})}
	// As in Repeat, register the timer with the clock before After returns.
	timer := s.clock.NewTimer(delay)
	go func() {
		defer stopAndDrain(timer)
		select {
		case <-t.stop:
		case <-timer.Chan():
			select {
			case <-t.stop:
			default:
				fn()
			}
		}
	}()
	return t
}

// stopAndDrain stops a timer and drains its channel so the goroutine that owns
// it cannot leak a pending tick.
func stopAndDrain(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}
