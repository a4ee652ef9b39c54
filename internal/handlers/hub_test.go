// internal/handlers/hub_test.go
package handlers

import (
	"encoding/json"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// testConn builds a Conn without a websocket and registers it on the hub
// directly, so outbound messages stay readable on the queue instead of being
// drained by a write pump.
func testConn(t *testing.T, h *Hub) *Conn {
	t.Helper()
	c := newConn(uuid.New(), nil, logrus.NewEntry(discardLogger()))
	h.mu.Lock()
	h.conns[c.ID] = c
	h.mu.Unlock()
	return c
}

func readEnvelope(t *testing.T, c *Conn) Envelope {
	t.Helper()
	select {
	case data := <-c.out:
		var env Envelope
		require.NoError(t, json.Unmarshal(data, &env))
		return env
	default:
		t.Fatal("expected a queued message")
		return Envelope{}
	}
}

func TestHubBroadcastReachesOnlySubscribers(t *testing.T) {
	h := NewHub(discardLogger())
	in := testConn(t, h)
	out := testConn(t, h)
	h.Subscribe("ABCD", in.ID)

	h.Broadcast("ABCD", "server:notification", map[string]string{"message": "hi"})

	env := readEnvelope(t, in)
	assert.Equal(t, "server:notification", env.Event)
	assert.Empty(t, out.out, "non-subscriber must not receive room traffic")
}

func TestHubUnsubscribeStopsDelivery(t *testing.T) {
	h := NewHub(discardLogger())
	c := testConn(t, h)
	h.Subscribe("ABCD", c.ID)
	h.Unsubscribe("ABCD", c.ID)

	h.Broadcast("ABCD", "server:countdown", map[string]int{"countdown": 3})
	assert.Empty(t, c.out)
}

func TestHubSendTo(t *testing.T) {
	h := NewHub(discardLogger())
	c := testConn(t, h)

	h.SendTo(c.ID, "server:reconnect-timer", map[string]int{"countdown": 42})
	env := readEnvelope(t, c)
	assert.Equal(t, "server:reconnect-timer", env.Event)

	// Unknown target is a no-op.
	h.SendTo(uuid.New(), "server:notification", nil)
}

func TestHubRemoveClosesQueue(t *testing.T) {
	h := NewHub(discardLogger())
	c := testConn(t, h)
	h.Subscribe("ABCD", c.ID)

	h.Remove(c.ID)
	h.Remove(c.ID) // repeat removal is a no-op

	h.Broadcast("ABCD", "server:notification", nil)
	// Writing to the closed queue must not panic the broadcaster.
	c.Write([]byte("late"))
}

func TestConnWriteDropsWhenQueueFull(t *testing.T) {
	c := newConn(uuid.New(), nil, logrus.NewEntry(discardLogger()))
	for i := 0; i < cap(c.out); i++ {
		c.Write([]byte("x"))
	}
	c.Write([]byte("overflow"))
	assert.Equal(t, cap(c.out), len(c.out), "overflow must be dropped, not queued")
}
