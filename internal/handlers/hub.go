// internal/handlers/hub.go
package handlers

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Envelope is the wire framing for every outbound message: an event name and
// its payload.
type Envelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// Conn is a single client's presence on the hub. Outbound messages go through
// a buffered channel drained by a write pump, so broadcasts never block on a
// slow client.
type Conn struct {
	ID uuid.UUID

	ws   *websocket.Conn
	out  chan []byte
	once sync.Once
	log  *logrus.Entry
}

func newConn(id uuid.UUID, ws *websocket.Conn, log *logrus.Entry) *Conn {
	return &Conn{
		ID:  id,
		ws:  ws,
		out: make(chan []byte, 32),
		log: log,
	}
}

// Write queues data for delivery. Messages to a full or closed queue are
// dropped and logged.
func (c *Conn) Write(data []byte) {
	defer func() {
		if recover() != nil {
			c.log.Warn("write to closed connection queue dropped")
		}
	}()
	select {
	case c.out <- data:
	default:
		c.log.Warn("outbound queue full, message dropped")
	}
}

// close shuts the outbound queue, stopping the write pump. Idempotent.
func (c *Conn) close() {
	c.once.Do(func() { close(c.out) })
}

// writePump drains the outbound queue onto the websocket until the queue
// closes or a write fails.
func (c *Conn) writePump() {
	for data := range c.out {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := c.ws.Write(ctx, websocket.MessageText, data)
		cancel()
		if err != nil {
			c.log.WithError(err).Warn("websocket write failed")
			return
		}
	}
}

// Hub tracks live connections and their lobby subscriptions, and implements
// the game package's Broadcaster collaborator. A connection subscribes to at
// most one lobby at a time.
type Hub struct {
	mu    sync.Mutex
	conns map[uuid.UUID]*Conn
	rooms map[string]map[uuid.UUID]struct{}
	log   *logrus.Logger
}

func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		conns: make(map[uuid.UUID]*Conn),
		rooms: make(map[string]map[uuid.UUID]struct{}),
		log:   log,
	}
}

// Add registers a connection and starts its write pump.
func (h *Hub) Add(c *Conn) {
	h.mu.Lock()
	h.conns[c.ID] = c
	h.mu.Unlock()
	go c.writePump()
}

// Remove drops a connection from the hub and every room and stops its pump.
func (h *Hub) Remove(connID uuid.UUID) {
	h.mu.Lock()
	c, ok := h.conns[connID]
	delete(h.conns, connID)
	for code, members := range h.rooms {
		delete(members, connID)
		if len(members) == 0 {
			delete(h.rooms, code)
		}
	}
	h.mu.Unlock()
	if ok {
		c.close()
	}
}

// Subscribe adds the connection to a lobby's broadcast room.
func (h *Hub) Subscribe(lobbyCode string, connID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[lobbyCode]
	if !ok {
		members = make(map[uuid.UUID]struct{})
		h.rooms[lobbyCode] = members
	}
	members[connID] = struct{}{}
}

// Unsubscribe removes the connection from a lobby's broadcast room.
func (h *Hub) Unsubscribe(lobbyCode string, connID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.rooms[lobbyCode]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(h.rooms, lobbyCode)
		}
	}
}

// Broadcast ships an event to every connection subscribed to the lobby.
func (h *Hub) Broadcast(lobbyCode string, event string, payload interface{}) {
	data, err := json.Marshal(Envelope{Event: event, Data: payload})
	if err != nil {
		h.log.WithError(err).WithField("event", event).Error("failed to marshal broadcast")
		return
	}
	h.mu.Lock()
	targets := make([]*Conn, 0, 2)
	for connID := range h.rooms[lobbyCode] {
		if c, ok := h.conns[connID]; ok {
			targets = append(targets, c)
		}
	}
	h.mu.Unlock()
	for _, c := range targets {
		c.Write(data)
	}
}

// SendTo ships an event to one connection.
func (h *Hub) SendTo(connID uuid.UUID, event string, payload interface{}) {
	data, err := json.Marshal(Envelope{Event: event, Data: payload})
	if err != nil {
		h.log.WithError(err).WithField("event", event).Error("failed to marshal message")
		return
	}
	h.mu.Lock()
	c, ok := h.conns[connID]
	h.mu.Unlock()
	if ok {
		c.Write(data)
	}
}
