// internal/game/registry.go
package game

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/WalkerFrederick/ws-game-server/internal/clock"
	"github.com/WalkerFrederick/ws-game-server/internal/models"
)

// Registry owns every live lobby, keyed by the player-chosen lobby code.
// Lobbies are created on the first valid join to an unseen code and removed on
// any terminal transition. The registry mutex guards only the map; each lobby
// serializes its own state behind its own lock.
type Registry struct {
	mu      sync.Mutex
	lobbies map[string]*Lobby
	closed  bool

	rules       Rules
	clock       *clock.Service
	broadcaster Broadcaster
	resolver    RoundResolver
	log         *logrus.Logger
}

// NewRegistry wires the collaborators every lobby needs.
func NewRegistry(rules Rules, cs *clock.Service, b Broadcaster, r RoundResolver, log *logrus.Logger) *Registry {
	return &Registry{
		lobbies:     make(map[string]*Lobby),
		rules:       rules,
		clock:       cs,
		broadcaster: b,
		resolver:    r,
		log:         log,
	}
}

// Join admits username into the lobby named by code, creating the lobby if the
// code is unseen. A join matching a disconnected player's username is a
// reconnection.
func (r *Registry) Join(code, username string, connID uuid.UUID) error {
	if !validUsername(username) {
		return ErrInvalidUsername
	}
	for {
		l, created, err := r.getOrCreate(code)
		if err != nil {
			return err
		}
		if created {
			r.broadcaster.SendTo(connID, EventNotification, Notification{
				Type:    SeveritySuccess,
				Message: "New game created. Waiting for another player.",
			})
		}
		err = l.join(username, connID)
		if err == ErrNotInLobby {
			// Lost a race with the lobby's destruction; try again with a
			// fresh one.
			continue
		}
		return err
	}
}

// getOrCreate returns the lobby for code, creating it when unseen. The second
// return reports whether this call created it.
func (r *Registry) getOrCreate(code string) (*Lobby, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.lobbies[code]; ok {
		return l, false, nil
	}
	if r.closed {
		return nil, false, ErrShuttingDown
	}
	l := newLobby(code, r.rules, r.clock, r.broadcaster, r.resolver,
		r.log.WithField("lobby", code), r.delete)
	r.lobbies[code] = l
	r.log.WithField("lobby", code).Info("lobby created")
	return l, true, nil
}

func (r *Registry) delete(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.lobbies, code)
	r.log.WithField("lobby", code).Info("lobby removed")
}

// Get retrieves a lobby if it exists.
func (r *Registry) Get(code string) (*Lobby, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.lobbies[code]
	return l, ok
}

// Len reports how many lobbies are live.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.lobbies)
}

// Ready handles client:player-ready.
func (r *Registry) Ready(code string, connID uuid.UUID) error {
	l, ok := r.Get(code)
	if !ok {
		return ErrNotInLobby
	}
	return l.ready(connID)
}

// DeclareAction handles client:make-choice.
func (r *Registry) DeclareAction(code string, connID uuid.UUID, action models.RoundAction) error {
	l, ok := r.Get(code)
	if !ok {
		return ErrNotInLobby
	}
	return l.declareAction(connID, action)
}

// Concede handles client:concede.
func (r *Registry) Concede(code string, connID uuid.UUID) error {
	l, ok := r.Get(code)
	if !ok {
		return ErrNotInLobby
	}
	return l.concede(connID)
}

// HandleDisconnect reacts to a dropped connection. A connection belongs to at
// most one lobby, so the scan stops at the first match.
func (r *Registry) HandleDisconnect(connID uuid.UUID) {
	r.mu.Lock()
	lobbies := make([]*Lobby, 0, len(r.lobbies))
	for _, l := range r.lobbies {
		lobbies = append(lobbies, l)
	}
	r.mu.Unlock()

	for _, l := range lobbies {
		if l.handleDisconnect(connID) {
			return
		}
	}
}

// Shutdown stops accepting new lobbies and winds down the existing ones,
// releasing their timers. Returns once every lobby is closed or ctx expires.
func (r *Registry) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	lobbies := make([]*Lobby, 0, len(r.lobbies))
	for _, l := range r.lobbies {
		lobbies = append(lobbies, l)
	}
	r.mu.Unlock()

	for _, l := range lobbies {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		l.Mu.Lock()
		if !l.closed {
			l.notifyAllUnsafe(SeverityError, "Server is shutting down.")
			l.closeUnsafe()
		}
		l.Mu.Unlock()
	}
	return nil
}
