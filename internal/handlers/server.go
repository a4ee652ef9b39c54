// internal/handlers/server.go
package handlers

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/WalkerFrederick/ws-game-server/internal/clock"
	"github.com/WalkerFrederick/ws-game-server/internal/game"
)

// GameServer binds the connection hub to the lobby registry.
type GameServer struct {
	Hub      *Hub
	Registry *game.Registry
}

// NewGameServer builds the hub, wires it into a registry as the broadcast
// collaborator, and plugs in the placeholder combat resolver.
func NewGameServer(rules game.Rules, cs *clock.Service, logger *logrus.Logger) *GameServer {
	hub := NewHub(logger)
	return &GameServer{
		Hub:      hub,
		Registry: game.NewRegistry(rules, cs, hub, game.BasicResolver{}, logger),
	}
}

func (s *GameServer) notifyError(connID uuid.UUID, message string) {
	s.Hub.SendTo(connID, game.EventNotification, game.Notification{
		Type:    game.SeverityError,
		Message: message,
	})
}
