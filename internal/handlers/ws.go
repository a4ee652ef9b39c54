// internal/handlers/ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/WalkerFrederick/ws-game-server/internal/game"
	"github.com/WalkerFrederick/ws-game-server/internal/models"
)

// Inbound event names.
const (
	EventJoinGame    = "client:join-game"
	EventPlayerReady = "client:player-ready"
	EventMakeChoice  = "client:make-choice"
	EventConcede     = "client:concede"
)

// ClientMessage is the closed set of inbound message variants. Payload fields
// are validated here before anything reaches the state machine.
type ClientMessage struct {
	Event string     `json:"event"`
	Data  ClientData `json:"data"`
}

// ClientData carries the union of inbound payload fields.
type ClientData struct {
	LobbyCode string              `json:"lobbyCode"`
	Username  string              `json:"username"`
	Choice    *models.RoundAction `json:"choice,omitempty"`
}

// validChoice requires a declared action to be exactly one of ability, item,
// or champion swap.
func validChoice(a *models.RoundAction) bool {
	if a == nil {
		return false
	}
	n := 0
	if a.AbilityCard != nil {
		n++
	}
	if a.ItemCard != nil {
		n++
	}
	if a.SwapChampion != nil {
		n++
	}
	return n == 1
}

// GameWSHandler upgrades the HTTP connection to a WebSocket, registers it on
// the hub under a fresh connection identity, and runs the read loop until the
// client goes away. The dropped connection is then fed to the registry's
// liveness handling.
func GameWSHandler(logger *logrus.Logger, srv *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"game"},
			OriginPatterns: []string{"*"}, // Adjust for production security.
		})
		if err != nil {
			logger.WithError(err).Warn("websocket accept failed")
			return
		}
		defer c.Close(websocket.StatusInternalError, "internal error")

		if c.Subprotocol() != "game" {
			c.Close(BadSubprotocolError, "client must use the 'game' subprotocol")
			return
		}

		connID := uuid.New()
		connLog := logger.WithFields(logrus.Fields{"conn": connID, "remote": r.RemoteAddr})
		conn := newConn(connID, c, connLog)
		srv.Hub.Add(conn)
		connLog.Info("websocket connected")

		readMessages(r.Context(), c, connID, srv, connLog)

		srv.Hub.Remove(connID)
		srv.Registry.HandleDisconnect(connID)
		connLog.Info("websocket disconnected")
		c.Close(websocket.StatusNormalClosure, "")
	}
}

// readMessages parses and dispatches inbound events until the connection
// closes or the context is cancelled.
func readMessages(ctx context.Context, c *websocket.Conn, connID uuid.UUID, srv *GameServer, log *logrus.Entry) {
	for {
		msgType, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				log.Info("websocket closed by client")
			} else if !strings.Contains(err.Error(), "context canceled") {
				log.WithError(err).Warn("websocket read failed")
			}
			return
		}
		if msgType != websocket.MessageText {
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.WithError(err).Warn("invalid json from client")
			srv.notifyError(connID, "Invalid message format.")
			continue
		}
		dispatch(connID, msg, srv, log)
	}
}

// dispatch routes one inbound event into the lobby registry and surfaces any
// rejection back to the originating connection.
func dispatch(connID uuid.UUID, msg ClientMessage, srv *GameServer, log *logrus.Entry) {
	var err error
	switch msg.Event {
	case EventJoinGame:
		err = srv.Registry.Join(msg.Data.LobbyCode, msg.Data.Username, connID)
	case EventPlayerReady:
		err = srv.Registry.Ready(msg.Data.LobbyCode, connID)
	case EventMakeChoice:
		if !validChoice(msg.Data.Choice) {
			srv.notifyError(connID, "A choice must be exactly one of ability, item, or champion swap.")
			return
		}
		err = srv.Registry.DeclareAction(msg.Data.LobbyCode, connID, *msg.Data.Choice)
	case EventConcede:
		err = srv.Registry.Concede(msg.Data.LobbyCode, connID)
	default:
		log.WithField("event", msg.Event).Warn("unknown client event")
		srv.notifyError(connID, "Unknown event: "+msg.Event)
		return
	}
	if err != nil {
		log.WithField("event", msg.Event).WithError(err).Debug("event rejected")
		srv.notifyError(connID, game.UserMessage(err))
	}
}
