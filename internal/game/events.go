// internal/game/events.go
package game

import (
	"github.com/google/uuid"

	"github.com/WalkerFrederick/ws-game-server/internal/models"
)

// Outbound event names. The client listens on the "server:" channel set; the
// inbound "client:" set is parsed by the websocket handler.
const (
	EventNotification       = "server:notification"
	EventWaitingForPlayers  = "server:waiting-for-players"
	EventWaitingForReady    = "server:waiting-for-ready"
	EventPlayerReadyStatus  = "server:player-ready-status"
	EventCountdownStarting  = "server:game-countdown-starting"
	EventCountdown          = "server:countdown"
	EventGameStarting       = "server:game-starting"
	EventStartRound         = "server:start-round"
	EventRoundCountdown     = "server:round-countdown"
	EventRoundResult        = "server:round-result"
	EventRoundEndTimer      = "server:round-end-timer"
	EventPlayerDisconnected = "server:player-disconnected"
	EventReconnectTimer     = "server:reconnect-timer"
	EventPlayerReconnected  = "server:player-reconnected"
	EventGameOver           = "server:game-over"
)

// Notification severities carried in the "type" field of server:notification.
const (
	SeveritySuccess = "success"
	SeverityInfo    = "info"
	SeverityError   = "error"
)

// Notification is a generic targeted or broadcast message.
type Notification struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// CountdownPayload carries the seconds remaining on whichever countdown is
// ticking (match countdown, round deadline, round buffer, reconnect grace).
type CountdownPayload struct {
	Countdown int `json:"countdown"`
}

// RoundNumberPayload announces which round is starting.
type RoundNumberPayload struct {
	Round int `json:"round"`
}

// LobbySnapshot is the sanitized lobby state attached to state-bearing
// broadcasts. Connection identities are never exposed.
type LobbySnapshot struct {
	LobbyCode    string          `json:"lobbyCode"`
	CurrentRound int             `json:"currentRound"`
	IsStarted    bool            `json:"isStarted"`
	IsPaused     bool            `json:"isPaused"`
	Players      []models.Player `json:"players"`
	Winner       string          `json:"winner,omitempty"`
}

// Broadcaster is the transport collaborator: it ships events to every
// subscribed connection in a lobby or to a single connection. Implementations
// must not block the caller.
type Broadcaster interface {
	Broadcast(lobbyCode string, event string, payload interface{})
	SendTo(connID uuid.UUID, event string, payload interface{})
	Subscribe(lobbyCode string, connID uuid.UUID)
	Unsubscribe(lobbyCode string, connID uuid.UUID)
}
