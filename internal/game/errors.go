// internal/game/errors.go
package game

import "errors"

// Recoverable rejections surfaced to the originating connection as an error
// notification. None of these terminate a lobby.
var (
	ErrInvalidUsername  = errors.New("invalid username")
	ErrUsernameTaken    = errors.New("username taken")
	ErrLobbyFull        = errors.New("lobby full")
	ErrNotEnoughPlayers = errors.New("not enough players")
	ErrLobbyPaused      = errors.New("lobby paused")
	ErrNotInLobby       = errors.New("not in lobby")
	ErrDuplicateAction  = errors.New("action already declared")
	ErrRoundNotActive   = errors.New("round not active")
	ErrShuttingDown     = errors.New("server shutting down")
)

// UserMessage translates a rejection into the message shown to the client.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidUsername):
		return "Invalid username. Please enter a valid username."
	case errors.Is(err, ErrUsernameTaken):
		return "Username is already taken in this game. Please choose a different username."
	case errors.Is(err, ErrLobbyFull):
		return "Game is full. Unable to join."
	case errors.Is(err, ErrNotEnoughPlayers):
		return "Cannot ready up until both players have joined."
	case errors.Is(err, ErrLobbyPaused):
		return "Cannot do that while the game is paused."
	case errors.Is(err, ErrNotInLobby):
		return "Not in this game."
	case errors.Is(err, ErrDuplicateAction):
		return "You have already declared an action this round."
	case errors.Is(err, ErrRoundNotActive):
		return "Actions can only be declared during an active round."
	case errors.Is(err, ErrShuttingDown):
		return "The server is shutting down. No new games can be created."
	default:
		return "Something went wrong."
	}
}
