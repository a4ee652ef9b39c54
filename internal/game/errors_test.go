// internal/game/errors_test.go
package game

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserMessageCoversEveryRejection(t *testing.T) {
	rejections := []error{
		ErrInvalidUsername,
		ErrUsernameTaken,
		ErrLobbyFull,
		ErrNotEnoughPlayers,
		ErrLobbyPaused,
		ErrNotInLobby,
		ErrDuplicateAction,
		ErrRoundNotActive,
		ErrShuttingDown,
	}
	seen := make(map[string]bool)
	for _, err := range rejections {
		msg := UserMessage(err)
		assert.NotEqual(t, "Something went wrong.", msg, "missing mapping for %v", err)
		assert.False(t, seen[msg], "duplicate client message for %v", err)
		seen[msg] = true
	}
}

func TestUserMessageUnwrapsAndDefaults(t *testing.T) {
	wrapped := fmt.Errorf("join: %w", ErrLobbyFull)
	assert.Equal(t, UserMessage(ErrLobbyFull), UserMessage(wrapped))
	assert.Equal(t, "Something went wrong.", UserMessage(errors.New("boom")))
}
