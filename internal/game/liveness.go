// internal/game/liveness.go
package game

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/WalkerFrederick/ws-game-server/internal/models"
)

// handleDisconnect processes a dropped connection for this lobby. Returns true
// if the connection belonged to a player here; false lets the registry keep
// scanning. A second event for an already-removed lobby or already-disconnected
// player has no effect.
func (l *Lobby) handleDisconnect(connID uuid.UUID) bool {
	l.Mu.Lock()
	defer l.Mu.Unlock()
	if l.closed {
		return false
	}

	idx := -1
	for i, p := range l.Players {
		if p.ConnID == connID && !p.Disconnected {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false
	}
	p := l.Players[idx]
	l.log.WithField("username", p.Username).Info("player disconnected")
	l.broadcaster.Unsubscribe(l.Code, connID)

	// Pre-start absence is not recoverable state: the player is simply gone.
	// The same applies while paused, where the grace clock already runs for
	// the first leaver.
	if !l.IsStarted || l.IsPaused {
		l.Players = append(l.Players[:idx], l.Players[idx+1:]...)
		p.CancelReconnect()
		if l.connectedCountUnsafe() == 0 {
			l.closeUnsafe()
			return true
		}
		// A match countdown in flight is void once the lobby reopens; a
		// replacement joiner must not inherit it.
		l.cancelTimerUnsafe()
		l.Phase = PhaseWaitingForPlayers
		for _, rest := range l.Players {
			rest.MatchReady = false
		}
		l.broadcastUnsafe(EventWaitingForPlayers, l.snapshotUnsafe())
		return true
	}

	p.Disconnected = true
	remaining := l.otherConnectedUnsafe(p)
	if remaining == nil {
		l.closeUnsafe()
		return true
	}

	l.IsPaused = true
	l.notifyUnsafe(remaining.ConnID, SeverityError, fmt.Sprintf("%s has disconnected. The game is paused.", p.Username))
	l.broadcastUnsafe(EventPlayerDisconnected, l.snapshotUnsafe())
	l.startReconnectGraceUnsafe(p)
	return true
}

// startReconnectGraceUnsafe starts the disconnected player's grace countdown.
// Ticks go only to the remaining player; expiry forfeits the match to them.
// The player-level generation token makes a cancelled countdown inert even if
// its final tick already left the clock. Assumes lock is held.
func (l *Lobby) startReconnectGraceUnsafe(p *models.Player) {
	p.CancelReconnect()
	gen := p.ReconnectGen
	remaining := l.rules.ReconnectTimeSeconds

	p.ReconnectTask = l.clock.Repeat(time.Second, func() bool {
		l.Mu.Lock()
		defer l.Mu.Unlock()
		if l.closed || gen != p.ReconnectGen {
			return false
		}
		remaining--
		if other := l.otherConnectedUnsafe(p); other != nil {
			l.broadcaster.SendTo(other.ConnID, EventReconnectTimer, CountdownPayload{Countdown: remaining})
		}
		if remaining > 0 {
			return true
		}
		// Forfeiture: final and irreversible.
		p.ReconnectTask = nil
		if other := l.otherConnectedUnsafe(p); other != nil {
			l.Winner = other
			l.broadcastUnsafe(EventGameOver, l.snapshotUnsafe())
			l.log.WithField("winner", other.Username).Info("forfeit on reconnect timeout")
		}
		l.closeUnsafe()
		return false
	})
}
