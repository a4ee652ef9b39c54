// internal/game/round.go
package game

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/WalkerFrederick/ws-game-server/internal/models"
)

// startRoundUnsafe announces the next round and starts its deadline countdown.
// A paused lobby never starts a round; reconnection unpauses and the frozen
// countdown resumes instead. Assumes lock is held.
func (l *Lobby) startRoundUnsafe() {
	if l.IsPaused {
		return
	}
	l.Phase = PhaseRoundActive
	l.broadcastUnsafe(EventStartRound, RoundNumberPayload{Round: l.CurrentRound})
	l.log.WithField("round", l.CurrentRound).Info("round started")
	l.CurrentRound++

	remaining := l.rules.RoundTimeLimitSeconds
	l.broadcastUnsafe(EventRoundCountdown, CountdownPayload{Countdown: remaining})

	l.startTimerUnsafe(func() bool {
		if l.IsPaused {
			// Frozen, not cancelled: the countdown resumes here once the
			// lobby unpauses.
			return true
		}
		remaining--
		if remaining > 0 && !l.bothDeclaredUnsafe() {
			l.broadcastUnsafe(EventRoundCountdown, CountdownPayload{Countdown: remaining})
			return true
		}
		l.timer = nil
		l.resolveRoundUnsafe()
		return false
	})
}

// bothDeclaredUnsafe reports whether every player has an action in for the
// round in flight. Assumes lock is held.
func (l *Lobby) bothDeclaredUnsafe() bool {
	for _, p := range l.Players {
		if p.LatestRoundAction == nil {
			return false
		}
	}
	return len(l.Players) == 2
}

// resolveRoundUnsafe hands both players to the combat collaborator, broadcasts
// the result, and starts the inter-round buffer. Assumes lock is held.
func (l *Lobby) resolveRoundUnsafe() {
	l.cancelTimerUnsafe()
	l.Phase = PhaseResolving

	result := l.resolver.ResolveRound(l.Players)
	result.SecondsToNextRound = l.rules.RoundBufferSeconds
	l.broadcastUnsafe(EventRoundResult, result)
	l.log.WithField("round", l.CurrentRound-1).Info("round resolved")

	remaining := l.rules.RoundBufferSeconds
	l.startTimerUnsafe(func() bool {
		if l.IsPaused {
			return true
		}
		if l.allRoundReadyUnsafe() {
			l.timer = nil
			l.advanceAfterBufferUnsafe()
			return false
		}
		l.broadcastUnsafe(EventRoundEndTimer, CountdownPayload{Countdown: remaining})
		remaining--
		if remaining <= 0 {
			l.timer = nil
			l.advanceAfterBufferUnsafe()
			return false
		}
		return true
	})
}

// advanceAfterBufferUnsafe runs the end-of-buffer decision: finish the game if
// a winner is already set or the round cap is reached, otherwise reset per-
// round player state and start the next round. Assumes lock is held.
func (l *Lobby) advanceAfterBufferUnsafe() {
	resolved := l.CurrentRound - 1
	if l.Winner != nil || resolved >= l.rules.MaxRounds {
		l.endGameUnsafe()
		return
	}
	for _, p := range l.Players {
		p.LatestRoundAction = nil
		p.RoundReady = false
	}
	l.startRoundUnsafe()
}

// endGameUnsafe broadcasts the final state and destroys the lobby. Assumes
// lock is held.
func (l *Lobby) endGameUnsafe() {
	l.broadcastUnsafe(EventGameOver, l.snapshotUnsafe())
	l.log.Info("game over")
	l.closeUnsafe()
}

// declareAction records a player's action for the in-flight round. It never
// forces early resolution; the deadline tick owns that decision.
func (l *Lobby) declareAction(connID uuid.UUID, action models.RoundAction) error {
	l.Mu.Lock()
	defer l.Mu.Unlock()
	if l.closed {
		return ErrNotInLobby
	}
	if l.IsPaused {
		return ErrLobbyPaused
	}
	p := l.playerByConnUnsafe(connID)
	if p == nil {
		return ErrNotInLobby
	}
	if l.Phase != PhaseRoundActive {
		return ErrRoundNotActive
	}
	if p.LatestRoundAction != nil {
		return ErrDuplicateAction
	}
	p.LatestRoundAction = &action
	return nil
}

// concede ends the game immediately in favor of the other connected player,
// whatever the current phase.
func (l *Lobby) concede(connID uuid.UUID) error {
	l.Mu.Lock()
	defer l.Mu.Unlock()
	if l.closed {
		return ErrNotInLobby
	}
	p := l.playerByConnUnsafe(connID)
	if p == nil {
		return ErrNotInLobby
	}

	if remaining := l.otherConnectedUnsafe(p); remaining != nil {
		l.Winner = remaining
		l.broadcastUnsafe(EventGameOver, l.snapshotUnsafe())
		l.notifyAllUnsafe(SeverityInfo, fmt.Sprintf("%s has conceded. %s wins!", p.Username, remaining.Username))
	}
	l.log.WithField("username", p.Username).Info("player conceded")
	l.closeUnsafe()
	return nil
}
