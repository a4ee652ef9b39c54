// internal/game/lobby.go
package game

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/WalkerFrederick/ws-game-server/internal/clock"
	"github.com/WalkerFrederick/ws-game-server/internal/models"
)

// Phase is a lobby's position in its lifecycle state machine. Pausing does not
// change the phase: IsPaused is orthogonal, and clearing it resumes the phase
// the lobby was in when the disconnect occurred.
type Phase string

const (
	PhaseWaitingForPlayers Phase = "WaitingForPlayers"
	PhaseWaitingForReady   Phase = "WaitingForReady"
	PhaseCountdown         Phase = "Countdown"
	PhaseRoundActive       Phase = "RoundActive"
	PhaseResolving         Phase = "Resolving"
)

// Rules are the tunable pacing constants for a match. All countdowns tick at
// one-second granularity.
type Rules struct {
	RoundTimeLimitSeconds int
	MaxRounds             int
	CountdownSeconds      int
	ReconnectTimeSeconds  int
	RoundBufferSeconds    int
}

// DefaultRules mirrors the production defaults.
func DefaultRules() Rules {
	return Rules{
		RoundTimeLimitSeconds: 8,
		MaxRounds:             4,
		CountdownSeconds:      5,
		ReconnectTimeSeconds:  60,
		RoundBufferSeconds:    3,
	}
}

// Lobby holds the entire state of one match in memory. The code is chosen by
// the first joiner; the registry owns the Lobby and deletes it on any terminal
// transition.
//
// At most one lobby-level timer (match countdown, round deadline, round
// buffer) is live at a time; starting a new one cancels the previous one and
// bumps the generation token so a stale tick that already left the clock
// cannot act.
type Lobby struct {
	Code         string
	Phase        Phase
	Players      []*models.Player
	CurrentRound int
	IsStarted    bool
	IsPaused     bool
	Winner       *models.Player

	Mu sync.Mutex

	rules       Rules
	clock       *clock.Service
	broadcaster Broadcaster
	resolver    RoundResolver
	log         *logrus.Entry

	timer    *clock.Task
	timerGen uint64
	closed   bool

	// onClose removes the lobby from the registry. Invoked exactly once, with
	// the lobby lock held; it must not call back into the lobby.
	onClose func(code string)
}

func newLobby(code string, rules Rules, cs *clock.Service, b Broadcaster, r RoundResolver, log *logrus.Entry, onClose func(string)) *Lobby {
	return &Lobby{
		Code:         code,
		Phase:        PhaseWaitingForPlayers,
		CurrentRound: 1,
		rules:        rules,
		clock:        cs,
		broadcaster:  b,
		resolver:     r,
		log:          log,
		onClose:      onClose,
	}
}

// --- timer plumbing ---

// startTimerUnsafe replaces the lobby's single live timer with a repeating
// one-second tick. The tick runs with the lobby lock held and is dropped on
// the floor if the lobby closed or a newer timer took over in the meantime.
// Assumes lock is held.
func (l *Lobby) startTimerUnsafe(tick func() bool) {
	l.cancelTimerUnsafe()
	l.timerGen++
	gen := l.timerGen
	l.timer = l.clock.Repeat(time.Second, func() bool {
		l.Mu.Lock()
		defer l.Mu.Unlock()
		if l.closed || gen != l.timerGen {
			return false
		}
		return tick()
	})
}

// cancelTimerUnsafe invalidates and stops the current lobby timer, if any.
// Assumes lock is held.
func (l *Lobby) cancelTimerUnsafe() {
	l.timerGen++
	if l.timer != nil {
		l.timer.Cancel()
		l.timer = nil
	}
}

// --- broadcast helpers ---

func (l *Lobby) broadcastUnsafe(event string, payload interface{}) {
	l.broadcaster.Broadcast(l.Code, event, payload)
}

func (l *Lobby) notifyUnsafe(connID uuid.UUID, severity, message string) {
	l.broadcaster.SendTo(connID, EventNotification, Notification{Type: severity, Message: message})
}

func (l *Lobby) notifyAllUnsafe(severity, message string) {
	l.broadcastUnsafe(EventNotification, Notification{Type: severity, Message: message})
}

// snapshotUnsafe builds the sanitized state payload attached to state-bearing
// broadcasts. Assumes lock is held.
func (l *Lobby) snapshotUnsafe() LobbySnapshot {
	players := make([]models.Player, len(l.Players))
	for i, p := range l.Players {
		players[i] = *p
	}
	snap := LobbySnapshot{
		LobbyCode:    l.Code,
		CurrentRound: l.CurrentRound,
		IsStarted:    l.IsStarted,
		IsPaused:     l.IsPaused,
		Players:      players,
	}
	if l.Winner != nil {
		snap.Winner = l.Winner.Username
	}
	return snap
}

// --- player lookup ---

// playerByConnUnsafe finds the connected player bound to connID. Assumes lock
// is held.
func (l *Lobby) playerByConnUnsafe(connID uuid.UUID) *models.Player {
	for _, p := range l.Players {
		if p.ConnID == connID && !p.Disconnected {
			return p
		}
	}
	return nil
}

func (l *Lobby) connectedCountUnsafe() int {
	n := 0
	for _, p := range l.Players {
		if !p.Disconnected {
			n++
		}
	}
	return n
}

func (l *Lobby) otherConnectedUnsafe(exclude *models.Player) *models.Player {
	for _, p := range l.Players {
		if p != exclude && !p.Disconnected {
			return p
		}
	}
	return nil
}

// --- join / reconnect ---

// join admits a new player or rebinds a returning one. The caller has already
// validated the username and created the lobby if needed.
func (l *Lobby) join(username string, connID uuid.UUID) error {
	l.Mu.Lock()
	defer l.Mu.Unlock()
	if l.closed {
		return ErrNotInLobby
	}

	for _, p := range l.Players {
		if p.Username == username && !p.Disconnected {
			return ErrUsernameTaken
		}
	}

	for _, p := range l.Players {
		if p.Username == username {
			l.reconnectUnsafe(p, connID)
			return nil
		}
	}

	if len(l.Players) >= 2 {
		return ErrLobbyFull
	}

	p := &models.Player{
		Username: username,
		ConnID:   connID,
		Cards:    models.StarterLoadout(),
	}
	l.Players = append(l.Players, p)
	l.broadcaster.Subscribe(l.Code, connID)
	l.notifyUnsafe(connID, SeveritySuccess, "Successfully joined the game.")
	l.broadcastUnsafe(EventWaitingForPlayers, l.snapshotUnsafe())
	l.log.WithField("username", username).Info("player joined")

	if len(l.Players) == 2 {
		l.Phase = PhaseWaitingForReady
		l.notifyAllUnsafe(SeverityInfo, "Both players have joined. Ready up to start the game.")
		l.broadcastUnsafe(EventWaitingForReady, l.snapshotUnsafe())
	}
	return nil
}

// reconnectUnsafe rebinds a disconnected player's connection identity and, if
// the lobby was paused for them, resumes it. Ready flags, declared actions and
// card state are deliberately untouched. Assumes lock is held.
func (l *Lobby) reconnectUnsafe(p *models.Player, connID uuid.UUID) {
	p.ConnID = connID
	p.Disconnected = false
	p.CancelReconnect()

	l.broadcaster.Subscribe(l.Code, connID)
	l.notifyUnsafe(connID, SeveritySuccess, "Reconnected to the game.")
	l.broadcastUnsafe(EventPlayerReconnected, l.snapshotUnsafe())
	l.log.WithField("username", p.Username).Info("player reconnected")

	if l.IsPaused {
		// Unpausing is all the resumption the phase timer needs: a frozen
		// round or buffer countdown keeps its task alive while paused and
		// picks up from where it stopped on the next tick.
		l.IsPaused = false
		l.notifyAllUnsafe(SeverityInfo, "Resuming game...")
	}
}

// --- ready / match countdown ---

// ready handles client:player-ready for both of its meanings: match readiness
// before the game has started, round readiness during the result buffer.
func (l *Lobby) ready(connID uuid.UUID) error {
	l.Mu.Lock()
	defer l.Mu.Unlock()
	if l.closed {
		return ErrNotInLobby
	}
	if len(l.Players) < 2 {
		return ErrNotEnoughPlayers
	}
	if l.IsPaused {
		return ErrLobbyPaused
	}
	p := l.playerByConnUnsafe(connID)
	if p == nil {
		return ErrNotInLobby
	}

	if l.IsStarted {
		p.RoundReady = true
		if l.Phase == PhaseResolving && l.allRoundReadyUnsafe() {
			// Everyone has seen the result; skip the rest of the buffer.
			l.cancelTimerUnsafe()
			l.advanceAfterBufferUnsafe()
		}
		return nil
	}

	p.MatchReady = true
	l.broadcastUnsafe(EventPlayerReadyStatus, l.snapshotUnsafe())
	if l.Phase == PhaseWaitingForReady && l.allMatchReadyUnsafe() {
		l.startMatchCountdownUnsafe()
	}
	return nil
}

func (l *Lobby) allMatchReadyUnsafe() bool {
	for _, p := range l.Players {
		if !p.MatchReady {
			return false
		}
	}
	return len(l.Players) == 2
}

func (l *Lobby) allRoundReadyUnsafe() bool {
	for _, p := range l.Players {
		if !p.Disconnected && !p.RoundReady {
			return false
		}
	}
	return true
}

// startMatchCountdownUnsafe begins the pre-match countdown. A player dropping
// mid-countdown cancels it through the disconnect handler; the player-count
// check on the final tick is the backstop invariant. Assumes lock is held.
func (l *Lobby) startMatchCountdownUnsafe() {
	l.Phase = PhaseCountdown
	remaining := l.rules.CountdownSeconds
	l.broadcastUnsafe(EventCountdownStarting, l.snapshotUnsafe())
	l.broadcastUnsafe(EventCountdown, CountdownPayload{Countdown: remaining})
	l.log.Info("match countdown started")

	l.startTimerUnsafe(func() bool {
		remaining--
		if remaining > 0 && len(l.Players) == 2 {
			l.broadcastUnsafe(EventCountdown, CountdownPayload{Countdown: remaining})
			return true
		}
		l.timer = nil
		if len(l.Players) == 2 {
			l.IsStarted = true
			l.broadcastUnsafe(EventGameStarting, l.snapshotUnsafe())
			l.notifyAllUnsafe(SeveritySuccess, "Game is starting!")
			l.log.Info("match started")
			l.startRoundUnsafe()
		}
		return false
	})
}

// --- terminal transitions ---

// closeUnsafe releases every timer, unsubscribes the remaining connections and
// removes the lobby from the registry. Idempotent. Assumes lock is held.
func (l *Lobby) closeUnsafe() {
	if l.closed {
		return
	}
	l.closed = true
	l.cancelTimerUnsafe()
	for _, p := range l.Players {
		p.CancelReconnect()
		if !p.Disconnected {
			l.broadcaster.Unsubscribe(l.Code, p.ConnID)
		}
	}
	l.log.Info("lobby closed")
	if l.onClose != nil {
		l.onClose(l.Code)
	}
}

// validUsername rejects empty and whitespace-only usernames.
func validUsername(username string) bool {
	return strings.TrimSpace(username) != ""
}
