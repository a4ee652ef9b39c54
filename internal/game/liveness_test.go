// internal/game/liveness_test.go
package game

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WalkerFrederick/ws-game-server/internal/models"
)

func TestPreStartDisconnectRemovesPlayer(t *testing.T) {
	reg, _, mb := newTestRegistry(DefaultRules())
	alice, bob := uuid.New(), uuid.New()
	require.NoError(t, reg.Join("ABCD", "alice", alice))
	require.NoError(t, reg.Join("ABCD", "bob", bob))
	require.NoError(t, reg.Ready("ABCD", alice))

	reg.HandleDisconnect(bob)

	require.Equal(t, 1, reg.Len(), "lobby stays open for the remaining player")
	l, _ := reg.Get("ABCD")
	assert.Equal(t, PhaseWaitingForPlayers, lobbyPhase(l))
	l.Mu.Lock()
	require.Len(t, l.Players, 1)
	assert.Equal(t, "alice", l.Players[0].Username)
	assert.False(t, l.Players[0].MatchReady, "ready flags reset when the lobby reopens")
	l.Mu.Unlock()
	assert.False(t, mb.subscribed("ABCD", bob))
	assert.Equal(t, 3, mb.count("ABCD", EventWaitingForPlayers), "two joins plus the reopen")
}

func TestLastDisconnectClosesLobby(t *testing.T) {
	reg, _, _ := newTestRegistry(DefaultRules())
	alice := uuid.New()
	require.NoError(t, reg.Join("ABCD", "alice", alice))

	reg.HandleDisconnect(alice)
	assert.Equal(t, 0, reg.Len())

	// A replayed close event for the same connection is a no-op.
	reg.HandleDisconnect(alice)
	assert.Equal(t, 0, reg.Len())
}

func TestMidMatchDisconnectPausesAndForfeits(t *testing.T) {
	rules := DefaultRules()
	rules.ReconnectTimeSeconds = 5
	reg, fc, mb := newTestRegistry(rules)
	alice, bob := startMatch(t, reg, fc, mb, rules)
	l, _ := reg.Get("ABCD")

	reg.HandleDisconnect(alice)

	l.Mu.Lock()
	assert.True(t, l.IsPaused)
	assert.True(t, l.Players[0].Disconnected)
	l.Mu.Unlock()
	assert.Equal(t, 1, mb.count("ABCD", EventPlayerDisconnected))
	assert.Equal(t, 2, mb.directCount(bob, EventNotification), "join notice plus the pause notice")

	// Both the frozen round countdown and the grace countdown are live; only
	// the grace countdown produces output, and only to the remaining player.
	roundTicks := len(mb.countdownValues("ABCD", EventRoundCountdown))
	for i := 0; i < rules.ReconnectTimeSeconds-1; i++ {
		advanceTick(t, fc, 2)
		want := i + 1
		waitFor(t, func() bool { return len(mb.directCountdownValues(bob, EventReconnectTimer)) == want },
			"grace countdown should tick to the remaining player")
	}
	assert.Equal(t, []int{4, 3, 2, 1}, mb.directCountdownValues(bob, EventReconnectTimer))
	assert.Equal(t, roundTicks, len(mb.countdownValues("ABCD", EventRoundCountdown)),
		"paused round countdown must not advance")
	assert.Equal(t, 0, mb.count("ABCD", EventGameOver))

	advanceTick(t, fc, 2)
	waitFor(t, func() bool { return mb.count("ABCD", EventGameOver) == 1 }, "grace expiry forfeits the match")
	payload, _ := mb.last("ABCD", EventGameOver)
	assert.Equal(t, "bob", payload.(LobbySnapshot).Winner)
	assert.Equal(t, 0, reg.Len())
}

func TestReconnectResumesFrozenRound(t *testing.T) {
	rules := DefaultRules()
	rules.ReconnectTimeSeconds = 10
	reg, fc, mb := newTestRegistry(rules)
	alice, bob := startMatch(t, reg, fc, mb, rules)
	l, _ := reg.Get("ABCD")

	require.NoError(t, reg.DeclareAction("ABCD", alice, itemAction()))
	advanceTick(t, fc, 1)
	waitFor(t, func() bool { return len(mb.countdownValues("ABCD", EventRoundCountdown)) == 2 },
		"round countdown before the disconnect")

	reg.HandleDisconnect(alice)
	for i := 0; i < 3; i++ {
		advanceTick(t, fc, 2)
		want := i + 1
		waitFor(t, func() bool { return len(mb.directCountdownValues(bob, EventReconnectTimer)) == want },
			"grace countdown while paused")
	}
	assert.Equal(t, []int{8, 7}, mb.countdownValues("ABCD", EventRoundCountdown),
		"round countdown frozen while paused")

	// Same username, fresh connection: this is a reconnection, not a join.
	alice2 := uuid.New()
	require.NoError(t, reg.Join("ABCD", "alice", alice2))

	assert.Equal(t, 1, mb.count("ABCD", EventPlayerReconnected))
	assert.True(t, mb.subscribed("ABCD", alice2))
	l.Mu.Lock()
	assert.False(t, l.IsPaused)
	assert.False(t, l.Players[0].Disconnected)
	assert.Equal(t, alice2, l.Players[0].ConnID)
	assert.True(t, l.Players[0].MatchReady, "ready state survives the reconnect")
	assert.NotNil(t, l.Players[0].LatestRoundAction, "declared action survives the reconnect")
	assert.Equal(t, models.ChampionFighter, l.Players[0].Cards.ActiveChampion.CardName,
		"card state survives the reconnect")
	l.Mu.Unlock()

	graceTicks := len(mb.directCountdownValues(bob, EventReconnectTimer))
	advanceTick(t, fc, 1)
	waitFor(t, func() bool { return len(mb.countdownValues("ABCD", EventRoundCountdown)) == 3 },
		"round countdown resumes where it froze")
	assert.Equal(t, []int{8, 7, 6}, mb.countdownValues("ABCD", EventRoundCountdown))

	// Run well past where the grace countdown would have expired.
	for i := 0; i < rules.ReconnectTimeSeconds; i++ {
		advanceTick(t, fc, 1)
		time.Sleep(2 * time.Millisecond)
	}
	assert.Equal(t, graceTicks, len(mb.directCountdownValues(bob, EventReconnectTimer)),
		"cancelled grace countdown must stay silent")
	assert.Equal(t, 0, mb.count("ABCD", EventGameOver), "no forfeiture after a reconnect")
}

func TestPausedLobbyRejectsReadyAndActions(t *testing.T) {
	rules := DefaultRules()
	reg, fc, mb := newTestRegistry(rules)
	alice, bob := startMatch(t, reg, fc, mb, rules)

	reg.HandleDisconnect(alice)
	l, _ := reg.Get("ABCD")
	l.Mu.Lock()
	require.True(t, l.IsPaused)
	l.Mu.Unlock()

	require.ErrorIs(t, reg.Ready("ABCD", bob), ErrLobbyPaused)
	require.ErrorIs(t, reg.DeclareAction("ABCD", bob, itemAction()), ErrLobbyPaused)

	l.Mu.Lock()
	assert.False(t, l.Players[1].RoundReady, "rejected ready must not flag the player")
	assert.Nil(t, l.Players[1].LatestRoundAction, "rejected action must not be recorded")
	l.Mu.Unlock()
}

func TestSecondDisconnectWhilePausedClosesLobby(t *testing.T) {
	rules := DefaultRules()
	reg, fc, mb := newTestRegistry(rules)
	alice, bob := startMatch(t, reg, fc, mb, rules)

	reg.HandleDisconnect(alice)
	require.Equal(t, 1, reg.Len())

	reg.HandleDisconnect(bob)
	assert.Equal(t, 0, reg.Len(), "nobody left to wait for")
}
