// internal/models/player.go
package models

import (
	"github.com/google/uuid"

	"github.com/WalkerFrederick/ws-game-server/internal/clock"
)

// RoundAction is a player's declared action for the round in flight. Exactly one
// of the three fields is set.
type RoundAction struct {
	AbilityCard  *AbilityCard  `json:"abilityCard,omitempty"`
	ItemCard     *ItemCard     `json:"itemCard,omitempty"`
	SwapChampion *ChampionCard `json:"swapChampion,omitempty"`
}

// Player is one seat in a lobby. Username is the stable identity used as the
// reconnection key; ConnID is the transient connection identity and changes on
// every reconnect.
//
// All fields are mutated only while the owning lobby's lock is held.
type Player struct {
	Username string    `json:"username"`
	ConnID   uuid.UUID `json:"-"`

	MatchReady   bool `json:"matchReady"`
	RoundReady   bool `json:"roundReady"`
	Disconnected bool `json:"disconnected"`

	LatestRoundAction *RoundAction `json:"latestRoundAction,omitempty"`

	Cards CardState `json:"cards"`

	// ReconnectTask is the player's grace countdown while disconnected. The
	// generation is bumped whenever the task is replaced or cancelled so a
	// stale tick can recognize itself.
	ReconnectTask *clock.Task `json:"-"`
	ReconnectGen  uint64      `json:"-"`
}

// CancelReconnect stops any running grace countdown and invalidates its ticks.
// Safe to call when no countdown is running or the countdown already fired.
func (p *Player) CancelReconnect() {
	p.ReconnectGen++
	if p.ReconnectTask != nil {
		p.ReconnectTask.Cancel()
		p.ReconnectTask = nil
	}
}
