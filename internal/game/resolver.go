// internal/game/resolver.go
package game

import (
	"fmt"

	"github.com/WalkerFrederick/ws-game-server/internal/models"
)

// NarratedAction is one step of a round's playback: a line of narration, the
// player state to display alongside it, and how long the client should dwell
// on it.
type NarratedAction struct {
	Description string          `json:"description"`
	Snapshot    []models.Player `json:"gameStateSnapshot"`
	Playtime    int             `json:"playtime"`
}

// RoundResult is the ephemeral outcome of one round. It is broadcast once and
// never stored on the lobby.
type RoundResult struct {
	ActionsToPlayOut   []NarratedAction `json:"actionsToPlayOut"`
	SecondsToNextRound int              `json:"secondsToNextRound"`
}

// RoundResolver is the combat-resolution collaborator. The state machine hands
// it both players at resolution time and broadcasts whatever it returns.
type RoundResolver interface {
	ResolveRound(players []*models.Player) RoundResult
}

// BasicResolver is the placeholder combat engine: it narrates each player's
// declared action without applying combat math. The faster active champion
// acts first.
type BasicResolver struct{}

func (BasicResolver) ResolveRound(players []*models.Player) RoundResult {
	ordered := make([]*models.Player, len(players))
	copy(ordered, players)
	if len(ordered) == 2 && ordered[1].Cards.ActiveChampion.Speed > ordered[0].Cards.ActiveChampion.Speed {
		ordered[0], ordered[1] = ordered[1], ordered[0]
	}

	snapshot := make([]models.Player, len(players))
	for i, p := range players {
		snapshot[i] = *p
	}

	var actions []NarratedAction
	for _, p := range ordered {
		actions = append(actions, NarratedAction{
			Description: narrate(p),
			Snapshot:    snapshot,
			Playtime:    2,
		})
	}
	return RoundResult{ActionsToPlayOut: actions}
}

func narrate(p *models.Player) string {
	a := p.LatestRoundAction
	switch {
	case a == nil:
		return fmt.Sprintf("%s hesitates and does nothing.", p.Username)
	case a.AbilityCard != nil:
		return fmt.Sprintf("%s's %s uses %s: %s", p.Username, p.Cards.ActiveChampion.CardName, a.AbilityCard.CardName, a.AbilityCard.Description)
	case a.ItemCard != nil:
		return fmt.Sprintf("%s uses %s: %s", p.Username, a.ItemCard.CardName, a.ItemCard.Description)
	case a.SwapChampion != nil:
		return fmt.Sprintf("%s swaps to %s.", p.Username, a.SwapChampion.CardName)
	default:
		return fmt.Sprintf("%s hesitates and does nothing.", p.Username)
	}
}
