// internal/models/card.go
package models

// ChampionName identifies one of the stock champion cards.
type ChampionName string

// AbilityName identifies one of a champion's five ability slots.
type AbilityName string

// ItemName identifies a consumable item card.
type ItemName string

const (
	ChampionFighter ChampionName = "fighter"
	ChampionWizard  ChampionName = "wizard"
	ChampionRanger  ChampionName = "ranger"
)

const (
	AbilityOne      AbilityName = "abilityOne"
	AbilityTwo      AbilityName = "abilityTwo"
	AbilityThree    AbilityName = "abilityThree"
	AbilityFour     AbilityName = "abilityFour"
	AbilityUltimate AbilityName = "abilityUltimate"
)

const (
	ItemBasicHealthPotion ItemName = "basicHealthPotion"
)

// AbilityCard is a single ability on a champion. Tracker counts progress toward
// TrackerTotal for abilities that charge up (the ultimate); zero totals mean the
// ability is always available.
type AbilityCard struct {
	CardName      AbilityName `json:"cardName"`
	Tracker       int         `json:"tracker"`
	TrackerTotal  int         `json:"trackerTotal"`
	Description   string      `json:"description"`
	AbilityPoints int         `json:"abilityPoints"`
}

// ChampionCard carries a champion's combat stats and its ability cards.
type ChampionCard struct {
	CardName     ChampionName  `json:"cardName"`
	Health       int           `json:"health"`
	Defense      int           `json:"defense"`
	Strength     int           `json:"strength"`
	Speed        int           `json:"speed"`
	Magic        int           `json:"magic"`
	AbilityCards []AbilityCard `json:"abilityCards"`
}

// ItemCard is a single-use consumable.
type ItemCard struct {
	CardName    ItemName `json:"cardName"`
	Description string   `json:"description"`
	Used        bool     `json:"used"`
}

// CardState is a player's full loadout: the champion currently fielded, the bench,
// and held items. The lobby state machine treats it as opaque; only the round
// resolver interprets it.
type CardState struct {
	ActiveChampion ChampionCard   `json:"activeChampion"`
	ChampionCards  []ChampionCard `json:"championCards"`
	ItemCards      []ItemCard     `json:"itemCards"`
}

func defaultAbilities() []AbilityCard {
	return []AbilityCard{
		{CardName: AbilityOne, Description: "Deal 1 Damage", AbilityPoints: 3},
		{CardName: AbilityTwo, Description: "Deal 1 Damage", AbilityPoints: 3},
		{CardName: AbilityThree, Description: "Deal 1 Damage", AbilityPoints: 3},
		{CardName: AbilityFour, Description: "Deal 1 Damage", AbilityPoints: 3},
		{CardName: AbilityUltimate, TrackerTotal: 5, Description: "Deal 1 Damage", AbilityPoints: 1},
	}
}

func stockChampion(name ChampionName) ChampionCard {
	return ChampionCard{
		CardName:     name,
		Health:       20,
		Defense:      14,
		Strength:     3,
		Speed:        3,
		Magic:        3,
		AbilityCards: defaultAbilities(),
	}
}

// StarterLoadout returns a fresh copy of the stock deck every new player receives:
// fighter fielded, wizard and ranger benched, one health potion.
func StarterLoadout() CardState {
	return CardState{
		ActiveChampion: stockChampion(ChampionFighter),
		ChampionCards:  []ChampionCard{stockChampion(ChampionWizard), stockChampion(ChampionRanger)},
		ItemCards: []ItemCard{
			{CardName: ItemBasicHealthPotion, Description: "Restores //1d6 health"},
		},
	}
}
