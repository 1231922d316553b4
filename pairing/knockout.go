package pairing

import (
	"github.com/Dosada05/chess-tournament/models"
)

type KnockoutGenerator struct{}

func NewKnockoutGenerator() Generator {
	return &KnockoutGenerator{}
}

func (g *KnockoutGenerator) Name() string {
	return "Knockout"
}

// Generate seeds the first round of a single-elimination bracket. The roster is
// seeded alphabetically and padded with byes up to the next power of two; seed i
// meets seed size-1-i, so byes go to the top seeds. Bye pairings produce no
// match. Later rounds depend on results.
func (g *KnockoutGenerator) Generate(params GenerateParams) (Schedule, error) {
	n := len(params.Players)
	if n < 2 {
		return nil, ErrInsufficientPlayers
	}
	seeded := sortedByName(params.Players)

	size := 1
	for size < n {
		size <<= 1
	}

	slots := make([]*models.Player, size)
	for i := range seeded {
		slots[i] = &seeded[i]
	}

	round := Round{Number: 1, Pairings: make([]Pairing, 0, size/2)}
	for i := 0; i < size/2; i++ {
		top, bottom := slots[i], slots[size-1-i]
		if top == nil || bottom == nil {
			continue
		}
		white, black := *top, *bottom
		if len(round.Pairings)%2 == 1 {
			white, black = black, white
		}
		round.Pairings = append(round.Pairings, newPairing(1, white, black))
	}
	return Schedule{round}, nil
}
