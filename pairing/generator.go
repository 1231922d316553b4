// Package pairing turns a tournament format and a player roster into rounds of
// colored pairings. Every generator is pure and deterministic: the same roster
// in the same order always yields the same schedule.
package pairing

import (
	"github.com/Dosada05/chess-tournament/models"
)

type GenerateParams struct {
	Players     []models.Player
	TotalRounds int
}

type Generator interface {
	Generate(params GenerateParams) (Schedule, error)

	Name() string
}

// Pairing is a match before it is persisted: no id, no result.
type Pairing struct {
	Round     int    `json:"round"`
	Board     int    `json:"board"`
	WhiteID   string `json:"white_player_id"`
	WhiteName string `json:"white_player_name"`
	BlackID   string `json:"black_player_id"`
	BlackName string `json:"black_player_name"`
}

type Round struct {
	Number   int       `json:"number"`
	Pairings []Pairing `json:"pairings"`
}

type Schedule []Round

// Pairings flattens the schedule in round order.
func (s Schedule) Pairings() []Pairing {
	out := make([]Pairing, 0, s.MatchCount())
	for _, r := range s {
		out = append(out, r.Pairings...)
	}
	return out
}

func (s Schedule) MatchCount() int {
	n := 0
	for _, r := range s {
		n += len(r.Pairings)
	}
	return n
}

func newPairing(round int, white, black models.Player) Pairing {
	return Pairing{
		Round:     round,
		WhiteID:   white.ID,
		WhiteName: white.DisplayName(),
		BlackID:   black.ID,
		BlackName: black.DisplayName(),
	}
}
