package pairing

import (
	"github.com/Dosada05/chess-tournament/models"
)

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() Generator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) Name() string {
	return "RoundRobin"
}

// Generate builds a round-robin schedule. With a single cycle the circle method
// spreads the n(n-1)/2 games over n-1 rounds (n rounds when a bye is needed).
// With TotalRounds > 1 every pair meets once per cycle and each cycle is one round.
func (g *RoundRobinGenerator) Generate(params GenerateParams) (Schedule, error) {
	players := params.Players
	if len(players) < 2 {
		return nil, ErrInsufficientPlayers
	}
	if params.TotalRounds < 1 {
		return nil, ErrInvalidRounds
	}
	if params.TotalRounds == 1 {
		return circleSchedule(players), nil
	}
	return cycleSchedule(players, params.TotalRounds), nil
}

func circleSchedule(players []models.Player) Schedule {
	n := len(players)
	slots := n
	if n%2 == 1 {
		slots++ // slot n is the bye
	}
	fixed := slots - 1
	rotating := slots - 1

	ledger := newColorLedger(players)
	schedule := make(Schedule, 0, rotating)

	for r := 0; r < rotating; r++ {
		round := Round{Number: r + 1, Pairings: make([]Pairing, 0, slots/2)}

		pairs := make([][2]int, 0, slots/2)
		pairs = append(pairs, [2]int{r % rotating, fixed})
		for k := 1; k < slots/2; k++ {
			pairs = append(pairs, [2]int{(r + k) % rotating, (r - k + rotating) % rotating})
		}

		for _, pr := range pairs {
			// A pairing with the bye slot is simply not played.
			if pr[0] >= n || pr[1] >= n {
				continue
			}
			white, black := ledger.assign(players[pr[0]], players[pr[1]], 0, false)
			round.Pairings = append(round.Pairings, newPairing(r+1, white, black))
		}
		schedule = append(schedule, round)
	}
	return schedule
}

func cycleSchedule(players []models.Player, cycles int) Schedule {
	pairs := uniquePairs(players)
	ledger := newColorLedger(players)
	schedule := make(Schedule, 0, cycles)

	for cycle := 0; cycle < cycles; cycle++ {
		round := Round{Number: cycle + 1, Pairings: make([]Pairing, 0, len(pairs))}
		for _, pair := range pairs {
			white, black := ledger.assign(pair[0], pair[1], cycle, true)
			round.Pairings = append(round.Pairings, newPairing(cycle+1, white, black))
		}
		schedule = append(schedule, round)
	}
	return schedule
}
