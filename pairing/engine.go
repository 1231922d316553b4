package pairing

import (
	"fmt"

	"github.com/Dosada05/chess-tournament/models"
)

var generators = map[models.TournamentFormat]Generator{
	models.FormatRoundRobin:       NewRoundRobinGenerator(),
	models.FormatDoubleRoundRobin: NewDoubleRoundRobinGenerator(),
	models.FormatSwiss:            NewSwissGenerator(),
	models.FormatKnockout:         NewKnockoutGenerator(),
}

// GeneratorFor returns the generator registered for format. League has no
// pairing rules of its own and is reported as unsupported.
func GeneratorFor(format models.TournamentFormat) (Generator, error) {
	g, ok := generators[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return g, nil
}

// GenerateSchedule validates the roster and dispatches to the format's generator.
func GenerateSchedule(format models.TournamentFormat, players []models.Player, totalRounds int) (Schedule, error) {
	if len(players) < 2 {
		return nil, fmt.Errorf("%w (found %d)", ErrInsufficientPlayers, len(players))
	}
	seen := make(map[string]struct{}, len(players))
	for _, p := range players {
		if p.ID == "" {
			return nil, ErrInvalidPlayer
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePlayer, p.ID)
		}
		seen[p.ID] = struct{}{}
	}

	g, err := GeneratorFor(format)
	if err != nil {
		return nil, err
	}
	schedule, err := g.Generate(GenerateParams{Players: players, TotalRounds: totalRounds})
	if err != nil {
		return nil, err
	}
	numberBoards(schedule)
	return schedule, nil
}

// numberBoards gives every pairing its 1-based position within its round.
func numberBoards(s Schedule) {
	for r := range s {
		for i := range s[r].Pairings {
			s[r].Pairings[i].Board = i + 1
		}
	}
}
