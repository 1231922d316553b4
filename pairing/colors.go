package pairing

import (
	"sort"
	"strings"

	"github.com/Dosada05/chess-tournament/models"
)

type colorTally struct {
	white int
	black int
}

// colorLedger keeps the running white/black count per player across a schedule.
type colorLedger map[string]*colorTally

func newColorLedger(players []models.Player) colorLedger {
	l := make(colorLedger, len(players))
	for _, p := range players {
		l[p.ID] = &colorTally{}
	}
	return l
}

// assign picks white for the pair and records it. The player with fewer whites
// gets white; with compareBlacks the player with more blacks wins the next tie;
// the last tie-break is name order, reversed on odd cycles.
func (l colorLedger) assign(a, b models.Player, cycle int, compareBlacks bool) (white, black models.Player) {
	ta, tb := l[a.ID], l[b.ID]
	switch {
	case ta.white < tb.white:
		white, black = a, b
	case tb.white < ta.white:
		white, black = b, a
	case compareBlacks && ta.black > tb.black:
		white, black = a, b
	case compareBlacks && tb.black > ta.black:
		white, black = b, a
	default:
		earlier, later := a, b
		if !nameLess(a, b) {
			earlier, later = b, a
		}
		if cycle%2 == 0 {
			white, black = earlier, later
		} else {
			white, black = later, earlier
		}
	}
	l[white.ID].white++
	l[black.ID].black++
	return white, black
}

// nameLess compares names case-insensitively; ids settle identical names.
func nameLess(a, b models.Player) bool {
	an, bn := strings.ToLower(a.DisplayName()), strings.ToLower(b.DisplayName())
	if an != bn {
		return an < bn
	}
	return a.ID < b.ID
}

func sortedByName(players []models.Player) []models.Player {
	sorted := make([]models.Player, len(players))
	copy(sorted, players)
	sort.SliceStable(sorted, func(i, j int) bool {
		return nameLess(sorted[i], sorted[j])
	})
	return sorted
}

// uniquePairs enumerates every unordered pair once, in roster order.
func uniquePairs(players []models.Player) [][2]models.Player {
	n := len(players)
	pairs := make([][2]models.Player, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pairs = append(pairs, [2]models.Player{players[i], players[j]})
		}
	}
	return pairs
}
