// Package standings turns a roster and its recorded games into a ranked leaderboard.
package standings

import (
	"sort"

	"github.com/Dosada05/chess-tournament/models"
)

const (
	winPoints  = 1.0
	drawPoints = 0.5
)

// Compute builds one row per player in players. Every match with a non-empty result counts as
// played for each rostered participant; only "1-0", "0-1" and "1/2-1/2" score a win, a draw or a
// loss, any other result string scores nothing. Opponents outside the roster get no row.
// Rows are ordered by points, then wins, then games played (all descending); remaining ties
// keep roster order.
func Compute(players []models.Player, matches []models.Match) []models.StandingRow {
	rows := make([]models.StandingRow, len(players))
	index := make(map[string]int, len(players))
	for i, p := range players {
		rows[i] = models.StandingRow{PlayerID: p.ID, Name: p.DisplayName()}
		index[p.ID] = i
	}

	for _, m := range matches {
		if !m.HasResult() {
			continue
		}
		var white, black *models.StandingRow
		if i, ok := index[m.WhitePlayerID]; ok {
			white = &rows[i]
			white.Played++
		}
		if i, ok := index[m.BlackPlayerID]; ok {
			black = &rows[i]
			black.Played++
		}

		switch models.MatchResult(*m.Result) {
		case models.ResultWhiteWins:
			score(white, black)
		case models.ResultBlackWins:
			score(black, white)
		case models.ResultDraw:
			for _, r := range []*models.StandingRow{white, black} {
				if r != nil {
					r.Draws++
					r.Points += drawPoints
				}
			}
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		return a.Played > b.Played
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}

// score credits a decisive game. Either side may be nil when that player is not on the roster.
func score(winner, loser *models.StandingRow) {
	if winner != nil {
		winner.Wins++
		winner.Points += winPoints
	}
	if loser != nil {
		loser.Losses++
	}
}

// Leader returns the first row, or false when the leaderboard is empty.
func Leader(rows []models.StandingRow) (models.StandingRow, bool) {
	if len(rows) == 0 {
		return models.StandingRow{}, false
	}
	return rows[0], true
}

// ForPlayer finds the row of a single player.
func ForPlayer(rows []models.StandingRow, playerID string) (models.StandingRow, bool) {
	for _, r := range rows {
		if r.PlayerID == playerID {
			return r, true
		}
	}
	return models.StandingRow{}, false
}
