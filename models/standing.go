package models

// StandingRow is one line of a computed leaderboard.
type StandingRow struct {
	PlayerID string  `json:"player_id"`
	Name     string  `json:"name"`
	Played   int     `json:"played"`
	Wins     int     `json:"wins"`
	Draws    int     `json:"draws"`
	Losses   int     `json:"losses"`
	Points   float64 `json:"points"`
	Rank     int     `json:"rank"`
}
