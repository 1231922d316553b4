package models

import "time"

type Registration struct {
	TournamentID string    `json:"tournament_id" db:"tournament_id"`
	PlayerID     string    `json:"player_id" db:"player_id"`
	RegisteredAt time.Time `json:"registered_at" db:"registered_at"`
}
