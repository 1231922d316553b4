package models

import (
	"strings"
	"time"
)

// Player is a chess player. ID is the identity provider subject and never changes.
type Player struct {
	ID              string    `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	LichessUsername *string   `json:"lichess_username,omitempty" db:"lichess_username"`
	Email           *string   `json:"email,omitempty" db:"email"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// DisplayName falls back to the lichess handle, then to the raw id.
func (p Player) DisplayName() string {
	if name := strings.TrimSpace(p.Name); name != "" {
		return name
	}
	if p.LichessUsername != nil && *p.LichessUsername != "" {
		return *p.LichessUsername
	}
	return p.ID
}
