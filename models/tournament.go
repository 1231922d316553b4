package models

import (
	"errors"
	"strings"
	"time"
)

var ErrUnknownFormat = errors.New("unknown tournament format")

// TournamentFormat values are stored verbatim in the tournaments.format column.
type TournamentFormat string

const (
	FormatRoundRobin       TournamentFormat = "Round Robin"
	FormatDoubleRoundRobin TournamentFormat = "Double Round Robin"
	FormatSwiss            TournamentFormat = "Swiss"
	FormatKnockout         TournamentFormat = "Knockout"
	FormatLeague           TournamentFormat = "League"
)

var knownFormats = []TournamentFormat{
	FormatRoundRobin,
	FormatDoubleRoundRobin,
	FormatSwiss,
	FormatKnockout,
	FormatLeague,
}

// ParseFormat accepts the stored spelling as well as snake/kebab case variants
// ("round_robin", "double-round-robin").
func ParseFormat(s string) (TournamentFormat, error) {
	norm := strings.NewReplacer("_", " ", "-", " ").Replace(strings.TrimSpace(s))
	for _, f := range knownFormats {
		if strings.EqualFold(norm, string(f)) {
			return f, nil
		}
	}
	return "", ErrUnknownFormat
}

// Tournament представляет турнир.
type Tournament struct {
	ID               string           `json:"id" db:"id"`
	Name             string           `json:"name" db:"name"`
	Description      *string          `json:"description,omitempty" db:"description"`
	Format           TournamentFormat `json:"format" db:"format"`
	MaxPlayers       int              `json:"max_players" db:"max_players"`
	TotalRounds      int              `json:"total_rounds" db:"total_rounds"`
	RegistrationOpen bool             `json:"registration_open" db:"registration_open"`
	IsActive         bool             `json:"is_active" db:"is_active"`
	Rules            *string          `json:"rules,omitempty" db:"rules"`
	CreatedBy        string           `json:"created_by" db:"created_by"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at" db:"updated_at"`

	// Не хранится в БД
	Slug string `json:"slug,omitempty" db:"-"`
}

// AcceptsRegistrations applies the self-registration rule for a given current roster size.
func (t Tournament) AcceptsRegistrations(registered int) bool {
	return t.RegistrationOpen && !t.IsActive && registered < t.MaxPlayers
}
