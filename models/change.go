package models

import "encoding/json"

// Tables that publish row-level change notifications.
const (
	TablePlayers       = "players"
	TableTournaments   = "tournaments"
	TableRegistrations = "tournament_registrations"
	TableMatches       = "matches"
)

type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
	// ChangeResync is emitted locally after the notification connection was re-established
	// and individual events may have been lost.
	ChangeResync ChangeType = "RESYNC"
)

// ChangeEvent mirrors the payload produced by the notify_table_change() trigger.
type ChangeEvent struct {
	Table  string          `json:"table"`
	Type   ChangeType      `json:"type"`
	Record json.RawMessage `json:"record,omitempty"`
}

// TournamentID extracts the tournament the changed row belongs to, if any.
func (e ChangeEvent) TournamentID() string {
	if len(e.Record) == 0 {
		return ""
	}
	var row struct {
		ID           string `json:"id"`
		TournamentID string `json:"tournament_id"`
	}
	if err := json.Unmarshal(e.Record, &row); err != nil {
		return ""
	}
	if e.Table == TableTournaments {
		return row.ID
	}
	return row.TournamentID
}
