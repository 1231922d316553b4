package models

import (
	"errors"
	"strings"
	"time"
)

var ErrMalformedResult = errors.New("malformed match result")

// MatchResult is the score notation stored in matches.result.
type MatchResult string

const (
	ResultWhiteWins MatchResult = "1-0"
	ResultBlackWins MatchResult = "0-1"
	ResultDraw      MatchResult = "1/2-1/2"
)

// ParseResult validates a submitted result. Besides the canonical notation it accepts
// "½-½" and the white_wins/black_wins/draw keywords used by older clients.
func ParseResult(s string) (MatchResult, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(ResultWhiteWins), "white_wins":
		return ResultWhiteWins, nil
	case string(ResultBlackWins), "black_wins":
		return ResultBlackWins, nil
	case string(ResultDraw), "½-½", "draw":
		return ResultDraw, nil
	default:
		return "", ErrMalformedResult
	}
}

type MatchStatus string

const (
	MatchStatusPending   MatchStatus = "pending"
	MatchStatusCompleted MatchStatus = "completed"
)

type Match struct {
	ID              string     `json:"id" db:"id"`
	TournamentID    string     `json:"tournament_id" db:"tournament_id"`
	Round           int        `json:"round" db:"round"`
	Board           int        `json:"board" db:"board"`
	WhitePlayerID   string     `json:"white_player_id" db:"white_player_id"`
	BlackPlayerID   string     `json:"black_player_id" db:"black_player_id"`
	WhitePlayerName string     `json:"white_player_name" db:"white_player_name"`
	BlackPlayerName string     `json:"black_player_name" db:"black_player_name"`
	Result          *string    `json:"result,omitempty" db:"result"`
	ScheduledAt     *time.Time `json:"scheduled_at,omitempty" db:"scheduled_at"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

func (m Match) HasResult() bool {
	return m.Result != nil && *m.Result != ""
}

func (m Match) Status() MatchStatus {
	if m.HasResult() {
		return MatchStatusCompleted
	}
	return MatchStatusPending
}

func (m Match) Involves(playerID string) bool {
	return m.WhitePlayerID == playerID || m.BlackPlayerID == playerID
}
