package pairing

import "errors"

var (
	ErrInsufficientPlayers = errors.New("at least 2 players are required to generate a schedule")
	ErrUnsupportedFormat   = errors.New("tournament format has no schedule generator")
	ErrInvalidRounds       = errors.New("total rounds must be at least 1")
	ErrDuplicatePlayer     = errors.New("player appears more than once in the roster")
	ErrInvalidPlayer       = errors.New("player id must not be empty")
)
