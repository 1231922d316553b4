package services

import (
	"errors"
	"fmt"

	"github.com/Dosada05/chess-tournament/models"
	"github.com/Dosada05/chess-tournament/pairing"
	"github.com/Dosada05/chess-tournament/repositories"
)

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed    = errors.New("validation failed")
	ErrRegistrationNotOpen = errors.New("tournament registration is not open")
	ErrTournamentFull      = errors.New("tournament registration is full")
	ErrTournamentActive    = errors.New("tournament is active")

	// Ошибки генерации расписания и результатов
	ErrInsufficientPlayers = pairing.ErrInsufficientPlayers
	ErrUnsupportedFormat   = pairing.ErrUnsupportedFormat
	ErrMalformedResult     = models.ErrMalformedResult
	ErrPersistenceFailure  = errors.New("persistence failure")
	ErrScheduleInProgress  = errors.New("a schedule operation is already running for this tournament")
	ErrExportDisabled      = errors.New("standings export is not configured")

	// Ошибки конфликтов
	ErrRegistrationConflict = errors.New("player is already registered for this tournament")

	// Ошибки аутентификации и авторизации
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current user")

	// Ошибки, специфичные для сущностей
	ErrPlayerNotFound       = errors.New("player not found")
	ErrTournamentNotFound   = errors.New("tournament not found")
	ErrMatchNotFound        = errors.New("match not found")
	ErrRegistrationNotFound = errors.New("registration not found")
)

// handleRepositoryError переводит ошибки репозиториев в ошибки сервисов.
func handleRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrPlayerNotFound):
		return ErrPlayerNotFound
	case errors.Is(err, repositories.ErrMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrRegistrationNotFound):
		return ErrRegistrationNotFound
	case errors.Is(err, repositories.ErrRegistrationConflict):
		return ErrRegistrationConflict
	case errors.Is(err, repositories.ErrTournamentInvalidField):
		return fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}
	return err
}

// persistenceError marks a storage failure inside a schedule operation. Known sentinel errors
// pass through unchanged.
func persistenceError(op string, err error) error {
	mapped := handleRepositoryError(err)
	for _, known := range repositoryOutcomes {
		if errors.Is(mapped, known) {
			return mapped
		}
	}
	return fmt.Errorf("%w: %s: %w", ErrPersistenceFailure, op, err)
}

var repositoryOutcomes = []error{
	ErrTournamentNotFound,
	ErrPlayerNotFound,
	ErrMatchNotFound,
	ErrRegistrationNotFound,
	ErrRegistrationConflict,
	ErrValidationFailed,
}
