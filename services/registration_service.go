package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Dosada05/chess-tournament/models"
	"github.com/Dosada05/chess-tournament/repositories"
)

type RegistrationService interface {
	// Register adds the caller to a tournament, creating their player row on first use.
	Register(ctx context.Context, identity models.Identity, tournamentID string) (*models.Registration, error)
	Unregister(ctx context.Context, tournamentID, playerID string) error
	ListPlayers(ctx context.Context, tournamentID string) ([]models.Player, error)
}

type registrationService struct {
	tx            repositories.Transactor
	tournaments   repositories.TournamentRepository
	registrations repositories.RegistrationRepository
	players       repositories.PlayerRepository
	logger        *slog.Logger
}

func NewRegistrationService(
	tx repositories.Transactor,
	tournaments repositories.TournamentRepository,
	registrations repositories.RegistrationRepository,
	players repositories.PlayerRepository,
	logger *slog.Logger,
) RegistrationService {
	return &registrationService{
		tx:            tx,
		tournaments:   tournaments,
		registrations: registrations,
		players:       players,
		logger:        logger,
	}
}

func (s *registrationService) Register(ctx context.Context, identity models.Identity, tournamentID string) (*models.Registration, error) {
	if identity.Subject == "" {
		return nil, ErrAuthenticationFailed
	}

	reg := &models.Registration{TournamentID: tournamentID, PlayerID: identity.Subject}
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		// Строка турнира блокируется до конца транзакции, чтобы параллельные заявки не превысили лимит.
		t, err := s.tournaments.GetByIDForUpdate(ctx, exec, tournamentID)
		if err != nil {
			return handleRepositoryError(err)
		}
		count, err := s.registrations.CountByTournament(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		switch {
		case t.IsActive:
			return ErrTournamentActive
		case !t.RegistrationOpen:
			return ErrRegistrationNotOpen
		case !t.AcceptsRegistrations(count):
			return ErrTournamentFull
		}

		player := &models.Player{ID: identity.Subject, Name: identity.DisplayName()}
		if identity.Email != "" {
			email := identity.Email
			player.Email = &email
		}
		if err := s.players.Upsert(ctx, exec, player); err != nil {
			return err
		}
		return handleRepositoryError(s.registrations.Create(ctx, exec, reg))
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "player registered",
		slog.String("tournament_id", tournamentID), slog.String("player_id", identity.Subject))
	return reg, nil
}

func (s *registrationService) Unregister(ctx context.Context, tournamentID, playerID string) error {
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournaments.GetByIDForUpdate(ctx, exec, tournamentID)
		if err != nil {
			return handleRepositoryError(err)
		}
		if t.IsActive {
			return fmt.Errorf("%w: players cannot leave a running tournament", ErrTournamentActive)
		}
		return handleRepositoryError(s.registrations.Delete(ctx, exec, tournamentID, playerID))
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "player unregistered",
		slog.String("tournament_id", tournamentID), slog.String("player_id", playerID))
	return nil
}

func (s *registrationService) ListPlayers(ctx context.Context, tournamentID string) ([]models.Player, error) {
	if _, err := s.tournaments.GetByID(ctx, tournamentID); err != nil {
		return nil, handleRepositoryError(err)
	}
	players, err := s.registrations.ListRoster(ctx, nil, tournamentID)
	if err != nil {
		return nil, err
	}
	return players, nil
}
