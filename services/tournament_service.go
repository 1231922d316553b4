package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/chess-tournament/models"
	"github.com/Dosada05/chess-tournament/pairing"
	"github.com/Dosada05/chess-tournament/repositories"
	"github.com/gosimple/slug"
)

const (
	maxTournamentNameLength = 200
	maxTournamentPlayers    = 1000
	maxTotalRounds          = 50
)

type CreateTournamentInput struct {
	Name             string  `json:"name"`
	Description      *string `json:"description"`
	Format           string  `json:"format"`
	MaxPlayers       int     `json:"max_players"`
	TotalRounds      int     `json:"total_rounds"`
	RegistrationOpen *bool   `json:"registration_open"`
	Rules            *string `json:"rules"`
}

// UpdateTournamentInput carries a partial update; nil fields are left unchanged.
type UpdateTournamentInput struct {
	Name             *string `json:"name"`
	Description      *string `json:"description"`
	Format           *string `json:"format"`
	MaxPlayers       *int    `json:"max_players"`
	TotalRounds      *int    `json:"total_rounds"`
	RegistrationOpen *bool   `json:"registration_open"`
	Rules            *string `json:"rules"`
}

// ScheduleResult describes what an activation or regeneration did.
type ScheduleResult struct {
	Tournament     *models.Tournament `json:"tournament"`
	Generated      bool               `json:"generated"`
	DeletedMatches int64              `json:"deleted_matches"`
	Rounds         int                `json:"rounds"`
	Matches        []models.Match     `json:"matches"`
}

type TournamentService interface {
	Create(ctx context.Context, createdBy string, input CreateTournamentInput) (*models.Tournament, error)
	Get(ctx context.Context, id string) (*models.Tournament, error)
	List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error)
	Update(ctx context.Context, id string, input UpdateTournamentInput) (*models.Tournament, error)
	// Delete removes matches, then registrations, then the tournament, in one transaction.
	Delete(ctx context.Context, id string) error
	// Activate toggles is_active. Turning a tournament on generates its schedule unless one
	// already exists.
	Activate(ctx context.Context, id string) (*ScheduleResult, error)
	// Regenerate replaces the whole schedule. Recorded results are discarded.
	Regenerate(ctx context.Context, id string) (*ScheduleResult, error)
}

type tournamentService struct {
	tx            repositories.Transactor
	tournaments   repositories.TournamentRepository
	registrations repositories.RegistrationRepository
	matches       repositories.MatchRepository
	locks         *keyedLock
	logger        *slog.Logger
}

func NewTournamentService(
	tx repositories.Transactor,
	tournaments repositories.TournamentRepository,
	registrations repositories.RegistrationRepository,
	matches repositories.MatchRepository,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tx:            tx,
		tournaments:   tournaments,
		registrations: registrations,
		matches:       matches,
		locks:         newKeyedLock(),
		logger:        logger,
	}
}

func withSlug(t *models.Tournament) *models.Tournament {
	if t != nil {
		t.Slug = slug.Make(t.Name)
	}
	return t
}

func (s *tournamentService) Create(ctx context.Context, createdBy string, input CreateTournamentInput) (*models.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" || len(name) > maxTournamentNameLength {
		return nil, fmt.Errorf("%w: name must be 1-%d characters", ErrValidationFailed, maxTournamentNameLength)
	}
	format, err := models.ParseFormat(input.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown format %q", ErrValidationFailed, input.Format)
	}
	if err := validateCapacity(input.MaxPlayers, input.TotalRounds); err != nil {
		return nil, err
	}

	t := &models.Tournament{
		Name:             name,
		Description:      input.Description,
		Format:           format,
		MaxPlayers:       input.MaxPlayers,
		TotalRounds:      defaultRounds(input.TotalRounds),
		RegistrationOpen: true,
		Rules:            input.Rules,
		CreatedBy:        createdBy,
	}
	if input.RegistrationOpen != nil {
		t.RegistrationOpen = *input.RegistrationOpen
	}

	if err := s.tournaments.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", handleRepositoryError(err))
	}
	s.logger.InfoContext(ctx, "tournament created",
		slog.String("tournament_id", t.ID), slog.String("format", string(t.Format)), slog.String("created_by", createdBy))
	return withSlug(t), nil
}

func validateCapacity(maxPlayers, totalRounds int) error {
	if maxPlayers < 2 || maxPlayers > maxTournamentPlayers {
		return fmt.Errorf("%w: max_players must be between 2 and %d", ErrValidationFailed, maxTournamentPlayers)
	}
	if totalRounds < 0 || totalRounds > maxTotalRounds {
		return fmt.Errorf("%w: total_rounds must be between 1 and %d", ErrValidationFailed, maxTotalRounds)
	}
	return nil
}

// defaultRounds maps an omitted round count to a single cycle.
func defaultRounds(n int) int {
	if n == 0 {
		return 1
	}
	return n
}

func (s *tournamentService) Get(ctx context.Context, id string) (*models.Tournament, error) {
	t, err := s.tournaments.GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	return withSlug(t), nil
}

func (s *tournamentService) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	list, err := s.tournaments.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	for i := range list {
		withSlug(&list[i])
	}
	return list, nil
}

func (s *tournamentService) Update(ctx context.Context, id string, input UpdateTournamentInput) (*models.Tournament, error) {
	t, err := s.tournaments.GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" || len(name) > maxTournamentNameLength {
			return nil, fmt.Errorf("%w: name must be 1-%d characters", ErrValidationFailed, maxTournamentNameLength)
		}
		t.Name = name
	}
	if input.Format != nil {
		format, err := models.ParseFormat(*input.Format)
		if err != nil {
			return nil, fmt.Errorf("%w: unknown format %q", ErrValidationFailed, *input.Format)
		}
		if t.IsActive && format != t.Format {
			return nil, fmt.Errorf("%w: format cannot change while the tournament is active", ErrTournamentActive)
		}
		t.Format = format
	}
	if input.TotalRounds != nil {
		if t.IsActive && defaultRounds(*input.TotalRounds) != t.TotalRounds {
			return nil, fmt.Errorf("%w: total_rounds cannot change while the tournament is active", ErrTournamentActive)
		}
		t.TotalRounds = *input.TotalRounds
	}
	if input.MaxPlayers != nil {
		t.MaxPlayers = *input.MaxPlayers
	}
	if err := validateCapacity(t.MaxPlayers, t.TotalRounds); err != nil {
		return nil, err
	}
	t.TotalRounds = defaultRounds(t.TotalRounds)

	if input.MaxPlayers != nil {
		registered, err := s.registrations.CountByTournament(ctx, nil, id)
		if err != nil {
			return nil, err
		}
		if registered > t.MaxPlayers {
			return nil, fmt.Errorf("%w: %d players are already registered", ErrValidationFailed, registered)
		}
	}
	if input.Description != nil {
		t.Description = input.Description
	}
	if input.Rules != nil {
		t.Rules = input.Rules
	}
	if input.RegistrationOpen != nil {
		t.RegistrationOpen = *input.RegistrationOpen
	}

	if err := s.tournaments.Update(ctx, t); err != nil {
		return nil, handleRepositoryError(err)
	}
	return withSlug(t), nil
}

// scheduleOp serializes schedule-changing work on one tournament: an in-process lock for this
// instance and an advisory lock in Postgres for the others. Both fail fast.
func (s *tournamentService) scheduleOp(ctx context.Context, id string, fn func(exec repositories.SQLExecutor, t *models.Tournament) error) error {
	unlock, ok := s.locks.TryLock(id)
	if !ok {
		return ErrScheduleInProgress
	}
	defer unlock()

	return s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		locked, err := s.tournaments.TryLockSchedule(ctx, exec, id)
		if err != nil {
			return persistenceError("lock schedule", err)
		}
		if !locked {
			return ErrScheduleInProgress
		}
		t, err := s.tournaments.GetByIDForUpdate(ctx, exec, id)
		if err != nil {
			return persistenceError("load tournament", err)
		}
		return fn(exec, t)
	})
}

func (s *tournamentService) Delete(ctx context.Context, id string) error {
	err := s.scheduleOp(ctx, id, func(exec repositories.SQLExecutor, t *models.Tournament) error {
		matches, err := s.matches.DeleteByTournament(ctx, exec, id)
		if err != nil {
			return persistenceError("delete matches", err)
		}
		regs, err := s.registrations.DeleteByTournament(ctx, exec, id)
		if err != nil {
			return persistenceError("delete registrations", err)
		}
		if err := s.tournaments.Delete(ctx, exec, id); err != nil {
			return persistenceError("delete tournament", err)
		}
		s.logger.InfoContext(ctx, "tournament deleted",
			slog.String("tournament_id", id), slog.Int64("matches", matches), slog.Int64("registrations", regs))
		return nil
	})
	return err
}

func (s *tournamentService) Activate(ctx context.Context, id string) (*ScheduleResult, error) {
	res := &ScheduleResult{}
	err := s.scheduleOp(ctx, id, func(exec repositories.SQLExecutor, t *models.Tournament) error {
		res.Tournament = t
		if t.IsActive {
			if err := s.tournaments.SetActive(ctx, exec, id, false); err != nil {
				return persistenceError("deactivate tournament", err)
			}
			t.IsActive = false
			s.logger.InfoContext(ctx, "tournament deactivated", slog.String("tournament_id", id))
			return nil
		}

		existing, err := s.matches.CountByTournament(ctx, exec, id)
		if err != nil {
			return persistenceError("count matches", err)
		}
		if existing == 0 {
			if err := s.generate(ctx, exec, t, res); err != nil {
				return err
			}
		}
		if err := s.tournaments.SetActive(ctx, exec, id, true); err != nil {
			return persistenceError("activate tournament", err)
		}
		t.IsActive = true
		s.logger.InfoContext(ctx, "tournament activated",
			slog.String("tournament_id", id), slog.Bool("generated", res.Generated), slog.Int("existing_matches", existing))
		return nil
	})
	if err != nil {
		return nil, err
	}
	withSlug(res.Tournament)
	return res, nil
}

func (s *tournamentService) Regenerate(ctx context.Context, id string) (*ScheduleResult, error) {
	res := &ScheduleResult{}
	err := s.scheduleOp(ctx, id, func(exec repositories.SQLExecutor, t *models.Tournament) error {
		res.Tournament = t
		deleted, err := s.matches.DeleteByTournament(ctx, exec, id)
		if err != nil {
			return persistenceError("delete matches", err)
		}
		res.DeletedMatches = deleted
		return s.generate(ctx, exec, t, res)
	})
	if err != nil {
		return nil, err
	}
	withSlug(res.Tournament)
	return res, nil
}

// generate runs the pairing engine on the current roster and stores the result inside exec's
// transaction.
func (s *tournamentService) generate(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament, res *ScheduleResult) error {
	roster, err := s.registrations.ListRoster(ctx, exec, t.ID)
	if err != nil {
		return persistenceError("load roster", err)
	}

	schedule, err := pairing.GenerateSchedule(t.Format, roster, defaultRounds(t.TotalRounds))
	if err != nil {
		s.logger.WarnContext(ctx, "schedule generation rejected",
			slog.String("tournament_id", t.ID), slog.String("format", string(t.Format)),
			slog.Int("players", len(roster)), slog.Any("error", err))
		return fmt.Errorf("tournament %s: %w", t.ID, err)
	}

	matches := matchesFromSchedule(t.ID, schedule)
	if err := s.matches.BulkInsert(ctx, exec, matches); err != nil {
		return persistenceError("insert matches", err)
	}

	res.Generated = true
	res.Rounds = len(schedule)
	res.Matches = matches
	s.logger.InfoContext(ctx, "schedule generated",
		slog.String("tournament_id", t.ID), slog.String("format", string(t.Format)),
		slog.Int("players", len(roster)), slog.Int("rounds", len(schedule)), slog.Int("matches", len(matches)))
	return nil
}

func matchesFromSchedule(tournamentID string, schedule pairing.Schedule) []models.Match {
	matches := make([]models.Match, 0, schedule.MatchCount())
	for _, p := range schedule.Pairings() {
		matches = append(matches, models.Match{
			TournamentID:    tournamentID,
			Round:           p.Round,
			Board:           p.Board,
			WhitePlayerID:   p.WhiteID,
			BlackPlayerID:   p.BlackID,
			WhitePlayerName: p.WhiteName,
			BlackPlayerName: p.BlackName,
		})
	}
	return matches
}
