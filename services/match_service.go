package services

import (
	"context"
	"log/slog"

	"github.com/Dosada05/chess-tournament/models"
	"github.com/Dosada05/chess-tournament/repositories"
)

type MatchService interface {
	ListByTournament(ctx context.Context, tournamentID string) ([]models.Match, error)
	Get(ctx context.Context, id string) (*models.Match, error)
	// SubmitResult records a result. Admins and the two players may submit; a later submission
	// overwrites the earlier one.
	SubmitResult(ctx context.Context, identity models.Identity, matchID, result string) (*models.Match, error)
}

type matchService struct {
	matches     repositories.MatchRepository
	tournaments repositories.TournamentRepository
	logger      *slog.Logger
}

func NewMatchService(
	matches repositories.MatchRepository,
	tournaments repositories.TournamentRepository,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		matches:     matches,
		tournaments: tournaments,
		logger:      logger,
	}
}

func (s *matchService) ListByTournament(ctx context.Context, tournamentID string) ([]models.Match, error) {
	if _, err := s.tournaments.GetByID(ctx, tournamentID); err != nil {
		return nil, handleRepositoryError(err)
	}
	return s.matches.ListByTournament(ctx, tournamentID)
}

func (s *matchService) Get(ctx context.Context, id string) (*models.Match, error) {
	m, err := s.matches.GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	return m, nil
}

func (s *matchService) SubmitResult(ctx context.Context, identity models.Identity, matchID, result string) (*models.Match, error) {
	parsed, err := models.ParseResult(result)
	if err != nil {
		return nil, err
	}

	m, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	if !identity.IsAdmin && !m.Involves(identity.Subject) {
		return nil, ErrForbiddenOperation
	}

	value := string(parsed)
	updated, err := s.matches.UpdateResult(ctx, nil, matchID, &value)
	if err != nil {
		return nil, handleRepositoryError(err)
	}

	attrs := []any{
		slog.String("match_id", matchID), slog.String("tournament_id", updated.TournamentID),
		slog.String("result", value), slog.String("submitted_by", identity.Subject),
	}
	if m.HasResult() && *m.Result != value {
		s.logger.WarnContext(ctx, "match result overwritten", append(attrs, slog.String("previous", *m.Result))...)
	} else {
		s.logger.InfoContext(ctx, "match result recorded", attrs...)
	}
	return updated, nil
}
