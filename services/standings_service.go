package services

import (
	"context"

	"github.com/Dosada05/chess-tournament/models"
	"github.com/Dosada05/chess-tournament/repositories"
	"github.com/Dosada05/chess-tournament/standings"
	"golang.org/x/sync/errgroup"
)

// TournamentStandings is the leaderboard of one tournament.
type TournamentStandings struct {
	Tournament *models.Tournament   `json:"tournament"`
	Rows       []models.StandingRow `json:"standings"`
	Leader     *models.StandingRow  `json:"leader,omitempty"`
	Completed  int                  `json:"completed_matches"`
	Total      int                  `json:"total_matches"`
}

type StandingsService interface {
	ForTournament(ctx context.Context, tournamentID string) (*TournamentStandings, error)
}

type standingsService struct {
	tournaments   repositories.TournamentRepository
	registrations repositories.RegistrationRepository
	matches       repositories.MatchRepository
}

func NewStandingsService(
	tournaments repositories.TournamentRepository,
	registrations repositories.RegistrationRepository,
	matches repositories.MatchRepository,
) StandingsService {
	return &standingsService{
		tournaments:   tournaments,
		registrations: registrations,
		matches:       matches,
	}
}

func (s *standingsService) ForTournament(ctx context.Context, tournamentID string) (*TournamentStandings, error) {
	var (
		tournament *models.Tournament
		roster     []models.Player
		matches    []models.Match
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tournament, err = s.tournaments.GetByID(gctx, tournamentID)
		return handleRepositoryError(err)
	})
	g.Go(func() error {
		var err error
		roster, err = s.registrations.ListRoster(gctx, nil, tournamentID)
		return err
	})
	g.Go(func() error {
		var err error
		matches, err = s.matches.ListByTournament(gctx, tournamentID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rows := standings.Compute(roster, matches)
	result := &TournamentStandings{
		Tournament: withSlug(tournament),
		Rows:       rows,
		Total:      len(matches),
	}
	for _, m := range matches {
		if m.Status() == models.MatchStatusCompleted {
			result.Completed++
		}
	}
	if leader, ok := standings.Leader(rows); ok && leader.Played > 0 {
		result.Leader = &leader
	}
	return result, nil
}
