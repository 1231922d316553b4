package state

import (
	"context"

	"github.com/Dosada05/chess-tournament/models"
	"github.com/Dosada05/chess-tournament/repositories"
)

type repositoryLoader struct {
	tournaments   repositories.TournamentRepository
	players       repositories.PlayerRepository
	registrations repositories.RegistrationRepository
	matches       repositories.MatchRepository
}

func NewRepositoryLoader(
	tournaments repositories.TournamentRepository,
	players repositories.PlayerRepository,
	registrations repositories.RegistrationRepository,
	matches repositories.MatchRepository,
) Loader {
	return &repositoryLoader{
		tournaments:   tournaments,
		players:       players,
		registrations: registrations,
		matches:       matches,
	}
}

func (l *repositoryLoader) LoadTournaments(ctx context.Context) ([]models.Tournament, error) {
	return l.tournaments.List(ctx, repositories.ListTournamentsFilter{})
}

func (l *repositoryLoader) LoadPlayers(ctx context.Context) ([]models.Player, error) {
	return l.players.List(ctx)
}

func (l *repositoryLoader) LoadRegistrations(ctx context.Context) ([]models.Registration, error) {
	return l.registrations.ListAll(ctx)
}

func (l *repositoryLoader) LoadMatches(ctx context.Context) ([]models.Match, error) {
	return l.matches.ListAll(ctx)
}
