package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/Dosada05/chess-tournament/models"
	"github.com/Dosada05/chess-tournament/repositories"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

const (
	maxPlayerNameLength = 100
	defaultSearchLimit  = 20
)

type UpdateProfileInput struct {
	Name            *string `json:"name"`
	LichessUsername *string `json:"lichess_username"`
}

type PlayerService interface {
	EnsurePlayer(ctx context.Context, identity models.Identity) (*models.Player, error)
	Get(ctx context.Context, id string) (*models.Player, error)
	List(ctx context.Context) ([]models.Player, error)
	// Search ranks players by fuzzy match of the query against name and lichess username.
	Search(ctx context.Context, query string, limit int) ([]models.Player, error)
	// UpdateProfile changes the player's own fields. Names already copied onto matches stay as they were.
	UpdateProfile(ctx context.Context, id string, input UpdateProfileInput) (*models.Player, error)
}

type playerService struct {
	players repositories.PlayerRepository
	logger  *slog.Logger
}

func NewPlayerService(players repositories.PlayerRepository, logger *slog.Logger) PlayerService {
	return &playerService{players: players, logger: logger}
}

func (s *playerService) EnsurePlayer(ctx context.Context, identity models.Identity) (*models.Player, error) {
	if identity.Subject == "" {
		return nil, ErrAuthenticationFailed
	}
	p := &models.Player{ID: identity.Subject, Name: identity.DisplayName()}
	if identity.Email != "" {
		email := identity.Email
		p.Email = &email
	}
	if err := s.players.Upsert(ctx, nil, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *playerService) Get(ctx context.Context, id string) (*models.Player, error) {
	p, err := s.players.GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	return p, nil
}

func (s *playerService) List(ctx context.Context) ([]models.Player, error) {
	return s.players.List(ctx)
}

func (s *playerService) Search(ctx context.Context, query string, limit int) ([]models.Player, error) {
	all, err := s.players.List(ctx)
	if err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if query == "" {
		if len(all) > limit {
			all = all[:limit]
		}
		return all, nil
	}

	// Каждый игрок ищется по имени и по нику на lichess; берём лучшее совпадение.
	targets := make([]string, 0, len(all)*2)
	owner := make([]int, 0, len(all)*2)
	for i, p := range all {
		targets = append(targets, p.Name)
		owner = append(owner, i)
		if p.LichessUsername != nil && *p.LichessUsername != "" {
			targets = append(targets, *p.LichessUsername)
			owner = append(owner, i)
		}
	}

	ranks := fuzzy.RankFindNormalizedFold(query, targets)
	sort.Stable(ranks)

	seen := make(map[int]bool, len(ranks))
	result := make([]models.Player, 0, limit)
	for _, r := range ranks {
		idx := owner[r.OriginalIndex]
		if seen[idx] {
			continue
		}
		seen[idx] = true
		result = append(result, all[idx])
		if len(result) == limit {
			break
		}
	}
	return result, nil
}

func (s *playerService) UpdateProfile(ctx context.Context, id string, input UpdateProfileInput) (*models.Player, error) {
	p, err := s.players.GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" || len(name) > maxPlayerNameLength {
			return nil, fmt.Errorf("%w: name must be 1-%d characters", ErrValidationFailed, maxPlayerNameLength)
		}
		p.Name = name
	}
	if input.LichessUsername != nil {
		handle := strings.TrimSpace(*input.LichessUsername)
		if handle == "" {
			p.LichessUsername = nil
		} else {
			p.LichessUsername = &handle
		}
	}

	if err := s.players.Update(ctx, p); err != nil {
		return nil, handleRepositoryError(err)
	}
	s.logger.InfoContext(ctx, "player profile updated", slog.String("player_id", id))
	return p, nil
}
