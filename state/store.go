// Package state holds the last-fetched snapshot of tournaments, players, registrations and
// matches. It is constructed explicitly and refreshed from change notifications.
package state

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Dosada05/chess-tournament/models"
	"github.com/Dosada05/chess-tournament/standings"
	"golang.org/x/sync/errgroup"
)

// Loader fetches the full contents of each table.
type Loader interface {
	LoadTournaments(ctx context.Context) ([]models.Tournament, error)
	LoadPlayers(ctx context.Context) ([]models.Player, error)
	LoadRegistrations(ctx context.Context) ([]models.Registration, error)
	LoadMatches(ctx context.Context) ([]models.Match, error)
}

// Snapshot is immutable once published by the Store.
type Snapshot struct {
	Tournaments   []models.Tournament   `json:"tournaments"`
	Players       []models.Player       `json:"players"`
	Registrations []models.Registration `json:"registrations"`
	Matches       []models.Match        `json:"matches"`
	LoadedAt      time.Time             `json:"loaded_at"`
}

const (
	defaultRefreshDebounce = 200 * time.Millisecond
	changeRefreshBudget    = 15 * time.Second
)

type Store struct {
	loader    Loader
	logger    *slog.Logger
	refreshMu sync.Mutex

	debounce  time.Duration
	pendingMu sync.Mutex
	pending   *time.Timer
	coalesced int

	mu   sync.RWMutex
	snap Snapshot
}

func NewStore(loader Loader, logger *slog.Logger) *Store {
	return &Store{loader: loader, logger: logger, debounce: defaultRefreshDebounce}
}

// Refresh reloads every table concurrently and swaps the snapshot in one step. On error the
// previous snapshot stays in place.
func (s *Store) Refresh(ctx context.Context) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	var next Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		next.Tournaments, err = s.loader.LoadTournaments(gctx)
		return wrapLoad("tournaments", err)
	})
	g.Go(func() error {
		var err error
		next.Players, err = s.loader.LoadPlayers(gctx)
		return wrapLoad("players", err)
	})
	g.Go(func() error {
		var err error
		next.Registrations, err = s.loader.LoadRegistrations(gctx)
		return wrapLoad("registrations", err)
	})
	g.Go(func() error {
		var err error
		next.Matches, err = s.loader.LoadMatches(gctx)
		return wrapLoad("matches", err)
	})
	if err := g.Wait(); err != nil {
		return err
	}
	next.LoadedAt = time.Now().UTC()

	s.mu.Lock()
	s.snap = next
	s.mu.Unlock()
	return nil
}

func wrapLoad(what string, err error) error {
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", what, err)
	}
	return nil
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

func (s *Store) TournamentByID(id string) (models.Tournament, bool) {
	snap := s.Snapshot()
	for _, t := range snap.Tournaments {
		if t.ID == id {
			return t, true
		}
	}
	return models.Tournament{}, false
}

// PlayersByTournament returns the roster in registration order. Registrations whose player
// row is not loaded yet are skipped.
func (s *Store) PlayersByTournament(tournamentID string) []models.Player {
	snap := s.Snapshot()
	byID := make(map[string]models.Player, len(snap.Players))
	for _, p := range snap.Players {
		byID[p.ID] = p
	}

	roster := make([]models.Player, 0)
	for _, r := range snap.Registrations {
		if r.TournamentID != tournamentID {
			continue
		}
		if p, ok := byID[r.PlayerID]; ok {
			roster = append(roster, p)
		}
	}
	return roster
}

func (s *Store) MatchesByTournament(tournamentID string) []models.Match {
	snap := s.Snapshot()
	matches := make([]models.Match, 0)
	for _, m := range snap.Matches {
		if m.TournamentID == tournamentID {
			matches = append(matches, m)
		}
	}
	return matches
}

func (s *Store) IsPlayerRegistered(tournamentID, playerID string) bool {
	snap := s.Snapshot()
	for _, r := range snap.Registrations {
		if r.TournamentID == tournamentID && r.PlayerID == playerID {
			return true
		}
	}
	return false
}

// ActiveTournament returns the first active tournament, falling back to the first one loaded
// (the most recently created).
func (s *Store) ActiveTournament() (models.Tournament, bool) {
	snap := s.Snapshot()
	for _, t := range snap.Tournaments {
		if t.IsActive {
			return t, true
		}
	}
	if len(snap.Tournaments) > 0 {
		return snap.Tournaments[0], true
	}
	return models.Tournament{}, false
}

// Standings computes the leaderboard of a tournament from the cached snapshot.
func (s *Store) Standings(tournamentID string) []models.StandingRow {
	return standings.Compute(s.PlayersByTournament(tournamentID), s.MatchesByTournament(tournamentID))
}

// HandleChange schedules a reload after a row change. Changes arriving within the debounce
// window share one Refresh, so a bulk insert of a schedule reloads the tables once. The window
// is not extended by later events.
func (s *Store) HandleChange(_ context.Context, event models.ChangeEvent) {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()

	s.coalesced++
	if s.pending != nil {
		return
	}
	s.logger.Debug("state refresh scheduled", slog.String("table", event.Table), slog.String("type", string(event.Type)))
	s.pending = time.AfterFunc(s.debounce, s.flush)
}

func (s *Store) flush() {
	s.pendingMu.Lock()
	s.pending = nil
	events := s.coalesced
	s.coalesced = 0
	s.pendingMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), changeRefreshBudget)
	defer cancel()
	if err := s.Refresh(ctx); err != nil {
		s.logger.Error("state refresh after change failed", slog.Int("events", events), slog.Any("error", err))
	}
}

// Stop cancels a scheduled refresh.
func (s *Store) Stop() {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
		s.coalesced = 0
	}
}
