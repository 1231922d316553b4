package state

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Dosada05/chess-tournament/models"
	"github.com/go-co-op/gocron/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLoader struct {
	tournaments   []models.Tournament
	players       []models.Player
	registrations []models.Registration
	matches       []models.Match
	matchesErr    error
	calls         atomic.Int32
}

func (f *fakeLoader) LoadTournaments(context.Context) ([]models.Tournament, error) {
	f.calls.Add(1)
	return f.tournaments, nil
}
func (f *fakeLoader) LoadPlayers(context.Context) ([]models.Player, error) {
	return f.players, nil
}
func (f *fakeLoader) LoadRegistrations(context.Context) ([]models.Registration, error) {
	return f.registrations, nil
}
func (f *fakeLoader) LoadMatches(context.Context) ([]models.Match, error) {
	return f.matches, f.matchesErr
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strPtr(s string) *string { return &s }

func seeded() *fakeLoader {
	return &fakeLoader{
		tournaments: []models.Tournament{
			{ID: "t-new", Name: "Autumn Open"},
			{ID: "t-live", Name: "Club Championship", IsActive: true},
		},
		players: []models.Player{
			{ID: "p1", Name: "Alice"},
			{ID: "p2", Name: "Bob"},
			{ID: "p3", Name: "Carol"},
		},
		registrations: []models.Registration{
			{TournamentID: "t-live", PlayerID: "p2"},
			{TournamentID: "t-live", PlayerID: "p1"},
			{TournamentID: "t-live", PlayerID: "ghost"},
			{TournamentID: "t-new", PlayerID: "p3"},
		},
		matches: []models.Match{
			{ID: "m1", TournamentID: "t-live", Round: 1, WhitePlayerID: "p1", BlackPlayerID: "p2", Result: strPtr("0-1")},
			{ID: "m2", TournamentID: "t-new", Round: 1, WhitePlayerID: "p3", BlackPlayerID: "p1"},
		},
	}
}

func TestStore_Refresh(t *testing.T) {
	store := NewStore(seeded(), discardLogger())
	require.NoError(t, store.Refresh(context.Background()))

	snap := store.Snapshot()
	assert.Len(t, snap.Tournaments, 2)
	assert.False(t, snap.LoadedAt.IsZero())

	tour, ok := store.TournamentByID("t-new")
	require.True(t, ok)
	assert.Equal(t, "Autumn Open", tour.Name)

	_, ok = store.TournamentByID("missing")
	assert.False(t, ok)
}

func TestStore_RefreshErrorKeepsPreviousSnapshot(t *testing.T) {
	loader := seeded()
	store := NewStore(loader, discardLogger())
	require.NoError(t, store.Refresh(context.Background()))

	loader.matchesErr = errors.New("db down")
	loader.tournaments = nil
	err := store.Refresh(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "matches")

	assert.Len(t, store.Snapshot().Tournaments, 2)
}

func TestStore_Roster(t *testing.T) {
	store := NewStore(seeded(), discardLogger())
	require.NoError(t, store.Refresh(context.Background()))

	roster := store.PlayersByTournament("t-live")
	require.Len(t, roster, 2)
	assert.Equal(t, "p2", roster[0].ID)
	assert.Equal(t, "p1", roster[1].ID)

	assert.True(t, store.IsPlayerRegistered("t-new", "p3"))
	assert.False(t, store.IsPlayerRegistered("t-new", "p1"))

	assert.Len(t, store.MatchesByTournament("t-live"), 1)
	assert.Empty(t, store.MatchesByTournament("nope"))
}

func TestStore_ActiveTournament(t *testing.T) {
	loader := seeded()
	store := NewStore(loader, discardLogger())

	_, ok := store.ActiveTournament()
	assert.False(t, ok)

	require.NoError(t, store.Refresh(context.Background()))
	active, ok := store.ActiveTournament()
	require.True(t, ok)
	assert.Equal(t, "t-live", active.ID)

	loader.tournaments[1].IsActive = false
	require.NoError(t, store.Refresh(context.Background()))
	active, ok = store.ActiveTournament()
	require.True(t, ok)
	assert.Equal(t, "t-new", active.ID)
}

func TestStore_Standings(t *testing.T) {
	store := NewStore(seeded(), discardLogger())
	require.NoError(t, store.Refresh(context.Background()))

	rows := store.Standings("t-live")
	require.Len(t, rows, 2)
	assert.Equal(t, "p2", rows[0].PlayerID)
	assert.Equal(t, 1.0, rows[0].Points)
}

func TestStore_HandleChangeRefreshes(t *testing.T) {
	loader := seeded()
	store := NewStore(loader, discardLogger())
	store.debounce = 20 * time.Millisecond

	store.HandleChange(context.Background(), models.ChangeEvent{Table: models.TableMatches, Type: models.ChangeUpdate})
	require.Eventually(t, func() bool { return loader.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Len(t, store.Snapshot().Matches, 2)

	loader.matchesErr = errors.New("boom")
	store.HandleChange(context.Background(), models.ChangeEvent{Type: models.ChangeResync})
	require.Eventually(t, func() bool { return loader.calls.Load() == 2 }, time.Second, 5*time.Millisecond)
	assert.Len(t, store.Snapshot().Matches, 2)
}

func TestStore_HandleChangeCoalescesBulkInsert(t *testing.T) {
	loader := seeded()
	store := NewStore(loader, discardLogger())
	store.debounce = 100 * time.Millisecond

	// One round robin of 20 players inserts 190 rows, each with its own notification.
	for i := 0; i < 190; i++ {
		store.HandleChange(context.Background(), models.ChangeEvent{Table: models.TableMatches, Type: models.ChangeInsert})
	}
	assert.Zero(t, loader.calls.Load())

	require.Eventually(t, func() bool { return loader.calls.Load() == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Never(t, func() bool { return loader.calls.Load() > 1 }, 250*time.Millisecond, 10*time.Millisecond)

	// A later change gets its own refresh.
	store.HandleChange(context.Background(), models.ChangeEvent{Table: models.TableMatches, Type: models.ChangeUpdate})
	require.Eventually(t, func() bool { return loader.calls.Load() == 2 }, 2*time.Second, 5*time.Millisecond)
}

func TestStore_StopCancelsPendingRefresh(t *testing.T) {
	loader := seeded()
	store := NewStore(loader, discardLogger())
	store.debounce = 30 * time.Millisecond

	store.HandleChange(context.Background(), models.ChangeEvent{Table: models.TableMatches, Type: models.ChangeInsert})
	store.Stop()

	assert.Never(t, func() bool { return loader.calls.Load() > 0 }, 150*time.Millisecond, 10*time.Millisecond)
}

func TestScheduleResync(t *testing.T) {
	loader := seeded()
	store := NewStore(loader, discardLogger())

	sched, err := gocron.NewScheduler()
	require.NoError(t, err)
	defer func() { _ = sched.Shutdown() }()

	job, err := ScheduleResync(context.Background(), sched, store, 20*time.Millisecond, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, "state-resync", job.Name())

	sched.Start()
	require.Eventually(t, func() bool { return loader.calls.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
}
