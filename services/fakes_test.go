package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/Dosada05/chess-tournament/models"
	"github.com/Dosada05/chess-tournament/realtime"
	"github.com/Dosada05/chess-tournament/repositories"
	"github.com/google/uuid"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeDB is an in-memory stand-in for the four tables. fakeTx restores a copy on error,
// which is how a rolled back transaction looks to the services.
type fakeDB struct {
	mu            sync.Mutex
	tournaments   map[string]models.Tournament
	players       map[string]models.Player
	registrations []models.Registration
	matches       []models.Match
	ops           []string

	advisoryBusy bool
	insertErr    error
	rosterGate   chan struct{}
	rosterEnter  chan struct{}
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		tournaments: make(map[string]models.Tournament),
		players:     make(map[string]models.Player),
	}
}

type dbState struct {
	tournaments   map[string]models.Tournament
	players       map[string]models.Player
	registrations []models.Registration
	matches       []models.Match
}

func (d *fakeDB) save() dbState {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := dbState{
		tournaments:   make(map[string]models.Tournament, len(d.tournaments)),
		players:       make(map[string]models.Player, len(d.players)),
		registrations: append([]models.Registration(nil), d.registrations...),
		matches:       append([]models.Match(nil), d.matches...),
	}
	for k, v := range d.tournaments {
		s.tournaments[k] = v
	}
	for k, v := range d.players {
		s.players[k] = v
	}
	return s
}

func (d *fakeDB) restore(s dbState) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tournaments, d.players, d.registrations, d.matches = s.tournaments, s.players, s.registrations, s.matches
}

func (d *fakeDB) record(op string) {
	d.ops = append(d.ops, op)
}

func (d *fakeDB) addTournament(t models.Tournament) models.Tournament {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.TotalRounds == 0 {
		t.TotalRounds = 1
	}
	if t.MaxPlayers == 0 {
		t.MaxPlayers = 16
	}
	d.mu.Lock()
	d.tournaments[t.ID] = t
	d.mu.Unlock()
	return t
}

func (d *fakeDB) register(tournamentID string, names ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, n := range names {
		id := "player-" + n
		d.players[id] = models.Player{ID: id, Name: n}
		d.registrations = append(d.registrations, models.Registration{TournamentID: tournamentID, PlayerID: id})
	}
}

func (d *fakeDB) matchesOf(tournamentID string) []models.Match {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []models.Match
	for _, m := range d.matches {
		if m.TournamentID == tournamentID {
			out = append(out, m)
		}
	}
	return out
}

type fakeTx struct{ db *fakeDB }

func (f fakeTx) WithinTx(_ context.Context, fn func(exec repositories.SQLExecutor) error) error {
	snapshot := f.db.save()
	if err := fn(nil); err != nil {
		f.db.restore(snapshot)
		return err
	}
	return nil
}

// region tournaments

type fakeTournamentRepo struct{ db *fakeDB }

func (r fakeTournamentRepo) Create(_ context.Context, t *models.Tournament) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.tournaments[t.ID] = *t
	return nil
}

func (r fakeTournamentRepo) GetByID(_ context.Context, id string) (*models.Tournament, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t, ok := r.db.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return &t, nil
}

func (r fakeTournamentRepo) GetByIDForUpdate(ctx context.Context, _ repositories.SQLExecutor, id string) (*models.Tournament, error) {
	return r.GetByID(ctx, id)
}

func (r fakeTournamentRepo) List(_ context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]models.Tournament, 0)
	for _, t := range r.db.tournaments {
		if filter.Active != nil && t.IsActive != *filter.Active {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r fakeTournamentRepo) Update(_ context.Context, t *models.Tournament) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.tournaments[t.ID]; !ok {
		return repositories.ErrTournamentNotFound
	}
	r.db.tournaments[t.ID] = *t
	return nil
}

func (r fakeTournamentRepo) SetActive(_ context.Context, _ repositories.SQLExecutor, id string, active bool) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t, ok := r.db.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.IsActive = active
	r.db.tournaments[id] = t
	return nil
}

func (r fakeTournamentRepo) Delete(_ context.Context, _ repositories.SQLExecutor, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(r.db.tournaments, id)
	r.db.record("delete tournament")
	return nil
}

func (r fakeTournamentRepo) TryLockSchedule(context.Context, repositories.SQLExecutor, string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return !r.db.advisoryBusy, nil
}

// endregion

// region registrations

type fakeRegistrationRepo struct{ db *fakeDB }

func (r fakeRegistrationRepo) Create(_ context.Context, _ repositories.SQLExecutor, reg *models.Registration) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.registrations {
		if existing.TournamentID == reg.TournamentID && existing.PlayerID == reg.PlayerID {
			return repositories.ErrRegistrationConflict
		}
	}
	r.db.registrations = append(r.db.registrations, *reg)
	return nil
}

func (r fakeRegistrationRepo) Delete(_ context.Context, _ repositories.SQLExecutor, tournamentID, playerID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i, existing := range r.db.registrations {
		if existing.TournamentID == tournamentID && existing.PlayerID == playerID {
			r.db.registrations = append(r.db.registrations[:i:i], r.db.registrations[i+1:]...)
			return nil
		}
	}
	return repositories.ErrRegistrationNotFound
}

func (r fakeRegistrationRepo) CountByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID string) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	n := 0
	for _, existing := range r.db.registrations {
		if existing.TournamentID == tournamentID {
			n++
		}
	}
	return n, nil
}

func (r fakeRegistrationRepo) ListAll(context.Context) ([]models.Registration, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return append([]models.Registration(nil), r.db.registrations...), nil
}

func (r fakeRegistrationRepo) ListRoster(_ context.Context, _ repositories.SQLExecutor, tournamentID string) ([]models.Player, error) {
	if r.db.rosterEnter != nil {
		r.db.rosterEnter <- struct{}{}
	}
	if r.db.rosterGate != nil {
		<-r.db.rosterGate
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]models.Player, 0)
	for _, existing := range r.db.registrations {
		if existing.TournamentID == tournamentID {
			out = append(out, r.db.players[existing.PlayerID])
		}
	}
	return out, nil
}

func (r fakeRegistrationRepo) DeleteByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID string) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	kept := r.db.registrations[:0:0]
	var n int64
	for _, existing := range r.db.registrations {
		if existing.TournamentID == tournamentID {
			n++
			continue
		}
		kept = append(kept, existing)
	}
	r.db.registrations = kept
	r.db.record("delete registrations")
	return n, nil
}

// endregion

// region matches

type fakeMatchRepo struct{ db *fakeDB }

func (r fakeMatchRepo) BulkInsert(_ context.Context, _ repositories.SQLExecutor, matches []models.Match) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.insertErr != nil {
		return r.db.insertErr
	}
	for i := range matches {
		if matches[i].ID == "" {
			matches[i].ID = uuid.NewString()
		}
		r.db.matches = append(r.db.matches, matches[i])
	}
	r.db.record("insert matches")
	return nil
}

func (r fakeMatchRepo) DeleteByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID string) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	kept := r.db.matches[:0:0]
	var n int64
	for _, m := range r.db.matches {
		if m.TournamentID == tournamentID {
			n++
			continue
		}
		kept = append(kept, m)
	}
	r.db.matches = kept
	r.db.record("delete matches")
	return n, nil
}

func (r fakeMatchRepo) UpdateResult(_ context.Context, _ repositories.SQLExecutor, id string, result *string) (*models.Match, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i := range r.db.matches {
		if r.db.matches[i].ID == id {
			r.db.matches[i].Result = result
			m := r.db.matches[i]
			return &m, nil
		}
	}
	return nil, repositories.ErrMatchNotFound
}

func (r fakeMatchRepo) GetByID(_ context.Context, id string) (*models.Match, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, m := range r.db.matches {
		if m.ID == id {
			return &m, nil
		}
	}
	return nil, repositories.ErrMatchNotFound
}

func (r fakeMatchRepo) ListByTournament(_ context.Context, tournamentID string) ([]models.Match, error) {
	return r.db.matchesOf(tournamentID), nil
}

func (r fakeMatchRepo) ListAll(context.Context) ([]models.Match, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return append([]models.Match(nil), r.db.matches...), nil
}

func (r fakeMatchRepo) CountByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID string) (int, error) {
	return len(r.db.matchesOf(tournamentID)), nil
}

// endregion

// region players

type fakePlayerRepo struct{ db *fakeDB }

func (r fakePlayerRepo) Upsert(_ context.Context, _ repositories.SQLExecutor, p *models.Player) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if existing, ok := r.db.players[p.ID]; ok {
		if existing.Email == nil {
			existing.Email = p.Email
			r.db.players[p.ID] = existing
		}
		*p = existing
		return nil
	}
	r.db.players[p.ID] = *p
	return nil
}

func (r fakePlayerRepo) GetByID(_ context.Context, id string) (*models.Player, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	return &p, nil
}

func (r fakePlayerRepo) List(context.Context) ([]models.Player, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]models.Player, 0, len(r.db.players))
	for _, p := range r.db.players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r fakePlayerRepo) Update(_ context.Context, p *models.Player) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.players[p.ID]; !ok {
		return repositories.ErrPlayerNotFound
	}
	r.db.players[p.ID] = *p
	return nil
}

// endregion

// region hub

type sentMessage struct {
	room string
	msg  realtime.WebSocketMessage
}

type fakeBroadcaster struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (b *fakeBroadcaster) BroadcastToRoom(room string, message interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	msg, _ := message.(realtime.WebSocketMessage)
	b.sent = append(b.sent, sentMessage{room: room, msg: msg})
}

func (b *fakeBroadcaster) BroadcastAll(message realtime.WebSocketMessage) {
	b.BroadcastToRoom("*", message)
}

func (b *fakeBroadcaster) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.sent))
	for i, s := range b.sent {
		out[i] = s.msg.Type
	}
	return out
}

// endregion

var errBoom = errors.New("boom")
