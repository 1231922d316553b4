package services

import (
	"context"
	"testing"

	"github.com/Dosada05/chess-tournament/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistrationFixture() (*fakeDB, RegistrationService) {
	db := newFakeDB()
	svc := NewRegistrationService(fakeTx{db}, fakeTournamentRepo{db}, fakeRegistrationRepo{db}, fakePlayerRepo{db}, discardLogger())
	return db, svc
}

func TestRegister_CreatesPlayerOnFirstUse(t *testing.T) {
	db, svc := newRegistrationFixture()
	tour := db.addTournament(models.Tournament{Name: "Open", Format: models.FormatSwiss, RegistrationOpen: true})

	reg, err := svc.Register(context.Background(), models.Identity{Subject: "user_42", Email: "judit@example.com"}, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, tour.ID, reg.TournamentID)
	assert.Equal(t, "user_42", reg.PlayerID)

	p, ok := db.players["user_42"]
	require.True(t, ok)
	assert.Equal(t, "judit", p.Name)
	require.NotNil(t, p.Email)
	assert.Equal(t, "judit@example.com", *p.Email)
}

func TestRegister_KeepsExistingPlayerName(t *testing.T) {
	db, svc := newRegistrationFixture()
	tour := db.addTournament(models.Tournament{Name: "Open", RegistrationOpen: true})
	db.players["user_1"] = models.Player{ID: "user_1", Name: "Magnus"}

	_, err := svc.Register(context.Background(), models.Identity{Subject: "user_1", Name: "M. Carlsen"}, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, "Magnus", db.players["user_1"].Name)
}

func TestRegister_Rules(t *testing.T) {
	ctx := context.Background()
	me := models.Identity{Subject: "user_1", Name: "Me"}

	t.Run("duplicate", func(t *testing.T) {
		db, svc := newRegistrationFixture()
		tour := db.addTournament(models.Tournament{Name: "Open", RegistrationOpen: true})
		_, err := svc.Register(ctx, me, tour.ID)
		require.NoError(t, err)
		_, err = svc.Register(ctx, me, tour.ID)
		assert.ErrorIs(t, err, ErrRegistrationConflict)
		count, _ := fakeRegistrationRepo{db}.CountByTournament(ctx, nil, tour.ID)
		assert.Equal(t, 1, count)
	})

	t.Run("closed", func(t *testing.T) {
		db, svc := newRegistrationFixture()
		tour := db.addTournament(models.Tournament{Name: "Invitational", RegistrationOpen: false})
		_, err := svc.Register(ctx, me, tour.ID)
		assert.ErrorIs(t, err, ErrRegistrationNotOpen)
	})

	t.Run("active", func(t *testing.T) {
		db, svc := newRegistrationFixture()
		tour := db.addTournament(models.Tournament{Name: "Running", RegistrationOpen: true, IsActive: true})
		_, err := svc.Register(ctx, me, tour.ID)
		assert.ErrorIs(t, err, ErrTournamentActive)
	})

	t.Run("full", func(t *testing.T) {
		db, svc := newRegistrationFixture()
		tour := db.addTournament(models.Tournament{Name: "Match", RegistrationOpen: true, MaxPlayers: 2})
		db.register(tour.ID, "A", "B")
		_, err := svc.Register(ctx, me, tour.ID)
		assert.ErrorIs(t, err, ErrTournamentFull)
		_, exists := db.players["user_1"]
		assert.False(t, exists, "rolled back")
	})

	t.Run("unknown tournament", func(t *testing.T) {
		_, svc := newRegistrationFixture()
		_, err := svc.Register(ctx, me, "missing")
		assert.ErrorIs(t, err, ErrTournamentNotFound)
	})

	t.Run("anonymous", func(t *testing.T) {
		db, svc := newRegistrationFixture()
		tour := db.addTournament(models.Tournament{Name: "Open", RegistrationOpen: true})
		_, err := svc.Register(ctx, models.Identity{}, tour.ID)
		assert.ErrorIs(t, err, ErrAuthenticationFailed)
	})
}

func TestUnregister(t *testing.T) {
	ctx := context.Background()
	db, svc := newRegistrationFixture()
	tour := db.addTournament(models.Tournament{Name: "Open", RegistrationOpen: true})
	db.register(tour.ID, "A", "B")

	require.NoError(t, svc.Unregister(ctx, tour.ID, "player-A"))
	assert.ErrorIs(t, svc.Unregister(ctx, tour.ID, "player-A"), ErrRegistrationNotFound)

	require.NoError(t, fakeTournamentRepo{db}.SetActive(ctx, nil, tour.ID, true))
	assert.ErrorIs(t, svc.Unregister(ctx, tour.ID, "player-B"), ErrTournamentActive)

	roster, err := svc.ListPlayers(ctx, tour.ID)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, "B", roster[0].Name)
}

func TestListPlayers_UnknownTournament(t *testing.T) {
	_, svc := newRegistrationFixture()
	_, err := svc.ListPlayers(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}
