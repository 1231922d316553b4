package standings

import (
	"testing"

	"github.com/Dosada05/chess-tournament/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func result(s string) *string { return &s }

func game(white, black string, res *string) models.Match {
	return models.Match{WhitePlayerID: white, BlackPlayerID: black, Result: res}
}

var abc = []models.Player{
	{ID: "a", Name: "A"},
	{ID: "b", Name: "B"},
	{ID: "c", Name: "C"},
}

func TestCompute_WinAndDraw(t *testing.T) {
	rows := Compute(abc, []models.Match{
		game("a", "b", result("1-0")),
		game("a", "c", result("1/2-1/2")),
	})

	require.Len(t, rows, 3)
	assert.Equal(t, models.StandingRow{PlayerID: "a", Name: "A", Played: 2, Wins: 1, Draws: 1, Points: 1.5, Rank: 1}, rows[0])
	assert.Equal(t, models.StandingRow{PlayerID: "c", Name: "C", Played: 1, Draws: 1, Points: 0.5, Rank: 2}, rows[1])
	assert.Equal(t, models.StandingRow{PlayerID: "b", Name: "B", Played: 1, Losses: 1, Points: 0, Rank: 3}, rows[2])
}

func TestCompute_BlackWin(t *testing.T) {
	rows := Compute(abc, []models.Match{game("a", "b", result("0-1"))})

	b, ok := ForPlayer(rows, "b")
	require.True(t, ok)
	assert.Equal(t, 1, b.Wins)
	assert.Equal(t, 1.0, b.Points)

	a, ok := ForPlayer(rows, "a")
	require.True(t, ok)
	assert.Equal(t, 1, a.Losses)
	assert.Equal(t, 1, a.Played)
}

func TestCompute_PendingNotPlayed(t *testing.T) {
	rows := Compute(abc, []models.Match{
		game("a", "b", nil),
		game("a", "c", result("")),
	})

	for _, r := range rows {
		assert.Zero(t, r.Played, r.PlayerID)
		assert.Zero(t, r.Points, r.PlayerID)
	}
	// No games counted, so roster order survives.
	assert.Equal(t, []string{"a", "b", "c"}, ids(rows))
}

func TestCompute_UnrecognisedResultsPlayedButUnscored(t *testing.T) {
	rows := Compute(abc, []models.Match{
		game("a", "b", result("draw")),
		game("a", "c", result("½-½")),
		game("b", "c", result(" 1-0")),
	})

	for _, r := range rows {
		assert.Equal(t, 2, r.Played, r.PlayerID)
		assert.Zero(t, r.Wins, r.PlayerID)
		assert.Zero(t, r.Draws, r.PlayerID)
		assert.Zero(t, r.Losses, r.PlayerID)
		assert.Zero(t, r.Points, r.PlayerID)
	}
}

func TestCompute_OffRosterOpponentStillCredited(t *testing.T) {
	rows := Compute(abc, []models.Match{
		game("a", "b", result("draw")),
		game("a", "c", result("*")),
		game("b", "ghost", result("1-0")),
		game("ghost", "c", result("1-0")),
		game("ghost", "a", result("1/2-1/2")),
	})

	a, _ := ForPlayer(rows, "a")
	assert.Equal(t, models.StandingRow{PlayerID: "a", Name: "A", Played: 3, Draws: 1, Points: 0.5, Rank: 2}, a)

	b, _ := ForPlayer(rows, "b")
	assert.Equal(t, 2, b.Played)
	assert.Equal(t, 1, b.Wins)
	assert.Equal(t, 1.0, b.Points)

	c, _ := ForPlayer(rows, "c")
	assert.Equal(t, 2, c.Played)
	assert.Equal(t, 1, c.Losses)
	assert.Zero(t, c.Points)

	assert.Equal(t, []string{"b", "a", "c"}, ids(rows))
	assert.Len(t, rows, 3)
}

func TestCompute_TieBreakChain(t *testing.T) {
	players := []models.Player{
		{ID: "p1", Name: "P1"},
		{ID: "p2", Name: "P2"},
		{ID: "p3", Name: "P3"},
		{ID: "p4", Name: "P4"},
		{ID: "p5", Name: "P5"},
		{ID: "p6", Name: "P6"},
	}
	matches := []models.Match{
		// p1: two draws = 1 point, 0 wins
		game("p1", "p5", result("1/2-1/2")),
		game("p1", "p6", result("1/2-1/2")),
		// p2: one win = 1 point, 1 win
		game("p2", "p5", result("1-0")),
		// p3: one win and one loss = 1 point, 1 win, 2 played
		game("p3", "p6", result("1-0")),
		game("p4", "p3", result("1-0")),
	}
	rows := Compute(players, matches)

	// p4 has 1 point from 1 win in 1 game, equal to p2 on every key.
	assert.Equal(t, []string{"p3", "p2", "p4", "p1", "p5", "p6"}, ids(rows))
	for i, r := range rows {
		assert.Equal(t, i+1, r.Rank)
	}
}

func TestCompute_ZeroMatchPlayersIncluded(t *testing.T) {
	rows := Compute(abc, nil)
	require.Len(t, rows, 3)
	assert.Equal(t, "A", rows[0].Name)
}

func TestCompute_NameFallback(t *testing.T) {
	handle := "magnus"
	rows := Compute([]models.Player{{ID: "x", LichessUsername: &handle}}, nil)
	assert.Equal(t, "magnus", rows[0].Name)
}

func TestCompute_Idempotent(t *testing.T) {
	matches := []models.Match{
		game("a", "b", result("1-0")),
		game("c", "a", result("0-1")),
		game("b", "c", result("1/2-1/2")),
	}
	assert.Equal(t, Compute(abc, matches), Compute(abc, matches))
}

func TestLeader(t *testing.T) {
	_, ok := Leader(nil)
	assert.False(t, ok)

	rows := Compute(abc, []models.Match{game("b", "c", result("1-0"))})
	leader, ok := Leader(rows)
	require.True(t, ok)
	assert.Equal(t, "b", leader.PlayerID)
}

func ids(rows []models.StandingRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.PlayerID
	}
	return out
}
