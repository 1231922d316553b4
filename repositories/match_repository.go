package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/chess-tournament/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound       = errors.New("match not found")
	ErrMatchInvalidPlayers = errors.New("match players must be distinct")
	ErrBulkInsertNeedsTx   = errors.New("bulk insert requires a transaction")
)

type MatchRepository interface {
	// BulkInsert stores all matches or none. Empty IDs are filled with new UUIDs.
	BulkInsert(ctx context.Context, exec SQLExecutor, matches []models.Match) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) (int64, error)
	UpdateResult(ctx context.Context, exec SQLExecutor, id string, result *string) (*models.Match, error)
	GetByID(ctx context.Context, id string) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID string) ([]models.Match, error)
	ListAll(ctx context.Context) ([]models.Match, error)
	CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) (int, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `
	id, tournament_id, round, board, white_player_id, black_player_id,
	white_player_name, black_player_name, result, scheduled_at, created_at, updated_at`

// matchOrder lists boards in generation order. Rows of one COPY share created_at, so it cannot
// be used as a tiebreak.
const matchOrder = `round, board, id`

// board defaults a missing board number to the first board.
func board(m *models.Match) int {
	if m.Board < 1 {
		return 1
	}
	return m.Board
}

func scanMatch(s rowScanner, m *models.Match) error {
	return s.Scan(
		&m.ID, &m.TournamentID, &m.Round, &m.Board, &m.WhitePlayerID, &m.BlackPlayerID,
		&m.WhitePlayerName, &m.BlackPlayerName, &m.Result, &m.ScheduledAt, &m.CreatedAt, &m.UpdatedAt,
	)
}

// BulkInsert streams the rows with COPY. Without a caller transaction it opens its own, so
// a failure part way never leaves a partial schedule behind.
func (r *postgresMatchRepository) BulkInsert(ctx context.Context, exec SQLExecutor, matches []models.Match) error {
	if len(matches) == 0 {
		return nil
	}
	if exec == nil {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		return runInTx(tx, func(exec SQLExecutor) error {
			return r.copyMatches(ctx, exec, matches)
		})
	}
	if _, ok := exec.(*sql.Tx); !ok {
		return ErrBulkInsertNeedsTx
	}
	return r.copyMatches(ctx, exec, matches)
}

func (r *postgresMatchRepository) copyMatches(ctx context.Context, exec SQLExecutor, matches []models.Match) error {
	stmt, err := exec.PrepareContext(ctx, pq.CopyIn("matches",
		"id", "tournament_id", "round", "board", "white_player_id", "black_player_id",
		"white_player_name", "black_player_name", "scheduled_at",
	))
	if err != nil {
		return fmt.Errorf("failed to prepare match copy: %w", err)
	}
	defer stmt.Close()

	for i := range matches {
		m := &matches[i]
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		if _, err := stmt.ExecContext(ctx,
			m.ID, m.TournamentID, m.Round, board(m), m.WhitePlayerID, m.BlackPlayerID,
			m.WhitePlayerName, m.BlackPlayerName, m.ScheduledAt,
		); err != nil {
			return fmt.Errorf("failed to queue match %d: %w", i, err)
		}
	}

	// Пустой Exec отправляет накопленные строки на сервер.
	if _, err := stmt.ExecContext(ctx); err != nil {
		if code, constraint, ok := pqErrorCode(err); ok && code == pqCheckViolation && constraint == "matches_distinct_players" {
			return ErrMatchInvalidPlayers
		}
		return fmt.Errorf("failed to flush match copy: %w", err)
	}
	return nil
}

func (r *postgresMatchRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) (int64, error) {
	result, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM matches WHERE tournament_id = $1`, tournamentID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete matches for tournament %s: %w", tournamentID, err)
	}
	return result.RowsAffected()
}

func (r *postgresMatchRepository) UpdateResult(ctx context.Context, exec SQLExecutor, id string, result *string) (*models.Match, error) {
	query := `
		UPDATE matches SET result = $1, updated_at = now()
		WHERE id = $2
		RETURNING ` + matchColumns

	m := &models.Match{}
	if err := scanMatch(r.getExecutor(exec).QueryRowContext(ctx, query, result, id), m); err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id string) (*models.Match, error) {
	m := &models.Match{}
	err := scanMatch(r.db.QueryRowContext(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id), m)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID string) ([]models.Match, error) {
	return r.list(ctx, `SELECT `+matchColumns+` FROM matches WHERE tournament_id = $1 ORDER BY `+matchOrder, tournamentID)
}

func (r *postgresMatchRepository) ListAll(ctx context.Context) ([]models.Match, error) {
	return r.list(ctx, `SELECT `+matchColumns+` FROM matches ORDER BY tournament_id, `+matchOrder)
}

func (r *postgresMatchRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Match, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		if isInvalidID(err) {
			return []models.Match{}, nil
		}
		return nil, err
	}
	defer rows.Close()

	matches := make([]models.Match, 0)
	for rows.Next() {
		var m models.Match
		if err := scanMatch(rows, &m); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *postgresMatchRepository) CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) (int, error) {
	var count int
	err := r.getExecutor(exec).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM matches WHERE tournament_id = $1`, tournamentID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count matches for tournament %s: %w", tournamentID, err)
	}
	return count, nil
}
