package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/chess-tournament/models"
	"github.com/google/uuid"
)

var (
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentInvalidField = errors.New("tournament violates a field constraint")
)

type ListTournamentsFilter struct {
	Active *bool
	Format *models.TournamentFormat
	Limit  int
	Offset int
}

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id string) (*models.Tournament, error)
	// GetByIDForUpdate locks the row until exec's transaction ends.
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id string) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	Update(ctx context.Context, tournament *models.Tournament) error
	SetActive(ctx context.Context, exec SQLExecutor, id string, active bool) error
	Delete(ctx context.Context, exec SQLExecutor, id string) error
	// TryLockSchedule takes a transaction-scoped advisory lock keyed by the tournament id.
	// It returns false when another transaction holds it.
	TryLockSchedule(ctx context.Context, exec SQLExecutor, id string) (bool, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const tournamentColumns = `
	id, name, description, format, max_players, total_rounds,
	registration_open, is_active, rules, created_by, created_at, updated_at`

func scanTournament(s rowScanner, t *models.Tournament) error {
	return s.Scan(
		&t.ID, &t.Name, &t.Description, &t.Format, &t.MaxPlayers, &t.TotalRounds,
		&t.RegistrationOpen, &t.IsActive, &t.Rules, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
	)
}

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	query := `
		INSERT INTO tournaments (
			id, name, description, format, max_players, total_rounds,
			registration_open, is_active, rules, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		t.ID, t.Name, t.Description, t.Format, t.MaxPlayers, t.TotalRounds,
		t.RegistrationOpen, t.IsActive, t.Rules, t.CreatedBy,
	).Scan(&t.CreatedAt, &t.UpdatedAt)

	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	return r.getOne(ctx, r.db, `SELECT `+tournamentColumns+` FROM tournaments WHERE id = $1`, id)
}

func (r *postgresTournamentRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id string) (*models.Tournament, error) {
	return r.getOne(ctx, r.getExecutor(exec), `SELECT `+tournamentColumns+` FROM tournaments WHERE id = $1 FOR UPDATE`, id)
}

func (r *postgresTournamentRepository) getOne(ctx context.Context, exec SQLExecutor, query, id string) (*models.Tournament, error) {
	t := &models.Tournament{}
	if err := scanTournament(exec.QueryRowContext(ctx, query, id), t); err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE 1=1`

	args := []interface{}{}
	argID := 1

	if filter.Active != nil {
		query += fmt.Sprintf(" AND is_active = $%d", argID)
		args = append(args, *filter.Active)
		argID++
	}
	if filter.Format != nil {
		query += fmt.Sprintf(" AND format = $%d", argID)
		args = append(args, *filter.Format)
		argID++
	}

	query += " ORDER BY created_at DESC, id"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		if scanErr := scanTournament(rows, &t); scanErr != nil {
			return nil, scanErr
		}
		tournaments = append(tournaments, t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return tournaments, nil
}

// Update writes the editable settings. is_active is changed only through SetActive.
func (r *postgresTournamentRepository) Update(ctx context.Context, t *models.Tournament) error {
	query := `
		UPDATE tournaments SET
			name = $1,
			description = $2,
			format = $3,
			max_players = $4,
			total_rounds = $5,
			registration_open = $6,
			rules = $7,
			updated_at = now()
		WHERE id = $8
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		t.Name, t.Description, t.Format, t.MaxPlayers, t.TotalRounds, t.RegistrationOpen, t.Rules,
		t.ID,
	).Scan(&t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return ErrTournamentNotFound
		}
		return r.handleTournamentError(err)
	}
	return nil
}

func (r *postgresTournamentRepository) SetActive(ctx context.Context, exec SQLExecutor, id string, active bool) error {
	query := `UPDATE tournaments SET is_active = $1, updated_at = now() WHERE id = $2`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, active, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, exec SQLExecutor, id string) error {
	query := `DELETE FROM tournaments WHERE id = $1`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) TryLockSchedule(ctx context.Context, exec SQLExecutor, id string) (bool, error) {
	var locked bool
	err := r.getExecutor(exec).QueryRowContext(ctx,
		`SELECT pg_try_advisory_xact_lock(hashtext('tournament_schedule'), hashtext($1))`, id,
	).Scan(&locked)
	if err != nil {
		return false, fmt.Errorf("failed to acquire schedule lock for tournament %s: %w", id, err)
	}
	return locked, nil
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if code, _, ok := pqErrorCode(err); ok {
		switch code {
		case pqCheckViolation:
			return ErrTournamentInvalidField
		case pqInvalidTextRepr:
			return ErrTournamentNotFound
		}
	}
	return err
}
