package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/chess-tournament/models"
)

var ErrPlayerNotFound = errors.New("player not found")

type PlayerRepository interface {
	// Upsert creates the player on first sight. An existing row keeps its name, which is owned
	// by the player; only a missing email is filled in.
	Upsert(ctx context.Context, exec SQLExecutor, player *models.Player) error
	GetByID(ctx context.Context, id string) (*models.Player, error)
	List(ctx context.Context) ([]models.Player, error)
	Update(ctx context.Context, player *models.Player) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const playerColumns = `id, name, lichess_username, email, created_at, updated_at`

func scanPlayer(s rowScanner, p *models.Player) error {
	return s.Scan(&p.ID, &p.Name, &p.LichessUsername, &p.Email, &p.CreatedAt, &p.UpdatedAt)
}

func (r *postgresPlayerRepository) Upsert(ctx context.Context, exec SQLExecutor, p *models.Player) error {
	query := `
		INSERT INTO players (id, name, lichess_username, email)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET email = COALESCE(players.email, EXCLUDED.email)
		RETURNING ` + playerColumns

	err := r.getExecutor(exec).QueryRowContext(ctx, query, p.ID, p.Name, p.LichessUsername, p.Email).
		Scan(&p.ID, &p.Name, &p.LichessUsername, &p.Email, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert player %s: %w", p.ID, err)
	}
	return nil
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id string) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = $1`

	p := &models.Player{}
	if err := scanPlayer(r.db.QueryRowContext(ctx, query, id), p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresPlayerRepository) List(ctx context.Context) ([]models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players ORDER BY lower(name), id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := make([]models.Player, 0)
	for rows.Next() {
		var p models.Player
		if err := scanPlayer(rows, &p); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return players, nil
}

func (r *postgresPlayerRepository) Update(ctx context.Context, p *models.Player) error {
	query := `
		UPDATE players SET name = $1, lichess_username = $2, updated_at = now()
		WHERE id = $3
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query, p.Name, p.LichessUsername, p.ID).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrPlayerNotFound
		}
		return err
	}
	return nil
}
