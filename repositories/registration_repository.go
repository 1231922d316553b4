package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/chess-tournament/models"
)

var (
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrRegistrationConflict = errors.New("player already registered for this tournament")
)

type RegistrationRepository interface {
	Create(ctx context.Context, exec SQLExecutor, reg *models.Registration) error
	Delete(ctx context.Context, exec SQLExecutor, tournamentID, playerID string) error
	CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) (int, error)
	ListAll(ctx context.Context) ([]models.Registration, error)
	// ListRoster returns the registered players in registration order.
	ListRoster(ctx context.Context, exec SQLExecutor, tournamentID string) ([]models.Player, error)
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) (int64, error)
}

type postgresRegistrationRepository struct {
	db *sql.DB
}

func NewPostgresRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &postgresRegistrationRepository{db: db}
}

func (r *postgresRegistrationRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRegistrationRepository) Create(ctx context.Context, exec SQLExecutor, reg *models.Registration) error {
	query := `
		INSERT INTO tournament_registrations (tournament_id, player_id)
		VALUES ($1, $2)
		RETURNING registered_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query, reg.TournamentID, reg.PlayerID).Scan(&reg.RegisteredAt)
	if err != nil {
		if code, constraint, ok := pqErrorCode(err); ok {
			if code == pqUniqueViolation && constraint == "tournament_registrations_pkey" {
				return ErrRegistrationConflict
			}
		}
		return err
	}
	return nil
}

func (r *postgresRegistrationRepository) Delete(ctx context.Context, exec SQLExecutor, tournamentID, playerID string) error {
	query := `DELETE FROM tournament_registrations WHERE tournament_id = $1 AND player_id = $2`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, tournamentID, playerID)
	if err != nil {
		if isInvalidID(err) {
			return ErrRegistrationNotFound
		}
		return err
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

func (r *postgresRegistrationRepository) CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) (int, error) {
	var count int
	err := r.getExecutor(exec).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tournament_registrations WHERE tournament_id = $1`, tournamentID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count registrations for tournament %s: %w", tournamentID, err)
	}
	return count, nil
}

func (r *postgresRegistrationRepository) ListAll(ctx context.Context) ([]models.Registration, error) {
	return r.list(ctx, `
		SELECT tournament_id, player_id, registered_at
		FROM tournament_registrations
		ORDER BY tournament_id, registered_at, player_id`)
}

func (r *postgresRegistrationRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Registration, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	regs := make([]models.Registration, 0)
	for rows.Next() {
		var reg models.Registration
		if err := rows.Scan(&reg.TournamentID, &reg.PlayerID, &reg.RegisteredAt); err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return regs, nil
}

func (r *postgresRegistrationRepository) ListRoster(ctx context.Context, exec SQLExecutor, tournamentID string) ([]models.Player, error) {
	query := `
		SELECT p.id, p.name, p.lichess_username, p.email, p.created_at, p.updated_at
		FROM tournament_registrations tr
		JOIN players p ON p.id = tr.player_id
		WHERE tr.tournament_id = $1
		ORDER BY tr.registered_at, p.id`

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster for tournament %s: %w", tournamentID, err)
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

func (r *postgresRegistrationRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) (int64, error) {
	result, err := r.getExecutor(exec).ExecContext(ctx,
		`DELETE FROM tournament_registrations WHERE tournament_id = $1`, tournamentID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete registrations for tournament %s: %w", tournamentID, err)
	}
	return result.RowsAffected()
}
