package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/chess-tournament/models"
	"github.com/Dosada05/chess-tournament/storage"
	"github.com/gosimple/slug"
)

type ExportResult struct {
	Key        string    `json:"key"`
	URL        string    `json:"url"`
	ExportedAt time.Time `json:"exported_at"`
}

// standingsDocument is the published JSON file.
type standingsDocument struct {
	Tournament       *models.Tournament   `json:"tournament"`
	Standings        []models.StandingRow `json:"standings"`
	CompletedMatches int                  `json:"completed_matches"`
	TotalMatches     int                  `json:"total_matches"`
	ExportedAt       time.Time            `json:"exported_at"`
}

type ExportService interface {
	// ExportStandings publishes the current leaderboard to object storage and returns its URL.
	ExportStandings(ctx context.Context, tournamentID string) (*ExportResult, error)
	// RemoveStandings deletes the published file of a tournament. A no-op when export is disabled.
	RemoveStandings(ctx context.Context, t *models.Tournament) error
}

type exportService struct {
	standings StandingsService
	uploader  storage.FileUploader
	logger    *slog.Logger
	now       func() time.Time
}

// NewExportService accepts a nil uploader; exports then fail with ErrExportDisabled.
func NewExportService(standings StandingsService, uploader storage.FileUploader, logger *slog.Logger) ExportService {
	return &exportService{standings: standings, uploader: uploader, logger: logger, now: time.Now}
}

func standingsKey(t *models.Tournament) string {
	return fmt.Sprintf("standings/%s-%s.json", slug.Make(t.Name), t.ID)
}

func (s *exportService) ExportStandings(ctx context.Context, tournamentID string) (*ExportResult, error) {
	if s.uploader == nil {
		return nil, ErrExportDisabled
	}

	board, err := s.standings.ForTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	exportedAt := s.now().UTC()
	body, err := json.MarshalIndent(standingsDocument{
		Tournament:       board.Tournament,
		Standings:        board.Rows,
		CompletedMatches: board.Completed,
		TotalMatches:     board.Total,
		ExportedAt:       exportedAt,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode standings: %w", err)
	}

	key := standingsKey(board.Tournament)
	uploaded, err := s.uploader.Upload(ctx, key, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "standings exported",
		slog.String("tournament_id", tournamentID), slog.String("key", key), slog.Int("rows", len(board.Rows)))
	return &ExportResult{Key: uploaded.Key, URL: uploaded.Location, ExportedAt: exportedAt}, nil
}

func (s *exportService) RemoveStandings(ctx context.Context, t *models.Tournament) error {
	if s.uploader == nil {
		return nil
	}
	key := standingsKey(t)
	if err := s.uploader.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to remove exported standings %s: %w", key, err)
	}
	s.logger.InfoContext(ctx, "exported standings removed", slog.String("tournament_id", t.ID), slog.String("key", key))
	return nil
}
