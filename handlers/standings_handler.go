package handlers

import (
	"net/http"

	"github.com/Dosada05/chess-tournament/services"
)

type StandingsHandler struct {
	standingsService services.StandingsService
	exportService    services.ExportService
}

func NewStandingsHandler(ss services.StandingsService, es services.ExportService) *StandingsHandler {
	return &StandingsHandler{standingsService: ss, exportService: es}
}

// GetHandler обрабатывает GET /api/tournaments/{tournamentID}/standings
// @Summary Турнирная таблица
// @Tags standings
// @Produce json
// @Param tournamentID path string true "Tournament ID"
// @Success 200 {object} services.TournamentStandings
// @Failure 404 {object} map[string]string "Турнир не найден"
// @Router /api/tournaments/{tournamentID}/standings [get]
func (h *StandingsHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	board, err := h.standingsService.ForTournament(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, board, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ExportHandler обрабатывает POST /api/tournaments/{tournamentID}/standings/export
// @Summary Опубликовать таблицу в R2
// @Tags standings
// @Produce json
// @Param tournamentID path string true "Tournament ID"
// @Success 201 {object} services.ExportResult
// @Failure 404 {object} map[string]string "Турнир не найден"
// @Failure 503 {object} map[string]string "Хранилище не настроено или недоступно"
// @Security BearerAuth
// @Router /api/tournaments/{tournamentID}/standings/export [post]
func (h *StandingsHandler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.exportService.ExportStandings(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
