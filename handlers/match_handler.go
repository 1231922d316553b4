package handlers

import (
	"net/http"

	"github.com/Dosada05/chess-tournament/middleware"
	"github.com/Dosada05/chess-tournament/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(ms services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: ms}
}

type submitResultInput struct {
	Result string `json:"result"`
}

// ListByTournamentHandler обрабатывает GET /api/tournaments/{tournamentID}/matches
// @Summary Партии турнира
// @Tags matches
// @Produce json
// @Param tournamentID path string true "Tournament ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Турнир не найден"
// @Router /api/tournaments/{tournamentID}/matches [get]
func (h *MatchHandler) ListByTournamentHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.matchService.ListByTournament(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SubmitResultHandler обрабатывает PUT /api/matches/{matchID}/result
// @Summary Записать результат партии
// @Description Доступно участникам партии и администраторам. "1-0", "0-1", "1/2-1/2".
// @Tags matches
// @Accept json
// @Produce json
// @Param matchID path string true "Match ID"
// @Param body body submitResultInput true "Результат"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "Не участник партии"
// @Failure 404 {object} map[string]string "Партия не найдена"
// @Failure 422 {object} map[string]string "Неизвестный формат результата"
// @Security BearerAuth
// @Router /api/matches/{matchID}/result [put]
func (h *MatchHandler) SubmitResultHandler(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.GetIdentityFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input submitResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.SubmitResult(r.Context(), identity, matchID, input.Result)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
