package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Dosada05/chess-tournament/middleware"
	"github.com/Dosada05/chess-tournament/models"
	"github.com/Dosada05/chess-tournament/repositories"
	"github.com/Dosada05/chess-tournament/services"
	"github.com/Dosada05/chess-tournament/state"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
	exportService     services.ExportService
	store             *state.Store
}

func NewTournamentHandler(ts services.TournamentService, es services.ExportService, store *state.Store) *TournamentHandler {
	return &TournamentHandler{
		tournamentService: ts,
		exportService:     es,
		store:             store,
	}
}

// CreateHandler обрабатывает POST /api/tournaments
// @Summary Создать турнир
// @Tags tournaments
// @Accept json
// @Produce json
// @Param body body services.CreateTournamentInput true "Данные турнира"
// @Success 201 {object} map[string]interface{} "Турнир создан"
// @Failure 400 {object} map[string]string "Ошибка валидации"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Нет прав (не админ)"
// @Security BearerAuth
// @Router /api/tournaments [post]
func (h *TournamentHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.GetIdentityFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to create tournament")
		return
	}

	var input services.CreateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.Create(r.Context(), identity.Subject, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler обрабатывает GET /api/tournaments/{tournamentID}
// @Summary Получить турнир по ID
// @Tags tournaments
// @Produce json
// @Param tournamentID path string true "Tournament ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Турнир не найден"
// @Router /api/tournaments/{tournamentID} [get]
func (h *TournamentHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.Get(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler обрабатывает GET /api/tournaments
// @Summary Список турниров
// @Tags tournaments
// @Produce json
// @Param active query bool false "Только активные / неактивные"
// @Param format query string false "Формат (Round Robin, Swiss, ...)"
// @Param limit query int false "Лимит (по умолчанию 20)"
// @Param offset query int false "Смещение"
// @Success 200 {object} map[string]interface{}
// @Router /api/tournaments [get]
func (h *TournamentHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	var filter repositories.ListTournamentsFilter
	query := r.URL.Query()

	if activeStr := query.Get("active"); activeStr != "" {
		active, err := strconv.ParseBool(activeStr)
		if err != nil {
			badRequestResponse(w, r, errors.New("invalid active query parameter"))
			return
		}
		filter.Active = &active
	}
	if formatStr := query.Get("format"); formatStr != "" {
		format, err := models.ParseFormat(formatStr)
		if err != nil {
			badRequestResponse(w, r, errors.New("invalid format query parameter"))
			return
		}
		filter.Format = &format
	}

	var err error
	if filter.Limit, err = queryInt(r, "limit", 20, 1); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if filter.Offset, err = queryInt(r, "offset", 0, 0); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournaments, err := h.tournamentService.List(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ActiveHandler обрабатывает GET /api/tournaments/active
// @Summary Текущий турнир
// @Description Первый активный турнир из снимка состояния, иначе первый по списку.
// @Tags tournaments
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Турниров нет"
// @Router /api/tournaments/active [get]
func (h *TournamentHandler) ActiveHandler(w http.ResponseWriter, r *http.Request) {
	tournament, ok := h.store.ActiveTournament()
	if !ok {
		notFoundResponse(w, r)
		return
	}

	resp := jsonResponse{
		"tournament": tournament,
		"players":    h.store.PlayersByTournament(tournament.ID),
		"matches":    h.store.MatchesByTournament(tournament.ID),
		"standings":  h.store.Standings(tournament.ID),
	}
	if err := writeJSON(w, http.StatusOK, resp, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateHandler обрабатывает PATCH /api/tournaments/{tournamentID}
// @Summary Обновить турнир
// @Tags tournaments
// @Accept json
// @Produce json
// @Param tournamentID path string true "Tournament ID"
// @Param body body services.UpdateTournamentInput true "Изменяемые поля"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Ошибка валидации"
// @Failure 409 {object} map[string]string "Турнир уже идёт"
// @Security BearerAuth
// @Router /api/tournaments/{tournamentID} [patch]
func (h *TournamentHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.Update(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteHandler обрабатывает DELETE /api/tournaments/{tournamentID}
// @Summary Удалить турнир вместе с партиями и регистрациями
// @Tags tournaments
// @Param tournamentID path string true "Tournament ID"
// @Success 204 "Удалено"
// @Failure 404 {object} map[string]string "Турнир не найден"
// @Failure 409 {object} map[string]string "Идёт генерация расписания"
// @Security BearerAuth
// @Router /api/tournaments/{tournamentID} [delete]
func (h *TournamentHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.Get(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := h.tournamentService.Delete(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	// Опубликованная таблица удаляется по возможности, турнир уже удалён.
	if err := h.exportService.RemoveStandings(r.Context(), tournament); err != nil {
		slog.WarnContext(r.Context(), "failed to remove exported standings",
			slog.String("tournament_id", id), slog.Any("error", err))
	}
	w.WriteHeader(http.StatusNoContent)
}

// ActivateHandler обрабатывает POST /api/tournaments/{tournamentID}/activate
// @Summary Запустить или остановить турнир
// @Description Переключает is_active. При первом запуске генерирует расписание.
// @Tags tournaments
// @Produce json
// @Param tournamentID path string true "Tournament ID"
// @Success 200 {object} services.ScheduleResult
// @Failure 409 {object} map[string]string "Идёт генерация расписания"
// @Failure 422 {object} map[string]string "Недостаточно игроков или формат не поддерживается"
// @Security BearerAuth
// @Router /api/tournaments/{tournamentID}/activate [post]
func (h *TournamentHandler) ActivateHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.tournamentService.Activate(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RegenerateHandler обрабатывает POST /api/tournaments/{tournamentID}/regenerate
// @Summary Пересоздать расписание
// @Description Удаляет все партии турнира (вместе с результатами) и генерирует новые.
// @Tags tournaments
// @Produce json
// @Param tournamentID path string true "Tournament ID"
// @Success 200 {object} services.ScheduleResult
// @Failure 409 {object} map[string]string "Идёт генерация расписания"
// @Failure 422 {object} map[string]string "Недостаточно игроков или формат не поддерживается"
// @Failure 503 {object} map[string]string "Ошибка базы данных, расписание не изменено"
// @Security BearerAuth
// @Router /api/tournaments/{tournamentID}/regenerate [post]
func (h *TournamentHandler) RegenerateHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.tournamentService.Regenerate(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
