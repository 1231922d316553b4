package handlers

import (
	"net/http"

	"github.com/Dosada05/chess-tournament/middleware"
	"github.com/Dosada05/chess-tournament/services"
)

type PlayerHandler struct {
	playerService services.PlayerService
}

func NewPlayerHandler(ps services.PlayerService) *PlayerHandler {
	return &PlayerHandler{playerService: ps}
}

// MeHandler обрабатывает GET /api/me
// @Summary Мой профиль
// @Description Создаёт профиль игрока при первом обращении.
// @Tags players
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string "Неавторизован"
// @Security BearerAuth
// @Router /api/me [get]
func (h *PlayerHandler) MeHandler(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.GetIdentityFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	player, err := h.playerService.EnsurePlayer(r.Context(), identity)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	resp := jsonResponse{"player": player, "is_admin": identity.IsAdmin}
	if err := writeJSON(w, http.StatusOK, resp, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateMeHandler обрабатывает PUT /api/me
// @Summary Обновить мой профиль
// @Tags players
// @Accept json
// @Produce json
// @Param body body services.UpdateProfileInput true "Имя и ник на lichess"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Ошибка валидации"
// @Security BearerAuth
// @Router /api/me [put]
func (h *PlayerHandler) UpdateMeHandler(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.GetIdentityFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input services.UpdateProfileInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if _, err := h.playerService.EnsurePlayer(r.Context(), identity); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	player, err := h.playerService.UpdateProfile(r.Context(), identity.Subject, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SearchHandler обрабатывает GET /api/players?q=
// @Summary Поиск игроков
// @Description Нечёткий поиск по имени и нику на lichess.
// @Tags players
// @Produce json
// @Param q query string false "Строка поиска"
// @Param limit query int false "Лимит (по умолчанию 20)"
// @Success 200 {object} map[string]interface{}
// @Router /api/players [get]
func (h *PlayerHandler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0, 1)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	players, err := h.playerService.Search(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"players": players}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler обрабатывает GET /api/players/{playerID}
// @Summary Игрок по ID
// @Tags players
// @Produce json
// @Param playerID path string true "Player ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Игрок не найден"
// @Router /api/players/{playerID} [get]
func (h *PlayerHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getPlayerIDFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.playerService.Get(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
