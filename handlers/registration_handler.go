package handlers

import (
	"net/http"

	"github.com/Dosada05/chess-tournament/middleware"
	"github.com/Dosada05/chess-tournament/services"
)

type RegistrationHandler struct {
	registrationService services.RegistrationService
}

func NewRegistrationHandler(rs services.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registrationService: rs}
}

// ListPlayersHandler обрабатывает GET /api/tournaments/{tournamentID}/players
// @Summary Участники турнира
// @Tags registrations
// @Produce json
// @Param tournamentID path string true "Tournament ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Турнир не найден"
// @Router /api/tournaments/{tournamentID}/players [get]
func (h *RegistrationHandler) ListPlayersHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	players, err := h.registrationService.ListPlayers(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"players": players}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RegisterHandler обрабатывает POST /api/tournaments/{tournamentID}/registrations
// @Summary Зарегистрироваться в турнире
// @Tags registrations
// @Produce json
// @Param tournamentID path string true "Tournament ID"
// @Success 201 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "Регистрация закрыта"
// @Failure 409 {object} map[string]string "Уже зарегистрирован, мест нет или турнир идёт"
// @Security BearerAuth
// @Router /api/tournaments/{tournamentID}/registrations [post]
func (h *RegistrationHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.GetIdentityFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	registration, err := h.registrationService.Register(r.Context(), identity, tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"registration": registration}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UnregisterSelfHandler обрабатывает DELETE /api/tournaments/{tournamentID}/registrations/me
// @Summary Отменить свою регистрацию
// @Tags registrations
// @Param tournamentID path string true "Tournament ID"
// @Success 204 "Регистрация отменена"
// @Failure 404 {object} map[string]string "Регистрация не найдена"
// @Failure 409 {object} map[string]string "Турнир уже идёт"
// @Security BearerAuth
// @Router /api/tournaments/{tournamentID}/registrations/me [delete]
func (h *RegistrationHandler) UnregisterSelfHandler(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.GetIdentityFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}
	h.unregister(w, r, identity.Subject)
}

// RemovePlayerHandler обрабатывает DELETE /api/tournaments/{tournamentID}/registrations/{playerID}
// @Summary Снять игрока с турнира (админ)
// @Tags registrations
// @Param tournamentID path string true "Tournament ID"
// @Param playerID path string true "Player ID"
// @Success 204 "Игрок снят"
// @Failure 404 {object} map[string]string "Регистрация не найдена"
// @Failure 409 {object} map[string]string "Турнир уже идёт"
// @Security BearerAuth
// @Router /api/tournaments/{tournamentID}/registrations/{playerID} [delete]
func (h *RegistrationHandler) RemovePlayerHandler(w http.ResponseWriter, r *http.Request) {
	playerID, err := getPlayerIDFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	h.unregister(w, r, playerID)
}

func (h *RegistrationHandler) unregister(w http.ResponseWriter, r *http.Request, playerID string) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.registrationService.Unregister(r.Context(), tournamentID, playerID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
