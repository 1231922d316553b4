package handlers

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/Dosada05/chess-tournament/realtime"
	"github.com/Dosada05/chess-tournament/state"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub      *realtime.Hub
	store    *state.Store
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewWebSocketHandler: allowedOrigins берётся из CORS_ALLOWED_ORIGINS, "*" разрешает всё.
func NewWebSocketHandler(hub *realtime.Hub, store *state.Store, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	allowAll := slices.Contains(allowedOrigins, "*")
	return &WebSocketHandler{
		hub:   hub,
		store: store,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowAll || origin == "" || slices.Contains(allowedOrigins, origin)
			},
		},
		logger: logger,
	}
}

// ServeWs обрабатывает WebSocket запросы для конкретного турнира.
// Клиент должен подключаться к /ws/tournaments/{tournamentID}
// @Summary Подписка на обновления турнира
// @Description STANDINGS_UPDATED, MATCH_UPDATED, SCHEDULE_UPDATED, TOURNAMENT_UPDATED, RESYNC
// @Tags realtime
// @Param tournamentID path string true "Tournament ID"
// @Success 101 "Switching Protocols"
// @Failure 404 {object} map[string]string "Турнир не найден"
// @Router /ws/tournaments/{tournamentID} [get]
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")
	if _, err := uuid.Parse(tournamentID); err != nil {
		http.Error(w, "invalid tournamentID", http.StatusBadRequest)
		return
	}
	if _, ok := h.store.TournamentByID(tournamentID); !ok {
		http.NotFound(w, r)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отправляет HTTP ошибку клиенту.
		h.logger.Warn("websocket upgrade failed", slog.String("tournament_id", tournamentID), slog.Any("error", err))
		return
	}

	client := &realtime.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: realtime.RoomForTournament(tournamentID),
	}
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()

	h.logger.Debug("websocket client registered", slog.String("room", client.Room))
}
