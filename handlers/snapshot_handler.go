package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Dosada05/chess-tournament/state"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type SnapshotHandler struct {
	store *state.Store
	db    Pinger
}

func NewSnapshotHandler(store *state.Store, db Pinger) *SnapshotHandler {
	return &SnapshotHandler{store: store, db: db}
}

// Snapshot обрабатывает GET /api/snapshot
// @Summary Полный снимок состояния
// @Description Все турниры, игроки, регистрации и партии одним ответом (для первичной загрузки клиента).
// @Tags snapshot
// @Produce json
// @Success 200 {object} state.Snapshot
// @Router /api/snapshot [get]
func (h *SnapshotHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, h.store.Snapshot(), nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Health обрабатывает GET /health
// @Summary Проверка состояния
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (h *SnapshotHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	resp := jsonResponse{"status": "ok", "snapshot_loaded_at": h.store.Snapshot().LoadedAt}
	if err := h.db.PingContext(ctx); err != nil {
		status = http.StatusServiceUnavailable
		resp["status"] = "degraded"
		resp["database"] = err.Error()
	}
	if err := writeJSON(w, status, resp, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
