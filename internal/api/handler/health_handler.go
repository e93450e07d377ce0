package handler

import (
	"context"
	"net/http"
	"time"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler { return &HealthHandler{db: db} }

// Health handles GET /health
//
// @Summary  Liveness probe
// @Tags     system
// @Produce  json
// @Success  200  {object}  map[string]string
// @Router   /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready handles GET /ready
//
// @Summary  Readiness probe (database reachable)
// @Tags     system
// @Produce  json
// @Success  200  {object}  map[string]string
// @Failure  503  {object}  map[string]string
// @Router   /ready [get]
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			respondError(w, http.StatusServiceUnavailable, "database unreachable")
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
