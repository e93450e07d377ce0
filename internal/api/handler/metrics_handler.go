package handler

import (
	"net/http"

	"github.com/civicpulse/request-notifier/internal/queue"
)

// MetricsHandler serves a human-readable JSON queue snapshot.
// Raw Prometheus metrics are available at /metrics via promhttp.
type MetricsHandler struct {
	q *queue.EventQueue
}

func NewMetricsHandler(q *queue.EventQueue) *MetricsHandler {
	return &MetricsHandler{q: q}
}

// GetMetrics handles GET /api/v1/metrics
//
// @Summary  Real-time event queue snapshot
// @Tags     metrics
// @Produce  json
// @Success  200  {object}  map[string]any
// @Router   /api/v1/metrics [get]
func (h *MetricsHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"queue": map[string]int{
			"depth":    h.q.Depth(),
			"capacity": h.q.Capacity(),
		},
	})
}
