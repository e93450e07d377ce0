package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/civicpulse/request-notifier/internal/api/handler"
	apimw "github.com/civicpulse/request-notifier/internal/api/middleware"
	"github.com/civicpulse/request-notifier/internal/queue"
)

// NewRouter wires the chi router, attaches all middleware, and registers
// every route. It is the single source of truth for the HTTP surface area.
func NewRouter(
	notifier handler.Notifier,
	q *queue.EventQueue,
	db handler.Pinger,
	reg prometheus.Gatherer,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(chimw.RequestSize(1 << 20))
	r.Use(apimw.CorrelationID)
	r.Use(apimw.RequestLogger(logger, "/health", "/ready", "/metrics"))

	eh := handler.NewEventHandler(notifier, logger)
	mh := handler.NewMetricsHandler(q)
	hh := handler.NewHealthHandler(db)

	r.Get("/health", hh.Health)
	r.Get("/ready", hh.Ready)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/events/request-updated", eh.RequestUpdated)
		r.Post("/events/pubsub", eh.PubSubPush)
		r.Get("/metrics", mh.GetMetrics)
	})

	return r
}
