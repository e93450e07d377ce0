package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/civicpulse/request-notifier/internal/domain"
	"github.com/civicpulse/request-notifier/internal/service"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	EventsHandled   *prometheus.CounterVec
	GatewayRequests *prometheus.CounterVec
	GatewayLatency  prometheus.Histogram
	EventsDropped   prometheus.Counter
	ListenerUp      prometheus.Gauge
}

// New registers all instruments with the given Prometheus registerer and
// returns the populated Metrics struct.
// Using a custom registry (instead of prometheus.DefaultRegisterer) keeps
// tests isolated and avoids global state.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		EventsHandled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "status_events_handled_total",
			Help: "Change events handled by the status notifier, by outcome.",
		}, []string{"outcome"}),

		GatewayRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "push_gateway_requests_total",
			Help: "Push gateway send attempts, by result.",
		}, []string{"result"}),

		GatewayLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "push_gateway_request_seconds",
			Help:    "Latency of a single push gateway send.",
			Buckets: prometheus.DefBuckets,
		}),

		EventsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "event_queue_dropped_total",
			Help: "Change events not enqueued because the queue was full.",
		}),

		ListenerUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "event_listener_up",
			Help: "1 while the database LISTEN connection is established.",
		}),
	}

	// Pre-create every outcome series so dashboards see zeros.
	for _, o := range domain.Outcomes() {
		m.EventsHandled.WithLabelValues(string(o))
	}

	reg.MustRegister(
		m.EventsHandled,
		m.GatewayRequests,
		m.GatewayLatency,
		m.EventsDropped,
		m.ListenerUp,
	)

	return m
}

// RegisterQueueDepth exposes the live queue depth, read at scrape time.
func RegisterQueueDepth(reg prometheus.Registerer, depth func() int) {
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "event_queue_depth",
		Help: "Current number of change events waiting for a worker.",
	}, func() float64 { return float64(depth()) }))
}

// NotifierHooks returns the metric callbacks expected by service.MetricHooks.
// Centralises the prometheus observation calls so the notifier stays import-free.
func (m *Metrics) NotifierHooks() service.MetricHooks {
	return service.MetricHooks{
		OnOutcome: func(o domain.Outcome) {
			m.EventsHandled.WithLabelValues(string(o)).Inc()
		},
		OnDelivery: func(latency time.Duration, err error) {
			result := "ok"
			if err != nil {
				result = "error"
			}
			m.GatewayRequests.WithLabelValues(result).Inc()
			m.GatewayLatency.Observe(latency.Seconds())
		},
	}
}
