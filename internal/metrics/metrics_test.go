package metrics_test

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/civicpulse/request-notifier/internal/domain"
	"github.com/civicpulse/request-notifier/internal/metrics"
)

func TestNotifierHooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	hooks := m.NotifierHooks()

	hooks.OnOutcome(domain.OutcomeSent)
	hooks.OnOutcome(domain.OutcomeSent)
	hooks.OnOutcome(domain.OutcomeNonTerminal)
	hooks.OnDelivery(20*time.Millisecond, nil)
	hooks.OnDelivery(30*time.Millisecond, errors.New("boom"))

	if got := testutil.ToFloat64(m.EventsHandled.WithLabelValues("sent")); got != 2 {
		t.Fatalf("expected sent=2, got %v", got)
	}
	if got := testutil.ToFloat64(m.EventsHandled.WithLabelValues("non_terminal")); got != 1 {
		t.Fatalf("expected non_terminal=1, got %v", got)
	}
	if got := testutil.ToFloat64(m.EventsHandled.WithLabelValues("failed")); got != 0 {
		t.Fatalf("expected failed=0, got %v", got)
	}
	if got := testutil.ToFloat64(m.GatewayRequests.WithLabelValues("ok")); got != 1 {
		t.Fatalf("expected ok=1, got %v", got)
	}
	if got := testutil.ToFloat64(m.GatewayRequests.WithLabelValues("error")); got != 1 {
		t.Fatalf("expected error=1, got %v", got)
	}
	if n := testutil.CollectAndCount(m.GatewayLatency); n != 1 {
		t.Fatalf("expected one latency histogram, got %d", n)
	}
}

func TestNew_PrecreatesOutcomeSeries(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	if n := testutil.CollectAndCount(m.EventsHandled); n != len(domain.Outcomes()) {
		t.Fatalf("expected %d outcome series, got %d", len(domain.Outcomes()), n)
	}
}

func TestRegisterQueueDepth(t *testing.T) {
	reg := prometheus.NewRegistry()
	depth := 3
	metrics.RegisterQueueDepth(reg, func() int { return depth })

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(families) != 1 || families[0].GetName() != "event_queue_depth" {
		t.Fatalf("unexpected families %v", families)
	}
	if got := families[0].GetMetric()[0].GetGauge().GetValue(); got != 3 {
		t.Fatalf("expected depth 3, got %v", got)
	}
}
