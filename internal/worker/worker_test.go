package worker_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/civicpulse/request-notifier/internal/domain"
	"github.com/civicpulse/request-notifier/internal/queue"
	"github.com/civicpulse/request-notifier/internal/repository"
	"github.com/civicpulse/request-notifier/internal/worker"
)

type recordingHandler struct {
	mu     sync.Mutex
	events []domain.ChangeEvent
	done   chan struct{}
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{done: make(chan struct{}, 16)}
}

func (h *recordingHandler) Handle(_ context.Context, ev domain.ChangeEvent) domain.Outcome {
	h.mu.Lock()
	h.events = append(h.events, ev)
	h.mu.Unlock()
	h.done <- struct{}{}
	return domain.OutcomeSent
}

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.events)
}

func changeEvent(id string) domain.ChangeEvent {
	return domain.ChangeEvent{
		EventID:   id,
		RequestID: "req-" + id,
		Before:    domain.ServiceRequest{Status: domain.StatusInProgress},
		After:     domain.ServiceRequest{Status: domain.StatusCompleted, UserID: json.RawMessage(`"/users/u1"`)},
	}
}

func waitFor(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for handler")
	}
}

func TestPool_ProcessesAndMarksEvents(t *testing.T) {
	events := repository.NewMockEventRepository()
	events.Add(changeEvent("e1"), time.Now())
	q := queue.New(10)
	h := newRecordingHandler()

	ctx, cancel := context.WithCancel(context.Background())
	pool := worker.NewPool(2, q, events, h, zap.NewNop())
	pool.Start(ctx)

	if err := q.Enqueue(queue.Item{EventID: "e1"}); err != nil {
		t.Fatal(err)
	}
	waitFor(t, h.done)

	cancel()
	pool.Wait()

	if !events.IsProcessed("e1") {
		t.Fatal("expected event to be marked processed")
	}
	if h.count() != 1 {
		t.Fatalf("expected one handled event, got %d", h.count())
	}
}

func TestPool_SkipsProcessedAndUnknownEvents(t *testing.T) {
	events := repository.NewMockEventRepository()
	events.Add(changeEvent("e1"), time.Now())
	_ = events.MarkProcessed(context.Background(), "e1", time.Now())
	events.Add(changeEvent("e2"), time.Now())
	q := queue.New(10)
	h := newRecordingHandler()

	ctx, cancel := context.WithCancel(context.Background())
	pool := worker.NewPool(1, q, events, h, zap.NewNop())
	pool.Start(ctx)

	// A single worker drains in order, so once e2 is handled the two
	// earlier items have been looked at and skipped.
	for _, id := range []string{"e1", "missing", "e2"} {
		if err := q.Enqueue(queue.Item{EventID: id}); err != nil {
			t.Fatal(err)
		}
	}
	waitFor(t, h.done)

	cancel()
	pool.Wait()

	if h.count() != 1 {
		t.Fatalf("expected only e2 to be handled, got %d events", h.count())
	}
}

func TestOutboxSweeper_Sweep(t *testing.T) {
	now := time.Now()
	events := repository.NewMockEventRepository()
	events.Add(changeEvent("old"), now.Add(-time.Minute))
	events.Add(changeEvent("fresh"), now)
	events.Add(changeEvent("done"), now.Add(-time.Minute))
	_ = events.MarkProcessed(context.Background(), "done", now)

	q := queue.New(10)
	sweeper := worker.NewOutboxSweeper(events, q, time.Hour, 15*time.Second, 100, nil, zap.NewNop())

	if got := sweeper.Sweep(context.Background()); got != 1 {
		t.Fatalf("expected one event swept, got %d", got)
	}
	item, ok := q.Dequeue(context.Background())
	if !ok || item.EventID != "old" {
		t.Fatalf("expected old event enqueued, got %+v", item)
	}
}

func TestOutboxSweeper_StopsWhenQueueFull(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	events := repository.NewMockEventRepository()
	for _, id := range []string{"a", "b", "c"} {
		events.Add(changeEvent(id), past)
	}

	dropped := 0
	q := queue.New(1)
	sweeper := worker.NewOutboxSweeper(events, q, time.Hour, time.Second, 100, func() { dropped++ }, zap.NewNop())

	if got := sweeper.Sweep(context.Background()); got != 1 {
		t.Fatalf("expected one accepted event, got %d", got)
	}
	if dropped != 1 {
		t.Fatalf("expected the sweep to stop after the first drop, got %d drops", dropped)
	}
}
