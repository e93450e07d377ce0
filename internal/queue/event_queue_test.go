package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/civicpulse/request-notifier/internal/domain"
	"github.com/civicpulse/request-notifier/internal/queue"
)

func TestEventQueue_FIFO(t *testing.T) {
	q := queue.New(10)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if err := q.Enqueue(queue.Item{EventID: id}); err != nil {
			t.Fatal(err)
		}
	}
	if q.Depth() != 3 {
		t.Fatalf("expected depth 3, got %d", q.Depth())
	}

	for _, want := range []string{"a", "b", "c"} {
		got, ok := q.Dequeue(ctx)
		if !ok {
			t.Fatal("expected item, got nothing")
		}
		if got.EventID != want {
			t.Fatalf("expected %s, got %s", want, got.EventID)
		}
	}
}

func TestEventQueue_Full(t *testing.T) {
	q := queue.New(1)
	if err := q.Enqueue(queue.Item{EventID: "1"}); err != nil {
		t.Fatal(err)
	}
	if err := q.Enqueue(queue.Item{EventID: "2"}); err != domain.ErrQueueFull {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	if q.Capacity() != 1 {
		t.Fatalf("expected capacity 1, got %d", q.Capacity())
	}
}

// TestEventQueue_ContextCancellation verifies Dequeue returns (_, false)
// when the context is cancelled while blocking.
func TestEventQueue_ContextCancellation(t *testing.T) {
	q := queue.New(1)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan bool, 1)
	go func() {
		_, ok := q.Dequeue(ctx)
		done <- ok
	}()

	cancel()

	select {
	case ok := <-done:
		if ok {
			t.Fatal("expected ok=false after cancellation")
		}
	case <-time.After(time.Second):
		t.Fatal("Dequeue did not return after cancellation")
	}
}
