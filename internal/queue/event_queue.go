package queue

import (
	"context"

	"github.com/civicpulse/request-notifier/internal/domain"
)

// EventQueue is a bounded FIFO of change events awaiting a worker.
// Events are independent, so there is no ordering beyond arrival.
type EventQueue struct {
	items chan Item
}

func New(capacity int) *EventQueue {
	return &EventQueue{items: make(chan Item, capacity)}
}

// Enqueue is non-blocking: if the queue is full, ErrQueueFull is returned
// immediately. Dropped events stay unprocessed in the outbox and are picked
// up by the sweeper.
func (q *EventQueue) Enqueue(item Item) error {
	select {
	case q.items <- item:
		return nil
	default:
		return domain.ErrQueueFull
	}
}

// Dequeue blocks until an item is available or ctx is cancelled.
// Returns (Item{}, false) when ctx is cancelled (graceful shutdown signal).
func (q *EventQueue) Dequeue(ctx context.Context) (Item, bool) {
	select {
	case item := <-q.items:
		return item, true
	case <-ctx.Done():
		return Item{}, false
	}
}

// Depth returns the number of items waiting.
func (q *EventQueue) Depth() int {
	return len(q.items)
}

// Capacity returns the configured bound.
func (q *EventQueue) Capacity() int {
	return cap(q.items)
}
