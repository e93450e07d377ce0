package worker

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/civicpulse/request-notifier/internal/domain"
	"github.com/civicpulse/request-notifier/internal/queue"
	"github.com/civicpulse/request-notifier/internal/repository"
)

// EventHandler is satisfied by *service.StatusChangeNotifier.
type EventHandler interface {
	Handle(ctx context.Context, ev domain.ChangeEvent) domain.Outcome
}

// Worker is a single goroutine that continuously pulls event IDs from the
// queue, loads the event from the outbox, hands it to the notifier and
// marks it processed.
type Worker struct {
	id      int
	q       *queue.EventQueue
	events  repository.EventRepository
	handler EventHandler
	logger  *zap.Logger
}

func NewWorker(
	id int,
	q *queue.EventQueue,
	events repository.EventRepository,
	handler EventHandler,
	logger *zap.Logger,
) *Worker {
	return &Worker{id: id, q: q, events: events, handler: handler, logger: logger}
}

// Run blocks until ctx is cancelled, processing one queue item per iteration.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("worker started", zap.Int("id", w.id))
	for {
		item, ok := w.q.Dequeue(ctx)
		if !ok {
			w.logger.Info("worker stopping", zap.Int("id", w.id))
			return
		}
		// An event already dequeued runs to completion even during shutdown.
		w.process(context.WithoutCancel(ctx), item)
	}
}

func (w *Worker) process(ctx context.Context, item queue.Item) {
	log := w.logger.With(zap.String("event_id", item.EventID))

	ev, err := w.events.Get(ctx, item.EventID)
	if errors.Is(err, domain.ErrNotFound) {
		log.Warn("event not found in outbox")
		return
	}
	if err != nil {
		// Left unprocessed; the sweeper will offer it again.
		log.Error("failed to load event", zap.Error(err))
		return
	}

	// The listener and the sweeper can both offer the same event.
	if ev.ProcessedAt != nil {
		log.Debug("event already processed")
		return
	}

	outcome := w.handler.Handle(ctx, ev.ChangeEvent)

	if err := w.events.MarkProcessed(ctx, ev.EventID, time.Now().UTC()); err != nil {
		log.Error("failed to mark event processed", zap.Error(err))
		return
	}
	log.Debug("event processed", zap.String("outcome", string(outcome)))
}
