package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/civicpulse/request-notifier/internal/queue"
	"github.com/civicpulse/request-notifier/internal/repository"
)

// OutboxSweeper polls the outbox for events no worker has finished and
// offers them to the queue again.
//
// It covers notifications missed while the listener was disconnected, events
// dropped on a full queue and work interrupted by a crash. Only events older
// than grace are swept, so the listener gets the first chance at fresh ones.
type OutboxSweeper struct {
	events    repository.EventRepository
	q         *queue.EventQueue
	interval  time.Duration
	grace     time.Duration
	batch     int
	onDropped func()
	logger    *zap.Logger
	now       func() time.Time
}

func NewOutboxSweeper(
	events repository.EventRepository,
	q *queue.EventQueue,
	interval, grace time.Duration,
	batch int,
	onDropped func(),
	logger *zap.Logger,
) *OutboxSweeper {
	return &OutboxSweeper{
		events: events, q: q, interval: interval, grace: grace, batch: batch,
		onDropped: onDropped, logger: logger, now: time.Now,
	}
}

// Run sweeps once immediately to pick up a backlog from before startup, then
// every interval. Stops cleanly when ctx is cancelled.
func (s *OutboxSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("outbox sweeper started",
		zap.Duration("interval", s.interval), zap.Duration("grace", s.grace))

	s.Sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("outbox sweeper stopping")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep enqueues one batch of stale unprocessed events and returns how many
// were accepted.
func (s *OutboxSweeper) Sweep(ctx context.Context) int {
	ids, err := s.events.FindUnprocessed(ctx, s.now().UTC().Add(-s.grace), s.batch)
	if err != nil {
		s.logger.Error("outbox sweep error", zap.Error(err))
		return 0
	}

	enqueued := 0
	for _, id := range ids {
		if !offer(s.q, id, s.onDropped, s.logger) {
			// Queue is full; the rest wait for the next tick.
			break
		}
		enqueued++
	}

	if enqueued > 0 {
		s.logger.Info("re-enqueued unprocessed events", zap.Int("count", enqueued))
	}
	return enqueued
}
