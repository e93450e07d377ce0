package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/civicpulse/request-notifier/internal/queue"
)

// ListenerHooks carries optional metric callbacks.
type ListenerHooks struct {
	OnConnected func(up bool)
	OnDropped   func()
}

// ChangeListener receives outbox event IDs over Postgres LISTEN/NOTIFY and
// enqueues them. It holds one connection taken out of the pool for its whole
// lifetime and reconnects with exponential backoff when it is lost.
type ChangeListener struct {
	pool    *pgxpool.Pool
	channel string
	q       *queue.EventQueue
	hooks   ListenerHooks
	logger  *zap.Logger
}

func NewChangeListener(
	pool *pgxpool.Pool,
	channel string,
	q *queue.EventQueue,
	hooks ListenerHooks,
	logger *zap.Logger,
) *ChangeListener {
	if hooks.OnConnected == nil {
		hooks.OnConnected = func(bool) {}
	}
	return &ChangeListener{pool: pool, channel: channel, q: q, hooks: hooks, logger: logger}
}

// Run listens until ctx is cancelled.
func (l *ChangeListener) Run(ctx context.Context) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 0 // never give up while the service runs

	l.logger.Info("change listener started", zap.String("channel", l.channel))

	for {
		err := l.listen(ctx, b.Reset)
		l.hooks.OnConnected(false)
		if ctx.Err() != nil {
			l.logger.Info("change listener stopping")
			return
		}

		wait := b.NextBackOff()
		l.logger.Warn("change listener disconnected",
			zap.Error(err), zap.Duration("retry_in", wait))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			l.logger.Info("change listener stopping")
			return
		case <-timer.C:
		}
	}
}

func (l *ChangeListener) listen(ctx context.Context, onConnected func()) error {
	pooled, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	// A listening connection must never be handed to another caller.
	conn := pooled.Hijack()
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	onConnected()
	l.hooks.OnConnected(true)
	l.logger.Info("listening for change events", zap.String("channel", l.channel))

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait for notification: %w", err)
		}
		if n.Payload == "" {
			continue
		}
		offer(l.q, n.Payload, l.hooks.OnDropped, l.logger)
	}
}
