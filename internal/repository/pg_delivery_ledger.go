package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type pgDeliveryLedger struct {
	pool         *pgxpool.Pool
	claimTimeout time.Duration
}

// NewPgDeliveryLedger returns a DeliveryLedger over notification_deliveries.
// Sent keys never expire; unsent claims older than claimTimeout are reclaimable.
func NewPgDeliveryLedger(pool *pgxpool.Pool, claimTimeout time.Duration) DeliveryLedger {
	return &pgDeliveryLedger{pool: pool, claimTimeout: claimTimeout}
}

func (l *pgDeliveryLedger) Claim(ctx context.Context, key, requestID string) (bool, error) {
	tag, err := l.pool.Exec(ctx, `
		INSERT INTO notification_deliveries (dedup_key, request_id, claimed_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (dedup_key) DO UPDATE
		SET claimed_at = NOW(), request_id = EXCLUDED.request_id
		WHERE notification_deliveries.sent_at IS NULL
		  AND notification_deliveries.claimed_at < NOW() - make_interval(secs => $3)`,
		key, requestID, l.claimTimeout.Seconds())
	if err != nil {
		return false, fmt.Errorf("claim delivery: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (l *pgDeliveryLedger) MarkSent(ctx context.Context, key string) error {
	_, err := l.pool.Exec(ctx, `
		UPDATE notification_deliveries SET sent_at = NOW()
		WHERE dedup_key = $1`, key)
	if err != nil {
		return fmt.Errorf("mark delivery sent: %w", err)
	}
	return nil
}
