package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisLedgerPrefix = "request-notifier:delivery:"

type redisDeliveryLedger struct {
	rdb          *redis.Client
	ttl          time.Duration
	claimTimeout time.Duration
}

// NewRedisDeliveryLedger returns a DeliveryLedger whose sent keys expire after
// ttl, bounding how long a redelivered update is recognised as a duplicate.
// A claim lives for claimTimeout until it is marked sent.
func NewRedisDeliveryLedger(rdb *redis.Client, ttl, claimTimeout time.Duration) DeliveryLedger {
	return &redisDeliveryLedger{rdb: rdb, ttl: ttl, claimTimeout: claimTimeout}
}

func (l *redisDeliveryLedger) Claim(ctx context.Context, key, requestID string) (bool, error) {
	ok, err := l.rdb.SetNX(ctx, redisLedgerPrefix+key, "claimed:"+requestID, l.claimTimeout).Result()
	if err != nil {
		return false, fmt.Errorf("claim delivery: %w", err)
	}
	return ok, nil
}

func (l *redisDeliveryLedger) MarkSent(ctx context.Context, key string) error {
	if err := l.rdb.Set(ctx, redisLedgerPrefix+key, "sent", l.ttl).Err(); err != nil {
		return fmt.Errorf("mark delivery sent: %w", err)
	}
	return nil
}
