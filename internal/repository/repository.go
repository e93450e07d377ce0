package repository

import (
	"context"
	"time"

	"github.com/civicpulse/request-notifier/internal/domain"
)

// UserRepository reads the delivery subset of user profiles.
type UserRepository interface {
	// GetByID returns domain.ErrNotFound when no user has the given bare ID.
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// EventRepository is the change-event outbox written by the database trigger.
type EventRepository interface {
	Get(ctx context.Context, id string) (*domain.StoredEvent, error)
	MarkProcessed(ctx context.Context, id string, at time.Time) error
	// FindUnprocessed returns IDs of events created before olderThan that
	// no worker has finished, oldest first.
	FindUnprocessed(ctx context.Context, olderThan time.Time, limit int) ([]string, error)
}

// ErrorLogRepository is the append-only sink for failed deliveries.
type ErrorLogRepository interface {
	Append(ctx context.Context, rec *domain.NotificationErrorRecord) error
}

// DeliveryLedger records which updates have already been delivered.
//
// A key moves from claimed to sent. A claim that is never marked sent (the
// process died between claim and send) goes stale after the ledger's claim
// timeout and can then be claimed again.
type DeliveryLedger interface {
	// Claim returns true when key is unclaimed or holds only a stale claim.
	Claim(ctx context.Context, key, requestID string) (bool, error)
	// MarkSent records that the gateway accepted the message for key.
	MarkSent(ctx context.Context, key string) error
}
