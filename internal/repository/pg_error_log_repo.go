package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civicpulse/request-notifier/internal/domain"
)

type pgErrorLogRepository struct {
	pool *pgxpool.Pool
}

// NewPgErrorLogRepository returns an ErrorLogRepository over notification_errors.
func NewPgErrorLogRepository(pool *pgxpool.Pool) ErrorLogRepository {
	return &pgErrorLogRepository{pool: pool}
}

func (r *pgErrorLogRepository) Append(ctx context.Context, rec *domain.NotificationErrorRecord) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO notification_errors
			(id, request_id, user_id, error_message, stack, old_status, new_status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		rec.ID, rec.RequestID, rec.UserID, rec.ErrorMessage, rec.Stack,
		rec.OldStatus, rec.NewStatus, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification error: %w", err)
	}
	return nil
}
