package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civicpulse/request-notifier/internal/domain"
)

type pgEventRepository struct {
	pool *pgxpool.Pool
}

// NewPgEventRepository returns an EventRepository over request_status_events.
func NewPgEventRepository(pool *pgxpool.Pool) EventRepository {
	return &pgEventRepository{pool: pool}
}

func (r *pgEventRepository) Get(ctx context.Context, id string) (*domain.StoredEvent, error) {
	var (
		e             domain.StoredEvent
		before, after []byte
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, request_id, before, after, created_at, processed_at
		FROM request_status_events WHERE id = $1`, id).
		Scan(&e.EventID, &e.RequestID, &before, &after, &e.CreatedAt, &e.ProcessedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}

	if err := json.Unmarshal(before, &e.Before); err != nil {
		return nil, fmt.Errorf("decode before image: %w", err)
	}
	if err := json.Unmarshal(after, &e.After); err != nil {
		return nil, fmt.Errorf("decode after image: %w", err)
	}
	return &e, nil
}

func (r *pgEventRepository) MarkProcessed(ctx context.Context, id string, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE request_status_events
		SET processed_at = $1
		WHERE id = $2 AND processed_at IS NULL`, at, id)
	if err != nil {
		return fmt.Errorf("mark event processed: %w", err)
	}
	return nil
}

func (r *pgEventRepository) FindUnprocessed(ctx context.Context, olderThan time.Time, limit int) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text
		FROM request_status_events
		WHERE processed_at IS NULL
		  AND created_at <= $1
		ORDER BY created_at ASC
		LIMIT $2`, olderThan, limit)
	if err != nil {
		return nil, fmt.Errorf("find unprocessed events: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
