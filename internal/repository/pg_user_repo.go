package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civicpulse/request-notifier/internal/domain"
)

type pgUserRepository struct {
	pool *pgxpool.Pool
}

// NewPgUserRepository returns a UserRepository backed by PostgreSQL.
func NewPgUserRepository(pool *pgxpool.Pool) UserRepository {
	return &pgUserRepository{pool: pool}
}

func (r *pgUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var (
		u      domain.User
		token  *string
		active *bool
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id, device_token, device_active
		FROM users WHERE id = $1`, id).Scan(&u.ID, &token, &active)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	// Both columns NULL means the profile never registered a device.
	if token != nil || active != nil {
		u.DeviceInfo = &domain.DeviceInfo{}
		if token != nil {
			u.DeviceInfo.Token = *token
		}
		if active != nil {
			u.DeviceInfo.IsActive = *active
		}
	}
	return &u, nil
}
