package ratelimiter

import (
	"context"

	"golang.org/x/time/rate"
)

// GatewayLimiter is a token bucket placed in front of the push gateway.
// Burst is set equal to the rate so no extra burst capacity is allowed
// beyond the configured per-second maximum.
type GatewayLimiter struct {
	limiter *rate.Limiter
}

// New creates a GatewayLimiter allowing ratePerSec sends per second.
func New(ratePerSec int) *GatewayLimiter {
	return &GatewayLimiter{
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec),
	}
}

// Wait blocks until a token is granted.
// Returns a non-nil error only if ctx is cancelled while waiting.
func (l *GatewayLimiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}
