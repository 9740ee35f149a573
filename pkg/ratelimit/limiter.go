package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter defines the interface for rate limiting
type Limiter interface {
	// Allow checks if a request is allowed under the current rate limit
	Allow() bool
	// Wait blocks until the rate limit allows another request or the
	// context is cancelled
	Wait(ctx context.Context) error
}

// tokenLimiter wraps golang.org/x/time/rate behind the Limiter interface
type tokenLimiter struct {
	limiter *rate.Limiter
}

// NewPerMinute creates a limiter that admits n requests per minute with a
// burst of one. n <= 0 returns an unlimited limiter.
func NewPerMinute(n int) Limiter {
	if n <= 0 {
		return NewUnlimited()
	}
	interval := time.Minute / time.Duration(n)
	return &tokenLimiter{
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// NewUnlimited creates a limiter that never blocks
func NewUnlimited() Limiter {
	return &tokenLimiter{
		limiter: rate.NewLimiter(rate.Inf, 1),
	}
}

func (t *tokenLimiter) Allow() bool {
	return t.limiter.Allow()
}

func (t *tokenLimiter) Wait(ctx context.Context) error {
	return t.limiter.Wait(ctx)
}
