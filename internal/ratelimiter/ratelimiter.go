// Package ratelimiter throttles provider operations with a token bucket.
package ratelimiter

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// Limiter wraps golang.org/x/time/rate for the backend provider.
//
// A nil *Limiter is valid and never throttles, so callers can hold an
// optional limiter without branching on configuration.
//
// Thread safety:
// All methods are safe for concurrent use.
type Limiter struct {
	limiter *rate.Limiter
}

// New creates a Limiter admitting requestsPerSecond operations on average
// with bursts of up to burst operations.
//
// Special cases:
//   - requestsPerSecond <= 0: returns nil (no throttling)
//   - burst <= 0: burst defaults to the ceiling of requestsPerSecond
func New(requestsPerSecond float64, burst int) *Limiter {
	if requestsPerSecond <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = int(requestsPerSecond)
		if float64(burst) < requestsPerSecond {
			burst++
		}
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst)}
}

// Wait blocks until the operation op may proceed or ctx is done.
//
// The returned error wraps the context error and names the operation that
// was waiting.
func (l *Limiter) Wait(ctx context.Context, op string) error {
	if l == nil {
		return ctx.Err()
	}
	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait for %s: %w", op, err)
	}
	return nil
}

// Allow reports whether one operation may proceed right now, consuming a
// token when it does.
func (l *Limiter) Allow() bool {
	if l == nil {
		return true
	}
	return l.limiter.Allow()
}

// SetLimit changes the sustained rate. The burst is left unchanged.
func (l *Limiter) SetLimit(requestsPerSecond float64) {
	if l == nil {
		return
	}
	if requestsPerSecond <= 0 {
		l.limiter.SetLimit(rate.Inf)
		return
	}
	l.limiter.SetLimit(rate.Limit(requestsPerSecond))
}

// Tokens returns the number of tokens currently available.
func (l *Limiter) Tokens() float64 {
	if l == nil {
		return float64(rate.Inf)
	}
	return l.limiter.Tokens()
}

// Burst returns the bucket capacity, or 0 for a nil limiter.
func (l *Limiter) Burst() int {
	if l == nil {
		return 0
	}
	return l.limiter.Burst()
}
