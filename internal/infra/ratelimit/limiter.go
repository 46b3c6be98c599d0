// Package ratelimit enforces fixed-window quotas on top of the counter
// store.
package ratelimit

import (
	"context"
	"time"

	"herald/internal/domain"
	"herald/internal/infra/counter"
)

// FixedWindow counts first and compares after: the increment happens
// even for a call that ends up rejected, so a full window stays full
// until its TTL elapses. The window is anchored to first use, not the
// calendar.
type FixedWindow struct {
	store counter.Store
}

func NewFixedWindow(store counter.Store) *FixedWindow {
	return &FixedWindow{store: store}
}

// Allow consumes one slot for key and reports whether the call is
// within the limit. A non-positive limit or window rejects immediately
// without touching the store.
func (l *FixedWindow) Allow(ctx context.Context, key string, limit int, window time.Duration) (domain.RateLimitDecision, error) {
	if limit <= 0 || window <= 0 {
		return domain.RateLimitDecision{Allowed: false, Limit: limit}, nil
	}
	count, err := l.store.Increment(ctx, key, window)
	if err != nil {
		return domain.RateLimitDecision{}, err
	}
	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return domain.RateLimitDecision{
		Allowed:   count <= int64(limit),
		Limit:     limit,
		Remaining: remaining,
	}, nil
}

var _ domain.RateLimiter = (*FixedWindow)(nil)
