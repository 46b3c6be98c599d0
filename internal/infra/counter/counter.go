// Package counter provides a TTL-aware key/value store with atomic
// increment. It backs the rate limiter and doubles as a general
// ephemeral cache.
package counter

import (
	"context"
	"time"
)

// Store is the counter/KV contract shared by the memory and Redis
// backends. Increment is atomic under concurrent callers for the same
// key within one process; the Redis backend extends that guarantee
// across processes.
//
// A key whose TTL has elapsed behaves as if it never existed: Get
// reports a miss and the next Increment restarts at 1. A ttl <= 0
// stores the entry without expiry.
type Store interface {
	// Increment adds one to the counter at key, creating it with
	// count 1 and the given TTL when absent, and returns the result.
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// Get returns the raw stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)

	Set(ctx context.Context, key, value string, ttl time.Duration) error

	Delete(ctx context.Context, key string) error
}
