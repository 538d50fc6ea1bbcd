package cache

import (
	"context"
	"time"
)

// Prefix namespaces gallery keys in a shared Redis.
const Prefix = "gallery:"

// memorySweep is how often the in-process cache evicts expired entries.
const memorySweep = time.Minute

// Store is a Cache that holds resources the caller must release.
type Store interface {
	Cache
	Close() error
}

// Open returns a Redis-backed store when redisURL is set and an in-process
// one otherwise.
func Open(ctx context.Context, redisURL string) (Store, error) {
	if redisURL == "" {
		return NewMemory(memorySweep), nil
	}
	r, err := NewRedisFromURL(ctx, redisURL, Prefix)
	if err != nil {
		return nil, err
	}
	return r, nil
}
