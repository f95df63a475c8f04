package cache

import (
	"context"
	"time"
)

// Cache is a byte-payload cache with TTL. The app layer uses it as a
// read-through cache for catalog listings and invalidates on writes.
type Cache interface {
	// Get returns the cached payload for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores payload under key for the given TTL.
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error

	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	Close() error
}

// noopCache is used when no Redis address is configured. Every Get is a
// miss, so the app always falls through to the database.
type noopCache struct{}

// NewNoop returns a Cache that stores nothing.
func NewNoop() Cache {
	return noopCache{}
}

func (noopCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (noopCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (noopCache) Delete(context.Context, ...string) error                  { return nil }
func (noopCache) Close() error                                             { return nil }
