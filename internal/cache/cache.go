package cache

import (
	"context"
)

// PayloadCache defines the interface for response payload caching
// implementations. Entries are only ever replaced or left to expire.
// The generic type T represents the payload type being cached.
type PayloadCache[T any] interface {
	// Get retrieves a payload from the cache.
	// Returns the payload, whether it was found, and any error.
	Get(ctx context.Context, key string) (T, bool, error)

	// Set stores a payload in the cache, replacing any existing value.
	Set(ctx context.Context, key string, payload T) error

	// Close releases any resources held by the cache.
	Close() error
}
