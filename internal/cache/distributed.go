package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"
)

// storageKeyPrefix namespaces entries written by this client in a shared
// Valkey keyspace.
const storageKeyPrefix = "fulfillmentlocation:"

// Distributed implements PayloadCache using Valkey with server-assisted
// client-side caching.
// The generic type T represents the payload type being cached.
type Distributed[T any] struct {
	client valkey.Client
	ttl    time.Duration
}

// NewDistributed creates a new Valkey-backed cache with server-assisted
// client-side caching. The ttl parameter specifies how long payloads remain
// valid in the cache.
func NewDistributed[T any](valkeyClient valkey.Client, ttl time.Duration) (*Distributed[T], error) {
	if ttl < time.Millisecond {
		return nil, fmt.Errorf("distributed cache TTL must be at least 1ms, got %s", ttl)
	}

	return &Distributed[T]{
		client: valkeyClient,
		ttl:    ttl,
	}, nil
}

// storageKey hashes the logical key. Logical keys embed the caller's
// authorization, which must not be written to the server in clear.
func (d *Distributed[T]) storageKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return storageKeyPrefix + hex.EncodeToString(sum[:])
}

// Get retrieves a payload from the cache using server-assisted client-side
// caching. Returns the payload, whether it was found, and any error.
func (d *Distributed[T]) Get(ctx context.Context, key string) (T, bool, error) {
	var zero T

	// The .Cache() method enables client-side caching with server tracking
	cmd := d.client.B().Get().Key(d.storageKey(key)).Cache()
	result := d.client.DoCache(ctx, cmd, d.ttl)

	if err := result.Error(); err != nil {
		// Key not found is not an error in our semantics
		if valkey.IsValkeyNil(err) {
			return zero, false, nil
		}
		return zero, false, fmt.Errorf("failed to get cached value: %w", err)
	}

	val, err := result.ToString()
	if err != nil {
		return zero, false, fmt.Errorf("failed to convert cached value to string: %w", err)
	}

	var payload T
	if err := json.Unmarshal([]byte(val), &payload); err != nil {
		return zero, false, fmt.Errorf("failed to unmarshal cached payload: %w", err)
	}

	return payload, true, nil
}

// Set stores a payload in the cache with the configured TTL.
// The payload is JSON-serialized before storage.
func (d *Distributed[T]) Set(ctx context.Context, key string, payload T) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	cmd := d.client.B().Set().Key(d.storageKey(key)).Value(string(data)).PxMilliseconds(d.ttl.Milliseconds()).Build()
	if err := d.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to set cached value: %w", err)
	}
	return nil
}

// Close releases resources associated with the cache client.
func (d *Distributed[T]) Close() error {
	d.client.Close()
	return nil
}

// StaticCredentialsFn returns an AuthCredentialsFn that always returns the
// configured username and password.
func StaticCredentialsFn(username, password string) func(valkey.AuthCredentialsContext) (valkey.AuthCredentials, error) {
	return func(valkey.AuthCredentialsContext) (valkey.AuthCredentials, error) {
		return valkey.AuthCredentials{
			Username: username,
			Password: password,
		}, nil
	}
}
