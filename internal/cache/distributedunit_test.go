package cache

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valkey-io/valkey-go"
)

func TestNewDistributed(t *testing.T) {
	cache, err := NewDistributed[CacheTestDummy](nil, 5*time.Minute)
	require.NoError(t, err)
	assert.NotNil(t, cache)
	assert.Equal(t, 5*time.Minute, cache.ttl)
}

func TestNewDistributed_TTL(t *testing.T) {
	tests := []struct {
		name    string
		ttl     time.Duration
		wantErr bool
	}{
		{name: "sub-second", ttl: 500 * time.Millisecond},
		{name: "one millisecond", ttl: time.Millisecond},
		{name: "below resolution", ttl: 500 * time.Microsecond, wantErr: true},
		{name: "zero", ttl: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDistributed[CacheTestDummy](nil, tt.ttl)
			if tt.wantErr {
				assert.ErrorContains(t, err, "TTL must be at least 1ms")
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestDistributedStorageKey(t *testing.T) {
	cache, err := NewDistributed[CacheTestDummy](nil, 5*time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name string
		key  string
	}{
		{name: "single location key", key: "fulfillmentLocation_bqcjg7qbvep_Bearer X"},
		{name: "list key", key: "fulfillmentLocations_showArchived=false_Bearer X"},
		{name: "empty key", key: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storageKey := cache.storageKey(tt.key)

			assert.True(t, strings.HasPrefix(storageKey, storageKeyPrefix))
			assert.Len(t, storageKey, len(storageKeyPrefix)+64)
			assert.NotContains(t, storageKey, "Bearer")
			assert.Equal(t, storageKey, cache.storageKey(tt.key), "storage key must be stable")
		})
	}
}

func TestDistributedStorageKey_DistinctCredentials(t *testing.T) {
	cache, err := NewDistributed[CacheTestDummy](nil, 5*time.Minute)
	require.NoError(t, err)

	a := cache.storageKey("fulfillmentLocation_189_Bearer A")
	b := cache.storageKey("fulfillmentLocation_189_Bearer B")

	assert.NotEqual(t, a, b)
}

func TestStaticCredentialsFn(t *testing.T) {
	fn := StaticCredentialsFn("default", "secret")

	creds, err := fn(valkey.AuthCredentialsContext{})
	require.NoError(t, err)

	assert.Equal(t, "default", creds.Username)
	assert.Equal(t, "secret", creds.Password)
}
