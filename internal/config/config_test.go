package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.NoError(t, err)

	assert.Equal(t, "https://fulfillmentlocation.trdlnk.cimpress.io", cfg.Client.URL)
	assert.Equal(t, 2*time.Second, cfg.Client.Timeout)
	assert.Equal(t, "memory", cfg.Cache.Type)
	assert.Equal(t, 4*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 5*time.Minute, cfg.Cache.SweepInterval)
	assert.True(t, cfg.Cache.Enabled())
	assert.False(t, cfg.Observe.Enabled)
	assert.Equal(t, 100, cfg.Transport.OutgoingHTTPMaxIdleConns)
}

func TestConfig_FromEnvironment(t *testing.T) {
	t.Setenv("FULFILLMENT_LOCATION_URL", "http://localhost:9090")
	t.Setenv("FULFILLMENT_LOCATION_TIMEOUT", "500ms")
	t.Setenv("CACHE_TTL", "10m")

	cfg, err := Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9090", cfg.Client.URL)
	assert.Equal(t, 500*time.Millisecond, cfg.Client.Timeout)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
}

func TestCacheConfig_Disabled(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"CACHE_TYPE": "none",
	}))
	require.NoError(t, err)

	assert.False(t, cfg.Cache.Enabled())
}

func TestValkeyConfig(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"CACHE_TYPE":      "valkey",
		"VALKEY_ADDRESS":  "localhost:6379",
		"VALKEY_USERNAME": "default",
	}))
	require.NoError(t, err)

	expected := ValkeyConfig{
		Address:  "localhost:6379",
		Username: "default",
		TLS:      true, // default
	}
	assert.Equal(t, expected, cfg.Cache.Valkey)
}

func TestValkeyConfig_TLSFalse(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"CACHE_TYPE":     "valkey",
		"VALKEY_ADDRESS": "localhost:6379",
		"VALKEY_TLS":     "false",
	}))
	require.NoError(t, err)

	assert.False(t, cfg.Cache.Valkey.TLS)
}

func TestConfig_Invalid(t *testing.T) {
	cases := []struct {
		name     string
		env      map[string]string
		contains string
	}{
		{
			name:     "valkey without address",
			env:      map[string]string{"CACHE_TYPE": "valkey"},
			contains: "VALKEY_ADDRESS required",
		},
		{
			name:     "valkey ttl below expiry resolution",
			env:      map[string]string{"CACHE_TYPE": "valkey", "VALKEY_ADDRESS": "localhost:6379", "CACHE_TTL": "500us"},
			contains: "CACHE_TTL must be at least 1ms",
		},
		{
			name:     "unknown cache type",
			env:      map[string]string{"CACHE_TYPE": "redis"},
			contains: "CACHE_TYPE must be one of",
		},
		{
			name:     "zero ttl",
			env:      map[string]string{"CACHE_TTL": "0s"},
			contains: "CACHE_TTL must be positive",
		},
		{
			name:     "relative url",
			env:      map[string]string{"FULFILLMENT_LOCATION_URL": "/v1"},
			contains: "must be absolute",
		},
		{
			name:     "negative timeout",
			env:      map[string]string{"FULFILLMENT_LOCATION_TIMEOUT": "-1s"},
			contains: "FULFILLMENT_LOCATION_TIMEOUT must be positive",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadFrom(context.Background(), envconfig.MapLookuper(tc.env))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.contains)
		})
	}
}

func TestLoad_ValkeySubSecondTTL(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"CACHE_TYPE":     "valkey",
		"VALKEY_ADDRESS": "localhost:6379",
		"CACHE_TTL":      "500ms",
	}))

	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, cfg.Cache.TTL)
}
