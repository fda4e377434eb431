package config

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Client    ClientConfig
	Cache     CacheConfig
	Observe   ObserveConfig
	Transport TransportConfig
}

// ClientConfig specifies how the remote fulfillment location service is
// reached.
type ClientConfig struct {
	URL     string        `env:"FULFILLMENT_LOCATION_URL, default=https://fulfillmentlocation.trdlnk.cimpress.io"`
	Timeout time.Duration `env:"FULFILLMENT_LOCATION_TIMEOUT, default=2s"`
}

type TransportConfig struct {
	OutgoingHTTPMaxIdleConns    int `env:"SERVER_OUTGOING_MAX_IDLE_CONNS, default=100"`
	OutgoingHTTPMaxConnsPerHost int `env:"SERVER_OUTGOING_MAX_CONNS_PER_HOST, default=20"`
}

// CacheConfig specifies cache configuration.
type CacheConfig struct {
	// Type selects the cache implementation: "memory" (default), "valkey", or
	// "none" to disable response caching.
	Type string `env:"CACHE_TYPE, default=memory"`

	// TTL is how long a cached response is served before it is fetched again.
	TTL time.Duration `env:"CACHE_TTL, default=4h"`

	// SweepInterval is the period of the background removal of expired
	// entries. Only used by the memory cache.
	SweepInterval time.Duration `env:"CACHE_SWEEP_INTERVAL, default=5m"`

	// Valkey holds distributed cache settings.
	Valkey ValkeyConfig
}

// ValkeyConfig specifies distributed cache configuration.
type ValkeyConfig struct {
	// Address is the Valkey server address (host:port).
	Address string `env:"VALKEY_ADDRESS"`

	// TLS enables TLS connection to Valkey. Defaults to true so the secure option
	// is the default.
	TLS bool `env:"VALKEY_TLS, default=true"`

	// Username for Valkey authentication.
	Username string `env:"VALKEY_USERNAME"`

	// Password for Valkey authentication.
	Password string `env:"VALKEY_PASSWORD"`
}

type ObserveConfig struct {
	SDKLogLevel                string `env:"OBSERVE_OTEL_LOG_LEVEL, default=info"`
	Enabled                    bool   `env:"OBSERVE_ENABLED, default=false"`
	MetricsEnabled             bool   `env:"OBSERVE_METRICS_ENABLED, default=true"`
	Type                       string `env:"OBSERVE_TYPE, default=grpc"`
	ServiceName                string `env:"OBSERVE_SERVICE_NAME, default=fulfillmentlocation-client"`
	TraceBatchTimeoutSeconds   int    `env:"OBSERVE_TRACE_BATCH_TIMEOUT_SECS, default=20"`
	MetricReadIntervalSeconds  int    `env:"OBSERVE_METRIC_READ_INTERVAL_SECS, default=60"`
	HTTPTransportEnabled       bool   `env:"OBSERVE_HTTP_TRANSPORT_ENABLED, default=true"`
	HTTPConnectionTraceEnabled bool   `env:"OBSERVE_CONNECTION_TRACE_ENABLED, default=true"`
}

func Load(ctx context.Context) (Config, error) {
	return LoadFrom(ctx, nil) // load from OS environment
}

// LoadFrom reads configuration through lookup; a nil lookup reads the OS
// environment.
func LoadFrom(ctx context.Context, lookup envconfig.Lookuper) (Config, error) {
	var cfg Config
	err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookup, // nil defaults to OS environment
	})
	if err != nil {
		return cfg, err
	}

	err = cfg.Client.Validate()
	if err != nil {
		return cfg, fmt.Errorf("invalid client configuration: %w", err)
	}

	err = cfg.Cache.Validate()
	if err != nil {
		return cfg, fmt.Errorf("invalid cache configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the service location is usable.
func (c *ClientConfig) Validate() error {
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("FULFILLMENT_LOCATION_URL is not a valid URL: %w", err)
	}
	if !u.IsAbs() {
		return fmt.Errorf("FULFILLMENT_LOCATION_URL must be absolute: %s", c.URL)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("FULFILLMENT_LOCATION_TIMEOUT must be positive")
	}

	return nil
}

// Enabled reports whether response caching is configured.
func (c *CacheConfig) Enabled() bool {
	return c.Type != "none"
}

// Validate checks that the cache configuration is valid.
func (c *CacheConfig) Validate() error {
	switch c.Type {
	case "none":
		return nil
	case "memory", "valkey":
	default:
		return fmt.Errorf("CACHE_TYPE must be one of \"none\", \"memory\" or \"valkey\", got %q", c.Type)
	}

	if c.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive when caching is enabled")
	}

	if c.Type == "valkey" {
		if c.Valkey.Address == "" {
			return fmt.Errorf("VALKEY_ADDRESS required when CACHE_TYPE=valkey")
		}

		// Valkey expiry has millisecond resolution
		if c.TTL < time.Millisecond {
			return fmt.Errorf("CACHE_TTL must be at least 1ms when CACHE_TYPE=valkey")
		}
	}

	return nil
}
