// Package fulfillmentlocation is a client for the fulfillment location
// service, with an optional per-credential read-through response cache.
package fulfillmentlocation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/trdlnk/fulfillmentlocation/internal/cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultURL     = "https://fulfillmentlocation.trdlnk.cimpress.io"
	DefaultTimeout = 2 * time.Second

	DefaultCacheTTL           = 4 * time.Hour
	DefaultCacheSweepInterval = 5 * time.Minute
)

const instrumentationName = "github.com/trdlnk/fulfillmentlocation"

// Store holds raw response payloads keyed by request identity. Get reports a
// present entry with found; expiry is the store's responsibility.
// Implementations must be safe for concurrent use.
type Store interface {
	Get(ctx context.Context, key string) (payload json.RawMessage, found bool, err error)
	Set(ctx context.Context, key string, payload json.RawMessage) error
}

// CacheConfig configures the in-memory response cache a client builds for
// itself. Zero fields take the Default* values.
type CacheConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

func (c *CacheConfig) configured() bool {
	return c != nil && *c != CacheConfig{}
}

type ClientConfig struct {
	URL        string
	Timeout    time.Duration
	Cache      *CacheConfig
	Store      Store
	Log        Logger
	HTTPClient *http.Client
}

type ClientOption func(*ClientConfig)

// WithURL sets the base URL of the service.
func WithURL(u string) ClientOption {
	return func(c *ClientConfig) { c.URL = u }
}

// WithTimeout bounds each outbound request.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *ClientConfig) { c.Timeout = d }
}

// WithCache enables a response cache private to the client.
func WithCache(cfg CacheConfig) ClientOption {
	return func(c *ClientConfig) { c.Cache = &cfg }
}

// WithStore enables response caching backed by s. Clients given the same
// store share cached responses. Takes precedence over WithCache.
func WithStore(s Store) ClientOption {
	return func(c *ClientConfig) { c.Store = s }
}

// WithLogger sets the collaborator informed of outbound requests. A nil
// logger, or one that panics (for example a nil pointer), leaves requests
// unlogged.
func WithLogger(l Logger) ClientOption {
	return func(c *ClientConfig) { c.Log = l }
}

// WithHTTPClient sets the client used for outbound requests. Its Timeout is
// kept when set; otherwise the configured timeout applies.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *ClientConfig) { c.HTTPClient = hc }
}

// Client looks up fulfillment locations. It is safe for concurrent use.
type Client struct {
	fetcher *fetcher
	store   Store
	owned   interface{ Close() error }
	log     Logger
	tracer  trace.Tracer
}

// New creates a client. The response cache, if any, is chosen here and fixed
// for the lifetime of the client.
func New(options ...ClientOption) (*Client, error) {
	cfg := ClientConfig{
		URL:     DefaultURL,
		Timeout: DefaultTimeout,
	}
	for _, o := range options {
		o(&cfg)
	}

	baseURL, err := parseBaseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	if cfg.HTTPClient != nil {
		hc := *cfg.HTTPClient
		if hc.Timeout == 0 {
			hc.Timeout = cfg.Timeout
		}
		httpClient = &hc
	}

	log := loggerOrNop(cfg.Log)
	tracer := otel.Tracer(instrumentationName)

	c := &Client{
		fetcher: &fetcher{
			baseURL: baseURL,
			client:  httpClient,
			log:     log,
			tracer:  tracer,
		},
		log:    log,
		tracer: tracer,
	}

	switch {
	case cfg.Store != nil:
		c.store = cfg.Store

	case cfg.Cache.configured():
		ttl := cfg.Cache.TTL
		if ttl <= 0 {
			ttl = DefaultCacheTTL
		}
		sweep := cfg.Cache.SweepInterval
		if sweep <= 0 {
			sweep = DefaultCacheSweepInterval
		}

		memory, err := cache.NewMemory[json.RawMessage](ttl, sweep)
		if err != nil {
			return nil, fmt.Errorf("response cache configuration failed: %w", err)
		}
		store := cache.NewInstrumented(memory, "memory")
		c.store = store
		c.owned = store
	}

	return c, nil
}

func parseBaseURL(raw string) (string, error) {
	if raw == "" {
		raw = DefaultURL
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid service URL: %w", err)
	}
	if !u.IsAbs() {
		return "", fmt.Errorf("service URL must be absolute: %s", raw)
	}

	return strings.TrimSuffix(u.String(), "/"), nil
}

// CachingEnabled reports whether lookups may be served from a response cache.
func (c *Client) CachingEnabled() bool {
	return c.store != nil
}

// Close releases the response cache the client created for itself. Stores
// supplied with WithStore are left to their owner.
func (c *Client) Close() error {
	if c.owned == nil {
		return nil
	}
	return c.owned.Close()
}
