package fulfillmentlocation

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	kindLocation  = "fulfillmentLocation"
	kindLocations = "fulfillmentLocations"

	keyDelimiter = "_"
)

// LocationOptions are the parameters of a single location lookup.
type LocationOptions struct {
	// Authorization is the full header value, "Bearer <token>". Required.
	Authorization string

	// SkipCache bypasses the response cache for both read and write, and asks
	// intermediary HTTP caches for a fresh response.
	SkipCache bool
}

// ListOptions are the parameters of a location list lookup.
type ListOptions struct {
	// Authorization is the full header value, "Bearer <token>". Required.
	Authorization string

	// SkipCache bypasses the response cache for both read and write, and asks
	// intermediary HTTP caches for a fresh response.
	SkipCache bool

	// ShowArchived includes archived locations.
	ShowArchived bool

	// FulfillerID restricts the list to one fulfiller when set.
	FulfillerID string
}

func (o ListOptions) query() listQuery {
	return listQuery{
		showArchived: o.ShowArchived,
		fulfillerID:  o.FulfillerID,
	}
}

// GetLocation returns the location identified by id, which may be either
// the alphanumeric or the internal numeric identifier.
func (c *Client) GetLocation(ctx context.Context, id string, opts LocationOptions) (Location, error) {
	if err := validateAuthorization(opts.Authorization); err != nil {
		return Location{}, err
	}
	if id == "" {
		return Location{}, newInvalidInputError(ErrInvalidInput, "Missing location id parameter")
	}

	ctx, span := c.startLookup(ctx, "GetLocation", opts.SkipCache)
	defer span.End()

	key := cacheKey(kindLocation, id, opts.Authorization)

	location, err := readThrough[Location](ctx, c, key, opts.SkipCache, func(ctx context.Context, fresh bool) (json.RawMessage, error) {
		return c.fetcher.location(ctx, opts.Authorization, id, fresh)
	})
	endLookup(span, err)

	return location, err
}

// GetLocations returns the locations visible to the caller's credential.
func (c *Client) GetLocations(ctx context.Context, opts ListOptions) ([]Location, error) {
	if err := validateAuthorization(opts.Authorization); err != nil {
		return nil, err
	}

	ctx, span := c.startLookup(ctx, "GetLocations", opts.SkipCache)
	defer span.End()

	q := opts.query()
	key := cacheKey(kindLocations, listTarget(q), opts.Authorization)

	locations, err := readThrough[[]Location](ctx, c, key, opts.SkipCache, func(ctx context.Context, fresh bool) (json.RawMessage, error) {
		return c.fetcher.locations(ctx, opts.Authorization, q, fresh)
	})
	endLookup(span, err)

	if err == nil && locations == nil {
		locations = []Location{}
	}

	return locations, err
}

// readThrough serves key from the store when present, otherwise fetches,
// stores and returns the fetched payload. Concurrent misses for one key each
// fetch and each write; the last write wins.
func readThrough[T any](
	ctx context.Context,
	c *Client,
	key string,
	skipCache bool,
	fetch func(ctx context.Context, fresh bool) (json.RawMessage, error),
) (T, error) {
	var zero T

	if c.store == nil || skipCache {
		payload, err := fetch(ctx, skipCache)
		if err != nil {
			return zero, err
		}
		return decode[T](payload)
	}

	operation := strings.SplitN(key, keyDelimiter, 2)[0]

	payload, found, err := c.store.Get(ctx, key)
	if err != nil {
		c.log.Error("response cache read failed, fetching", &CacheReadError{Operation: operation, Err: err})
		found = false
	}

	if found {
		value, err := decode[T](payload)
		if err == nil {
			trace.SpanFromContext(ctx).SetAttributes(attribute.String("fulfillmentlocation.cache", "hit"))
			return value, nil
		}
		c.log.Error("cached response unreadable, fetching", &CacheReadError{Operation: operation, Err: err})
	}

	trace.SpanFromContext(ctx).SetAttributes(attribute.String("fulfillmentlocation.cache", "miss"))

	payload, err = fetch(ctx, false)
	if err != nil {
		return zero, err
	}

	value, err := decode[T](payload)
	if err != nil {
		return zero, err
	}

	if err := c.store.Set(ctx, key, payload); err != nil {
		c.log.Error("response cache write failed", err)
	}

	return value, nil
}

func decode[T any](payload json.RawMessage) (T, error) {
	var value T
	if err := json.Unmarshal(payload, &value); err != nil {
		var zero T
		return zero, fmt.Errorf("failed to decode fulfillment location response: %w", err)
	}
	return value, nil
}

// cacheKey scopes an entry to the operation, its target and the caller's
// credential, so distinct credentials never share an entry.
func cacheKey(kind, target, authorization string) string {
	if target == "" {
		return kind + keyDelimiter + authorization
	}
	return kind + keyDelimiter + target + keyDelimiter + authorization
}

func listTarget(q listQuery) string {
	target := "showArchived=" + strconv.FormatBool(q.showArchived)
	if q.fulfillerID != "" {
		target += "&fulfillerId=" + q.fulfillerID
	}
	return target
}

func (c *Client) startLookup(ctx context.Context, name string, skipCache bool) (context.Context, trace.Span) {
	return c.tracer.Start(ctx, "fulfillmentlocation."+name, trace.WithAttributes(
		attribute.Bool("fulfillmentlocation.cache.enabled", c.store != nil),
		attribute.Bool("fulfillmentlocation.cache.skip", skipCache),
	))
}

func endLookup(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "lookup failed")
	}
}
