package fulfillmentlocation_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/trdlnk/fulfillmentlocation"
)

func sampleLocations() []fulfillmentlocation.Location {
	return []fulfillmentlocation.Location{
		{
			TimeZone:                      "Europe/London",
			InternalFulfillerID:           70,
			InternalFulfillmentLocationID: 110,
			FulfillerID:                   "a2wgr294u",
			FulfillmentLocationID:         "b7uqagcx0nw",
		},
		{
			TimeZone:                      "Europe/Paris",
			InternalFulfillerID:           70,
			InternalFulfillmentLocationID: 189,
			FulfillerID:                   "a2wgr294u",
			FulfillmentLocationID:         "bqcjg7qbvep",
		},
	}
}

func sampleLocation() fulfillmentlocation.Location {
	return sampleLocations()[0]
}

type logEntry struct {
	msg    string
	detail any
}

// recordingLogger captures everything passed to the client's logger.
type recordingLogger struct {
	mu     sync.Mutex
	infos  []logEntry
	errors []logEntry
}

func (l *recordingLogger) Info(msg string, detail any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, logEntry{msg, detail})
}

func (l *recordingLogger) Error(msg string, detail any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, logEntry{msg, detail})
}

func (l *recordingLogger) Infos() []logEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]logEntry(nil), l.infos...)
}

func (l *recordingLogger) Errors() []logEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]logEntry(nil), l.errors...)
}

// mapStore is a Store with injectable failures.
type mapStore struct {
	mu       sync.Mutex
	entries  map[string]json.RawMessage
	getError error
	setError error
	getCalls int
	setCalls int
}

func newMapStore() *mapStore {
	return &mapStore{entries: map[string]json.RawMessage{}}
}

func (s *mapStore) Get(_ context.Context, key string) (json.RawMessage, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getCalls++
	if s.getError != nil {
		return nil, false, s.getError
	}
	v, ok := s.entries[key]
	return v, ok, nil
}

func (s *mapStore) Set(_ context.Context, key string, payload json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setCalls++
	if s.setError != nil {
		return s.setError
	}
	s.entries[key] = payload
	return nil
}

func (s *mapStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func newClient(t *testing.T, opts ...fulfillmentlocation.ClientOption) *fulfillmentlocation.Client {
	t.Helper()

	client, err := fulfillmentlocation.New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client
}

var defaultCache = fulfillmentlocation.CacheConfig{
	TTL:           fulfillmentlocation.DefaultCacheTTL,
	SweepInterval: fulfillmentlocation.DefaultCacheSweepInterval,
}
