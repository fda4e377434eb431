package cache

import (
	"context"
	"sync"
	"time"

	"github.com/maypok86/otter/v2"
)

// Memory is an in-memory cache implementation using otter. Entries expire a
// fixed TTL after they were written; the cache has no size bound.
// The generic type T represents the payload type being cached.
type Memory[T any] struct {
	cache *otter.Cache[string, T]

	stop     chan struct{}
	stopOnce sync.Once
	swept    sync.WaitGroup
}

// NewMemory creates a new in-memory cache with the specified TTL. When
// sweepInterval is positive, expired entries are also removed by a periodic
// background sweep until Close is called.
func NewMemory[T any](ttl time.Duration, sweepInterval time.Duration) (*Memory[T], error) {
	cache := otter.Must(&otter.Options[string, T]{
		ExpiryCalculator: otter.ExpiryCreating[string, T](ttl),
	})

	m := &Memory[T]{
		cache: cache,
		stop:  make(chan struct{}),
	}

	if sweepInterval > 0 {
		m.swept.Add(1)
		go m.sweep(sweepInterval)
	}

	return m, nil
}

func (m *Memory[T]) sweep(interval time.Duration) {
	defer m.swept.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cache.CleanUp()
		case <-m.stop:
			return
		}
	}
}

// Get retrieves a payload from the cache.
// Returns the payload, whether it was found, and any error.
func (m *Memory[T]) Get(ctx context.Context, key string) (T, bool, error) {
	entry, ok := m.cache.GetEntry(key)
	if !ok {
		var zero T
		return zero, false, nil
	}

	return entry.Value, true, nil
}

// Set stores a payload in the cache.
func (m *Memory[T]) Set(ctx context.Context, key string, payload T) error {
	m.cache.Set(key, payload)
	return nil
}

// Close stops the background sweep. The cache remains readable afterwards.
func (m *Memory[T]) Close() error {
	m.stopOnce.Do(func() {
		close(m.stop)
	})
	m.swept.Wait()
	return nil
}
