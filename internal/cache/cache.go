package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cleaner is implemented by caches that can drop expired entries.
type Cleaner interface {
	CleanExpired() int
}

// Store is a read-through cache: a miss runs the compute function once,
// however many callers are waiting on the same key, and writes the result
// back with the caller's TTL.
type Store struct {
	entries *LRUCache[any]
	group   singleflight.Group

	// generations counts invalidations per key; a compute only writes back
	// if no invalidation happened while it ran.
	mu          sync.Mutex
	generations map[string]uint64
}

// NewStore creates a store holding at most maxEntries values.
func NewStore(maxEntries int) *Store {
	return &Store{
		entries:     NewLRUCache[any](maxEntries),
		generations: map[string]uint64{},
	}
}

func (s *Store) generation(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[key]
}

// GetOrCompute returns the cached value for key, computing and storing it
// on a miss. Errors are not cached. The shared compute is detached from
// any single caller's cancellation; each caller stops waiting when its own
// ctx is done.
func (s *Store) GetOrCompute(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) (any, error)) (any, error) {
	if v, ok := s.entries.Get(key); ok {
		slog.DebugContext(ctx, "Cache hit", "component", "cache", "key", key)
		return v, nil
	}

	computeCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (any, error) {
		if v, ok := s.entries.Get(key); ok {
			return v, nil
		}
		gen := s.generation(key)
		v, err := fn(computeCtx)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		if s.generations[key] == gen {
			s.entries.Set(key, v, ttl)
		}
		s.mu.Unlock()
		return v, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		slog.DebugContext(ctx, "Cache miss", "component", "cache", "key", key, "shared", res.Shared)
		return res.Val, nil
	}
}

// Invalidate drops key so the next read recomputes it. A compute already in
// flight for key still answers its waiters but does not write back.
func (s *Store) Invalidate(key string) {
	s.mu.Lock()
	s.generations[key]++
	s.entries.Delete(key)
	s.mu.Unlock()
	s.group.Forget(key)
}

// Len reports the number of cached entries.
func (s *Store) Len() int {
	return s.entries.Size()
}

// CleanExpired implements Cleaner.
func (s *Store) CleanExpired() int {
	return s.entries.CleanExpired()
}

// GetOrCompute is the typed form of Store.GetOrCompute.
func GetOrCompute[T any](ctx context.Context, s *Store, key string, ttl time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	v, err := s.GetOrCompute(ctx, key, ttl, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("cache entry %q holds %T", key, v)
	}
	return typed, nil
}

// Manager handles cache lifecycle and cleanup
type Manager struct {
	caches      []Cleaner
	stopCleanup chan struct{}
	cleanupDone chan struct{}
}

// NewManager creates a new cache manager
func NewManager() *Manager {
	return &Manager{
		stopCleanup: make(chan struct{}),
		cleanupDone: make(chan struct{}),
	}
}

// Register adds a cache to the manager for cleanup
func (m *Manager) Register(cache Cleaner) {
	m.caches = append(m.caches, cache)
}

// StartCleanup begins periodic cleanup of all registered caches
func (m *Manager) StartCleanup(interval time.Duration) {
	go m.cleanup(interval)
}

func (m *Manager) cleanup(interval time.Duration) {
	defer close(m.cleanupDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			totalCleaned := 0
			for _, cache := range m.caches {
				totalCleaned += cache.CleanExpired()
			}
			if totalCleaned > 0 {
				slog.Debug("Expired cache entries removed", "component", "cache", "count", totalCleaned)
			}
		case <-m.stopCleanup:
			return
		}
	}
}

// Stop gracefully stops the cleanup routine. It must follow StartCleanup.
func (m *Manager) Stop() {
	close(m.stopCleanup)
	<-m.cleanupDone
}
