// Package cache provides a keyed stale-while-revalidate cache with request
// coalescing. It is injected into the handlers that front read-heavy
// endpoints instead of living as a hidden package-level map, so tests can
// construct isolated instances.
package cache

import (
	"context"
	"sync"
	"time"
)

// DefaultStaleTime is how long an entry is served without refetching.
const DefaultStaleTime = 30 * time.Second

// Fetch loads the value for a key when the cache cannot serve it.
type Fetch func(ctx context.Context) (interface{}, error)

// entry is the per-key state: last value, when it was stored, the last
// fetch error and the in-flight fetch shared by coalesced callers.
type entry struct {
	data      interface{}
	hasData   bool
	timestamp time.Time
	err       error
	inflight  chan struct{} // closed when the running fetch finishes; nil when idle
}

// Stats counts cache outcomes for monitoring.
type Stats struct {
	Hits      int64
	Misses    int64
	Coalesced int64
	Errors    int64
}

// Cache maps string keys to values with stale-while-revalidate semantics:
//
//   - fresh entries (age < staleTime) are returned without fetching;
//   - stale entries are returned immediately while one background refresh
//     runs; concurrent callers share that refresh instead of duplicating it;
//   - empty keys block on a single shared fetch;
//   - a failed fetch records the error, keeps the last-known-good value (or
//     a caller-supplied fallback) and retries on the next access.
type Cache struct {
	mu        sync.Mutex
	entries   map[string]*entry
	staleTime time.Duration
	stats     Stats

	// now is swappable so tests can control freshness.
	now func() time.Time
}

// New creates a cache with the given stale time; zero or negative selects
// DefaultStaleTime.
func New(staleTime time.Duration) *Cache {
	if staleTime <= 0 {
		staleTime = DefaultStaleTime
	}
	return &Cache{
		entries:   make(map[string]*entry),
		staleTime: staleTime,
		now:       time.Now,
	}
}

// Get returns the value for key, fetching it if absent or stale.
func (c *Cache) Get(ctx context.Context, key string, fetch Fetch) (interface{}, error) {
	return c.get(ctx, key, nil, false, fetch)
}

// GetWithFallback behaves like Get but seeds the entry with fallback when
// the first fetch fails, so consumers have something to render.
func (c *Cache) GetWithFallback(ctx context.Context, key string, fallback interface{}, fetch Fetch) (interface{}, error) {
	return c.get(ctx, key, fallback, true, fetch)
}

func (c *Cache) get(ctx context.Context, key string, fallback interface{}, useFallback bool, fetch Fetch) (interface{}, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}

	// Fresh: serve without touching the network.
	if e.hasData && c.now().Sub(e.timestamp) < c.staleTime {
		c.stats.Hits++
		data := e.data
		c.mu.Unlock()
		return data, nil
	}

	// Stale but usable: hand back the old value right away and make sure
	// exactly one refresh is running.
	if e.hasData {
		c.stats.Hits++
		data := e.data
		if e.inflight == nil {
			done := make(chan struct{})
			e.inflight = done
			go c.runFetch(key, e, done, fallback, useFallback, fetch)
		} else {
			c.stats.Coalesced++
		}
		c.mu.Unlock()
		return data, nil
	}

	// Nothing cached yet: join the in-flight fetch if one exists.
	if e.inflight != nil {
		c.stats.Coalesced++
		done := e.inflight
		c.mu.Unlock()

		select {
		case <-done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		if e.err != nil {
			return e.data, e.err
		}
		return e.data, nil
	}

	// First caller for this key fetches synchronously; late arrivals wait
	// on the same channel.
	c.stats.Misses++
	done := make(chan struct{})
	e.inflight = done
	c.mu.Unlock()

	c.runFetch(key, e, done, fallback, useFallback, fetch)

	c.mu.Lock()
	defer c.mu.Unlock()
	if e.err != nil {
		return e.data, e.err
	}
	return e.data, nil
}

// runFetch executes fetch and publishes the outcome into the entry. The
// done channel is closed last so waiters observe a settled entry.
func (c *Cache) runFetch(key string, e *entry, done chan struct{}, fallback interface{}, useFallback bool, fetch Fetch) {
	data, err := fetch(context.Background())

	c.mu.Lock()
	if err == nil {
		e.data = data
		e.hasData = true
		e.timestamp = c.now()
		e.err = nil
	} else {
		c.stats.Errors++
		e.err = err
		if !e.hasData && useFallback {
			e.data = fallback
			e.hasData = true
			// zero timestamp keeps the entry stale so the next access retries
			e.timestamp = time.Time{}
		}
	}
	e.inflight = nil
	c.mu.Unlock()
	close(done)
}

// Set overwrites the entry directly, bypassing fetching. Used for
// optimistic updates after local mutations.
func (c *Cache) Set(key string, data interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	e.data = data
	e.hasData = true
	e.timestamp = c.now()
	e.err = nil
}

// Invalidate drops a key so the next access refetches.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// InvalidatePrefix drops every key starting with prefix. Mutation handlers
// use it to flush all page variants of a listing at once.
func (c *Cache) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(c.entries, key)
		}
	}
}

// GetStats returns a snapshot of the counters.
func (c *Cache) GetStats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}
