package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultTTL is used when a QueryCache is created with a non-positive TTL
const DefaultTTL = 30 * time.Second

// FetchFunc loads a value from the remote source
type FetchFunc func(ctx context.Context) (any, error)

type cachedValue struct {
	value     any
	expiresAt time.Time
}

// Stats are cumulative query cache counters
type Stats struct {
	Hits   uint64
	Misses uint64
	Shared uint64
}

// QueryCache is a read-through cache of remote query results.
// Concurrent Gets for the same key share one in-flight fetch, failed fetches
// are never stored, and an invalidation that happens while a fetch is in
// flight keeps that fetch's result out of the cache.
type QueryCache struct {
	ttl   time.Duration
	group singleflight.Group
	now   func() time.Time

	mu          sync.Mutex
	entries     map[Key]cachedValue
	generations map[Resource]uint64
	keyGens     map[Key]uint64

	hits   atomic.Uint64
	misses atomic.Uint64
	shared atomic.Uint64
}

// NewQueryCache creates a query cache whose entries live for ttl
func NewQueryCache(ttl time.Duration) *QueryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &QueryCache{
		ttl:         ttl,
		now:         time.Now,
		entries:     make(map[Key]cachedValue),
		generations: make(map[Resource]uint64),
		keyGens:     make(map[Key]uint64),
	}
}

// Get returns the cached value for key, or calls fetch and caches its result.
// Concurrent callers share one fetch. The fetch keeps ctx's values but not
// its cancellation, so a caller that gives up only stops waiting.
func (c *QueryCache) Get(ctx context.Context, key Key, fetch FetchFunc) (any, error) {
	if v, ok := c.lookup(key); ok {
		c.hits.Add(1)
		return v, nil
	}
	c.misses.Add(1)

	gen := c.generation(key)
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key.String(), func() (any, error) {
		value, err := fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		c.store(key, value, gen)
		return value, nil
	})

	select {
	case res := <-ch:
		if res.Shared {
			c.shared.Add(1)
		}
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Peek returns a cached, unexpired value without fetching
func (c *QueryCache) Peek(key Key) (any, bool) {
	return c.lookup(key)
}

// Invalidate drops one key. A fetch for the key already in flight will not
// store its result.
func (c *QueryCache) Invalidate(keys ...Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.entries, key)
		c.keyGens[key]++
	}
	for _, key := range keys {
		c.group.Forget(key.String())
	}
}

// InvalidateResource drops every key of a resource
func (c *QueryCache) InvalidateResource(resources ...Resource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, resource := range resources {
		c.generations[resource]++
		for key := range c.entries {
			if key.Resource == resource {
				delete(c.entries, key)
				c.group.Forget(key.String())
			}
		}
	}
}

// Clear drops every entry
func (c *QueryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		c.keyGens[key]++
		c.group.Forget(key.String())
	}
	for resource := range c.generations {
		c.generations[resource]++
	}
	c.entries = make(map[Key]cachedValue)
}

// Len returns the number of stored entries, expired ones included
func (c *QueryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a snapshot of the cache counters
func (c *QueryCache) Stats() Stats {
	return Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Shared: c.shared.Load(),
	}
}

func (c *QueryCache) lookup(key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

type generation struct {
	resource uint64
	key      uint64
}

func (c *QueryCache) generation(key Key) generation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return generation{resource: c.generations[key.Resource], key: c.keyGens[key]}
}

func (c *QueryCache) store(key Key, value any, gen generation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[key.Resource] != gen.resource || c.keyGens[key] != gen.key {
		return
	}
	c.entries[key] = cachedValue{value: value, expiresAt: c.now().Add(c.ttl)}
}

// Fetch is a typed wrapper around QueryCache.Get
func Fetch[T any](ctx context.Context, c *QueryCache, key Key, fetch func(ctx context.Context) (T, error)) (T, error) {
	v, err := c.Get(ctx, key, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("cache: value for %s has unexpected type %T", key, v)
	}
	return typed, nil
}
