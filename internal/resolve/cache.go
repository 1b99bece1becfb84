package resolve

import (
	"context"
	"fmt"
	"sync"
	"time"

	"linear-mcp/internal/safe"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Kind names an entity collection held by the cache.
type Kind string

const (
	KindTeams    Kind = "teams"
	KindUsers    Kind = "users"
	KindProjects Kind = "projects"
	KindLabels   Kind = "labels"
	KindStates   Kind = "states"
)

const (
	DefaultCacheTTL        = 30 * time.Second
	DefaultCacheMaxEntries = 64
)

// Cache keeps whole entity collections keyed by (kind, scope). It is shared
// by every call the server handles.
type Cache struct {
	ttl        time.Duration
	maxEntries int

	mu          sync.Mutex
	entries     map[cacheKey]*cacheEntry
	generations map[Kind]uint64
	group       singleflight.Group

	now func() time.Time
}

type cacheKey struct {
	kind  Kind
	scope string
}

type cacheEntry struct {
	value      any
	added      time.Time
	expiration time.Time
}

// NewCache creates a collection cache. A ttl <= 0 disables caching; fetches
// then always reach the backend. maxEntries <= 0 falls back to the default.
func NewCache(ttl time.Duration, maxEntries int) *Cache {
	if maxEntries <= 0 {
		maxEntries = DefaultCacheMaxEntries
	}
	return &Cache{
		ttl:         ttl,
		maxEntries:  maxEntries,
		entries:     make(map[cacheKey]*cacheEntry),
		generations: make(map[Kind]uint64),
		now:         time.Now,
	}
}

func (c *Cache) enabled() bool {
	return c != nil && c.ttl > 0
}

func (c *Cache) get(key cacheKey) (any, uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	gen := c.generations[key.kind]
	entry, ok := c.entries[key]
	if !ok {
		log.Debug().Str("kind", string(key.kind)).Str("scope", key.scope).Msg("Cache miss")
		return nil, gen, false
	}
	if c.now().After(entry.expiration) {
		delete(c.entries, key)
		log.Debug().Str("kind", string(key.kind)).Str("scope", key.scope).Msg("Cache entry expired")
		return nil, gen, false
	}
	log.Debug().Str("kind", string(key.kind)).Str("scope", key.scope).Msg("Cache hit")
	return entry.value, gen, true
}

// put stores a fetched collection unless the kind was invalidated while the
// fetch was in flight.
func (c *Cache) put(key cacheKey, gen uint64, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generations[key.kind] != gen {
		return
	}
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictOldestLocked()
	}
	now := c.now()
	c.entries[key] = &cacheEntry{value: value, added: now, expiration: now.Add(c.ttl)}
}

func (c *Cache) evictOldestLocked() {
	var (
		oldest    cacheKey
		oldestAt  time.Time
		haveFirst bool
	)
	for k, e := range c.entries {
		if !haveFirst || e.added.Before(oldestAt) {
			oldest, oldestAt, haveFirst = k, e.added, true
		}
	}
	if haveFirst {
		delete(c.entries, oldest)
		log.Debug().Str("kind", string(oldest.kind)).Str("scope", oldest.scope).Msg("Evicted cache entry")
	}
}

// Invalidate drops every scope of the given kinds.
func (c *Cache) Invalidate(kinds ...Kind) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, kind := range kinds {
		c.generations[kind]++
		for k := range c.entries {
			if k.kind == kind {
				delete(c.entries, k)
			}
		}
	}
}

// Len reports the number of live entries.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// load returns the cached collection for (kind, scope) or fetches it.
// Concurrent loads of the same collection share one backend call. The shared
// fetch is detached from the caller that started it, so cancelling one call
// never fails another; each caller still stops waiting when its own ctx ends.
func load[T any](ctx context.Context, c *Cache, kind Kind, scope string, fetch func(context.Context) ([]T, error)) ([]T, error) {
	if !c.enabled() {
		return fetch(ctx)
	}
	key := cacheKey{kind: kind, scope: scope}
	cached, gen, ok := c.get(key)
	if ok {
		return cached.([]T), nil
	}

	flight := fmt.Sprintf("%s:%s:%d", kind, scope, gen)
	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(flight, func() (v any, err error) {
		defer safe.Recover(&err)
		items, err := fetch(detached)
		if err != nil {
			return nil, err
		}
		c.put(key, gen, items)
		return items, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]T), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
