package goapicache

import (
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"
)

// entry is a single cached response. The lifetime is fixed when the entry is
// written and never recomputed; reads do not extend it.
type entry struct {
	payload  any
	storedAt time.Time
	ttl      time.Duration
}

func (e entry) expired(now time.Time) bool {
	return now.Sub(e.storedAt) > e.ttl
}

// Cache is an in-memory store of API responses keyed by request signature,
// with per-resource TTLs and substring-based invalidation. It is safe for
// concurrent use.
//
// Expired entries are removed lazily on the next Get; there is no background
// sweep. Payloads are stored as given and must be treated as immutable once
// cached.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry

	policy  policy
	markers Markers
	now     func() time.Time
}

// Stats is a diagnostic snapshot of the store. Keys lists everything
// physically present, including entries that have expired but have not been
// read (and therefore evicted) since.
type Stats struct {
	Count int
	Keys  []string
}

// NewCache creates a cache using the given configuration. A nil config and
// any zero-value fields fall back to DefaultConfig.
func NewCache(cfg *Config) *Cache {
	return NewCacheWithTimeFunc(cfg, time.Now)
}

// NewCacheWithTimeFunc creates a cache with an injected time source.
func NewCacheWithTimeFunc(cfg *Config, now func() time.Time) *Cache {
	c := normalize(cfg)

	return &Cache{
		entries: make(map[string]entry),
		policy:  newPolicy(c),
		markers: c.Markers,
		now:     now,
	}
}

// Markers returns the resource markers the cache was configured with.
func (c *Cache) Markers() Markers {
	return c.markers
}

// Get returns the cached payload for the request signature, or (nil, false)
// if no fresh entry exists. An expired entry is deleted before reporting a
// miss.
func (c *Cache) Get(path string, params url.Values) (any, bool) {
	key := Key(path, params)

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if e.expired(c.now()) {
		c.mu.Lock()
		// re-check under the write lock; a concurrent Set may have
		// replaced the key with a fresh entry
		if cur, ok := c.entries[key]; ok && cur.expired(c.now()) {
			delete(c.entries, key)
		}
		c.mu.Unlock()

		return nil, false
	}

	return e.payload, true
}

// Set stores a payload under the request signature, replacing any existing
// entry. The entry's lifetime is resolved from the TTL policy at write time.
func (c *Cache) Set(path string, payload any, params url.Values) {
	key := Key(path, params)
	e := entry{
		payload:  payload,
		storedAt: c.now(),
		ttl:      c.policy.resolve(key),
	}

	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
}

// Invalidate deletes every entry whose key contains substr. The match is
// literal containment, not a pattern.
func (c *Cache) Invalidate(substr string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for k := range c.entries {
		if strings.Contains(k, substr) {
			delete(c.entries, k)
		}
	}
}

// InvalidateResourceGroup deletes every list and item entry under the
// resource marker, regardless of query parameters.
func (c *Cache) InvalidateResourceGroup(marker string) {
	c.Invalidate(marker)
}

// InvalidateItem deletes the item-detail entry for id under the resource
// marker, then cascades to the whole resource group: collection responses may
// embed a stale copy of the item.
func (c *Cache) InvalidateItem(marker, id string) {
	c.Invalidate(marker + "/" + id)
	c.Invalidate(marker)
}

// Clear empties the store unconditionally.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

// Stats returns the current entry count and key list, sorted for stable
// output. No freshness filtering is applied.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	c.mu.RUnlock()

	sort.Strings(keys)

	return Stats{
		Count: len(keys),
		Keys:  keys,
	}
}

// Lookup returns the cached payload for the request signature asserted to T.
// It reports false on a miss or if the stored payload is not a T.
func Lookup[T any](c *Cache, path string, params url.Values) (T, bool) {
	v, ok := c.Get(path, params)
	if !ok {
		var zero T
		return zero, false
	}

	t, ok := v.(T)
	return t, ok
}
