package dataset

import (
	"encoding/json"
	"sync"
	"time"
)

type cacheEntry struct {
	records []json.RawMessage
	expires time.Time
}

// Cache keeps decoded collections in memory for a fixed TTL.
type Cache struct {
	mu    sync.RWMutex
	items map[string]cacheEntry
	ttl   time.Duration
	now   func() time.Time
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		items: map[string]cacheEntry{},
		ttl:   ttl,
		now:   time.Now,
	}
}

func (c *Cache) get(name string) ([]json.RawMessage, bool) {
	if c == nil {
		return nil, false
	}
	now := c.now()
	c.mu.RLock()
	entry, ok := c.items[name]
	c.mu.RUnlock()
	if !ok || now.After(entry.expires) {
		return nil, false
	}
	return entry.records, true
}

func (c *Cache) put(name string, records []json.RawMessage) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[name] = cacheEntry{records: records, expires: c.now().Add(c.ttl)}
}

// Invalidate drops name from the cache.
func (c *Cache) Invalidate(name string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	delete(c.items, name)
	c.mu.Unlock()
}

// Purge empties the cache.
func (c *Cache) Purge() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.items = map[string]cacheEntry{}
	c.mu.Unlock()
}
