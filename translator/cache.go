package translator

import (
	"container/list"
	"sync"
	"time"
)

// ResultCache is a bounded LRU cache of translation results keyed by the
// normalized request tuple. A Get hit promotes the entry to most recently
// used; a Set that would exceed capacity evicts the least recently used entry
// first. With a non-zero TTL, a read past the TTL is treated as a miss and
// deletes the stale entry (lazy expiry, no background sweep).
type ResultCache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	order    *list.List // front = most recently used
	items    map[string]*list.Element

	hits   uint64
	misses uint64
}

type cacheEntry struct {
	key        string
	value      Result
	insertedAt time.Time
}

// NewResultCache creates a cache bounded to capacity entries. A zero ttl
// disables expiry.
func NewResultCache(capacity int, ttl time.Duration) *ResultCache {
	return &ResultCache{
		capacity: capacity,
		ttl:      ttl,
		order:    list.New(),
		items:    make(map[string]*list.Element, capacity),
	}
}

// Get returns the cached result for key, promoting it to most recently used.
func (c *ResultCache) Get(key string) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.misses++
		return Result{}, false
	}
	entry := elem.Value.(*cacheEntry)
	if c.ttl > 0 && time.Since(entry.insertedAt) > c.ttl {
		c.order.Remove(elem)
		delete(c.items, key)
		c.misses++
		return Result{}, false
	}
	c.order.MoveToFront(elem)
	c.hits++
	return entry.value, true
}

// Set stores value under key, evicting the least recently used entry when the
// cache is full.
func (c *ResultCache) Set(key string, value Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		entry := elem.Value.(*cacheEntry)
		entry.value = value
		entry.insertedAt = time.Now()
		c.order.MoveToFront(elem)
		return
	}

	if c.capacity > 0 && c.order.Len() >= c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*cacheEntry).key)
		}
	}

	c.items[key] = c.order.PushFront(&cacheEntry{
		key:        key,
		value:      value,
		insertedAt: time.Now(),
	})
}

// Len returns the number of cached entries.
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stats returns the cumulative hit and miss counts.
func (c *ResultCache) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
