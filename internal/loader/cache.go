package loader

import (
	"sync"

	"github.com/golang/groupcache/lru"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheSize is the number of probe results kept when no size is configured.
const DefaultCacheSize = 256

// Cache memoizes package probe results (including failures) with a bounded LRU.
// Concurrent lookups of the same key share one probe.
type Cache struct {
	mu    sync.Mutex
	lru   *lru.Cache
	group singleflight.Group
}

type cacheEntry struct {
	path string
	err  error
}

// NewCache returns a cache holding at most size entries; size <= 0 means DefaultCacheSize.
func NewCache(size int) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &Cache{lru: lru.New(size)}
}

var shared = NewCache(DefaultCacheSize)

// SharedCache returns the process-wide cache used when a locator is built without one.
func SharedCache() *Cache { return shared }

// Lookup returns the cached result for key, calling probe on a miss.
func (c *Cache) Lookup(key string, probe func() (string, error)) (string, error) {
	c.mu.Lock()
	v, ok := c.lru.Get(key)
	c.mu.Unlock()
	if ok {
		e := v.(cacheEntry)
		return e.path, e.err
	}

	v, _, _ = c.group.Do(key, func() (any, error) {
		path, err := probe()
		e := cacheEntry{path: path, err: err}
		c.mu.Lock()
		c.lru.Add(key, e)
		c.mu.Unlock()
		return e, nil
	})
	e := v.(cacheEntry)
	return e.path, e.err
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Reset drops every cached entry.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Clear()
}
