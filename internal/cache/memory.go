package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/ppiankov/ecotrack/internal/model"
)

// MemoryCache keeps parsed activities in process memory with expiry
type MemoryCache struct {
	cache *gocache.Cache
}

// NewMemoryCache creates a new memory cache
func NewMemoryCache(defaultTTL time.Duration, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{
		cache: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Get retrieves a copy of the cached activity
func (c *MemoryCache) Get(key string) (*model.ParsedActivity, bool) {
	val, found := c.cache.Get(key)
	if !found {
		return nil, false
	}
	a, ok := val.(*model.ParsedActivity)
	if !ok {
		return nil, false
	}
	return clone(a), true
}

// Set stores a copy of a with the default TTL. nil is ignored.
func (c *MemoryCache) Set(key string, a *model.ParsedActivity) error {
	if a == nil {
		return nil
	}
	c.cache.SetDefault(key, clone(a))
	return nil
}

// Delete removes a value from the cache
func (c *MemoryCache) Delete(key string) error {
	c.cache.Delete(key)
	return nil
}

// Clear removes all values from the cache
func (c *MemoryCache) Clear() error {
	c.cache.Flush()
	return nil
}

// Len reports the number of unexpired entries
func (c *MemoryCache) Len() int {
	return c.cache.ItemCount()
}
