package cache

import (
	"errors"
	"time"

	"github.com/ppiankov/ecotrack/internal/model"
)

// LayeredCache checks memory first and falls back to disk
type LayeredCache struct {
	memory *MemoryCache
	disk   *DiskCache
}

// NewLayeredCache creates a new layered cache
func NewLayeredCache(memoryTTL time.Duration, diskDir string, diskTTL time.Duration) *LayeredCache {
	return &LayeredCache{
		memory: NewMemoryCache(memoryTTL, 10*time.Minute),
		disk:   NewDiskCache(diskDir, diskTTL),
	}
}

// Get retrieves a value, promoting disk hits to memory
func (c *LayeredCache) Get(key string) (*model.ParsedActivity, bool) {
	if a, found := c.memory.Get(key); found {
		return a, true
	}

	if a, found := c.disk.Get(key); found {
		_ = c.memory.Set(key, a)
		return a, true
	}

	return nil, false
}

// Set stores a value in both layers
func (c *LayeredCache) Set(key string, a *model.ParsedActivity) error {
	if err := c.memory.Set(key, a); err != nil {
		return err
	}
	return c.disk.Set(key, a)
}

// Delete removes a value from both layers
func (c *LayeredCache) Delete(key string) error {
	return errors.Join(c.memory.Delete(key), c.disk.Delete(key))
}

// Clear removes all values from both layers
func (c *LayeredCache) Clear() error {
	return errors.Join(c.memory.Clear(), c.disk.Clear())
}
