package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/ppiankov/ecotrack/internal/model"
)

// Cache memoizes remote extraction results by entry text
type Cache interface {
	Get(key string) (*model.ParsedActivity, bool)
	Set(key string, a *model.ParsedActivity) error
	Delete(key string) error
	Clear() error
}

// CacheKey generates a cache key from an activity entry.
// Case and runs of whitespace do not change the key.
func CacheKey(text string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(text)), " ")
	hash := sha256.Sum256([]byte(normalized))
	return "ecotrack:v1:" + hex.EncodeToString(hash[:])
}

// New builds the cache described by cfg, or nil when caching is disabled
func New(cfg model.CacheConfig) Cache {
	if !cfg.Enabled {
		return nil
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	if cfg.Dir == "" {
		return NewMemoryCache(ttl, 10*time.Minute)
	}
	return NewLayeredCache(ttl, cfg.Dir, ttl)
}

// clone returns a deep copy so cached values never alias caller data
func clone(a *model.ParsedActivity) *model.ParsedActivity {
	if a == nil {
		return nil
	}
	c := *a
	if a.InsteadOf != nil {
		c.InsteadOf = model.StringPtr(*a.InsteadOf)
	}
	if a.Confidence != nil {
		c.Confidence = model.FloatPtr(*a.Confidence)
	}
	return &c
}
