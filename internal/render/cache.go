package render

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache holds rendered markup keyed by content hash.
type Cache struct {
	cache *gocache.Cache
}

// NewCache creates an in-memory cache. A zero ttl keeps entries forever.
func NewCache(ttl, cleanupInterval time.Duration) *Cache {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &Cache{
		cache: gocache.New(ttl, cleanupInterval),
	}
}

// Get returns cached markup.
func (c *Cache) Get(key string) (string, bool) {
	if c == nil {
		return "", false
	}
	if val, found := c.cache.Get(key); found {
		return val.(string), true
	}
	return "", false
}

// Set stores markup with the default expiration.
func (c *Cache) Set(key, value string) {
	if c == nil {
		return
	}
	c.cache.SetDefault(key, value)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.cache.ItemCount()
}

// Clear drops every entry.
func (c *Cache) Clear() {
	if c == nil {
		return
	}
	c.cache.Flush()
}

// CacheKey derives a cache key from the renderer variant and the content.
func CacheKey(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return "stepdeck:v1:" + hex.EncodeToString(hash[:])
}
