package texture

import (
	"image"
	"path/filepath"
	"sync"

	"cave-projector/internal/logging"
)

// Resolver resolves a texture path to a decoded image.
type Resolver interface {
	Resolve(path string) *image.NRGBA
}

// Cache is a concurrency-safe texture cache keyed by cleaned path.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*cacheEntry
}

type cacheEntry struct {
	img *image.NRGBA
	err error
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{items: make(map[string]*cacheEntry)}
}

// Resolve loads and caches a texture. Returns nil if it cannot be decoded;
// failures are cached too so a bad file is only reported once.
func (c *Cache) Resolve(path string) *image.NRGBA {
	if path == "" {
		return nil
	}
	key := filepath.Clean(path)

	// Fast path: read lock
	c.mu.RLock()
	if entry, exists := c.items[key]; exists {
		c.mu.RUnlock()
		return entry.img
	}
	c.mu.RUnlock()

	// Slow path: load from disk
	img, err := Load(key)

	// Write lock with double-check
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, exists := c.items[key]; exists {
		return entry.img
	}
	if err != nil {
		logging.Logger().Warn("texture unavailable", "path", key, "err", err)
	}
	c.items[key] = &cacheEntry{img: img, err: err}
	return img
}

// Err returns the load error recorded for path, if any.
func (c *Cache) Err(path string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if entry, ok := c.items[filepath.Clean(path)]; ok {
		return entry.err
	}
	return nil
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
