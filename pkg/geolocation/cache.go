package geolocation

import "sync"

// Cache holds the last successfully resolved position.
type Cache interface {
	// Load returns the cached position, if any.
	Load() (Position, bool)
	// Store replaces the cached position.
	Store(Position)
}

// MemoryCache is a single-slot, replace-on-write Cache. The zero value is empty
// and ready to use.
type MemoryCache struct {
	mu  sync.RWMutex
	pos Position
	ok  bool
}

// NewMemoryCache returns an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{}
}

// Load returns the cached position, if any.
func (c *MemoryCache) Load() (Position, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pos, c.ok
}

// Store replaces the cached position.
func (c *MemoryCache) Store(p Position) {
	c.mu.Lock()
	c.pos, c.ok = p, true
	c.mu.Unlock()
}
