package reader

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds how many decoded images the cache retains.
// Microscopy planes are large, so the bound is deliberately small.
const DefaultCacheSize = 16

// Cache provides thread-safe, bounded caching of decoded images to avoid
// redundant decodes. Entries are evicted least-recently-used once the
// bound is reached.
//
// Images are keyed by the exact path string used to load them, so
// relative and absolute paths to the same file occupy separate entries.
type Cache struct {
	lru *lru.Cache[string, *Image]
}

// NewCache creates a cache holding at most size decoded images. A size
// of zero or less falls back to DefaultCacheSize.
func NewCache(size int) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	// lru.New only fails for non-positive sizes, which we just excluded.
	c, _ := lru.New[string, *Image](size)
	return &Cache{lru: c}
}

// Get returns the cached image for a path, if present.
func (c *Cache) Get(path string) (*Image, bool) {
	return c.lru.Get(path)
}

// Put stores a decoded image under its path.
func (c *Cache) Put(path string, img *Image) {
	c.lru.Add(path, img)
}

// Evict removes one path from the cache. Unknown paths are ignored.
func (c *Cache) Evict(path string) {
	c.lru.Remove(path)
}

// Clear removes all cached images.
func (c *Cache) Clear() {
	c.lru.Purge()
}

// Len returns the number of cached images.
func (c *Cache) Len() int {
	return c.lru.Len()
}
