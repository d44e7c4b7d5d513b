package cache

import (
	"sync"
	"time"
)

// Entry is the last hash seen for a path
type Entry struct {
	Path      string
	Hash      string
	UpdatedAt time.Time
}

// Cache maps paths to content hashes. It is safe for concurrent use.
type Cache struct {
	entries map[string]*Entry
	mu      sync.RWMutex
}

// New creates an empty cache
func New() *Cache {
	return &Cache{
		entries: make(map[string]*Entry),
	}
}

// Get retrieves the entry for path
func (c *Cache) Get(path string) (*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[path]
	return entry, exists
}

// Set records hash for path
func (c *Cache) Set(path, hash string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[path] = &Entry{
		Path:      path,
		Hash:      hash,
		UpdatedAt: time.Now(),
	}
}

// Changed reports whether hash differs from the one recorded for path, and
// records it. An unknown path counts as changed.
func (c *Cache) Changed(path, hash string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[path]; ok && entry.Hash == hash {
		return false
	}
	c.entries[path] = &Entry{Path: path, Hash: hash, UpdatedAt: time.Now()}
	return true
}

// Refresh hashes every file in paths and reports whether any of them changed
// since the last call. Every file is hashed even after a change is found.
func (c *Cache) Refresh(paths ...string) (bool, error) {
	changed := false
	for _, path := range paths {
		hash, err := HashFile(path)
		if err != nil {
			c.Invalidate(path)
			return true, err
		}
		if c.Changed(path, hash) {
			changed = true
		}
	}
	return changed, nil
}

// Invalidate removes an entry from the cache
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, path)
}

// InvalidateAll clears the entire cache
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*Entry)
}

// Size returns the number of cached entries
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Prune removes entries not updated within maxAge
func (c *Cache) Prune(maxAge time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	pruned := 0

	for path, entry := range c.entries {
		if now.Sub(entry.UpdatedAt) > maxAge {
			delete(c.entries, path)
			pruned++
		}
	}

	return pruned
}
