package suggest

import (
	"sync"

	"github.com/charmbracelet/log"
)

// Cache keeps recent suggestion lists for one dictionary generation. It is
// thrown away together with the trie when the active dictionary changes, so
// it never serves words from a previous list.
type Cache struct {
	entries     map[string][]string
	accessTime  map[string]int64
	accessCount int64
	hits        int64
	maxEntries  int
	mu          sync.RWMutex
}

// NewCache returns a cache holding up to maxEntries inputs. A size below 1
// disables caching.
func NewCache(maxEntries int) *Cache {
	return &Cache{
		entries:    make(map[string][]string, max(maxEntries, 0)),
		accessTime: make(map[string]int64, max(maxEntries, 0)),
		maxEntries: maxEntries,
	}
}

// Get returns a copy of the cached list for the lowercased input.
func (c *Cache) Get(lowerInput string) ([]string, bool) {
	if c == nil || c.maxEntries < 1 {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	list, ok := c.entries[lowerInput]
	if !ok {
		return nil, false
	}
	c.hits++
	c.markAccessed(lowerInput)

	out := make([]string, len(list))
	copy(out, list)
	return out, true
}

// Put stores list for the lowercased input, evicting the least recently
// used entry when full.
func (c *Cache) Put(lowerInput string, list []string) {
	if c == nil || c.maxEntries < 1 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[lowerInput]; !exists && len(c.entries) >= c.maxEntries {
		c.evictLRU()
	}
	stored := make([]string, len(list))
	copy(stored, list)
	c.entries[lowerInput] = stored
	c.markAccessed(lowerInput)
}

// Stats returns counters for diagnostics.
func (c *Cache) Stats() map[string]int {
	if c == nil {
		return map[string]int{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	return map[string]int{
		"cacheEntries": len(c.entries),
		"maxEntries":   c.maxEntries,
		"cacheHits":    int(c.hits),
	}
}

func (c *Cache) markAccessed(key string) {
	c.accessCount++
	c.accessTime[key] = c.accessCount
}

func (c *Cache) evictLRU() {
	var oldestKey string
	var oldestTime int64 = 9223372036854775807

	for key, accessTime := range c.accessTime {
		if accessTime < oldestTime {
			oldestTime = accessTime
			oldestKey = key
		}
	}

	if len(c.accessTime) > 0 {
		delete(c.entries, oldestKey)
		delete(c.accessTime, oldestKey)
		log.Debugf("Evicted '%s' from suggestion cache", oldestKey)
	}
}
