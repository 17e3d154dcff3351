package scorer

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of window results kept when no size is
// configured
const DefaultCacheSize = 4096

// Cache provides in-memory LRU caching of per-window candidate lists keyed
// by content+parameter hash. It lives inside the provider, outside the core
// pipeline, so repeated windows (overlap regions, retried jobs) skip the
// remote call.
type Cache struct {
	cache *lru.Cache[string, []Candidate]
}

// NewCache creates a candidate cache with LRU eviction
func NewCache(maxLen int) *Cache {
	if maxLen <= 0 {
		maxLen = DefaultCacheSize
	}
	cache, err := lru.New[string, []Candidate](maxLen)
	if err != nil {
		// Only reachable with a non-positive size, which is corrected above
		cache, _ = lru.New[string, []Candidate](DefaultCacheSize)
	}
	return &Cache{cache: cache}
}

// Get retrieves a copy of a cached candidate list. A copy is returned so
// caller mutations cannot pollute the cache.
func (c *Cache) Get(key string) ([]Candidate, bool) {
	cands, ok := c.cache.Get(key)
	if !ok {
		return nil, false
	}
	out := make([]Candidate, len(cands))
	copy(out, cands)
	return out, true
}

// Set stores a candidate list with automatic LRU eviction
func (c *Cache) Set(key string, cands []Candidate) {
	stored := make([]Candidate, len(cands))
	copy(stored, cands)
	c.cache.Add(key, stored)
}

// Len returns the current cache size
func (c *Cache) Len() int {
	return c.cache.Len()
}

// Purge empties the cache
func (c *Cache) Purge() {
	c.cache.Purge()
}
