package server

import (
	"sync"
	"time"

	"github.com/ogulcanaydogan/fairparity/pkg/types"
)

type cacheEntry struct {
	results   []types.MetricResult
	expiresAt time.Time
}

// resultCache keeps computed results by request digest until they expire.
// A nil cache is valid and never hits.
type resultCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

func newResultCache(ttl time.Duration) *resultCache {
	if ttl <= 0 {
		return nil
	}
	return &resultCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

func (c *resultCache) get(key string, now time.Time) ([]types.MetricResult, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if e.expiresAt.After(now) {
		return e.results, true
	}
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil, false
}

func (c *resultCache) put(key string, results []types.MetricResult, now time.Time) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries[key] = cacheEntry{results: results, expiresAt: now.Add(c.ttl)}
	c.mu.Unlock()
}

func (c *resultCache) size() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
