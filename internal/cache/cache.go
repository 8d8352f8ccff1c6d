// SPDX-License-Identifier: MIT

// Package cache holds rendered listing pages so repeat listing requests skip
// the database. A metadata commit invalidates the whole cache; entries also
// expire on their own TTL, which is what heals a missed invalidation.
package cache

import (
	"context"
	"sync"
	"time"
)

// Cache stores serialized listing pages keyed by listing parameters.
type Cache interface {
	// Get retrieves a cached page. ok is false when absent or expired.
	Get(ctx context.Context, key string) (data []byte, ok bool)
	// Set stores a page with the given TTL.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration)
	// Clear drops every cached page. Called after a commit.
	Clear(ctx context.Context)
	// Stats returns hit/miss counters.
	Stats() Stats
}

// Stats holds cache performance counters.
type Stats struct {
	Hits   int64
	Misses int64
	Sets   int64
}

type memoryEntry struct {
	data       []byte
	expiration time.Time
}

// memoryCache is the in-process fallback used when no redis address is
// configured.
type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	stats   Stats
	janitor *janitor
}

// NewMemoryCache creates an in-memory cache. cleanupInterval controls how
// often expired entries are swept; zero disables the sweeper.
func NewMemoryCache(cleanupInterval time.Duration) Cache {
	c := &memoryCache{entries: make(map[string]memoryEntry)}
	if cleanupInterval > 0 {
		c.janitor = &janitor{
			interval: cleanupInterval,
			stop:     make(chan struct{}),
		}
		go c.janitor.run(c)
	}
	return c
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, found := c.entries[key]
	if !found || time.Now().After(e.expiration) {
		c.stats.Misses++
		return nil, false
	}
	c.stats.Hits++
	return e.data, true
}

func (c *memoryCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{data: data, expiration: time.Now().Add(ttl)}
	c.stats.Sets++
}

func (c *memoryCache) Clear(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]memoryEntry)
}

func (c *memoryCache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

func (c *memoryCache) deleteExpired() {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.entries {
		if now.After(e.expiration) {
			delete(c.entries, key)
		}
	}
}

// Stop stops the background sweeper.
func (c *memoryCache) Stop() {
	if c.janitor != nil {
		c.janitor.stop <- struct{}{}
	}
}

type janitor struct {
	interval time.Duration
	stop     chan struct{}
}

func (j *janitor) run(c *memoryCache) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.deleteExpired()
		case <-j.stop:
			return
		}
	}
}

// noOpCache disables caching entirely.
type noOpCache struct{}

// NewNoOpCache creates a cache that never stores anything.
func NewNoOpCache() Cache {
	return noOpCache{}
}

func (noOpCache) Get(context.Context, string) ([]byte, bool)            { return nil, false }
func (noOpCache) Set(context.Context, string, []byte, time.Duration)    {}
func (noOpCache) Clear(context.Context)                                 {}
func (noOpCache) Stats() Stats                                          { return Stats{} }
