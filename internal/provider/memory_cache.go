package provider

import (
	"context"
	"sync"
	"time"
)

type cacheEntry struct {
	expiry time.Time
	value  []byte
}

// MemoryCache is a process-local Cache.
type MemoryCache struct {
	entries   map[string]cacheEntry
	stopCh    chan struct{}
	now       func() time.Time
	mu        sync.RWMutex
	closeOnce sync.Once
}

// NewMemoryCache creates a cache and starts its cleanup goroutine.
func NewMemoryCache() *MemoryCache {
	return newMemoryCache(5*time.Minute, time.Now)
}

func newMemoryCache(sweep time.Duration, now func() time.Time) *MemoryCache {
	c := &MemoryCache{
		entries: make(map[string]cacheEntry),
		stopCh:  make(chan struct{}),
		now:     now,
	}
	go c.cleanup(sweep)
	return c
}

// Get returns a copy of the value if it exists and hasn't expired.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || !c.now().Before(entry.expiry) {
		return nil, false, nil
	}
	return append([]byte(nil), entry.value...), true, nil
}

// Set stores a copy of value.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		value:  append([]byte(nil), value...),
		expiry: c.now().Add(ttl),
	}
	return nil
}

// Delete removes key.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the cleanup goroutine.
func (c *MemoryCache) Close() error {
	c.closeOnce.Do(func() { close(c.stopCh) })
	return nil
}

func (c *MemoryCache) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.evictExpired()
		}
	}
}

func (c *MemoryCache) evictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for key, entry := range c.entries {
		if !now.Before(entry.expiry) {
			delete(c.entries, key)
		}
	}
}
