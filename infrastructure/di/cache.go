package di

import (
	"context"
	"sync"
	"time"
)

// InMemoryCache provides a simple in-memory cache implementation.
// Lambda instances each keep their own copy, so entries must be short lived.
type InMemoryCache struct {
	mu       sync.RWMutex
	items    map[string]cacheItem
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

type cacheItem struct {
	value     interface{}
	expiresAt time.Time
}

// NewInMemoryCache creates a new in-memory cache that sweeps expired
// entries every cleanupInterval
func NewInMemoryCache(cleanupInterval time.Duration) *InMemoryCache {
	if cleanupInterval <= 0 {
		cleanupInterval = time.Minute
	}
	cache := &InMemoryCache{
		items: make(map[string]cacheItem),
		now:   time.Now,
		stop:  make(chan struct{}),
	}

	// Start cleanup goroutine
	go cache.cleanupExpired(cleanupInterval)

	return cache
}

// Get retrieves a value from cache
func (c *InMemoryCache) Get(ctx context.Context, key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, exists := c.items[key]
	if !exists {
		return nil, false
	}

	if c.now().After(item.expiresAt) {
		return nil, false
	}

	return item.value, true
}

// Set stores a value in cache with TTL in seconds. A non-positive TTL
// stores nothing.
func (c *InMemoryCache) Set(ctx context.Context, key string, value interface{}, ttl int) error {
	if ttl <= 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = cacheItem{
		value:     value,
		expiresAt: c.now().Add(time.Duration(ttl) * time.Second),
	}

	return nil
}

// Delete removes a value from cache
func (c *InMemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
	return nil
}

// Clear removes all values from cache
func (c *InMemoryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]cacheItem)
	return nil
}

// Len returns the number of stored entries, expired or not
func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Stop ends the cleanup goroutine
func (c *InMemoryCache) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// cleanupExpired periodically removes expired items
func (c *InMemoryCache) cleanupExpired(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.evictExpired()
		case <-c.stop:
			return
		}
	}
}

func (c *InMemoryCache) evictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, item := range c.items {
		if now.After(item.expiresAt) {
			delete(c.items, key)
		}
	}
}
