package search

import (
	"context"
	"sync"
	"time"
)

const (
	defaultCacheTTL      = time.Hour
	defaultSweepInterval = 5 * time.Minute
)

// Cache is a key/value store with per-entry TTL. Values are opaque serialized
// payloads; the cache never inspects or mutates them. An expired entry
// behaves exactly like a miss.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCache is the in-process Cache backend. Expiry is lazy at read time,
// with an optional background sweep to reclaim entries nobody reads again.
// No maximum size is enforced; request volume is expected to stay low.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	sweep   time.Duration
}

type MemoryCacheOption func(*MemoryCache)

func WithSweepInterval(interval time.Duration) MemoryCacheOption {
	return func(c *MemoryCache) {
		if interval > 0 {
			c.sweep = interval
		}
	}
}

func NewMemoryCache(opts ...MemoryCacheOption) *MemoryCache {
	cache := &MemoryCache{
		entries: make(map[string]memoryEntry),
		sweep:   defaultSweepInterval,
	}
	for _, opt := range opts {
		opt(cache)
	}
	return cache
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have renewed it.
		if current, ok := c.entries[key]; ok && time.Now().After(current.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false, nil
	}
	return entry.value, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	c.mu.Lock()
	c.entries[key] = memoryEntry{value: value, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
	return nil
}

// StartSweep runs a periodic sweep that drops expired entries until ctx is
// cancelled. Lazy expiry already guarantees correctness; the sweep only keeps
// memory from accumulating keys that are never read again.
func (c *MemoryCache) StartSweep(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(c.sweep)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.removeExpired(time.Now())
			}
		}
	}()
}

func (c *MemoryCache) removeExpired(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

// Len reports the number of stored entries, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
