package cache

import (
	"context"
	"sync"
	"time"

	"docanalyzer/internal/port"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time // zero = no expiry
}

// DefaultMemoryEntries caps a MemoryCache created by NewMemoryCache.
const DefaultMemoryEntries = 10000

// MemoryCache is an in-process port.Cache used when Redis is not configured.
// Expired entries are dropped on read and swept when the cache is full; a full
// cache with nothing expired evicts the entry closest to expiry.
type MemoryCache struct {
	mu         sync.RWMutex
	entries    map[string]memoryEntry
	maxEntries int
	now        func() time.Time
}

// NewMemoryCache creates an empty MemoryCache holding up to DefaultMemoryEntries.
func NewMemoryCache() *MemoryCache {
	return NewMemoryCacheWithLimit(DefaultMemoryEntries)
}

// NewMemoryCacheWithLimit creates an empty MemoryCache holding up to maxEntries.
func NewMemoryCacheWithLimit(maxEntries int) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMemoryEntries
	}
	return &MemoryCache{entries: map[string]memoryEntry{}, maxEntries: maxEntries, now: time.Now}
}

// Len returns the number of stored entries, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, port.ErrCacheMiss
	}
	if !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, port.ErrCacheMiss
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.mu.Lock()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.makeRoomLocked()
	}
	c.entries[key] = e
	c.mu.Unlock()
	return nil
}

// makeRoomLocked drops expired entries, then the soonest-expiring one if the
// cache is still full. Entries without expiry go last. c.mu must be held.
func (c *MemoryCache) makeRoomLocked() {
	now := c.now()
	for k, e := range c.entries {
		if !e.expiresAt.IsZero() && !now.Before(e.expiresAt) {
			delete(c.entries, k)
		}
	}
	if len(c.entries) < c.maxEntries {
		return
	}

	var victim string
	var victimExp time.Time
	found := false
	for k, e := range c.entries {
		if found && (e.expiresAt.IsZero() || (!victimExp.IsZero() && !e.expiresAt.Before(victimExp))) {
			continue
		}
		victim, victimExp, found = k, e.expiresAt, true
	}
	if found {
		delete(c.entries, victim)
	}
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Ping(_ context.Context) error {
	return nil
}
