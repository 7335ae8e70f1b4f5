package db

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"
)

// Cache stores rendered analytics payloads per user. Every write to a user's
// ledger must call InvalidateUser.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, userID int64, key string, value []byte)
	InvalidateUser(ctx context.Context, userID int64)
	Close() error
}

// CacheKey builds the key of an analytics payload. Query values are encoded
// in sorted order so equivalent requests share an entry.
func CacheKey(userID int64, name string, query url.Values) string {
	return fmt.Sprintf("analytics:%d:%s:%s", userID, name, query.Encode())
}

// MemoryCache is an in-process Cache backed by ristretto.
type MemoryCache struct {
	cache *ristretto.Cache
	ttl   time.Duration

	// Cache keys per user with their expiry, to allow for clearing all of
	// one user's entries. Expired keys are pruned on the next Set.
	mu   sync.Mutex
	keys map[int64]map[string]time.Time
	now  func() time.Time
}

func NewMemoryCache(ttl time.Duration) (*MemoryCache, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 100000,   // number of keys to track frequency of
		MaxCost:     64 << 20, // bytes
		BufferItems: 64,       // number of keys per Get buffer
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}
	return &MemoryCache{cache: cache, ttl: ttl, keys: make(map[int64]map[string]time.Time), now: time.Now}, nil
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	v, ok := c.cache.Get(key)
	if !ok {
		return nil, false
	}
	b, ok := v.([]byte)
	return b, ok
}

func (c *MemoryCache) Set(_ context.Context, userID int64, key string, value []byte) {
	now := c.now()
	c.mu.Lock()
	set := c.keys[userID]
	if set == nil {
		set = make(map[string]time.Time)
		c.keys[userID] = set
	}
	for k, expires := range set {
		if now.After(expires) {
			delete(set, k)
		}
	}
	set[key] = now.Add(c.ttl)
	c.mu.Unlock()
	c.cache.SetWithTTL(key, value, int64(len(value)), c.ttl)
}

func (c *MemoryCache) InvalidateUser(_ context.Context, userID int64) {
	c.mu.Lock()
	for key := range c.keys[userID] {
		c.cache.Del(key)
	}
	delete(c.keys, userID)
	c.mu.Unlock()
}

// Wait blocks until buffered writes are visible to Get.
func (c *MemoryCache) Wait() {
	c.cache.Wait()
}

func (c *MemoryCache) Close() error {
	c.cache.Close()
	return nil
}

// NopCache never stores anything.
type NopCache struct{}

func (NopCache) Get(context.Context, string) ([]byte, bool) {
	return nil, false
}

func (NopCache) Set(context.Context, int64, string, []byte) {}

func (NopCache) InvalidateUser(context.Context, int64) {}

func (NopCache) Close() error {
	return nil
}
