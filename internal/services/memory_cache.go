package services

import (
	"context"
	"time"

	cache "github.com/patrickmn/go-cache"
)

// MemoryCache is an in-process TTL cache implementing the Cache interface.
// Used when REDIS_URL is not configured, and as the cache double in tests.
type MemoryCache struct {
	c *cache.Cache
}

// NewMemoryCache creates an in-process cache with the given default TTL.
func NewMemoryCache(defaultTTL time.Duration) *MemoryCache {
	return &MemoryCache{
		c: cache.New(defaultTTL, 10*time.Minute),
	}
}

func (m *MemoryCache) Get(_ context.Context, key string) (string, error) {
	val, found := m.c.Get(key)
	if !found {
		return "", ErrCacheMiss
	}
	return val.(string), nil
}

func (m *MemoryCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if ttl == NoExpiration {
		m.c.Set(key, value, cache.NoExpiration)
		return nil
	}
	m.c.Set(key, value, ttl)
	return nil
}

func (m *MemoryCache) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		m.c.Delete(key)
	}
	return nil
}
