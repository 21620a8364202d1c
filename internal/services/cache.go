package services

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned when a key is not present in the fast cache.
// A miss is advisory: readers must fall back to the durable store,
// never treat it as "value does not exist".
var ErrCacheMiss = errors.New("cache miss")

// NoExpiration disables expiry for a cache entry.
const NoExpiration time.Duration = 0

// Cache is the fast key-value accelerator in front of the durable store.
// Implemented by RedisCache (production) and MemoryCache (redis-less runs
// and tests).
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
