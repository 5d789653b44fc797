package cache

import (
	"context"
	"time"

	"github.com/n0madsky/profile-api-assignment/internal/ports"
	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache is the process-local cache used when no Redis URL is set.
type MemoryCache struct {
	store *gocache.Cache
}

func NewMemoryCache(defaultTTL, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{store: gocache.New(defaultTTL, cleanupInterval)}
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, error) {
	value, ok := c.store.Get(key)
	if !ok {
		return "", ports.ErrCacheMiss
	}
	s, ok := value.(string)
	if !ok {
		return "", ports.ErrCacheMiss
	}
	return s, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	c.store.Set(key, value, ttl)
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		c.store.Delete(key)
	}
	return nil
}

func (c *MemoryCache) Len() int {
	return c.store.ItemCount()
}
