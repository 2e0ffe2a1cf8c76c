package redis

import (
	"context"
	"time"

	redisadapter "dabwish/internal/adapters/redis"
	"dabwish/internal/cache"
	"dabwish/pkg/errors"
)

// Cache implements cache.Cache on top of Redis. Keys are namespaced by prefix
// so several services can share one database.
type Cache struct {
	client *redisadapter.Client
	prefix string
}

var _ cache.Cache = (*Cache)(nil)

// NewCache creates a Redis backed cache
func NewCache(client *redisadapter.Client, prefix string) *Cache {
	return &Cache{client: client, prefix: prefix}
}

func (c *Cache) key(k string) string {
	return c.prefix + k
}

func (c *Cache) Get(ctx context.Context, key string, dest interface{}) error {
	if err := c.client.Get(ctx, c.key(key), dest); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return errors.ErrNotFound
		}
		return errors.Wrapf(err, "failed to read cache key %s", key)
	}
	return nil
}

func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.key(key), value, ttl); err != nil {
		return errors.Wrapf(err, "failed to write cache key %s", key)
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.key(k)
	}
	return c.client.Delete(ctx, full...)
}

func (c *Cache) DeleteMatching(ctx context.Context, pattern string) (int, error) {
	return c.client.DeleteMatching(ctx, c.key(pattern))
}
