// Package cache holds the cache-aside contract used by the core services.
// Keys are built by the helpers below so reads and evictions agree.
package cache

import (
	"context"
	"fmt"
	"time"

	"dabwish/pkg/errors"
	"dabwish/pkg/logger"
)

// Cache is a JSON value cache. Get reports ErrNotFound for a miss.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeleteMatching(ctx context.Context, pattern string) (int, error)
}

// Noop never stores anything; every read is a miss
type Noop struct{}

func (Noop) Get(context.Context, string, interface{}) error { return errors.ErrNotFound }

func (Noop) Set(context.Context, string, interface{}, time.Duration) error { return nil }

func (Noop) Delete(context.Context, ...string) error { return nil }

func (Noop) DeleteMatching(context.Context, string) (int, error) { return 0, nil }

// GetOrLoad returns the cached value for key or calls load and caches its
// result. Cache failures are logged and fall through to load.
func GetOrLoad[T any](
	ctx context.Context,
	c Cache,
	log *logger.Logger,
	key string,
	ttl time.Duration,
	load func(ctx context.Context) (T, error),
) (T, error) {
	var cached T
	err := c.Get(ctx, key, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, errors.ErrNotFound) {
		log.Debugw("cache read failed", "key", key, "error", err)
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	if err := c.Set(ctx, key, v, ttl); err != nil {
		log.Debugw("cache write failed", "key", key, "error", err)
	}
	return v, nil
}

// Evict drops keys and patterns, logging failures
func Evict(ctx context.Context, c Cache, log *logger.Logger, keys []string, patterns ...string) {
	if err := c.Delete(ctx, keys...); err != nil {
		log.Debugw("cache evict failed", "keys", keys, "error", err)
	}
	for _, p := range patterns {
		if _, err := c.DeleteMatching(ctx, p); err != nil {
			log.Debugw("cache evict failed", "pattern", p, "error", err)
		}
	}
}

func UserKey(id int64) string { return fmt.Sprintf("users:id:%d", id) }

func WishKey(id int64) string { return fmt.Sprintf("wishes:id:%d", id) }

func UserWishesKey(userID int64, page, size int) string {
	return fmt.Sprintf("wishes:user:%d:%d:%d", userID, page, size)
}

func UserWishesPattern(userID int64) string { return fmt.Sprintf("wishes:user:%d:*", userID) }

func SubscriptionsKey(userID int64, page, size int) string {
	return fmt.Sprintf("subscriptions:%d:%d:%d", userID, page, size)
}

func SubscriptionsPattern(userID int64) string { return fmt.Sprintf("subscriptions:%d:*", userID) }
