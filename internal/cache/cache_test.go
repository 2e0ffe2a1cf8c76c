package cache

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dabwish/pkg/errors"
	"dabwish/pkg/logger"
)

type memCache struct {
	data map[string][]byte
	fail bool
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (m *memCache) Get(_ context.Context, key string, dest interface{}) error {
	if m.fail {
		return errors.ErrUnavailable
	}
	b, ok := m.data[key]
	if !ok {
		return errors.ErrNotFound
	}
	return json.Unmarshal(b, dest)
}

func (m *memCache) Set(_ context.Context, key string, v interface{}, _ time.Duration) error {
	if m.fail {
		return errors.ErrUnavailable
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.data[key] = b
	return nil
}

func (m *memCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *memCache) DeleteMatching(_ context.Context, pattern string) (int, error) {
	prefix := strings.TrimSuffix(pattern, "*")
	n := 0
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
			n++
		}
	}
	return n, nil
}

type item struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

func TestGetOrLoadCachesResult(t *testing.T) {
	c := newMemCache()
	calls := 0
	load := func(context.Context) (item, error) {
		calls++
		return item{ID: 1, Title: "bike"}, nil
	}

	first, err := GetOrLoad(context.Background(), c, logger.NewNop(), WishKey(1), time.Minute, load)
	require.NoError(t, err)
	second, err := GetOrLoad(context.Background(), c, logger.NewNop(), WishKey(1), time.Minute, load)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestGetOrLoadDoesNotCacheErrors(t *testing.T) {
	c := newMemCache()
	_, err := GetOrLoad(context.Background(), c, logger.NewNop(), WishKey(2), time.Minute,
		func(context.Context) (item, error) { return item{}, errors.ErrWishNotFound })

	assert.ErrorIs(t, err, errors.ErrWishNotFound)
	assert.Empty(t, c.data)
}

func TestGetOrLoadFallsThroughOnCacheFailure(t *testing.T) {
	c := newMemCache()
	c.fail = true

	v, err := GetOrLoad(context.Background(), c, logger.NewNop(), UserKey(3), time.Minute,
		func(context.Context) (item, error) { return item{ID: 3}, nil })

	require.NoError(t, err)
	assert.Equal(t, int64(3), v.ID)
}

func TestEvictRemovesKeysAndPatterns(t *testing.T) {
	c := newMemCache()
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, WishKey(1), item{ID: 1}, 0))
	require.NoError(t, c.Set(ctx, UserWishesKey(7, 0, 20), []item{{ID: 1}}, 0))
	require.NoError(t, c.Set(ctx, UserWishesKey(7, 1, 20), []item{}, 0))
	require.NoError(t, c.Set(ctx, UserWishesKey(8, 0, 20), []item{}, 0))

	Evict(ctx, c, logger.NewNop(), []string{WishKey(1)}, UserWishesPattern(7))

	assert.Len(t, c.data, 1)
	assert.Contains(t, c.data, UserWishesKey(8, 0, 20))
}

func TestNoopAlwaysMisses(t *testing.T) {
	var c Noop
	require.NoError(t, c.Set(context.Background(), "k", 1, 0))
	var v int
	assert.ErrorIs(t, c.Get(context.Background(), "k", &v), errors.ErrNotFound)
}
