package clickhouse

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dabwish/internal/domain/wish"
	"dabwish/internal/testsupport"
)

func newTestIndex(t *testing.T) *WishSearchIndex {
	t.Helper()
	client := testsupport.NewTestClickHouse(t)
	idx := NewWishSearchIndex(client.Conn(), testsupport.TempTable(t, client, "wish_search_test"))
	require.NoError(t, idx.EnsureSchema(context.Background()))
	return idx
}

func TestWishSearchIndex_UpsertAndSearch(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	idx := newTestIndex(t)
	ctx := context.Background()
	created := time.Now().UTC().Truncate(time.Millisecond)

	require.NoError(t, idx.Upsert(ctx,
		wish.Document{ID: 1, OwnerID: 10, Title: "Road Bike", CreatedAt: created},
		wish.Document{ID: 2, OwnerID: 20, Title: "Helmet", Description: "for my bike", CreatedAt: created.Add(time.Second)},
		wish.Document{ID: 3, OwnerID: 20, Title: "Book", CreatedAt: created},
	))

	ids, total, err := idx.Search(ctx, "BIKE", nil, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids, "title matches rank first")
	assert.Equal(t, 2, total)

	ids, total, err = idx.Search(ctx, "bike", nil, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids)
	assert.Equal(t, 2, total)

	owner := int64(10)
	ids, total, err = idx.Search(ctx, "bike", &owner, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids)
	assert.Equal(t, 1, total)
}

func TestWishSearchIndex_UpsertReplacesAndDeleteRemoves(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	idx := newTestIndex(t)
	ctx := context.Background()
	created := time.Now().UTC()

	require.NoError(t, idx.Upsert(ctx, wish.Document{ID: 7, OwnerID: 1, Title: "Guitar", CreatedAt: created}))
	idx.now = func() time.Time { return created.Add(time.Minute) }
	require.NoError(t, idx.Upsert(ctx, wish.Document{ID: 7, OwnerID: 1, Title: "Piano", CreatedAt: created}))

	ids, _, err := idx.Search(ctx, "guitar", nil, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, ids)

	ids, _, err = idx.Search(ctx, "piano", nil, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{7}, ids)

	require.NoError(t, idx.Delete(ctx, 7))
	ids, _, err = idx.Search(ctx, "piano", nil, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestWishSearchIndex_UpsertNothing(t *testing.T) {
	idx := NewWishSearchIndex(nil, "")
	assert.NoError(t, idx.Upsert(context.Background()))
	assert.Equal(t, DefaultWishSearchTable, idx.table)
}
