package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dabwish/internal/domain/subscription"
	"dabwish/internal/testsupport"
)

func TestSubscriptionRepository_Lifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := testsupport.NewTestPostgres(t)

	repo := NewSubscriptionRepository(testDB.Tx())
	fixtures := NewTestFixtures(t, testDB.Tx())
	ctx := context.Background()

	alice := fixtures.CreateUser()
	bob := fixtures.CreateUser()

	s := &subscription.Subscription{SubscriberID: bob.ID, SubscribedToID: alice.ID}
	require.NoError(t, repo.Create(ctx, s))
	assert.NotZero(t, s.ID)

	exists, err := repo.Exists(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	subscribers, total, err := repo.ListSubscribers(ctx, alice.ID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, subscribers, 1)
	assert.Equal(t, bob.ID, subscribers[0].ID)

	following, total, err := repo.ListSubscriptions(ctx, bob.ID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, following, 1)
	assert.Equal(t, alice.ID, following[0].ID)

	removed, err := repo.Delete(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Delete(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestSubscriptionRepository_ListTelegramFollowers(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := testsupport.NewTestPostgres(t)

	repo := NewSubscriptionRepository(testDB.Tx())
	fixtures := NewTestFixtures(t, testDB.Tx())
	ctx := context.Background()

	owner := fixtures.CreateUser()
	username := testsupport.UniqueUsername()
	linked := fixtures.CreateUser(WithTelegram(username))
	unlinked := fixtures.CreateUser()

	require.NoError(t, repo.Create(ctx, &subscription.Subscription{SubscriberID: linked.ID, SubscribedToID: owner.ID}))
	require.NoError(t, repo.Create(ctx, &subscription.Subscription{SubscriberID: unlinked.ID, SubscribedToID: owner.ID}))

	followers, err := repo.ListTelegramFollowers(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, subscription.Follower{UserID: linked.ID, Name: linked.Name, TelegramUsername: username}, followers[0])
}
