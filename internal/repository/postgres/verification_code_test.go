package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dabwish/internal/domain/verification"
	"dabwish/internal/testsupport"
	"dabwish/pkg/errors"
)

func TestVerificationCodeRepository_CreateGetDelete(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := testsupport.NewTestPostgres(t)

	repo := NewVerificationCodeRepository(testDB.Tx())
	fixtures := NewTestFixtures(t, testDB.Tx())
	ctx := context.Background()

	u := fixtures.CreateUser()
	c := &verification.Code{
		UserID:           u.ID,
		TelegramUsername: testsupport.UniqueUsername(),
		Code:             "482913",
		ExpiresAt:        time.Now().Add(10 * time.Minute),
	}
	require.NoError(t, repo.Create(ctx, c))
	assert.NotZero(t, c.ID)

	got, err := repo.GetForUser(ctx, u.ID, "482913")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.UserID)
	assert.Equal(t, c.TelegramUsername, got.TelegramUsername)
	assert.WithinDuration(t, c.ExpiresAt, got.ExpiresAt, time.Millisecond)

	require.NoError(t, repo.DeleteByUserID(ctx, u.ID))
	_, err = repo.GetForUser(ctx, u.ID, "482913")
	assert.ErrorIs(t, err, errors.ErrNotFound)

	// deleting again is not an error
	require.NoError(t, repo.DeleteByUserID(ctx, u.ID))
}

func TestVerificationCodeRepository_SameDigitsForTwoUsers(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := testsupport.NewTestPostgres(t)

	repo := NewVerificationCodeRepository(testDB.Tx())
	fixtures := NewTestFixtures(t, testDB.Tx())
	ctx := context.Background()

	older, newer := fixtures.CreateUser(), fixtures.CreateUser()
	for _, u := range []int64{older.ID, newer.ID} {
		require.NoError(t, repo.Create(ctx, &verification.Code{
			UserID:           u,
			TelegramUsername: testsupport.UniqueUsername(),
			Code:             "135790",
			ExpiresAt:        time.Now().Add(10 * time.Minute),
		}))
	}

	got, err := repo.GetForUser(ctx, older.ID, "135790")
	require.NoError(t, err)
	assert.Equal(t, older.ID, got.UserID)

	_, err = repo.GetForUser(ctx, older.ID, "000000")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestVerificationCodeRepository_ListExpiredIDs(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := testsupport.NewTestPostgres(t)

	repo := NewVerificationCodeRepository(testDB.Tx())
	fixtures := NewTestFixtures(t, testDB.Tx())
	ctx := context.Background()
	now := time.Now()

	expired := &verification.Code{UserID: fixtures.CreateUser().ID, TelegramUsername: "a", Code: "111111", ExpiresAt: now.Add(-time.Minute)}
	fresh := &verification.Code{UserID: fixtures.CreateUser().ID, TelegramUsername: "b", Code: "222222", ExpiresAt: now.Add(time.Minute)}
	require.NoError(t, repo.Create(ctx, expired))
	require.NoError(t, repo.Create(ctx, fresh))

	ids, err := repo.ListExpiredIDs(ctx, now, 1000)
	require.NoError(t, err)
	assert.Contains(t, ids, expired.ID)
	assert.NotContains(t, ids, fresh.ID)

	require.NoError(t, repo.DeleteByID(ctx, expired.ID))
	ids, err = repo.ListExpiredIDs(ctx, now, 1000)
	require.NoError(t, err)
	assert.NotContains(t, ids, expired.ID)
}
