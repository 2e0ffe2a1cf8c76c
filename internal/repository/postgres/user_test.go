package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dabwish/internal/domain/user"
	"dabwish/internal/testsupport"
	"dabwish/pkg/errors"
)

func TestUserRepository_Create(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := testsupport.NewTestPostgres(t)

	repo := NewUserRepository(testDB.Tx())
	ctx := context.Background()

	u := &user.User{Name: testsupport.UniqueName("Alice"), Role: user.RoleAdmin}
	require.NoError(t, repo.Create(ctx, u))
	assert.NotZero(t, u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	retrieved, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Name, retrieved.Name)
	assert.Equal(t, user.RoleAdmin, retrieved.Role)
	assert.Nil(t, retrieved.TelegramUsername)
	assert.Nil(t, retrieved.UpdatedAt)
}

func TestUserRepository_GetByIDNotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := testsupport.NewTestPostgres(t)

	repo := NewUserRepository(testDB.Tx())

	_, err := repo.GetByID(context.Background(), -1)
	assert.ErrorIs(t, err, errors.ErrUserNotFound)
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestUserRepository_SetTelegramUsername(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := testsupport.NewTestPostgres(t)

	repo := NewUserRepository(testDB.Tx())
	fixtures := NewTestFixtures(t, testDB.Tx())
	ctx := context.Background()

	u := fixtures.CreateUser()
	username := testsupport.UniqueUsername()

	require.NoError(t, repo.SetTelegramUsername(ctx, u.ID, username))

	locked, err := repo.GetByIDForUpdate(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, locked.HasTelegram())
	assert.Equal(t, username, *locked.TelegramUsername)
	assert.NotNil(t, locked.UpdatedAt)

	assert.ErrorIs(t, repo.SetTelegramUsername(ctx, -1, username), errors.ErrUserNotFound)
}

func TestUserRepository_DeleteCascades(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := testsupport.NewTestPostgres(t)

	repo := NewUserRepository(testDB.Tx())
	wishes := NewWishRepository(testDB.Tx())
	fixtures := NewTestFixtures(t, testDB.Tx())
	ctx := context.Background()

	u := fixtures.CreateUser()
	w := fixtures.CreateWish(u.ID)

	require.NoError(t, repo.Delete(ctx, u.ID))

	_, err := repo.GetByID(ctx, u.ID)
	assert.ErrorIs(t, err, errors.ErrUserNotFound)
	_, err = wishes.GetByID(ctx, w.ID)
	assert.ErrorIs(t, err, errors.ErrWishNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, u.ID), errors.ErrUserNotFound)
}
