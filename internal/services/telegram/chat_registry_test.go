package telegram

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dabwish/internal/testsupport"
	"dabwish/pkg/errors"
	"dabwish/pkg/logger"
)

func TestRegisterAndLookupAreNormalized(t *testing.T) {
	registry := NewChatRegistry(testsupport.NewMockChatLinkRepository(), logger.NewNop())
	ctx := context.Background()

	require.NoError(t, registry.Register(ctx, "@Alice", 555, nil))

	chatID, ok, err := registry.GetChatID(ctx, " alice ")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(555), chatID)
}

func TestRegisterOverwritesChatID(t *testing.T) {
	repo := testsupport.NewMockChatLinkRepository()
	registry := NewChatRegistry(repo, logger.NewNop())
	ctx := context.Background()
	userID := int64(1)

	require.NoError(t, registry.Register(ctx, "alice", 555, &userID))
	require.NoError(t, registry.Register(ctx, "ALICE", 556, nil))

	chatID, ok, err := registry.GetChatID(ctx, "alice")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(556), chatID)

	link, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, link.UserID)
	assert.Equal(t, userID, *link.UserID, "nil user id keeps the stored one")
}

func TestGetChatIDUnknownUsername(t *testing.T) {
	registry := NewChatRegistry(testsupport.NewMockChatLinkRepository(), logger.NewNop())

	_, ok, err := registry.GetChatID(context.Background(), "nobody")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRegistryErrors(t *testing.T) {
	repo := testsupport.NewMockChatLinkRepository()
	registry := NewChatRegistry(repo, logger.NewNop())
	ctx := context.Background()

	assert.ErrorIs(t, registry.Register(ctx, " @ ", 1, nil), errors.ErrInvalidInput)

	repo.Err = errors.ErrUnavailable
	assert.ErrorIs(t, registry.Register(ctx, "alice", 1, nil), errors.ErrUnavailable)

	_, _, err := registry.GetChatID(ctx, "alice")
	assert.ErrorIs(t, err, errors.ErrUnavailable)
}
