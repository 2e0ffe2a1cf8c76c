package testsupport

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"dabwish/internal/adapters/postgres"
	"dabwish/pkg/errors"
)

func TestTransactor_CommitRunsCommitHooks(t *testing.T) {
	tx := NewTransactor()
	var committed, rolledBack bool

	err := tx.WithinTx(context.Background(), func(ctx context.Context) error {
		postgres.AfterCommit(ctx, func(context.Context) { committed = true })
		postgres.AfterRollback(ctx, func(context.Context) { rolledBack = true })
		return nil
	})

	assert.NoError(t, err)
	assert.True(t, committed)
	assert.False(t, rolledBack)
	assert.Equal(t, 1, tx.Commits())
}

func TestTransactor_CommitFailureRunsRollbackHooks(t *testing.T) {
	tx := NewTransactor()
	tx.CommitErr = errors.ErrUnavailable
	var committed, rolledBack bool

	err := tx.WithinTx(context.Background(), func(ctx context.Context) error {
		postgres.AfterCommit(ctx, func(context.Context) { committed = true })
		postgres.AfterRollback(ctx, func(context.Context) { rolledBack = true })
		return nil
	})

	assert.ErrorIs(t, err, errors.ErrUnavailable)
	assert.False(t, committed)
	assert.True(t, rolledBack)
	assert.Equal(t, 0, tx.Commits())
}

func TestTransactor_NestedCallJoinsOuter(t *testing.T) {
	tx := NewTransactor()

	err := tx.WithinTx(context.Background(), func(ctx context.Context) error {
		return tx.WithinTx(ctx, func(context.Context) error { return nil })
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, tx.Commits())
}
