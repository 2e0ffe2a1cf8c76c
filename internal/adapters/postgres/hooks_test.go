package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dabwish/pkg/logger"
)

func okFinish() error { return nil }

func TestAfterCommitOutsideTransactionRunsImmediately(t *testing.T) {
	ran := false
	AfterCommit(context.Background(), func(context.Context) { ran = true })
	assert.True(t, ran)
}

func TestAfterRollbackOutsideTransactionIsIgnored(t *testing.T) {
	ran := false
	AfterRollback(context.Background(), func(context.Context) { ran = true })
	assert.False(t, ran)
}

func TestRunScopedCommitRunsCommitHooksInOrder(t *testing.T) {
	var order []string

	err := RunScoped(context.Background(), logger.NewNop(), func(ctx context.Context) error {
		assert.True(t, InTransaction(ctx))
		AfterCommit(ctx, func(context.Context) { order = append(order, "first") })
		AfterRollback(ctx, func(context.Context) { order = append(order, "rollback") })
		AfterCommit(ctx, func(context.Context) { order = append(order, "second") })
		assert.Empty(t, order, "hooks must not run inside the transaction body")
		return nil
	}, okFinish, okFinish)

	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestRunScopedFailureRunsRollbackHooks(t *testing.T) {
	boom := errors.New("boom")
	var committed, rolledBack, rollbackCalled bool

	err := RunScoped(context.Background(), logger.NewNop(), func(ctx context.Context) error {
		AfterCommit(ctx, func(context.Context) { committed = true })
		AfterRollback(ctx, func(context.Context) { rolledBack = true })
		return boom
	}, okFinish, func() error { rollbackCalled = true; return nil })

	assert.ErrorIs(t, err, boom)
	assert.True(t, rollbackCalled)
	assert.True(t, rolledBack)
	assert.False(t, committed)
}

func TestRunScopedCommitFailureRunsRollbackHooks(t *testing.T) {
	var committed, rolledBack bool

	err := RunScoped(context.Background(), logger.NewNop(), func(ctx context.Context) error {
		AfterCommit(ctx, func(context.Context) { committed = true })
		AfterRollback(ctx, func(context.Context) { rolledBack = true })
		return nil
	}, func() error { return errors.New("serialization failure") }, okFinish)

	require.Error(t, err)
	assert.True(t, rolledBack)
	assert.False(t, committed)
}

func TestHookPanicDoesNotAffectOutcomeOrLaterHooks(t *testing.T) {
	second := false

	err := RunScoped(context.Background(), logger.NewNop(), func(ctx context.Context) error {
		AfterCommit(ctx, func(context.Context) { panic("search index down") })
		AfterCommit(ctx, func(context.Context) { second = true })
		return nil
	}, okFinish, okFinish)

	require.NoError(t, err)
	assert.True(t, second)
}

func TestHooksOutliveCancelledRequestContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var hookErr error

	err := RunScoped(ctx, logger.NewNop(), func(ctx context.Context) error {
		AfterCommit(ctx, func(hctx context.Context) { hookErr = hctx.Err() })
		cancel()
		return nil
	}, okFinish, okFinish)

	require.NoError(t, err)
	assert.NoError(t, hookErr)
}

func TestHookContextIsOutsideTransaction(t *testing.T) {
	var nestedRan bool

	err := RunScoped(context.Background(), logger.NewNop(), func(ctx context.Context) error {
		AfterCommit(ctx, func(hctx context.Context) {
			assert.False(t, InTransaction(hctx))
			AfterCommit(hctx, func(context.Context) { nestedRan = true })
		})
		return nil
	}, okFinish, okFinish)

	require.NoError(t, err)
	assert.True(t, nestedRan)
}
