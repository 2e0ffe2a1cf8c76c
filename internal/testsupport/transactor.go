package testsupport

import (
	"context"
	"sync"

	"dabwish/internal/adapters/postgres"
	"dabwish/pkg/logger"
)

// Transactor runs units of work without a database while keeping the real
// commit and rollback hook semantics. Set CommitErr to simulate a failed commit.
type Transactor struct {
	CommitErr error

	mu        sync.Mutex
	commits   int
	rollbacks int
}

// NewTransactor creates a transactor whose commits succeed
func NewTransactor() *Transactor {
	return &Transactor{}
}

// WithinTx mirrors postgres.Client.WithinTx; nested calls join the outer scope
func (t *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if postgres.InTransaction(ctx) {
		return fn(ctx)
	}
	return postgres.RunScoped(ctx, logger.NewNop(), fn, t.commit, t.rollback)
}

func (t *Transactor) commit() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.CommitErr != nil {
		return t.CommitErr
	}
	t.commits++
	return nil
}

func (t *Transactor) rollback() error {
	t.mu.Lock()
	t.rollbacks++
	t.mu.Unlock()
	return nil
}

// Commits returns the number of successful commits
func (t *Transactor) Commits() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.commits
}

// Rollbacks returns the number of rollbacks
func (t *Transactor) Rollbacks() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rollbacks
}
