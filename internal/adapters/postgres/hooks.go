package postgres

import (
	"context"
	"fmt"
	"sync"

	"dabwish/pkg/errors"
	"dabwish/pkg/logger"
)

// Hook is a side effect deferred until a transaction outcome is known
type Hook func(ctx context.Context)

type hookScope struct {
	mu            sync.Mutex
	afterCommit   []Hook
	afterRollback []Hook
	// base is the context the scope was opened with, before any tx value was attached
	base context.Context
}

type scopeKey struct{}

func scopeFrom(ctx context.Context) *hookScope {
	s, _ := ctx.Value(scopeKey{}).(*hookScope)
	return s
}

// InTransaction reports whether ctx belongs to an open unit of work
func InTransaction(ctx context.Context) bool {
	return scopeFrom(ctx) != nil
}

// AfterCommit queues fn to run after the surrounding transaction commits.
// Outside a transaction fn runs immediately.
func AfterCommit(ctx context.Context, fn Hook) {
	s := scopeFrom(ctx)
	if s == nil {
		fn(ctx)
		return
	}
	s.mu.Lock()
	s.afterCommit = append(s.afterCommit, fn)
	s.mu.Unlock()
}

// AfterRollback queues fn to run after the surrounding transaction rolls back.
// Outside a transaction it is ignored.
func AfterRollback(ctx context.Context, fn Hook) {
	s := scopeFrom(ctx)
	if s == nil {
		return
	}
	s.mu.Lock()
	s.afterRollback = append(s.afterRollback, fn)
	s.mu.Unlock()
}

// RunScoped opens a hook scope, runs fn, and finishes with commit or rollback.
// Commit hooks run only after a successful commit; rollback hooks run when fn
// fails or commit fails. Hook failures are logged and never change the result.
func RunScoped(
	ctx context.Context,
	log *logger.Logger,
	fn func(ctx context.Context) error,
	commit func() error,
	rollback func() error,
) (err error) {
	scope := &hookScope{base: context.WithoutCancel(ctx)}
	scoped := context.WithValue(ctx, scopeKey{}, scope)

	defer func() {
		if p := recover(); p != nil {
			if rbErr := rollback(); rbErr != nil {
				log.Warnw("rollback after panic failed", "error", rbErr)
			}
			scope.drain(false, log)
			panic(p)
		}
	}()

	if err = fn(scoped); err != nil {
		if rbErr := rollback(); rbErr != nil {
			log.Warnw("rollback failed", "error", rbErr)
		}
		scope.drain(false, log)
		return err
	}

	if err = commit(); err != nil {
		scope.drain(false, log)
		return errors.Wrap(err, "commit transaction")
	}

	scope.drain(true, log)
	return nil
}

func (s *hookScope) drain(committed bool, log *logger.Logger) {
	s.mu.Lock()
	queued, phase := s.afterRollback, "after_rollback"
	if committed {
		queued, phase = s.afterCommit, "after_commit"
	}
	s.afterCommit, s.afterRollback = nil, nil
	s.mu.Unlock()

	for i, h := range queued {
		runHook(s.base, h, log, phase, i)
	}
}

func runHook(ctx context.Context, h Hook, log *logger.Logger, phase string, idx int) {
	defer func() {
		if p := recover(); p != nil {
			log.Errorw("transaction hook panicked",
				"phase", phase,
				"index", idx,
				"panic", fmt.Sprint(p),
			)
		}
	}()
	h(ctx)
}
