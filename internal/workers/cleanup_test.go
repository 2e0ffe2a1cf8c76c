package workers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"dabwish/pkg/errors"
	"dabwish/pkg/logger"
)

type fakePurger struct {
	deleted int64
	err     error
	calls   int
}

func (p *fakePurger) CleanupExpiredCodes(context.Context) (int64, error) {
	p.calls++
	return p.deleted, p.err
}

type fakeSweeper struct{ removed, calls int }

func (s *fakeSweeper) CleanupExpired() int {
	s.calls++
	return s.removed
}

func TestVerificationCodeCleanupWorker(t *testing.T) {
	purger := &fakePurger{deleted: 3}
	w := NewVerificationCodeCleanupWorker(purger, time.Hour, logger.NewNop())

	assert.Equal(t, VerificationCodeCleanup, w.Name())
	assert.Equal(t, time.Hour, w.Interval())
	assert.NoError(t, w.Run(context.Background()))
	assert.Equal(t, 1, purger.calls)

	purger.err = errors.ErrUnavailable
	assert.ErrorIs(t, w.Run(context.Background()), errors.ErrUnavailable)
}

func TestPendingVerificationCleanupWorker(t *testing.T) {
	sweeper := &fakeSweeper{removed: 2}
	w := NewPendingVerificationCleanupWorker(sweeper, time.Hour, logger.NewNop())

	assert.Equal(t, PendingVerificationCleanup, w.Name())
	assert.NoError(t, w.Run(context.Background()))
	assert.Equal(t, 1, sweeper.calls)
}

func TestStatsAverage(t *testing.T) {
	var s Stats
	assert.Zero(t, s.AvgDuration())

	now := time.Now()
	s.record(now, 10*time.Millisecond, nil)
	s.record(now, 30*time.Millisecond, errors.ErrUnavailable)

	assert.Equal(t, 20*time.Millisecond, s.AvgDuration())
	assert.Equal(t, int64(2), s.Runs)
	assert.Equal(t, int64(1), s.Failures)
	assert.ErrorIs(t, s.LastError, errors.ErrUnavailable)
}
