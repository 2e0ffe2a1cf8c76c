package workers

import (
	"context"
	"time"

	"dabwish/pkg/logger"
)

// Worker names
const (
	VerificationCodeCleanup    = "verification_code_cleanup"
	PendingVerificationCleanup = "pending_verification_cleanup"
)

// ExpiredCodePurger deletes expired verification codes
type ExpiredCodePurger interface {
	CleanupExpiredCodes(ctx context.Context) (int64, error)
}

// PendingSweeper drops pending verifications older than their TTL
type PendingSweeper interface {
	CleanupExpired() int
}

// NewVerificationCodeCleanupWorker purges expired verification codes from Postgres
func NewVerificationCodeCleanupWorker(purger ExpiredCodePurger, interval time.Duration, log *logger.Logger) *Job {
	log = log.With("worker", VerificationCodeCleanup)
	return NewJob(VerificationCodeCleanup, interval, func(ctx context.Context) error {
		deleted, err := purger.CleanupExpiredCodes(ctx)
		if deleted > 0 {
			log.Infow("Cleaned up expired verification codes", "deleted", deleted)
		}
		return err
	})
}

// NewPendingVerificationCleanupWorker sweeps the notifier's in-memory pending store
func NewPendingVerificationCleanupWorker(store PendingSweeper, interval time.Duration, log *logger.Logger) *Job {
	log = log.With("worker", PendingVerificationCleanup)
	return NewJob(PendingVerificationCleanup, interval, func(context.Context) error {
		if removed := store.CleanupExpired(); removed > 0 {
			log.Infow("Cleaned up expired pending verifications", "removed", removed)
		}
		return nil
	})
}
