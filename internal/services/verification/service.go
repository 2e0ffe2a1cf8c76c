package verification

import (
	"context"
	"time"

	"dabwish/internal/adapters/postgres"
	"dabwish/internal/cache"
	"dabwish/internal/domain/user"
	"dabwish/internal/domain/verification"
	"dabwish/internal/events"
	"dabwish/internal/metrics"
	"dabwish/pkg/errors"
	"dabwish/pkg/logger"
	"dabwish/pkg/telegram"
)

// DefaultCodeTTL is how long an issued code stays valid
const DefaultCodeTTL = 10 * time.Minute

const cleanupBatchSize = 500

// Transactor runs fn inside one unit of work
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service issues and confirms Telegram verification codes
type Service struct {
	tx        Transactor
	users     user.Repository
	codes     verification.Repository
	publisher events.TelegramPublisher
	cache     cache.Cache
	log       *logger.Logger

	codeTTL  time.Duration
	now      func() time.Time
	generate func() (string, error)
}

// NewService creates a verification service. A zero codeTTL means DefaultCodeTTL.
func NewService(
	tx Transactor,
	users user.Repository,
	codes verification.Repository,
	publisher events.TelegramPublisher,
	c cache.Cache,
	codeTTL time.Duration,
	log *logger.Logger,
) *Service {
	if codeTTL <= 0 {
		codeTTL = DefaultCodeTTL
	}
	return &Service{
		tx:        tx,
		users:     users,
		codes:     codes,
		publisher: publisher,
		cache:     c,
		log:       log.With("service", "telegram_verification"),
		codeTTL:   codeTTL,
		now:       time.Now,
		generate:  verification.GenerateCode,
	}
}

// RequestVerification issues a new code for userID and publishes it for the
// notifier once the code row is committed. Any earlier code of the user is replaced.
func (s *Service) RequestVerification(ctx context.Context, userID int64, telegramUsername string) (string, error) {
	username := telegram.NormalizeUsername(telegramUsername)
	if username == "" {
		return "", errors.NewValidationError("telegramUsername", "is required", telegramUsername)
	}

	var code string
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		u, err := s.users.GetByIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if u.HasTelegram() {
			return errors.ErrAlreadyVerified
		}

		code, err = s.generate()
		if err != nil {
			return errors.Wrap(err, "generate code")
		}

		if err := s.codes.DeleteByUserID(ctx, userID); err != nil {
			return err
		}
		if err := s.codes.Create(ctx, &verification.Code{
			UserID:           userID,
			TelegramUsername: username,
			Code:             code,
			ExpiresAt:        s.now().Add(s.codeTTL),
		}); err != nil {
			return err
		}

		event := &events.TelegramVerificationCodeEvent{
			UserID:           userID,
			TelegramUsername: username,
			VerificationCode: code,
		}
		postgres.AfterCommit(ctx, func(ctx context.Context) {
			if err := s.publisher.PublishVerificationCode(ctx, event); err != nil {
				s.log.Errorw("Failed to publish verification code", "user_id", userID, "error", err)
			}
		})
		return nil
	})
	if err != nil {
		return "", errors.Wrap(err, "request verification")
	}

	metrics.VerificationCodesIssued.Inc()
	s.log.Infow("Verification code issued", "user_id", userID, "telegram_username", username)
	return code, nil
}

// ConfirmVerification links the code's Telegram username to userID.
// A code owned by someone else is reported as invalid and left in place.
// An expired code is deleted and the deletion is committed before ErrCodeExpired is returned.
func (s *Service) ConfirmVerification(ctx context.Context, userID int64, code string) error {
	var (
		expired  bool
		username string
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		u, err := s.users.GetByIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		row, err := s.codes.GetForUser(ctx, u.ID, code)
		if errors.Is(err, errors.ErrNotFound) {
			return errors.ErrInvalidCode
		}
		if err != nil {
			return err
		}

		if row.IsExpired(s.now()) {
			expired = true
			return s.codes.DeleteByID(ctx, row.ID)
		}

		if err := s.users.SetTelegramUsername(ctx, userID, row.TelegramUsername); err != nil {
			return err
		}
		if err := s.codes.DeleteByUserID(ctx, userID); err != nil {
			return err
		}
		username = row.TelegramUsername

		postgres.AfterCommit(ctx, func(ctx context.Context) {
			cache.Evict(ctx, s.cache, s.log, []string{cache.UserKey(userID)})
		})
		return nil
	})

	switch {
	case err != nil:
		s.recordConfirmation(err)
		return errors.Wrap(err, "confirm verification")
	case expired:
		s.recordConfirmation(errors.ErrCodeExpired)
		return errors.ErrCodeExpired
	}

	s.recordConfirmation(nil)
	s.log.Infow("Telegram account verified", "user_id", userID, "telegram_username", username)
	return nil
}

func (s *Service) recordConfirmation(err error) {
	result := "success"
	switch {
	case err == nil:
	case errors.Is(err, errors.ErrInvalidCode):
		result = "invalid"
	case errors.Is(err, errors.ErrCodeExpired):
		result = "expired"
	default:
		result = "error"
	}
	metrics.VerificationConfirmations.WithLabelValues(result).Inc()
}

// CleanupExpiredCodes deletes every code that expired before now, one row at a
// time so a failing row does not stop the rest
func (s *Service) CleanupExpiredCodes(ctx context.Context) (int64, error) {
	now := s.now()
	var deleted int64

	for {
		ids, err := s.codes.ListExpiredIDs(ctx, now, cleanupBatchSize)
		if err != nil {
			return deleted, errors.Wrap(err, "list expired codes")
		}

		progress := 0
		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return deleted, err
			}
			if err := s.codes.DeleteByID(ctx, id); err != nil {
				s.log.Warnw("Failed to delete expired verification code", "code_id", id, "error", err)
				continue
			}
			progress++
		}
		deleted += int64(progress)
		metrics.VerificationCodesPurged.Add(float64(progress))

		if len(ids) < cleanupBatchSize || progress == 0 {
			break
		}
	}

	if deleted > 0 {
		s.log.Debugw("Cleaned up expired verification codes", "count", deleted)
	}
	return deleted, nil
}
