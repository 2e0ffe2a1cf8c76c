package postgres

import (
	"context"
	"database/sql"
	"time"

	"dabwish/internal/domain/verification"
	"dabwish/pkg/errors"
)

// Compile-time check that we implement the interface
var _ verification.Repository = (*VerificationCodeRepository)(nil)

// VerificationCodeRepository implements verification.Repository using sqlx
type VerificationCodeRepository struct {
	db DBTX
}

// NewVerificationCodeRepository creates a new verification code repository
func NewVerificationCodeRepository(db DBTX) *VerificationCodeRepository {
	return &VerificationCodeRepository{db: db}
}

// Create inserts a code row. The caller deletes the user's previous row first.
func (r *VerificationCodeRepository) Create(ctx context.Context, c *verification.Code) error {
	query := `
		INSERT INTO telegram_verification_codes (user_id, telegram_username, verification_code, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := conn(ctx, r.db).QueryRowContext(ctx, query, c.UserID, c.TelegramUsername, c.Code, c.ExpiresAt).
		Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.Wrap(errors.ErrConflict, "verification code already pending")
		}
		return errors.Wrap(err, "insert verification code")
	}
	return nil
}

// GetForUser returns the user's row holding code. Another user holding the
// same digits never matches.
func (r *VerificationCodeRepository) GetForUser(ctx context.Context, userID int64, code string) (*verification.Code, error) {
	var c verification.Code
	query := `
		SELECT id, user_id, telegram_username, verification_code, expires_at, created_at
		FROM telegram_verification_codes
		WHERE user_id = $1 AND verification_code = $2
		ORDER BY id DESC
		LIMIT 1`

	err := conn(ctx, r.db).GetContext(ctx, &c, query, userID, code)
	if err == sql.ErrNoRows {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "select verification code")
	}
	return &c, nil
}

// DeleteByUserID removes the user's pending code, if any
func (r *VerificationCodeRepository) DeleteByUserID(ctx context.Context, userID int64) error {
	if _, err := conn(ctx, r.db).ExecContext(ctx,
		`DELETE FROM telegram_verification_codes WHERE user_id = $1`, userID); err != nil {
		return errors.Wrap(err, "delete verification code by user")
	}
	return nil
}

// DeleteByID removes one code row; a missing row is not an error
func (r *VerificationCodeRepository) DeleteByID(ctx context.Context, id int64) error {
	if _, err := conn(ctx, r.db).ExecContext(ctx,
		`DELETE FROM telegram_verification_codes WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "delete verification code")
	}
	return nil
}

// ListExpiredIDs returns up to limit ids of rows that expired before now
func (r *VerificationCodeRepository) ListExpiredIDs(ctx context.Context, now time.Time, limit int) ([]int64, error) {
	var ids []int64
	query := `SELECT id FROM telegram_verification_codes WHERE expires_at < $1 ORDER BY id LIMIT $2`
	if err := conn(ctx, r.db).SelectContext(ctx, &ids, query, now, limit); err != nil {
		return nil, errors.Wrap(err, "select expired verification codes")
	}
	return ids, nil
}
