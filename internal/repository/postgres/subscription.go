package postgres

import (
	"context"

	"dabwish/internal/domain/subscription"
	"dabwish/internal/domain/user"
	"dabwish/pkg/errors"
)

// Compile-time check that we implement the interface
var _ subscription.Repository = (*SubscriptionRepository)(nil)

// SubscriptionRepository implements subscription.Repository using sqlx
type SubscriptionRepository struct {
	db DBTX
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db DBTX) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// Create inserts a subscription. A duplicate pair returns ErrAlreadySubscribed.
func (r *SubscriptionRepository) Create(ctx context.Context, s *subscription.Subscription) error {
	query := `
		INSERT INTO user_subscriptions (subscriber_id, subscribed_to_id)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := conn(ctx, r.db).QueryRowContext(ctx, query, s.SubscriberID, s.SubscribedToID).
		Scan(&s.ID, &s.CreatedAt)
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return errors.ErrAlreadySubscribed
	case isForeignKeyViolation(err):
		return errors.ErrUserNotFound
	default:
		return errors.Wrap(err, "insert subscription")
	}
}

// Exists reports whether subscriberID follows targetID
func (r *SubscriptionRepository) Exists(ctx context.Context, subscriberID, targetID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM user_subscriptions WHERE subscriber_id = $1 AND subscribed_to_id = $2)`
	if err := conn(ctx, r.db).GetContext(ctx, &exists, query, subscriberID, targetID); err != nil {
		return false, errors.Wrap(err, "check subscription")
	}
	return exists, nil
}

// Delete removes the subscription and reports whether it existed
func (r *SubscriptionRepository) Delete(ctx context.Context, subscriberID, targetID int64) (bool, error) {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`DELETE FROM user_subscriptions WHERE subscriber_id = $1 AND subscribed_to_id = $2`,
		subscriberID, targetID)
	if err != nil {
		return false, errors.Wrap(err, "delete subscription")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "rows affected")
	}
	return n > 0, nil
}

// ListSubscribers returns users following targetID, most recent first
func (r *SubscriptionRepository) ListSubscribers(ctx context.Context, targetID int64, limit, offset int) ([]user.User, int, error) {
	return r.listUsers(ctx, "subscriber_id", "subscribed_to_id", targetID, limit, offset)
}

// ListSubscriptions returns users that subscriberID follows, most recent first
func (r *SubscriptionRepository) ListSubscriptions(ctx context.Context, subscriberID int64, limit, offset int) ([]user.User, int, error) {
	return r.listUsers(ctx, "subscribed_to_id", "subscriber_id", subscriberID, limit, offset)
}

// listUsers joins users on joinCol for rows where filterCol = id. Column
// names are never user input.
func (r *SubscriptionRepository) listUsers(ctx context.Context, joinCol, filterCol string, id int64, limit, offset int) ([]user.User, int, error) {
	db := conn(ctx, r.db)

	var total int
	if err := db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM user_subscriptions WHERE `+filterCol+` = $1`, id); err != nil {
		return nil, 0, errors.Wrap(err, "count subscriptions")
	}
	if total == 0 {
		return []user.User{}, 0, nil
	}

	users := make([]user.User, 0, limit)
	query := `
		SELECT u.id, u.name, u.role, u.telegram_username, u.created_at, u.updated_at
		FROM user_subscriptions s
		JOIN users u ON u.id = s.` + joinCol + `
		WHERE s.` + filterCol + ` = $1
		ORDER BY s.created_at DESC, s.id DESC
		LIMIT $2 OFFSET $3`
	if err := db.SelectContext(ctx, &users, query, id, limit, offset); err != nil {
		return nil, 0, errors.Wrap(err, "select subscription users")
	}
	return users, total, nil
}

// ListTelegramFollowers returns every subscriber of targetID with a linked Telegram account
func (r *SubscriptionRepository) ListTelegramFollowers(ctx context.Context, targetID int64) ([]subscription.Follower, error) {
	var followers []subscription.Follower
	query := `
		SELECT u.id AS user_id, u.name, u.telegram_username
		FROM user_subscriptions s
		JOIN users u ON u.id = s.subscriber_id
		WHERE s.subscribed_to_id = $1 AND u.telegram_username IS NOT NULL
		ORDER BY s.id`
	if err := conn(ctx, r.db).SelectContext(ctx, &followers, query, targetID); err != nil {
		return nil, errors.Wrap(err, "select telegram followers")
	}
	return followers, nil
}
