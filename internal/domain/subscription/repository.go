package subscription

import (
	"context"

	"dabwish/internal/domain/user"
)

// Repository defines the interface for subscription data access.
// Implementation lives in internal/repository/postgres/subscription.go
type Repository interface {
	Create(ctx context.Context, s *Subscription) error
	Exists(ctx context.Context, subscriberID, targetID int64) (bool, error)
	// Delete reports whether a row was removed
	Delete(ctx context.Context, subscriberID, targetID int64) (bool, error)
	ListSubscribers(ctx context.Context, targetID int64, limit, offset int) ([]user.User, int, error)
	ListSubscriptions(ctx context.Context, subscriberID int64, limit, offset int) ([]user.User, int, error)
	// ListTelegramFollowers returns subscribers of targetID that have a linked Telegram account
	ListTelegramFollowers(ctx context.Context, targetID int64) ([]Follower, error)
}
