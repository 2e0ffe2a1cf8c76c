package subscription

import (
	"context"
	"time"

	"dabwish/internal/adapters/postgres"
	"dabwish/internal/cache"
	"dabwish/internal/domain/subscription"
	"dabwish/internal/domain/user"
	"dabwish/pkg/errors"
	"dabwish/pkg/logger"
	"dabwish/pkg/pagination"
)

// Transactor runs fn inside one unit of work
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service manages who follows whom
type Service struct {
	tx    Transactor
	repo  subscription.Repository
	users user.Repository
	cache cache.Cache
	ttl   time.Duration
	log   *logger.Logger
}

// NewService creates a subscription service
func NewService(tx Transactor, repo subscription.Repository, users user.Repository, c cache.Cache, ttl time.Duration, log *logger.Logger) *Service {
	return &Service{
		tx:    tx,
		repo:  repo,
		users: users,
		cache: c,
		ttl:   ttl,
		log:   log.With("service", "subscription"),
	}
}

// Subscribe makes subscriberID follow targetID
func (s *Service) Subscribe(ctx context.Context, subscriberID, targetID int64) (*subscription.Subscription, error) {
	if subscriberID == targetID {
		return nil, errors.ErrCannotSubscribeToSelf
	}

	sub := &subscription.Subscription{SubscriberID: subscriberID, SubscribedToID: targetID}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		for _, id := range []int64{subscriberID, targetID} {
			if _, err := s.users.GetByID(ctx, id); err != nil {
				return err
			}
		}

		exists, err := s.repo.Exists(ctx, subscriberID, targetID)
		if err != nil {
			return err
		}
		if exists {
			return errors.ErrAlreadySubscribed
		}

		if err := s.repo.Create(ctx, sub); err != nil {
			return err
		}
		postgres.AfterCommit(ctx, func(ctx context.Context) {
			cache.Evict(ctx, s.cache, s.log, nil, cache.SubscriptionsPattern(subscriberID))
		})
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "subscribe %d to %d", subscriberID, targetID)
	}

	s.log.Infow("User subscribed", "subscriber_id", subscriberID, "target_id", targetID)
	return sub, nil
}

// Unsubscribe removes the subscription; ErrNotSubscribed when there was none
func (s *Service) Unsubscribe(ctx context.Context, subscriberID, targetID int64) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		removed, err := s.repo.Delete(ctx, subscriberID, targetID)
		if err != nil {
			return err
		}
		if !removed {
			return errors.ErrNotSubscribed
		}
		postgres.AfterCommit(ctx, func(ctx context.Context) {
			cache.Evict(ctx, s.cache, s.log, nil, cache.SubscriptionsPattern(subscriberID))
		})
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "unsubscribe %d from %d", subscriberID, targetID)
	}

	s.log.Infow("User unsubscribed", "subscriber_id", subscriberID, "target_id", targetID)
	return nil
}

// IsSubscribed reports whether subscriberID follows targetID
func (s *Service) IsSubscribed(ctx context.Context, subscriberID, targetID int64) (bool, error) {
	return s.repo.Exists(ctx, subscriberID, targetID)
}

// ListSubscriptions returns the users userID follows
func (s *Service) ListSubscriptions(ctx context.Context, userID int64, p pagination.Params) (pagination.Page[user.User], error) {
	p = p.Normalize()
	return cache.GetOrLoad(ctx, s.cache, s.log, cache.SubscriptionsKey(userID, p.Page, p.Size), s.ttl,
		func(ctx context.Context) (pagination.Page[user.User], error) {
			return s.list(ctx, userID, p, s.repo.ListSubscriptions)
		})
}

// ListSubscribers returns the users following userID
func (s *Service) ListSubscribers(ctx context.Context, userID int64, p pagination.Params) (pagination.Page[user.User], error) {
	return s.list(ctx, userID, p.Normalize(), s.repo.ListSubscribers)
}

type listFunc func(ctx context.Context, userID int64, limit, offset int) ([]user.User, int, error)

func (s *Service) list(ctx context.Context, userID int64, p pagination.Params, fetch listFunc) (pagination.Page[user.User], error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return pagination.Page[user.User]{}, err
	}
	users, total, err := fetch(ctx, userID, p.Limit(), p.Offset())
	if err != nil {
		return pagination.Page[user.User]{}, err
	}
	return pagination.NewPage(users, total, p), nil
}
