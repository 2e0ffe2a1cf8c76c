package user

import (
	"context"
	"time"

	"dabwish/internal/adapters/postgres"
	"dabwish/internal/cache"
	"dabwish/internal/domain/user"
	"dabwish/internal/events"
	"dabwish/pkg/errors"
	"dabwish/pkg/logger"
)

// Transactor runs fn inside one unit of work
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service handles user business logic (Application Service)
// Coordinates the domain service with caching and events
type Service struct {
	domainService *user.Service
	tx            Transactor
	publisher     events.UserPublisher
	cache         cache.Cache
	ttl           time.Duration
	log           *logger.Logger
}

// NewService creates a new user application service
func NewService(
	domainService *user.Service,
	tx Transactor,
	publisher events.UserPublisher,
	c cache.Cache,
	ttl time.Duration,
	log *logger.Logger,
) *Service {
	return &Service{
		domainService: domainService,
		tx:            tx,
		publisher:     publisher,
		cache:         c,
		ttl:           ttl,
		log:           log.With("service", "user_application"),
	}
}

// Create stores a new user and announces it once committed
func (s *Service) Create(ctx context.Context, usr *user.User) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.domainService.Create(ctx, usr); err != nil {
			return err
		}

		event := &events.UserCreatedEvent{
			UserID:    usr.ID,
			Name:      events.SanitizeUTF8(usr.Name),
			Role:      string(usr.Role),
			CreatedAt: events.FormatTime(usr.CreatedAt),
		}
		postgres.AfterCommit(ctx, func(ctx context.Context) {
			if err := s.publisher.PublishUserCreated(ctx, event); err != nil {
				s.log.Warnw("Failed to publish user created event", "user_id", event.UserID, "error", err)
			}
		})
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to create user")
	}

	s.log.Infow("User created", "user_id", usr.ID, "role", usr.Role)
	return nil
}

// GetByID retrieves a user by ID, served from cache when possible
func (s *Service) GetByID(ctx context.Context, userID int64) (*user.User, error) {
	return cache.GetOrLoad(ctx, s.cache, s.log, cache.UserKey(userID), s.ttl,
		func(ctx context.Context) (*user.User, error) {
			return s.domainService.GetByID(ctx, userID)
		})
}

// Delete removes a user together with their wishes and subscriptions
func (s *Service) Delete(ctx context.Context, userID int64) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.domainService.Delete(ctx, userID); err != nil {
			return err
		}
		postgres.AfterCommit(ctx, func(ctx context.Context) {
			cache.Evict(ctx, s.cache, s.log,
				[]string{cache.UserKey(userID)},
				cache.UserWishesPattern(userID),
				cache.SubscriptionsPattern(userID),
			)
		})
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to delete user")
	}

	s.log.Infow("User deleted", "user_id", userID)
	return nil
}
