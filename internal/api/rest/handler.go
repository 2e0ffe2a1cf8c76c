// Package rest exposes the core service over HTTP
package rest

import (
	"context"

	"github.com/go-chi/chi/v5"

	"dabwish/internal/adapters/s3"
	"dabwish/internal/domain/subscription"
	"dabwish/internal/domain/user"
	"dabwish/internal/domain/wish"
	"dabwish/pkg/logger"
	"dabwish/pkg/pagination"
)

type UserService interface {
	Create(ctx context.Context, usr *user.User) error
	GetByID(ctx context.Context, userID int64) (*user.User, error)
	Delete(ctx context.Context, userID int64) error
}

type VerificationService interface {
	RequestVerification(ctx context.Context, userID int64, telegramUsername string) (string, error)
	ConfirmVerification(ctx context.Context, userID int64, code string) error
}

type WishService interface {
	Create(ctx context.Context, userID int64, w *wish.Wish, photo *s3.Photo) (*wish.Wish, error)
	Update(ctx context.Context, id int64, patch wish.Patch, photo *s3.Photo) (*wish.Wish, error)
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*wish.Wish, error)
	ListByUser(ctx context.Context, userID int64, p pagination.Params) (pagination.Page[wish.Wish], error)
	Search(ctx context.Context, query string, excludeUserID *int64, p pagination.Params) (pagination.Page[wish.Wish], error)
}

type SubscriptionService interface {
	Subscribe(ctx context.Context, subscriberID, targetID int64) (*subscription.Subscription, error)
	Unsubscribe(ctx context.Context, subscriberID, targetID int64) error
	ListSubscriptions(ctx context.Context, userID int64, p pagination.Params) (pagination.Page[user.User], error)
	ListSubscribers(ctx context.Context, userID int64, p pagination.Params) (pagination.Page[user.User], error)
}

// Handler serves the /api routes
type Handler struct {
	users         UserService
	verification  VerificationService
	wishes        WishService
	subscriptions SubscriptionService
	log           *logger.Logger
}

// NewHandler creates the REST handler
func NewHandler(
	users UserService,
	verification VerificationService,
	wishes WishService,
	subscriptions SubscriptionService,
	log *logger.Logger,
) *Handler {
	return &Handler{
		users:         users,
		verification:  verification,
		wishes:        wishes,
		subscriptions: subscriptions,
		log:           log.With("component", "rest"),
	}
}

// Routes mounts every endpoint under /api
func (h *Handler) Routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/", h.createUser)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.getUser)
				r.Delete("/", h.deleteUser)

				r.Post("/telegram/verify", h.requestVerification)
				r.Post("/telegram/confirm", h.confirmVerification)

				r.Get("/wishes", h.listUserWishes)
				r.Post("/wishes", h.createWish)

				r.Get("/subscriptions", h.listSubscriptions)
				r.Get("/subscribers", h.listSubscribers)
				r.Post("/subscriptions/{targetId}", h.subscribe)
				r.Delete("/subscriptions/{targetId}", h.unsubscribe)
			})
		})

		r.Route("/wishes", func(r chi.Router) {
			r.Get("/search", h.searchWishes)
			r.Get("/{wishId}", h.getWish)
			r.Patch("/{wishId}", h.updateWish)
			r.Delete("/{wishId}", h.deleteWish)
		})
	})
}
