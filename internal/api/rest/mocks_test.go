package rest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"dabwish/internal/adapters/s3"
	"dabwish/internal/domain/subscription"
	"dabwish/internal/domain/user"
	"dabwish/internal/domain/wish"
	"dabwish/pkg/pagination"
)

type mockUsers struct{ mock.Mock }

func (m *mockUsers) Create(ctx context.Context, usr *user.User) error {
	return m.Called(ctx, usr).Error(0)
}

func (m *mockUsers) GetByID(ctx context.Context, id int64) (*user.User, error) {
	args := m.Called(ctx, id)
	if u, _ := args.Get(0).(*user.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUsers) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type mockVerification struct{ mock.Mock }

func (m *mockVerification) RequestVerification(ctx context.Context, userID int64, username string) (string, error) {
	args := m.Called(ctx, userID, username)
	return args.String(0), args.Error(1)
}

func (m *mockVerification) ConfirmVerification(ctx context.Context, userID int64, code string) error {
	return m.Called(ctx, userID, code).Error(0)
}

type mockWishes struct{ mock.Mock }

func (m *mockWishes) Create(ctx context.Context, userID int64, w *wish.Wish, photo *s3.Photo) (*wish.Wish, error) {
	args := m.Called(ctx, userID, w, photo)
	if out, _ := args.Get(0).(*wish.Wish); out != nil {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockWishes) Update(ctx context.Context, id int64, patch wish.Patch, photo *s3.Photo) (*wish.Wish, error) {
	args := m.Called(ctx, id, patch, photo)
	if out, _ := args.Get(0).(*wish.Wish); out != nil {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockWishes) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockWishes) GetByID(ctx context.Context, id int64) (*wish.Wish, error) {
	args := m.Called(ctx, id)
	if out, _ := args.Get(0).(*wish.Wish); out != nil {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockWishes) ListByUser(ctx context.Context, userID int64, p pagination.Params) (pagination.Page[wish.Wish], error) {
	args := m.Called(ctx, userID, p)
	return args.Get(0).(pagination.Page[wish.Wish]), args.Error(1)
}

func (m *mockWishes) Search(ctx context.Context, query string, exclude *int64, p pagination.Params) (pagination.Page[wish.Wish], error) {
	args := m.Called(ctx, query, exclude, p)
	return args.Get(0).(pagination.Page[wish.Wish]), args.Error(1)
}

type mockSubscriptions struct{ mock.Mock }

func (m *mockSubscriptions) Subscribe(ctx context.Context, subscriberID, targetID int64) (*subscription.Subscription, error) {
	args := m.Called(ctx, subscriberID, targetID)
	if out, _ := args.Get(0).(*subscription.Subscription); out != nil {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSubscriptions) Unsubscribe(ctx context.Context, subscriberID, targetID int64) error {
	return m.Called(ctx, subscriberID, targetID).Error(0)
}

func (m *mockSubscriptions) ListSubscriptions(ctx context.Context, userID int64, p pagination.Params) (pagination.Page[user.User], error) {
	args := m.Called(ctx, userID, p)
	return args.Get(0).(pagination.Page[user.User]), args.Error(1)
}

func (m *mockSubscriptions) ListSubscribers(ctx context.Context, userID int64, p pagination.Params) (pagination.Page[user.User], error) {
	args := m.Called(ctx, userID, p)
	return args.Get(0).(pagination.Page[user.User]), args.Error(1)
}
