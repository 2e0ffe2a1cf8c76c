package postgres

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"dabwish/internal/domain/user"
	"dabwish/internal/domain/wish"
	"dabwish/internal/testsupport"
)

// TestFixtures provides factory methods for creating test data
type TestFixtures struct {
	db DBTX
	t  *testing.T
}

// NewTestFixtures creates a new test fixtures factory
func NewTestFixtures(t *testing.T, db DBTX) *TestFixtures {
	t.Helper()
	return &TestFixtures{db: db, t: t}
}

// CreateUser inserts a user with a unique name
func (f *TestFixtures) CreateUser(opts ...func(*user.User)) *user.User {
	f.t.Helper()

	u := &user.User{Name: testsupport.UniqueName("user"), Role: user.RoleUser}
	for _, opt := range opts {
		opt(u)
	}
	require.NoError(f.t, NewUserRepository(f.db).Create(context.Background(), u))
	return u
}

// WithTelegram links a Telegram username to the fixture user
func WithTelegram(username string) func(*user.User) {
	return func(u *user.User) { u.TelegramUsername = &username }
}

// CreateWish inserts a wish owned by userID
func (f *TestFixtures) CreateWish(userID int64, opts ...func(*wish.Wish)) *wish.Wish {
	f.t.Helper()

	w := &wish.Wish{
		UserID: userID,
		Title:  testsupport.UniqueName("wish"),
		Price:  decimal.NewNullDecimal(decimal.RequireFromString("100.50")),
	}
	for _, opt := range opts {
		opt(w)
	}
	require.NoError(f.t, NewWishRepository(f.db).Create(context.Background(), w))
	return w
}

// WithPhoto sets the photo url of the fixture wish
func WithPhoto(url string) func(*wish.Wish) {
	return func(w *wish.Wish) { w.PhotoURL = &url }
}

// WithTitle sets the title of the fixture wish
func WithTitle(title string) func(*wish.Wish) {
	return func(w *wish.Wish) { w.Title = title }
}
