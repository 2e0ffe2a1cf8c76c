package testsupport

import (
	"context"
	"encoding/json"
	"path"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"dabwish/internal/domain/chatlink"
	"dabwish/internal/domain/subscription"
	"dabwish/internal/domain/user"
	"dabwish/internal/domain/verification"
	"dabwish/internal/domain/wish"
	"dabwish/internal/events"
	"dabwish/pkg/errors"
)

// MockUserRepository is a mock for user.Repository
type MockUserRepository struct {
	mock.Mock
}

var _ user.Repository = (*MockUserRepository)(nil)

func (m *MockUserRepository) Create(ctx context.Context, u *user.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) GetByIDForUpdate(ctx context.Context, id int64) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) SetTelegramUsername(ctx context.Context, id int64, username string) error {
	return m.Called(ctx, id, username).Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// MockWishRepository is a mock for wish.Repository
type MockWishRepository struct {
	mock.Mock
}

var _ wish.Repository = (*MockWishRepository)(nil)

func (m *MockWishRepository) Create(ctx context.Context, w *wish.Wish) error {
	return m.Called(ctx, w).Error(0)
}

func (m *MockWishRepository) GetByID(ctx context.Context, id int64) (*wish.Wish, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wish.Wish), args.Error(1)
}

func (m *MockWishRepository) GetByIDs(ctx context.Context, ids []int64) ([]wish.Wish, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]wish.Wish), args.Error(1)
}

func (m *MockWishRepository) Update(ctx context.Context, w *wish.Wish) error {
	return m.Called(ctx, w).Error(0)
}

func (m *MockWishRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockWishRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]wish.Wish, int, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]wish.Wish), args.Int(1), args.Error(2)
}

func (m *MockWishRepository) ListAfter(ctx context.Context, afterID int64, limit int) ([]wish.Wish, error) {
	args := m.Called(ctx, afterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]wish.Wish), args.Error(1)
}

func (m *MockWishRepository) CountByPhotoURL(ctx context.Context, url string) (int, error) {
	args := m.Called(ctx, url)
	return args.Int(0), args.Error(1)
}

func (m *MockWishRepository) SearchByText(ctx context.Context, query string, excludeOwnerID *int64, limit, offset int) ([]wish.Wish, int, error) {
	args := m.Called(ctx, query, excludeOwnerID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]wish.Wish), args.Int(1), args.Error(2)
}

// MockSearchIndex is a mock for wish.SearchIndex
type MockSearchIndex struct {
	mock.Mock
}

var _ wish.SearchIndex = (*MockSearchIndex)(nil)

func (m *MockSearchIndex) Upsert(ctx context.Context, docs ...wish.Document) error {
	return m.Called(ctx, docs).Error(0)
}

func (m *MockSearchIndex) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockSearchIndex) Search(ctx context.Context, query string, excludeOwnerID *int64, limit, offset int) ([]int64, int, error) {
	args := m.Called(ctx, query, excludeOwnerID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]int64), args.Int(1), args.Error(2)
}

// MockSubscriptionRepository is a mock for subscription.Repository
type MockSubscriptionRepository struct {
	mock.Mock
}

var _ subscription.Repository = (*MockSubscriptionRepository)(nil)

func (m *MockSubscriptionRepository) Create(ctx context.Context, s *subscription.Subscription) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockSubscriptionRepository) Exists(ctx context.Context, subscriberID, targetID int64) (bool, error) {
	args := m.Called(ctx, subscriberID, targetID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSubscriptionRepository) Delete(ctx context.Context, subscriberID, targetID int64) (bool, error) {
	args := m.Called(ctx, subscriberID, targetID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSubscriptionRepository) ListSubscribers(ctx context.Context, targetID int64, limit, offset int) ([]user.User, int, error) {
	args := m.Called(ctx, targetID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]user.User), args.Int(1), args.Error(2)
}

func (m *MockSubscriptionRepository) ListSubscriptions(ctx context.Context, subscriberID int64, limit, offset int) ([]user.User, int, error) {
	args := m.Called(ctx, subscriberID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]user.User), args.Int(1), args.Error(2)
}

func (m *MockSubscriptionRepository) ListTelegramFollowers(ctx context.Context, targetID int64) ([]subscription.Follower, error) {
	args := m.Called(ctx, targetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]subscription.Follower), args.Error(1)
}

// MockVerificationRepository is a mock for verification.Repository
type MockVerificationRepository struct {
	mock.Mock
}

var _ verification.Repository = (*MockVerificationRepository)(nil)

func (m *MockVerificationRepository) Create(ctx context.Context, c *verification.Code) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockVerificationRepository) GetForUser(ctx context.Context, userID int64, code string) (*verification.Code, error) {
	args := m.Called(ctx, userID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*verification.Code), args.Error(1)
}

func (m *MockVerificationRepository) DeleteByUserID(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockVerificationRepository) DeleteByID(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockVerificationRepository) ListExpiredIDs(ctx context.Context, now time.Time, limit int) ([]int64, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

// MockPublisher records every published event and can be told to fail.
// It satisfies all event publisher interfaces.
type MockPublisher struct {
	mu     sync.Mutex
	Err    error
	events []events.Event
}

var (
	_ events.TelegramPublisher     = (*MockPublisher)(nil)
	_ events.WishPublisher         = (*MockPublisher)(nil)
	_ events.NotificationPublisher = (*MockPublisher)(nil)
	_ events.UserPublisher         = (*MockPublisher)(nil)
)

func (p *MockPublisher) record(e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *MockPublisher) PublishVerificationCode(_ context.Context, e *events.TelegramVerificationCodeEvent) error {
	return p.record(e)
}

func (p *MockPublisher) PublishWishCreated(_ context.Context, e *events.WishCreatedEvent) error {
	return p.record(e)
}

func (p *MockPublisher) PublishWishUpdated(_ context.Context, e *events.WishUpdatedEvent) error {
	return p.record(e)
}

func (p *MockPublisher) PublishWishNotification(_ context.Context, e *events.WishNotificationEvent) error {
	return p.record(e)
}

func (p *MockPublisher) PublishUserCreated(_ context.Context, e *events.UserCreatedEvent) error {
	return p.record(e)
}

// Events returns a copy of the recorded events in publish order
func (p *MockPublisher) Events() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.events...)
}

// MockChatLinkRepository is an in-memory chatlink.Repository
type MockChatLinkRepository struct {
	mu    sync.Mutex
	Err   error
	links map[string]chatlink.ChatLink
}

var _ chatlink.Repository = (*MockChatLinkRepository)(nil)

// NewMockChatLinkRepository creates an empty in-memory chat link store
func NewMockChatLinkRepository() *MockChatLinkRepository {
	return &MockChatLinkRepository{links: make(map[string]chatlink.ChatLink)}
}

func (r *MockChatLinkRepository) Upsert(_ context.Context, username string, chatID int64, userID *int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	link, ok := r.links[username]
	if !ok {
		link = chatlink.ChatLink{ID: int64(len(r.links) + 1), TelegramUsername: username, CreatedAt: time.Now()}
	}
	link.ChatID = chatID
	if userID != nil {
		link.UserID = userID
	}
	link.UpdatedAt = time.Now()
	r.links[username] = link
	return nil
}

func (r *MockChatLinkRepository) GetByUsername(_ context.Context, username string) (*chatlink.ChatLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	link, ok := r.links[username]
	if !ok {
		return nil, errors.ErrNotFound
	}
	return &link, nil
}

// MemoryCache is an in-memory cache.Cache that stores JSON like the Redis one
type MemoryCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

// NewMemoryCache creates an empty cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: make(map[string][]byte)}
}

func (c *MemoryCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	data, ok := c.items[key]
	c.mu.Unlock()
	if !ok {
		return errors.ErrNotFound
	}
	return json.Unmarshal(data, dest)
}

func (c *MemoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.items[key] = data
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.items, k)
	}
	return nil
}

func (c *MemoryCache) DeleteMatching(_ context.Context, pattern string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k := range c.items {
		if ok, _ := path.Match(pattern, k); ok {
			delete(c.items, k)
			n++
		}
	}
	return n, nil
}

// Has reports whether key is cached
func (c *MemoryCache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[key]
	return ok
}
