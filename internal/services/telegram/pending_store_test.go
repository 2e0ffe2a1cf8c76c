package telegram

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dabwish/internal/events"
	"dabwish/pkg/logger"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestStore(clock *fakeClock) *PendingVerificationStore {
	return NewPendingVerificationStore(time.Hour, logger.NewNop()).WithClock(clock.Now)
}

func codeEvent(userID int64, username, code string) events.TelegramVerificationCodeEvent {
	return events.TelegramVerificationCodeEvent{UserID: userID, TelegramUsername: username, VerificationCode: code}
}

func TestStoreThenConsumeReturnsEventOnce(t *testing.T) {
	store := newTestStore(newFakeClock())
	e := codeEvent(1, "alice", "123456")

	store.Store(e)

	got, ok := store.Consume("alice")
	require.True(t, ok)
	assert.Equal(t, e, got)

	_, ok = store.Consume("alice")
	assert.False(t, ok)
	assert.Zero(t, store.Len())
}

func TestConsumeNormalizesUsername(t *testing.T) {
	store := newTestStore(newFakeClock())
	store.Store(codeEvent(1, "@Alice ", "123456"))

	got, ok := store.Consume("  @ALICE")
	require.True(t, ok)
	assert.Equal(t, "123456", got.VerificationCode)
}

func TestStoreOverwritesPreviousEntry(t *testing.T) {
	store := newTestStore(newFakeClock())
	store.Store(codeEvent(1, "alice", "111111"))
	store.Store(codeEvent(1, "ALICE", "222222"))

	assert.Equal(t, 1, store.Len())
	got, ok := store.Consume("alice")
	require.True(t, ok)
	assert.Equal(t, "222222", got.VerificationCode)
}

func TestConsumeAfterTTLReportsAbsent(t *testing.T) {
	clock := newFakeClock()
	store := newTestStore(clock)
	store.Store(codeEvent(1, "alice", "123456"))

	clock.Advance(61 * time.Minute)

	_, ok := store.Consume("alice")
	assert.False(t, ok)
	assert.Zero(t, store.Len(), "expired entry is removed on read")
}

func TestConsumeJustBeforeTTL(t *testing.T) {
	clock := newFakeClock()
	store := newTestStore(clock)
	store.Store(codeEvent(1, "alice", "123456"))

	clock.Advance(59 * time.Minute)

	_, ok := store.Consume("alice")
	assert.True(t, ok)
}

func TestCleanupExpiredRemovesOnlyOldEntries(t *testing.T) {
	clock := newFakeClock()
	store := newTestStore(clock)

	store.Store(codeEvent(1, "alice", "111111"))
	clock.Advance(30 * time.Minute)
	store.Store(codeEvent(2, "bob", "222222"))
	clock.Advance(31 * time.Minute)

	assert.Equal(t, 1, store.CleanupExpired())
	assert.Equal(t, 1, store.Len())

	_, ok := store.Consume("alice")
	assert.False(t, ok)
	_, ok = store.Consume("bob")
	assert.True(t, ok)
}

func TestCleanupExpiredOnEmptyStore(t *testing.T) {
	store := newTestStore(newFakeClock())
	assert.Zero(t, store.CleanupExpired())
}

func TestStoreIsSafeForConcurrentUse(t *testing.T) {
	clock := newFakeClock()
	store := newTestStore(clock)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(3)
		name := fmt.Sprintf("user_%d", i)
		go func(i int) {
			defer wg.Done()
			store.Store(codeEvent(int64(i), name, "123456"))
		}(i)
		go func() {
			defer wg.Done()
			store.Consume(name)
		}()
		go func() {
			defer wg.Done()
			store.CleanupExpired()
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, store.Len(), 50)
}
