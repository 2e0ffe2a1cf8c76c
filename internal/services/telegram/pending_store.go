package telegram

import (
	"sync"
	"time"

	"dabwish/internal/events"
	"dabwish/internal/metrics"
	"dabwish/pkg/logger"
	"dabwish/pkg/telegram"
)

// DefaultPendingTTL is how long an undelivered code waits for the user to open a chat
const DefaultPendingTTL = time.Hour

type pendingEntry struct {
	event    events.TelegramVerificationCodeEvent
	storedAt time.Time
}

// PendingVerificationStore holds verification codes that could not be
// delivered yet because no chat is known for the username. Entries are keyed
// by normalized username, expire after the TTL and are safe for concurrent use.
type PendingVerificationStore struct {
	mu      sync.Mutex
	entries map[string]pendingEntry
	ttl     time.Duration
	now     func() time.Time
	log     *logger.Logger
}

// NewPendingVerificationStore creates an empty store. A zero ttl means DefaultPendingTTL.
func NewPendingVerificationStore(ttl time.Duration, log *logger.Logger) *PendingVerificationStore {
	if ttl <= 0 {
		ttl = DefaultPendingTTL
	}
	return &PendingVerificationStore{
		entries: make(map[string]pendingEntry),
		ttl:     ttl,
		now:     time.Now,
		log:     log.With("component", "pending_verifications"),
	}
}

// WithClock replaces the time source
func (s *PendingVerificationStore) WithClock(now func() time.Time) *PendingVerificationStore {
	s.now = now
	return s
}

// Store keeps event until it is consumed or expires. A newer event for the
// same username replaces the older one.
func (s *PendingVerificationStore) Store(event events.TelegramVerificationCodeEvent) {
	username := telegram.NormalizeUsername(event.TelegramUsername)

	s.mu.Lock()
	s.entries[username] = pendingEntry{event: event, storedAt: s.now()}
	n := len(s.entries)
	s.mu.Unlock()

	metrics.PendingVerifications.Set(float64(n))
	s.log.Infow("Stored pending verification code",
		"telegram_username", username,
		"user_id", event.UserID,
		"expires_in", s.ttl,
	)
}

// Consume removes and returns the entry for username. An entry older than
// the TTL is removed but reported as absent.
func (s *PendingVerificationStore) Consume(username string) (events.TelegramVerificationCodeEvent, bool) {
	username = telegram.NormalizeUsername(username)

	s.mu.Lock()
	entry, ok := s.entries[username]
	if ok {
		delete(s.entries, username)
	}
	n := len(s.entries)
	s.mu.Unlock()

	if !ok {
		return events.TelegramVerificationCodeEvent{}, false
	}
	metrics.PendingVerifications.Set(float64(n))

	if age := s.now().Sub(entry.storedAt); age >= s.ttl {
		metrics.PendingVerificationsExpired.Inc()
		s.log.Infow("Pending verification code expired", "telegram_username", username, "age", age)
		return events.TelegramVerificationCodeEvent{}, false
	}

	s.log.Infow("Consumed pending verification code", "telegram_username", username, "user_id", entry.event.UserID)
	return entry.event, true
}

// CleanupExpired drops every entry older than the TTL and returns how many were removed
func (s *PendingVerificationStore) CleanupExpired() int {
	now := s.now()

	s.mu.Lock()
	removed := 0
	for username, entry := range s.entries {
		if now.Sub(entry.storedAt) < s.ttl {
			continue
		}
		delete(s.entries, username)
		removed++
		s.log.Debugw("Removed expired pending verification", "telegram_username", username, "user_id", entry.event.UserID)
	}
	n := len(s.entries)
	s.mu.Unlock()

	metrics.PendingVerifications.Set(float64(n))
	if removed > 0 {
		metrics.PendingVerificationsExpired.Add(float64(removed))
		s.log.Infow("Cleaned up expired pending verifications", "removed", removed, "remaining", n)
	}
	return removed
}

// Len returns the number of entries, expired or not
func (s *PendingVerificationStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
