package telegram

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dabwish/internal/events"
	"dabwish/pkg/errors"
	"dabwish/pkg/logger"
	"dabwish/pkg/telegram"
)

type fakeRegistry struct {
	chats map[string]int64
	err   error
}

func (r *fakeRegistry) Register(_ context.Context, username string, chatID int64, _ *int64) error {
	if r.err != nil {
		return r.err
	}
	r.chats[telegram.NormalizeUsername(username)] = chatID
	return nil
}

type fakePending struct {
	events   map[string]events.TelegramVerificationCodeEvent
	consumed []string
}

func (p *fakePending) Consume(username string) (events.TelegramVerificationCodeEvent, bool) {
	p.consumed = append(p.consumed, username)
	e, ok := p.events[telegram.NormalizeUsername(username)]
	delete(p.events, telegram.NormalizeUsername(username))
	return e, ok
}

type handlerFixture struct {
	handler  *BotUpdateHandler
	registry *fakeRegistry
	pending  *fakePending
	sender   *fakeSender
}

func newHandlerFixture() *handlerFixture {
	f := &handlerFixture{
		registry: &fakeRegistry{chats: map[string]int64{}},
		pending:  &fakePending{events: map[string]events.TelegramVerificationCodeEvent{}},
		sender:   &fakeSender{},
	}
	f.handler = NewBotUpdateHandler(f.registry, f.pending, newTestMessenger(f.sender), logger.NewNop())
	return f
}

func startUpdate(chatID int64, username, text string) telegram.Update {
	return telegram.Update{
		UpdateID: 1,
		Message: &telegram.Message{
			From: &telegram.User{ID: chatID, Username: username, FirstName: "Test"},
			Chat: &telegram.Chat{ID: chatID, Type: "private"},
			Text: text,
		},
	}
}

func TestStartRegistersChatAndSendsPlainWelcome(t *testing.T) {
	f := newHandlerFixture()

	f.handler.HandleUpdate(context.Background(), startUpdate(555, "Alice", "/start"))

	assert.Equal(t, int64(555), f.registry.chats["alice"])
	msgs := f.sender.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, int64(555), msgs[0].ChatID)
	assert.Equal(t, "Привет, @Alice 👋\nТеперь я смогу присылать тебе уведомления о новых желаниях.", msgs[0].Text)
}

func TestStartDeliversPendingCode(t *testing.T) {
	f := newHandlerFixture()
	f.pending.events["alice"] = events.TelegramVerificationCodeEvent{UserID: 1, TelegramUsername: "alice", VerificationCode: "123456"}

	f.handler.HandleUpdate(context.Background(), startUpdate(555, "alice", "/start"))

	msgs := f.sender.messages()
	require.Len(t, msgs, 1)
	assert.True(t, strings.HasSuffix(msgs[0].Text, "Твой код подтверждения Telegram в DabWish: 123456"))
	assert.Empty(t, f.pending.events)
}

func TestStartDiscardsCodeOnUsernameMismatch(t *testing.T) {
	f := newHandlerFixture()
	f.pending.events["alice"] = events.TelegramVerificationCodeEvent{UserID: 1, TelegramUsername: "mallory", VerificationCode: "123456"}

	f.handler.HandleUpdate(context.Background(), startUpdate(555, "alice", "/start"))

	msgs := f.sender.messages()
	require.Len(t, msgs, 1)
	assert.NotContains(t, msgs[0].Text, "123456")
}

func TestStartWithPayloadIsStillStart(t *testing.T) {
	f := newHandlerFixture()
	f.handler.HandleUpdate(context.Background(), startUpdate(9, "carol", "/start verify"))
	assert.Equal(t, int64(9), f.registry.chats["carol"])
}

func TestRegistrationFailureSendsNothing(t *testing.T) {
	f := newHandlerFixture()
	f.registry.err = errors.ErrUnavailable
	f.pending.events["alice"] = events.TelegramVerificationCodeEvent{TelegramUsername: "alice", VerificationCode: "123456"}

	f.handler.HandleUpdate(context.Background(), startUpdate(555, "alice", "/start"))

	assert.Empty(t, f.sender.messages())
	assert.Empty(t, f.pending.consumed, "pending code stays for a later /start")
}

func TestSendFailureIsSwallowed(t *testing.T) {
	f := newHandlerFixture()
	f.sender.err = errors.ErrUnavailable

	assert.NotPanics(t, func() {
		f.handler.HandleUpdate(context.Background(), startUpdate(555, "alice", "/start"))
	})
	assert.Equal(t, int64(555), f.registry.chats["alice"])
}

func TestIgnoredUpdates(t *testing.T) {
	tests := []struct {
		name   string
		update telegram.Update
	}{
		{"no message", telegram.Update{UpdateID: 1}},
		{"no username", startUpdate(1, "", "/start")},
		{"blank username", startUpdate(1, "  ", "/start")},
		{"no sender", telegram.Update{Message: &telegram.Message{Chat: &telegram.Chat{ID: 1}, Text: "/start"}}},
		{"other text", startUpdate(1, "alice", "hello")},
		{"other command", startUpdate(1, "alice", "/help")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newHandlerFixture()
			f.handler.HandleUpdate(context.Background(), tt.update)
			assert.Empty(t, f.registry.chats)
			assert.Empty(t, f.sender.messages())
		})
	}
}
