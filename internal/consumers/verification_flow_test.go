package consumers

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tgadapter "dabwish/internal/adapters/telegram"
	"dabwish/internal/events"
	tgservice "dabwish/internal/services/telegram"
	"dabwish/internal/testsupport"
	"dabwish/pkg/logger"
	"dabwish/pkg/telegram"
	"dabwish/pkg/templates"
)

type recordingSender struct {
	mu   sync.Mutex
	sent map[int64][]string
}

func (s *recordingSender) SendMessage(ctx context.Context, chatID int64, text string) error {
	_, err := s.SendMessageWithOptions(ctx, chatID, text, telegram.MessageOptions{})
	return err
}

func (s *recordingSender) SendMessageWithOptions(_ context.Context, chatID int64, text string, _ telegram.MessageOptions) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent[chatID] = append(s.sent[chatID], text)
	return len(s.sent[chatID]), nil
}

type notifier struct {
	pending  *tgservice.PendingVerificationStore
	registry *tgservice.ChatRegistry
	listener *VerificationListener
	bot      *tgadapter.BotUpdateHandler
	sender   *recordingSender
}

func newNotifier() *notifier {
	log := logger.NewNop()
	sender := &recordingSender{sent: map[int64][]string{}}
	messenger := tgadapter.NewMessenger(sender, templates.Get(), "http://localhost:3000/", log)
	pending := tgservice.NewPendingVerificationStore(tgservice.DefaultPendingTTL, log)
	registry := tgservice.NewChatRegistry(testsupport.NewMockChatLinkRepository(), log)

	return &notifier{
		pending:  pending,
		registry: registry,
		listener: NewVerificationListener(registry, pending, messenger, log),
		bot:      tgadapter.NewBotUpdateHandler(registry, pending, messenger, log),
		sender:   sender,
	}
}

func start(chatID int64, username string) telegram.Update {
	return telegram.Update{Message: &telegram.Message{
		From: &telegram.User{ID: chatID, Username: username},
		Chat: &telegram.Chat{ID: chatID, Type: "private"},
		Text: "/start",
	}}
}

func TestCodeArrivesBeforeStart(t *testing.T) {
	n := newNotifier()
	ctx := context.Background()

	err := n.listener.Handle(ctx, &events.TelegramVerificationCodeEvent{
		UserID: 1, TelegramUsername: "alice", VerificationCode: "123456",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n.pending.Len())
	assert.Empty(t, n.sender.sent)

	n.bot.HandleUpdate(ctx, start(555, "alice"))

	require.Len(t, n.sender.sent[555], 1)
	assert.True(t, strings.HasSuffix(n.sender.sent[555][0], "Твой код подтверждения Telegram в DabWish: 123456"))
	assert.Equal(t, 0, n.pending.Len())

	chatID, ok, err := n.registry.GetChatID(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(555), chatID)
}

func TestCodeArrivesAfterStart(t *testing.T) {
	n := newNotifier()
	ctx := context.Background()

	n.bot.HandleUpdate(ctx, start(777, "bob"))
	require.Len(t, n.sender.sent[777], 1)
	assert.NotContains(t, n.sender.sent[777][0], "код")

	err := n.listener.Handle(ctx, &events.TelegramVerificationCodeEvent{
		UserID: 2, TelegramUsername: "bob", VerificationCode: "654321",
	})
	require.NoError(t, err)

	require.Len(t, n.sender.sent[777], 2)
	assert.Contains(t, n.sender.sent[777][1], "654321")
	assert.Equal(t, 0, n.pending.Len())
}

func TestMixedCaseUsernameStillMatches(t *testing.T) {
	n := newNotifier()
	ctx := context.Background()

	require.NoError(t, n.listener.Handle(ctx, &events.TelegramVerificationCodeEvent{
		UserID: 3, TelegramUsername: "@Carol", VerificationCode: "111222",
	}))
	n.bot.HandleUpdate(ctx, start(42, "carol"))

	require.Len(t, n.sender.sent[42], 1)
	assert.Contains(t, n.sender.sent[42][0], "111222")
}
