package consumers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"dabwish/internal/events"
	"dabwish/pkg/errors"
	"dabwish/pkg/logger"
)

type mockChats struct{ mock.Mock }

func (m *mockChats) GetChatID(ctx context.Context, username string) (int64, bool, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

type mockPending struct{ mock.Mock }

func (m *mockPending) Store(e events.TelegramVerificationCodeEvent) { m.Called(e) }

type mockCodeSender struct{ mock.Mock }

func (m *mockCodeSender) SendVerificationCode(ctx context.Context, chatID int64, username, code string) error {
	return m.Called(ctx, chatID, username, code).Error(0)
}

var bobEvent = &events.TelegramVerificationCodeEvent{UserID: 2, TelegramUsername: "bob", VerificationCode: "654321"}

func TestListenerSendsImmediatelyWhenChatKnown(t *testing.T) {
	chats, pending, sender := &mockChats{}, &mockPending{}, &mockCodeSender{}
	chats.On("GetChatID", mock.Anything, "bob").Return(int64(777), true, nil)
	sender.On("SendVerificationCode", mock.Anything, int64(777), "bob", "654321").Return(nil)

	l := NewVerificationListener(chats, pending, sender, logger.NewNop())
	require.NoError(t, l.Handle(context.Background(), bobEvent))

	sender.AssertExpectations(t)
	pending.AssertNotCalled(t, "Store", mock.Anything)
}

func TestListenerStoresWhenChatUnknown(t *testing.T) {
	chats, pending, sender := &mockChats{}, &mockPending{}, &mockCodeSender{}
	chats.On("GetChatID", mock.Anything, "bob").Return(int64(0), false, nil)
	pending.On("Store", *bobEvent).Return()

	l := NewVerificationListener(chats, pending, sender, logger.NewNop())
	require.NoError(t, l.Handle(context.Background(), bobEvent))

	pending.AssertExpectations(t)
	sender.AssertNotCalled(t, "SendVerificationCode", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestListenerSwallowsSendFailure(t *testing.T) {
	chats, pending, sender := &mockChats{}, &mockPending{}, &mockCodeSender{}
	chats.On("GetChatID", mock.Anything, "bob").Return(int64(777), true, nil)
	sender.On("SendVerificationCode", mock.Anything, int64(777), "bob", "654321").Return(errors.ErrUnavailable)

	l := NewVerificationListener(chats, pending, sender, logger.NewNop())
	assert.NoError(t, l.Handle(context.Background(), bobEvent))
	pending.AssertNotCalled(t, "Store", mock.Anything)
}

func TestListenerReturnsLookupFailure(t *testing.T) {
	chats := &mockChats{}
	chats.On("GetChatID", mock.Anything, "bob").Return(int64(0), false, errors.ErrUnavailable)

	l := NewVerificationListener(chats, &mockPending{}, &mockCodeSender{}, logger.NewNop())
	assert.ErrorIs(t, l.Handle(context.Background(), bobEvent), errors.ErrUnavailable)
}

func TestAuditListenerNeverFails(t *testing.T) {
	a := NewAuditListener(logger.NewNop())
	price := "10"
	ctx := context.Background()
	assert.NoError(t, a.WishCreated(ctx, &events.WishCreatedEvent{WishID: 1, Price: &price}))
	assert.NoError(t, a.WishUpdated(ctx, &events.WishUpdatedEvent{WishID: 1}))
	assert.NoError(t, a.UserCreated(ctx, &events.UserCreatedEvent{UserID: 1}))
	assert.Equal(t, "N/A", orNA(nil))
}
