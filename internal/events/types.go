package events

import (
	"strconv"
	"strings"
	"time"

	"github.com/hamba/avro/v2"

	"dabwish/pkg/errors"
)

// TelegramVerificationCodeEvent asks the notifier to deliver a code.
// Keyed by user id.
type TelegramVerificationCodeEvent struct {
	UserID           int64  `avro:"userId"`
	TelegramUsername string `avro:"telegramUsername"`
	VerificationCode string `avro:"verificationCode"`
}

func (e *TelegramVerificationCodeEvent) Key() string { return strconv.FormatInt(e.UserID, 10) }

func (e *TelegramVerificationCodeEvent) Schema() avro.Schema { return TelegramVerificationCodeSchema }

// WishNotificationEvent tells one subscriber about a new wish.
// Keyed by "{wishId}-{subscriberId}".
type WishNotificationEvent struct {
	WishID                     int64  `avro:"wishId"`
	OwnerID                    int64  `avro:"ownerId"`
	OwnerName                  string `avro:"ownerName"`
	WishTitle                  string `avro:"wishTitle"`
	SubscriberID               int64  `avro:"subscriberId"`
	SubscriberTelegramUsername string `avro:"subscriberTelegramUsername"`
}

func (e *WishNotificationEvent) Key() string {
	return strconv.FormatInt(e.WishID, 10) + "-" + strconv.FormatInt(e.SubscriberID, 10)
}

func (e *WishNotificationEvent) Schema() avro.Schema { return WishNotificationSchema }

// WishCreatedEvent is keyed by wish id
type WishCreatedEvent struct {
	WishID      int64   `avro:"wishId"`
	OwnerID     int64   `avro:"ownerId"`
	Title       string  `avro:"title"`
	Description *string `avro:"description"`
	PhotoURL    *string `avro:"photoUrl"`
	Price       *string `avro:"price"`
	CreatedAt   string  `avro:"createdAt"`
}

func (e *WishCreatedEvent) Key() string { return strconv.FormatInt(e.WishID, 10) }

func (e *WishCreatedEvent) Schema() avro.Schema { return WishCreatedSchema }

// WishUpdatedEvent is keyed by wish id
type WishUpdatedEvent struct {
	WishID      int64   `avro:"wishId"`
	OwnerID     int64   `avro:"ownerId"`
	Title       string  `avro:"title"`
	Description *string `avro:"description"`
	PhotoURL    *string `avro:"photoUrl"`
	Price       *string `avro:"price"`
	UpdatedAt   string  `avro:"updatedAt"`
}

func (e *WishUpdatedEvent) Key() string { return strconv.FormatInt(e.WishID, 10) }

func (e *WishUpdatedEvent) Schema() avro.Schema { return WishUpdatedSchema }

// UserCreatedEvent is keyed by user id
type UserCreatedEvent struct {
	UserID    int64  `avro:"userId"`
	Name      string `avro:"name"`
	Role      string `avro:"role"`
	CreatedAt string `avro:"createdAt"`
}

func (e *UserCreatedEvent) Key() string { return strconv.FormatInt(e.UserID, 10) }

func (e *UserCreatedEvent) Schema() avro.Schema { return UserCreatedSchema }

// Event is anything that can be published
type Event interface {
	Key() string
	Schema() avro.Schema
}

// Encode serializes an event with its Avro schema
func Encode(e Event) ([]byte, error) {
	data, err := avro.Marshal(e.Schema(), e)
	if err != nil {
		return nil, errors.Wrap(err, "avro encode")
	}
	return data, nil
}

// Decode deserializes data into e using e's schema
func Decode(data []byte, e Event) error {
	if err := avro.Unmarshal(e.Schema(), data, e); err != nil {
		return errors.Wrap(err, "avro decode")
	}
	return nil
}

// FormatTime renders timestamps the way every event carries them (RFC 3339 with offset)
func FormatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

// SanitizeUTF8 drops invalid UTF-8 sequences; Avro strings must be valid UTF-8
func SanitizeUTF8(s string) string {
	return strings.ToValidUTF8(s, "")
}

// OptionalString returns nil for an empty string
func OptionalString(s string) *string {
	if s == "" {
		return nil
	}
	s = SanitizeUTF8(s)
	return &s
}
