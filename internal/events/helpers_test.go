package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeUTF8(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "valid UTF-8 string unchanged",
			input:    "Хочу велосипед 🚲",
			expected: "Хочу велосипед 🚲",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "invalid byte removed",
			input:    "Hello\xffWorld",
			expected: "HelloWorld",
		},
		{
			name:     "multiple invalid sequences",
			input:    "Start\xffMiddle\xfeEnd\xfd",
			expected: "StartMiddleEnd",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeUTF8(tt.input))
		})
	}
}

func TestOptionalString(t *testing.T) {
	assert.Nil(t, OptionalString(""))
	if v := OptionalString("bike\xff"); assert.NotNil(t, v) {
		assert.Equal(t, "bike", *v)
	}
}

func TestEventKeys(t *testing.T) {
	assert.Equal(t, "1", (&TelegramVerificationCodeEvent{UserID: 1}).Key())
	assert.Equal(t, "10-20", (&WishNotificationEvent{WishID: 10, SubscriberID: 20}).Key())
	assert.Equal(t, "7", (&WishCreatedEvent{WishID: 7}).Key())
	assert.Equal(t, "7", (&WishUpdatedEvent{WishID: 7}).Key())
	assert.Equal(t, "3", (&UserCreatedEvent{UserID: 3}).Key())
}
