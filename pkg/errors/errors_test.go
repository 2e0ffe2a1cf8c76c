package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelFamilies(t *testing.T) {
	assert.True(t, Is(ErrUserNotFound, ErrNotFound))
	assert.True(t, Is(ErrWishNotFound, ErrNotFound))
	assert.True(t, Is(ErrNotSubscribed, ErrNotFound))
	assert.True(t, Is(ErrAlreadyVerified, ErrConflict))
	assert.True(t, Is(ErrInvalidCode, ErrConflict))
	assert.True(t, Is(ErrAlreadySubscribed, ErrConflict))
	assert.True(t, Is(ErrCannotSubscribeToSelf, ErrInvalidInput))

	assert.False(t, Is(ErrCodeExpired, ErrConflict))
	assert.False(t, Is(ErrCodeExpired, ErrNotFound))
}

func TestWrapKeepsChain(t *testing.T) {
	err := Wrapf(ErrUserNotFound, "user %d", 42)
	assert.True(t, Is(err, ErrUserNotFound))
	assert.True(t, Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "user 42")

	assert.Nil(t, Wrap(nil, "nothing"))
}

func TestValidationErrorMatchesInvalidInput(t *testing.T) {
	err := Wrap(NewValidationError("title", "is required", ""), "create wish")
	assert.True(t, Is(err, ErrInvalidInput))

	var ve *ValidationError
	assert.True(t, As(err, &ve))
	assert.Equal(t, "title", ve.Field)
}

func TestMultiError(t *testing.T) {
	var m MultiError
	assert.Nil(t, m.ErrorOrNil())

	m.Add(nil)
	m.Add(Wrap(ErrTimeout, "close a"))
	m.Add(ErrUnavailable)

	err := m.ErrorOrNil()
	assert.Contains(t, err.Error(), "2 errors, first: close a")
	assert.True(t, Is(err, ErrTimeout))
	assert.True(t, Is(err, ErrUnavailable))
	assert.False(t, Is(err, ErrNotFound))
}
