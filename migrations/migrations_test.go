package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilesAreOrdered(t *testing.T) {
	names, err := Files(Core)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"0001_users.sql",
		"0002_wishes.sql",
		"0003_user_subscriptions.sql",
		"0004_telegram_verification_codes.sql",
	}, names)

	names, err = Files(Notifier)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_telegram_chat_links.sql"}, names)
}

func TestFilesUnknownSet(t *testing.T) {
	_, err := Files("billing")
	assert.Error(t, err)
}
