package testsupport

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresTransactionIsRolledBack(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	configs := LoadDatabaseConfigsFromEnv(t)

	helper := OpenTx(t, configs.Postgres)
	tx := helper.Tx()

	_, err := tx.Exec("CREATE TABLE IF NOT EXISTS integration_tx_check(id SERIAL PRIMARY KEY, value TEXT)")
	require.NoError(t, err)

	_, err = tx.Exec("INSERT INTO integration_tx_check(value) VALUES('hello world')")
	require.NoError(t, err)

	var count int
	require.NoError(t, tx.QueryRow("SELECT COUNT(*) FROM integration_tx_check").Scan(&count))
	assert.Equal(t, 1, count)

	helper.Rollback()

	var exists sql.NullString
	err = helper.DB().QueryRowContext(context.Background(), "SELECT to_regclass('public.integration_tx_check')").Scan(&exists)
	require.NoError(t, err)
	assert.False(t, exists.Valid, "table should be rolled back")
}
