package testsupport

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dabwish/internal/adapters/clickhouse"
)

// NewTestClickHouse connects to the ClickHouse from the environment, skipping
// when it is not configured. The connection is closed when the test ends.
func NewTestClickHouse(t *testing.T) *clickhouse.Client {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := clickhouse.NewClient(ctx, LoadDatabaseConfigsFromEnv(t, ClickHouseEnv...).Search)
	require.NoError(t, err, "connect to clickhouse")
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// TempTable returns a table name unique to this test; the table is dropped
// when the test ends
func TempTable(t *testing.T, client *clickhouse.Client, prefix string) string {
	t.Helper()

	table := UniqueName(prefix)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Conn().Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", table))
	})
	return table
}
