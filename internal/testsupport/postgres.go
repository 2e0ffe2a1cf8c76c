package testsupport

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"dabwish/internal/adapters/config"
	"dabwish/internal/adapters/postgres"
	"dabwish/migrations"
	"dabwish/pkg/logger"
)

// TxDB pairs a Postgres pool with one transaction that is rolled back when
// the test ends, so repository tests never see each other's rows.
type TxDB struct {
	db   *sqlx.DB
	tx   *sqlx.Tx
	done bool
}

// OpenTx connects with cfg and begins the test transaction
func OpenTx(t *testing.T, cfg config.PostgresConfig) *TxDB {
	t.Helper()

	client, err := postgres.NewClient(cfg)
	require.NoError(t, err, "connect to postgres")
	t.Cleanup(func() { _ = client.Close() })

	tx, err := client.DB().BeginTxx(context.Background(), nil)
	require.NoError(t, err, "begin test transaction")

	h := &TxDB{db: client.DB(), tx: tx}
	t.Cleanup(h.Rollback)
	return h
}

// NewTestPostgres opens a test transaction on a database migrated with the
// schema of both services
func NewTestPostgres(t *testing.T) *TxDB {
	t.Helper()

	h := OpenTx(t, LoadDatabaseConfigsFromEnv(t).Postgres)
	for _, set := range []string{migrations.Core, migrations.Notifier} {
		require.NoError(t, migrations.Apply(context.Background(), h.db, set, logger.NewNop()), "apply %s migrations", set)
	}
	return h
}

func (h *TxDB) Tx() *sqlx.Tx { return h.tx }

func (h *TxDB) DB() *sqlx.DB { return h.db }

// Rollback discards everything written through Tx. Safe to call twice.
func (h *TxDB) Rollback() {
	if h.done {
		return
	}
	h.done = true
	_ = h.tx.Rollback()
}
