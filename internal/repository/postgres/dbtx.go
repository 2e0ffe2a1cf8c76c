package postgres

import (
	"context"
	"strings"

	pgadapter "dabwish/internal/adapters/postgres"
)

// DBTX is a common interface for *sqlx.DB and *sqlx.Tx.
// Repositories built on *sqlx.DB still join a unit of work opened with
// postgres.Client.WithinTx because every query goes through conn.
type DBTX = pgadapter.DBTX

// conn returns the transaction carried by ctx, or db outside one
func conn(ctx context.Context, db DBTX) DBTX {
	return pgadapter.Executor(ctx, db)
}

// likePattern escapes LIKE wildcards and wraps s for a substring match
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
