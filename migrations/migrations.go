// Package migrations embeds the SQL schema of each service and applies it in order.
package migrations

import (
	"context"
	"embed"
	"io/fs"
	"path"
	"sort"

	"github.com/jmoiron/sqlx"

	"dabwish/pkg/errors"
	"dabwish/pkg/logger"
)

//go:embed core/*.sql notifier/*.sql
var files embed.FS

// Schema sets
const (
	Core     = "core"
	Notifier = "notifier"
)

// Files returns the migration file names of set in apply order
func Files(set string) ([]string, error) {
	entries, err := fs.ReadDir(files, set)
	if err != nil {
		return nil, errors.Wrapf(err, "read migration set %q", set)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && path.Ext(e.Name()) == ".sql" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Apply runs every migration of set that is not yet recorded in schema_migrations.
// Each file runs in its own transaction together with its bookkeeping row.
func Apply(ctx context.Context, db *sqlx.DB, set string, log *logger.Logger) error {
	log = log.With("component", "migrations", "set", set)

	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			set_name   VARCHAR(32)  NOT NULL,
			version    VARCHAR(255) NOT NULL,
			applied_at TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			PRIMARY KEY (set_name, version)
		)`); err != nil {
		return errors.Wrap(err, "create schema_migrations")
	}

	names, err := Files(set)
	if err != nil {
		return err
	}

	var applied []string
	if err := db.SelectContext(ctx, &applied,
		`SELECT version FROM schema_migrations WHERE set_name = $1`, set); err != nil {
		return errors.Wrap(err, "load applied migrations")
	}
	done := make(map[string]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	for _, name := range names {
		if done[name] {
			continue
		}
		body, err := files.ReadFile(path.Join(set, name))
		if err != nil {
			return errors.Wrapf(err, "read migration %s", name)
		}
		if err := applyOne(ctx, db, set, name, string(body)); err != nil {
			return err
		}
		log.Infow("Applied migration", "version", name)
	}
	return nil
}

func applyOne(ctx context.Context, db *sqlx.DB, set, name, body string) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin migration")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, body); err != nil {
		return errors.Wrapf(err, "apply migration %s", name)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (set_name, version) VALUES ($1, $2)`, set, name); err != nil {
		return errors.Wrapf(err, "record migration %s", name)
	}
	return errors.Wrapf(tx.Commit(), "commit migration %s", name)
}
