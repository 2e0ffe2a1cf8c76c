package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver

	"dabwish/internal/adapters/config"
	"dabwish/pkg/errors"
	"dabwish/pkg/logger"
)

// DBTX is the query surface shared by *sqlx.DB and *sqlx.Tx
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
}

// Client wraps sqlx.DB for PostgreSQL operations
type Client struct {
	db  *sqlx.DB
	log *logger.Logger
}

// NewClient creates a new PostgreSQL client with connection pooling
func NewClient(cfg config.PostgresConfig) (*Client, error) {
	db, err := sqlx.Connect("postgres", cfg.DSN())
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to postgres")
	}

	db.SetMaxOpenConns(cfg.MaxConns)
	db.SetMaxIdleConns(cfg.MaxConns / 2)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	if err := db.PingContext(context.Background()); err != nil {
		return nil, errors.Wrap(err, "failed to ping postgres")
	}

	return NewClientFromDB(db), nil
}

// NewClientFromDB wraps an existing connection pool
func NewClientFromDB(db *sqlx.DB) *Client {
	return &Client{db: db, log: logger.Get().With("component", "postgres")}
}

// DB returns the underlying sqlx.DB instance
func (c *Client) DB() *sqlx.DB {
	return c.db
}

// Close closes the database connection
func (c *Client) Close() error {
	return c.db.Close()
}

// Health checks database connectivity
func (c *Client) Health(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// WithinTx runs fn inside one transaction. Repositories reached through the
// context passed to fn use the transaction (see Executor). A nested call joins
// the outer transaction. Hooks registered with AfterCommit and AfterRollback
// run once the outcome is known.
func (c *Client) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := txFrom(ctx); ok {
		return fn(ctx)
	}

	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}

	return RunScoped(ctx, c.log, func(ctx context.Context) error {
		return fn(withTx(ctx, tx))
	}, tx.Commit, tx.Rollback)
}

type txKey struct{}

func withTx(ctx context.Context, tx *sqlx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func txFrom(ctx context.Context) (*sqlx.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*sqlx.Tx)
	return tx, ok
}

// Executor returns the transaction carried by ctx, or fallback when there is none
func Executor(ctx context.Context, fallback DBTX) DBTX {
	if tx, ok := txFrom(ctx); ok {
		return tx
	}
	return fallback
}
