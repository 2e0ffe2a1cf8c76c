package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"dabwish/internal/adapters/config"
	"dabwish/pkg/errors"
)

// Search queries are short and few; a small pool is enough
const (
	maxOpenConns    = 5
	maxIdleConns    = 2
	connMaxLifetime = time.Hour
	queryTimeoutSec = 10
)

// Client owns the connection to the search database
type Client struct {
	conn     driver.Conn
	database string
}

// NewClient connects and pings once, so an unreachable server is reported
// at startup rather than on the first search
func NewClient(ctx context.Context, cfg config.SearchConfig) (*Client, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": queryTimeoutSec,
		},
		Compression:     &clickhouse.Compression{Method: clickhouse.CompressionLZ4},
		DialTimeout:     5 * time.Second,
		MaxOpenConns:    maxOpenConns,
		MaxIdleConns:    maxIdleConns,
		ConnMaxLifetime: connMaxLifetime,
	})
	if err != nil {
		return nil, errors.Wrap(err, "open clickhouse")
	}

	c := &Client{conn: conn, database: cfg.Database}
	if err := c.Health(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return c, nil
}

func (c *Client) Conn() driver.Conn { return c.conn }

// Database is the database every unqualified table name resolves to
func (c *Client) Database() string { return c.database }

// Health pings the server; failures match errors.ErrUnavailable
func (c *Client) Health(ctx context.Context) error {
	if err := c.conn.Ping(ctx); err != nil {
		return errors.Wrapf(errors.ErrUnavailable, "clickhouse %s: %v", c.database, err)
	}
	return nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}
