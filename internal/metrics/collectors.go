package metrics

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"

	"dabwish/pkg/logger"
)

// TableCount is one row-count gauge computed at scrape time
type TableCount struct {
	Name  string
	Help  string
	Query string
}

// CoreTableCounts are the gauges exported by the core service
var CoreTableCounts = []TableCount{
	{Name: "dabwish_users", Help: "Registered users", Query: "SELECT COUNT(*) FROM users"},
	{Name: "dabwish_users_telegram_verified", Help: "Users with a linked Telegram account",
		Query: "SELECT COUNT(*) FROM users WHERE telegram_username IS NOT NULL"},
	{Name: "dabwish_wishes", Help: "Stored wishes", Query: "SELECT COUNT(*) FROM wishes"},
	{Name: "dabwish_subscriptions", Help: "User subscriptions", Query: "SELECT COUNT(*) FROM user_subscriptions"},
	{Name: "dabwish_verification_codes_active", Help: "Unexpired verification codes",
		Query: "SELECT COUNT(*) FROM telegram_verification_codes WHERE expires_at >= NOW()"},
}

// NotifierTableCounts are the gauges exported by the notification service
var NotifierTableCounts = []TableCount{
	{Name: "dabwish_telegram_chat_links", Help: "Registered Telegram chats", Query: "SELECT COUNT(*) FROM telegram_chat_links"},
}

// TableCollector runs count queries against Postgres on every scrape
type TableCollector struct {
	log    *logger.Logger
	db     *sqlx.DB
	counts []TableCount
	descs  []*prometheus.Desc
}

// NewTableCollector creates a collector for the given counts
func NewTableCollector(log *logger.Logger, db *sqlx.DB, counts []TableCount) *TableCollector {
	descs := make([]*prometheus.Desc, len(counts))
	for i, c := range counts {
		descs[i] = prometheus.NewDesc(c.Name, c.Help, nil, nil)
	}
	return &TableCollector{log: log, db: db, counts: counts, descs: descs}
}

// Describe implements prometheus.Collector
func (c *TableCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range c.descs {
		ch <- d
	}
}

// Collect implements prometheus.Collector. A failing query only drops its own gauge.
func (c *TableCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for i, tc := range c.counts {
		var n int64
		if err := c.db.GetContext(ctx, &n, tc.Query); err != nil {
			c.log.Warnw("Failed to collect table count", "metric", tc.Name, "error", err)
			continue
		}
		ch <- prometheus.MustNewConstMetric(c.descs[i], prometheus.GaugeValue, float64(n))
	}
}
