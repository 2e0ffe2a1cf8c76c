package bootstrap

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"dabwish/internal/adapters/config"
	errnoop "dabwish/internal/adapters/errors/noop"
	"dabwish/internal/adapters/errors/sentry"
	"dabwish/internal/adapters/kafka"
	pgclient "dabwish/internal/adapters/postgres"
	"dabwish/internal/api"
	"dabwish/internal/api/health"
	"dabwish/internal/metrics"
	"dabwish/migrations"
	"dabwish/pkg/errors"
	"dabwish/pkg/logger"
)

// Version is stamped at build time with -ldflags
var Version = "dev"

const startupTimeout = 30 * time.Second

func mustInitLogger(app config.AppConfig) *logger.Logger {
	if err := logger.Init(app.LogLevel, app.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	log := logger.Get()
	log.Infof("Starting %s in %s mode", app.Name, app.Env)
	return log
}

// provideErrorTracker returns Sentry when configured and a no-op tracker otherwise
func provideErrorTracker(cfg config.ErrorTrackingConfig, service string, log *logger.Logger) errors.Tracker {
	if !cfg.Enabled || cfg.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return errnoop.New()
	}

	tracker, err := sentry.New(cfg.SentryDSN, cfg.Environment, service)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return errnoop.New()
	}

	log.Info("✓ Error tracking initialized (Sentry)")
	return tracker
}

// mustInitPostgres connects and applies the service's migration set
func mustInitPostgres(cfg config.PostgresConfig, set string, log *logger.Logger) *pgclient.Client {
	log.Info("Connecting to PostgreSQL...")
	pg, err := pgclient.NewClient(cfg)
	if err != nil {
		log.Fatalf("failed to connect postgres: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()
	if err := migrations.Apply(ctx, pg.DB(), set, log); err != nil {
		log.Fatalf("failed to apply migrations: %v", err)
	}

	log.Info("✓ PostgreSQL connected")
	return pg
}

// ensureTopics creates missing topics. Failure is logged; brokers with
// auto-creation enabled still work.
func ensureTopics(cfg config.KafkaConfig, log *logger.Logger) {
	t := cfg.Topics
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	err := kafka.EnsureTopics(ctx, cfg.Brokers, 1,
		t.TelegramVerification, t.WishNotification, t.WishCreated, t.WishUpdated, t.UserCreated)
	if err != nil {
		log.Warnw("Failed to ensure Kafka topics", "error", err)
		return
	}
	log.Info("✓ Kafka topics ready")
}

func registerMetrics(pg *pgclient.Client, counts []metrics.TableCount, log *logger.Logger) {
	metrics.Init()
	collector := metrics.NewTableCollector(log.With("component", "table_collector"), pg.DB(), counts)
	if err := prometheus.Register(collector); err != nil {
		log.Warnw("Failed to register table collector", "error", err)
	}
}

func provideHTTPServer(
	app config.AppConfig,
	cfg config.HTTPConfig,
	checks []health.Check,
	routes api.Routes,
	log *logger.Logger,
) *api.Server {
	healthHandler := health.New(log, app.Name, Version, checks...)
	return api.NewServer(api.ServerConfig{
		Port:         cfg.Port,
		ServiceName:  app.Name,
		Version:      Version,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}, healthHandler, routes, log)
}

func pgCheck(pg *pgclient.Client) health.Check {
	return health.Check{Name: "postgres", Ping: pg.Health}
}

// startHTTP serves in the background; a listen failure is fatal
func startHTTP(server *api.Server, wg *sync.WaitGroup, log *logger.Logger) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := server.Start(); err != nil {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()
}
