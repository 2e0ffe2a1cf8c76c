package bootstrap

import (
	"context"
	"sync"

	"dabwish/internal/adapters/config"
	chclient "dabwish/internal/adapters/clickhouse"
	"dabwish/internal/adapters/kafka"
	pgclient "dabwish/internal/adapters/postgres"
	redisclient "dabwish/internal/adapters/redis"
	"dabwish/internal/adapters/s3"
	"dabwish/internal/api"
	"dabwish/internal/api/health"
	"dabwish/internal/api/rest"
	"dabwish/internal/cache"
	userdomain "dabwish/internal/domain/user"
	"dabwish/internal/domain/wish"
	"dabwish/internal/events"
	"dabwish/internal/metrics"
	chrepo "dabwish/internal/repository/clickhouse"
	pgrepo "dabwish/internal/repository/postgres"
	redisrepo "dabwish/internal/repository/redis"
	"dabwish/internal/services/subscription"
	userservice "dabwish/internal/services/user"
	"dabwish/internal/services/verification"
	wishservice "dabwish/internal/services/wish"
	"dabwish/internal/workers"
	"dabwish/migrations"
	"dabwish/pkg/errors"
	"dabwish/pkg/logger"
)

// CoreContainer holds every dependency of the core service
type CoreContainer struct {
	Config       *config.CoreConfig
	Log          *logger.Logger
	ErrorTracker errors.Tracker

	PG       *pgclient.Client
	Redis    *redisclient.Client
	CH       *chclient.Client
	Producer *kafka.Producer

	Cache     cache.Cache
	Index     wish.SearchIndex
	Publisher interface {
		events.UserPublisher
		events.TelegramPublisher
		wishservice.Publisher
	}

	Users         *userservice.Service
	Verification  *verification.Service
	Wishes        *wishservice.Service
	Subscriptions *subscription.Service

	HTTPServer *api.Server
	Scheduler  *workers.Scheduler

	Lifecycle *Lifecycle
	WG        *sync.WaitGroup
	Context   context.Context
	Cancel    context.CancelFunc
}

// NewCoreContainer creates an empty core container
func NewCoreContainer() *CoreContainer {
	ctx, cancel := context.WithCancel(context.Background())
	return &CoreContainer{
		WG:      &sync.WaitGroup{},
		Context: ctx,
		Cancel:  cancel,
	}
}

// MustInit initializes all components or panics
func (c *CoreContainer) MustInit() {
	c.mustInitConfig()
	c.mustInitInfrastructure()
	c.mustInitServices()
	c.mustInitHTTP()
	c.mustInitWorkers()
	c.Lifecycle = NewLifecycle(c.Log)
	c.Log.Info("✓ All components initialized")
}

func (c *CoreContainer) mustInitConfig() {
	cfg, err := config.LoadCore()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	c.Config = cfg
	c.Log = mustInitLogger(cfg.App)

	c.ErrorTracker = provideErrorTracker(cfg.ErrorTracking, "core", c.Log)
	logger.SetErrorTracker(c.ErrorTracker)
}

func (c *CoreContainer) mustInitInfrastructure() {
	cfg := c.Config
	c.PG = mustInitPostgres(cfg.Postgres, migrations.Core, c.Log)
	c.Cache = c.provideCache()
	c.Index = c.provideSearchIndex()

	if cfg.Kafka.Enabled {
		ensureTopics(cfg.Kafka, c.Log)
		c.Producer = kafka.NewProducer(kafka.ProducerConfig{Brokers: cfg.Kafka.Brokers})
		c.Publisher = events.NewPublisher(c.Producer, cfg.Kafka.Topics, c.Log)
		c.Log.Info("✓ Kafka producer initialized")
	} else {
		c.Log.Warn("Kafka disabled, events will be dropped")
		c.Publisher = events.NewNoop(c.Log)
	}

	registerMetrics(c.PG, metrics.CoreTableCounts, c.Log)
}

// provideCache falls back to the no-op cache when Redis is off or unreachable
func (c *CoreContainer) provideCache() cache.Cache {
	if !c.Config.Redis.Enabled {
		c.Log.Info("Redis disabled, caching off")
		return cache.Noop{}
	}

	client, err := redisclient.NewClient(c.Config.Redis)
	if err != nil {
		c.Log.Warnw("Redis unavailable, caching off", "error", err)
		return cache.Noop{}
	}
	c.Redis = client
	c.Log.Info("✓ Redis connected")
	return redisrepo.NewCache(client, c.Config.App.Name+":")
}

// provideSearchIndex falls back to the no-op index, which makes wish search
// use Postgres instead
func (c *CoreContainer) provideSearchIndex() wish.SearchIndex {
	if !c.Config.Search.Enabled {
		c.Log.Info("ClickHouse search disabled, using Postgres text search")
		return wish.NoopIndex{}
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	client, err := chclient.NewClient(ctx, c.Config.Search)
	if err != nil {
		c.Log.Warnw("ClickHouse unavailable, using Postgres text search", "error", err)
		return wish.NoopIndex{}
	}

	index := chrepo.NewWishSearchIndex(client.Conn(), "")
	if err := index.EnsureSchema(ctx); err != nil {
		c.Log.Warnw("Failed to prepare search index, using Postgres text search", "error", err)
		_ = client.Close()
		return wish.NoopIndex{}
	}

	c.CH = client
	c.Log.Infow("✓ ClickHouse search index ready", "database", client.Database())
	return index
}

// providePhotoStore returns nil when the bucket is unreachable; uploads are
// then rejected
func (c *CoreContainer) providePhotoStore() wishservice.PhotoStore {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	client, err := s3.NewClient(ctx, c.Config.S3)
	if err != nil {
		c.Log.Warnw("S3 unavailable, photo uploads disabled", "error", err)
		return nil
	}
	c.Log.Infow("✓ S3 photo store ready", "bucket", c.Config.S3.Bucket)
	return s3.NewPhotoStore(client, c.Config.S3)
}

func (c *CoreContainer) mustInitServices() {
	cfg := c.Config
	db := c.PG.DB()

	users := pgrepo.NewUserRepository(db)
	wishes := pgrepo.NewWishRepository(db)
	subs := pgrepo.NewSubscriptionRepository(db)
	codes := pgrepo.NewVerificationCodeRepository(db)

	c.Users = userservice.NewService(userdomain.NewService(users), c.PG, c.Publisher, c.Cache, cfg.Cache.UserTTL, c.Log)
	c.Verification = verification.NewService(c.PG, users, codes, c.Publisher, c.Cache, cfg.Verification.CodeTTL, c.Log)
	c.Wishes = wishservice.NewService(c.PG, wishes, users, subs, c.Index, c.providePhotoStore(),
		c.Publisher, c.Cache, cfg.Cache.WishTTL, c.Log)
	c.Subscriptions = subscription.NewService(c.PG, subs, users, c.Cache, cfg.Cache.SubscriptionTTL, c.Log)

	c.Log.Info("✓ Services initialized")
}

func (c *CoreContainer) mustInitHTTP() {
	checks := []health.Check{pgCheck(c.PG)}
	if c.Redis != nil {
		checks = append(checks, health.Check{Name: "redis", Optional: true, Ping: c.Redis.Health})
	}
	if c.CH != nil {
		checks = append(checks, health.Check{Name: "clickhouse", Optional: true, Ping: c.CH.Health})
	}

	handler := rest.NewHandler(c.Users, c.Verification, c.Wishes, c.Subscriptions, c.Log)
	c.HTTPServer = provideHTTPServer(c.Config.App, c.Config.HTTP, checks, handler.Routes, c.Log)
}

func (c *CoreContainer) mustInitWorkers() {
	c.Scheduler = workers.NewScheduler(c.Log)
	c.Scheduler.RegisterWorker(workers.NewVerificationCodeCleanupWorker(
		c.Verification, c.Config.Verification.CleanupInterval, c.Log))
}

// Start launches the HTTP server and background workers
func (c *CoreContainer) Start() error {
	if c.Config.Search.ReindexOnStart && c.CH != nil {
		c.WG.Add(1)
		go func() {
			defer c.WG.Done()
			n, err := c.Wishes.ReindexAll(c.Context)
			if err != nil {
				c.Log.Errorw("Search reindex failed", "error", err)
				return
			}
			c.Log.Infow("✓ Search index rebuilt", "wishes", n)
		}()
	}

	if err := c.Scheduler.Start(c.Context); err != nil {
		return errors.Wrap(err, "failed to start workers")
	}

	startHTTP(c.HTTPServer, c.WG, c.Log)
	c.Log.Infow("✓ Core service started", "port", c.Config.HTTP.Port)
	return nil
}

// Shutdown stops the core service
func (c *CoreContainer) Shutdown() {
	c.Log.Info("Shutting down core service...")
	c.Cancel()

	plan := ShutdownPlan{
		HTTPServer:   c.HTTPServer,
		Scheduler:    c.Scheduler,
		ErrorTracker: c.ErrorTracker,
		Databases:    []namedCloser{{"postgres", c.PG}},
	}
	if c.Producer != nil {
		plan.Producer = c.Producer
	}
	if c.Redis != nil {
		plan.Databases = append(plan.Databases, namedCloser{"redis", c.Redis})
	}
	if c.CH != nil {
		plan.Databases = append(plan.Databases, namedCloser{"clickhouse", c.CH})
	}
	c.Lifecycle.Shutdown(c.WG, plan)
}
