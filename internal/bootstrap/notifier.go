package bootstrap

import (
	"context"
	"sync"

	"dabwish/internal/adapters/config"
	"dabwish/internal/adapters/kafka"
	pgclient "dabwish/internal/adapters/postgres"
	tgadapter "dabwish/internal/adapters/telegram"
	"dabwish/internal/api"
	"dabwish/internal/api/health"
	"dabwish/internal/consumers"
	"dabwish/internal/events"
	"dabwish/internal/metrics"
	pgrepo "dabwish/internal/repository/postgres"
	tgservice "dabwish/internal/services/telegram"
	"dabwish/internal/workers"
	"dabwish/migrations"
	"dabwish/pkg/errors"
	"dabwish/pkg/logger"
	"dabwish/pkg/telegram/adapters/tgbotapi"
	"dabwish/pkg/templates"
)

// runner is a long-running consumer loop
type runner interface {
	Name() string
	Start(ctx context.Context) error
}

// NotifierContainer holds every dependency of the notification service
type NotifierContainer struct {
	Config       *config.NotifierConfig
	Log          *logger.Logger
	ErrorTracker errors.Tracker

	PG  *pgclient.Client
	Bot *tgbotapi.Bot

	Registry   *tgservice.ChatRegistry
	Pending    *tgservice.PendingVerificationStore
	Messenger  *tgadapter.Messenger
	Dispatcher *tgadapter.WishNotificationDispatcher

	readers   []*kafka.Consumer
	consumers []runner

	HTTPServer *api.Server
	Scheduler  *workers.Scheduler

	Lifecycle *Lifecycle
	WG        *sync.WaitGroup
	Context   context.Context
	Cancel    context.CancelFunc
}

// NewNotifierContainer creates an empty notifier container
func NewNotifierContainer() *NotifierContainer {
	ctx, cancel := context.WithCancel(context.Background())
	return &NotifierContainer{
		WG:      &sync.WaitGroup{},
		Context: ctx,
		Cancel:  cancel,
	}
}

// MustInit initializes all components or panics
func (c *NotifierContainer) MustInit() {
	c.mustInitConfig()
	c.mustInitInfrastructure()
	c.mustInitTelegram()
	c.mustInitConsumers()
	c.mustInitHTTP()
	c.mustInitWorkers()
	c.Lifecycle = NewLifecycle(c.Log)
	c.Log.Info("✓ All components initialized")
}

func (c *NotifierContainer) mustInitConfig() {
	cfg, err := config.LoadNotifier()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	c.Config = cfg
	c.Log = mustInitLogger(cfg.App)

	c.ErrorTracker = provideErrorTracker(cfg.ErrorTracking, "notifier", c.Log)
	logger.SetErrorTracker(c.ErrorTracker)
}

func (c *NotifierContainer) mustInitInfrastructure() {
	c.PG = mustInitPostgres(c.Config.Postgres, migrations.Notifier, c.Log)
	if c.Config.Kafka.Enabled {
		ensureTopics(c.Config.Kafka, c.Log)
	}
	registerMetrics(c.PG, metrics.NotifierTableCounts, c.Log)
}

func (c *NotifierContainer) mustInitTelegram() {
	cfg := c.Config.Telegram
	bot, err := tgbotapi.NewBot(tgbotapi.Config{
		Token:          cfg.BotToken,
		Debug:          cfg.Debug,
		PollTimeout:    cfg.PollTimeout,
		HTTPTimeout:    cfg.HTTPTimeout,
		RateLimitRate:  cfg.RateLimitRate,
		RateLimitBurst: cfg.RateLimitBurst,
	}, c.Log)
	if err != nil {
		c.Log.Fatalf("failed to create telegram bot: %v", err)
	}
	c.Bot = bot

	c.Registry = tgservice.NewChatRegistry(pgrepo.NewChatLinkRepository(c.PG.DB()), c.Log)
	c.Pending = tgservice.NewPendingVerificationStore(c.Config.Pending.TTL, c.Log)
	c.Messenger = tgadapter.NewMessenger(bot, templates.Get(), c.Config.Frontend.BaseURL, c.Log)
	c.Dispatcher = tgadapter.NewWishNotificationDispatcher(c.Registry, c.Messenger, c.Log)

	handler := tgadapter.NewBotUpdateHandler(c.Registry, c.Pending, c.Messenger, c.Log)
	bot.SetHandler(handler.HandleUpdate)
	c.Log.Infow("✓ Telegram bot initialized", "username", bot.Username())
}

func (c *NotifierContainer) reader(topic, groupSuffix string) *kafka.Consumer {
	r := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers: c.Config.Kafka.Brokers,
		GroupID: c.Config.Kafka.GroupID + groupSuffix,
		Topic:   topic,
	}, c.Log)
	c.readers = append(c.readers, r)
	return r
}

func (c *NotifierContainer) mustInitConsumers() {
	if !c.Config.Kafka.Enabled {
		c.Log.Warn("Kafka disabled, no events will be consumed")
		return
	}

	topics := c.Config.Kafka.Topics
	listener := consumers.NewVerificationListener(c.Registry, c.Pending, c.Messenger, c.Log)
	audit := consumers.NewAuditListener(c.Log)

	c.consumers = []runner{
		consumers.NewEventConsumer[events.TelegramVerificationCodeEvent](
			c.reader(topics.TelegramVerification, ""), "telegram_verification", listener.Handle, c.Log),
		consumers.NewEventConsumer[events.WishNotificationEvent](
			c.reader(topics.WishNotification, ""), "wish_notification", c.Dispatcher.Dispatch, c.Log),
		consumers.NewEventConsumer[events.WishCreatedEvent](
			c.reader(topics.WishCreated, "-audit"), "wish_created", audit.WishCreated, c.Log),
		consumers.NewEventConsumer[events.WishUpdatedEvent](
			c.reader(topics.WishUpdated, "-audit"), "wish_updated", audit.WishUpdated, c.Log),
		consumers.NewEventConsumer[events.UserCreatedEvent](
			c.reader(topics.UserCreated, "-audit"), "user_created", audit.UserCreated, c.Log),
	}
	c.Log.Infow("✓ Kafka consumers initialized", "count", len(c.consumers))
}

func (c *NotifierContainer) mustInitHTTP() {
	checks := []health.Check{pgCheck(c.PG)}
	c.HTTPServer = provideHTTPServer(c.Config.App, c.Config.HTTP, checks, nil, c.Log)
}

func (c *NotifierContainer) mustInitWorkers() {
	c.Scheduler = workers.NewScheduler(c.Log)
	c.Scheduler.RegisterWorker(workers.NewPendingVerificationCleanupWorker(
		c.Pending, c.Config.Pending.SweepInterval, c.Log))
}

// Start launches consumers, the bot, the sweep worker and the ops server
func (c *NotifierContainer) Start() error {
	for _, cons := range c.consumers {
		cons := cons
		c.WG.Add(1)
		go func() {
			defer c.WG.Done()
			if err := cons.Start(c.Context); err != nil {
				c.Log.Errorw("Consumer stopped with error", "consumer", cons.Name(), "error", err)
			}
		}()
	}

	c.WG.Add(1)
	go func() {
		defer c.WG.Done()
		if err := c.Bot.Start(c.Context); err != nil {
			c.Log.Errorw("Telegram bot stopped with error", "error", err)
		}
	}()

	if err := c.Scheduler.Start(c.Context); err != nil {
		return errors.Wrap(err, "failed to start workers")
	}

	startHTTP(c.HTTPServer, c.WG, c.Log)
	c.Log.Infow("✓ Notification service started", "consumers", len(c.consumers))
	return nil
}

// Shutdown stops the notification service
func (c *NotifierContainer) Shutdown() {
	c.Log.Info("Shutting down notification service...")
	c.Cancel()

	plan := ShutdownPlan{
		HTTPServer:   c.HTTPServer,
		Scheduler:    c.Scheduler,
		Stoppers:     []func(){c.Bot.Stop},
		ErrorTracker: c.ErrorTracker,
		Databases:    []namedCloser{{"postgres", c.PG}},
	}
	for _, r := range c.readers {
		plan.Consumers = append(plan.Consumers, namedCloser{r.Topic(), r})
	}
	c.Lifecycle.Shutdown(c.WG, plan)
}
