package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"dabwish/pkg/errors"
)

// CoreConfig is the configuration of the core service
type CoreConfig struct {
	App           AppConfig
	HTTP          HTTPConfig
	Postgres      PostgresConfig
	Redis         RedisConfig
	Search        SearchConfig
	Kafka         KafkaConfig
	S3            S3Config
	Verification  VerificationConfig
	Cache         CacheConfig
	ErrorTracking ErrorTrackingConfig
}

// NotifierConfig is the configuration of the notification service
type NotifierConfig struct {
	App           AppConfig
	HTTP          HTTPConfig
	Postgres      PostgresConfig
	Kafka         KafkaConfig
	Telegram      TelegramConfig
	Frontend      FrontendConfig
	Pending       PendingConfig
	ErrorTracking ErrorTrackingConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"dabwish"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

type HTTPConfig struct {
	Port            int           `envconfig:"HTTP_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
}

type PostgresConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" required:"true"`
	Port     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" required:"true"`
	Password string `envconfig:"POSTGRES_PASSWORD" required:"true"`
	Database string `envconfig:"POSTGRES_DB" required:"true"`
	SSLMode  string `envconfig:"POSTGRES_SSL_MODE" default:"disable"`
	MaxConns int    `envconfig:"POSTGRES_MAX_CONNS" default:"25"`
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

type RedisConfig struct {
	Enabled  bool   `envconfig:"REDIS_ENABLED" default:"true"`
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SearchConfig points at the ClickHouse database holding the wish search table.
// With Enabled=false the core service runs without a search index.
type SearchConfig struct {
	Enabled        bool   `envconfig:"SEARCH_ENABLED" default:"true"`
	Host           string `envconfig:"CLICKHOUSE_HOST" default:"localhost"`
	Port           int    `envconfig:"CLICKHOUSE_PORT" default:"9000"`
	User           string `envconfig:"CLICKHOUSE_USER" default:"default"`
	Password       string `envconfig:"CLICKHOUSE_PASSWORD"`
	Database       string `envconfig:"CLICKHOUSE_DB" default:"dabwish"`
	ReindexOnStart bool   `envconfig:"SEARCH_REINDEX_ON_START" default:"false"`
}

type KafkaConfig struct {
	Enabled bool     `envconfig:"KAFKA_ENABLED" default:"true"`
	Brokers []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	GroupID string   `envconfig:"KAFKA_GROUP_ID" default:"notification-service"`
	Topics  TopicsConfig
}

type TopicsConfig struct {
	TelegramVerification string `envconfig:"KAFKA_TOPIC_TELEGRAM_VERIFICATION" default:"telegram-verification-code-events"`
	WishNotification     string `envconfig:"KAFKA_TOPIC_WISH_NOTIFICATION" default:"wish-notification-events"`
	WishCreated          string `envconfig:"KAFKA_TOPIC_WISH_CREATED" default:"wish-created-events"`
	WishUpdated          string `envconfig:"KAFKA_TOPIC_WISH_UPDATED" default:"wish-updated-events"`
	UserCreated          string `envconfig:"KAFKA_TOPIC_USER_CREATED" default:"user-created-events"`
}

type TelegramConfig struct {
	BotToken       string        `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`
	BotUsername    string        `envconfig:"TELEGRAM_BOT_USERNAME"`
	PollTimeout    int           `envconfig:"TELEGRAM_POLL_TIMEOUT" default:"60"`
	HTTPTimeout    time.Duration `envconfig:"TELEGRAM_HTTP_TIMEOUT" default:"90s"`
	RateLimitRate  float64       `envconfig:"TELEGRAM_RATE_LIMIT" default:"25"`
	RateLimitBurst int           `envconfig:"TELEGRAM_RATE_BURST" default:"5"`
	Debug          bool          `envconfig:"TELEGRAM_DEBUG" default:"false"`
}

type FrontendConfig struct {
	BaseURL string `envconfig:"FRONTEND_BASE_URL" default:"http://localhost:3000"`
}

// S3Config describes the photo bucket. Endpoint is set for MinIO and left
// empty for AWS.
type S3Config struct {
	Endpoint        string `envconfig:"S3_ENDPOINT" default:"http://localhost:9000"`
	PublicURL       string `envconfig:"S3_PUBLIC_URL"`
	Region          string `envconfig:"S3_REGION" default:"us-east-1"`
	Bucket          string `envconfig:"S3_BUCKET" default:"wishes"`
	AccessKeyID     string `envconfig:"S3_ACCESS_KEY_ID" default:"minioadmin"`
	SecretAccessKey string `envconfig:"S3_SECRET_ACCESS_KEY" default:"minioadmin"`
	ObjectPrefix    string `envconfig:"S3_OBJECT_PREFIX" default:"wishes/"`
}

type VerificationConfig struct {
	CodeTTL         time.Duration `envconfig:"VERIFICATION_CODE_TTL" default:"10m"`
	CleanupInterval time.Duration `envconfig:"VERIFICATION_CLEANUP_INTERVAL" default:"1h"`
}

type PendingConfig struct {
	TTL           time.Duration `envconfig:"PENDING_VERIFICATION_TTL" default:"1h"`
	SweepInterval time.Duration `envconfig:"PENDING_VERIFICATION_SWEEP_INTERVAL" default:"1h"`
}

type CacheConfig struct {
	WishTTL         time.Duration `envconfig:"CACHE_WISH_TTL" default:"10m"`
	UserTTL         time.Duration `envconfig:"CACHE_USER_TTL" default:"10m"`
	SubscriptionTTL time.Duration `envconfig:"CACHE_SUBSCRIPTION_TTL" default:"5m"`
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"false"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

// LoadCore reads the core service configuration from the environment.
// A .env file is loaded first when present.
func LoadCore() (*CoreConfig, error) {
	_ = godotenv.Load()

	var cfg CoreConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}
	if cfg.App.Name == "dabwish" {
		cfg.App.Name = "core-service"
	}
	return &cfg, nil
}

// LoadNotifier reads the notification service configuration from the environment
func LoadNotifier() (*NotifierConfig, error) {
	_ = godotenv.Load()

	var cfg NotifierConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}
	if cfg.App.Name == "dabwish" {
		cfg.App.Name = "notification-service"
	}
	if cfg.Pending.TTL <= 0 {
		return nil, errors.NewValidationError("PENDING_VERIFICATION_TTL", "must be positive", cfg.Pending.TTL)
	}
	return &cfg, nil
}
