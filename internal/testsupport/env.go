package testsupport

import (
	"os"
	"testing"

	"github.com/kelseyhightower/envconfig"

	"dabwish/internal/adapters/config"
)

// Variables that must be set before a backing service is used in tests
var (
	PostgresEnv   = []string{"POSTGRES_HOST", "POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB"}
	ClickHouseEnv = []string{"CLICKHOUSE_HOST"}
	RedisEnv      = []string{"REDIS_HOST"}
)

// DatabaseConfigs bundles the storage sections integration tests connect to
type DatabaseConfigs struct {
	Postgres config.PostgresConfig
	Search   config.SearchConfig
	Redis    config.RedisConfig
}

// LoadDatabaseConfigsFromEnv reads the storage sections with the same envconfig
// tags the services use. The test is skipped unless every required variable
// is set; Postgres variables are required when none are named.
func LoadDatabaseConfigsFromEnv(t *testing.T, required ...string) DatabaseConfigs {
	t.Helper()

	if len(required) == 0 {
		required = PostgresEnv
	}
	var missing []string
	for _, key := range required {
		if os.Getenv(key) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		t.Skipf("integration environment missing, set %v to run", missing)
	}

	var cfg DatabaseConfigs
	for _, section := range []any{&cfg.Search, &cfg.Redis} {
		if err := envconfig.Process("", section); err != nil {
			t.Fatalf("invalid integration environment: %v", err)
		}
	}
	// Postgres has required tags, which only hold when its variables were asked for
	if os.Getenv("POSTGRES_HOST") != "" {
		if err := envconfig.Process("", &cfg.Postgres); err != nil {
			t.Fatalf("invalid integration environment: %v", err)
		}
	}

	if os.Getenv("CLICKHOUSE_DB") == "" {
		cfg.Search.Database = "dabwish_test"
	}
	cfg.Postgres.MaxConns = 10
	cfg.Search.Enabled = true
	cfg.Redis.Enabled = true
	return cfg
}
