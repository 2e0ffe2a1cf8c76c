package testsupport

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	redisadapter "dabwish/internal/adapters/redis"
)

// NewTestRedis connects to the Redis from the environment and returns a key
// prefix unique to this test. Keys under the prefix are removed when the test
// ends; other keys in the database are never touched.
func NewTestRedis(t *testing.T) (*redisadapter.Client, string) {
	t.Helper()

	cfg := LoadDatabaseConfigsFromEnv(t, RedisEnv...).Redis
	client, err := redisadapter.NewClient(cfg)
	require.NoError(t, err, "connect to redis")

	prefix := UniqueName("test") + ":"
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, _ = client.DeleteMatching(ctx, prefix+"*")
		_ = client.Close()
	})
	return client, prefix
}
