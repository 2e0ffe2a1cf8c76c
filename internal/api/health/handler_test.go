package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dabwish/pkg/errors"
	"dabwish/pkg/logger"
)

func ok(context.Context) error   { return nil }
func down(context.Context) error { return errors.ErrUnavailable }

func call(t *testing.T, fn http.HandlerFunc) (int, HealthStatus) {
	t.Helper()
	rec := httptest.NewRecorder()
	fn(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	var body HealthStatus
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return rec.Code, body
}

func TestAllHealthy(t *testing.T) {
	h := New(logger.NewNop(), "core-service", "test",
		Check{Name: "postgres", Ping: ok},
		Check{Name: "redis", Optional: true, Ping: ok},
	)

	code, body := call(t, h.HandleHealth)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "core-service", body.Service)
	assert.Len(t, body.Checks, 2)

	code, _ = call(t, h.HandleReadiness)
	assert.Equal(t, http.StatusOK, code)
}

func TestOptionalDownIsDegraded(t *testing.T) {
	h := New(logger.NewNop(), "core-service", "test",
		Check{Name: "postgres", Ping: ok},
		Check{Name: "clickhouse", Optional: true, Ping: down},
	)

	code, body := call(t, h.HandleHealth)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "unhealthy", body.Checks["clickhouse"].Status)
	assert.NotEmpty(t, body.Checks["clickhouse"].Error)

	code, _ = call(t, h.HandleReadiness)
	assert.Equal(t, http.StatusOK, code)
}

func TestRequiredDownIsUnavailable(t *testing.T) {
	h := New(logger.NewNop(), "notification-service", "test", Check{Name: "postgres", Ping: down})

	code, body := call(t, h.HandleReadiness)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unhealthy", body.Status)

	code, _ = call(t, h.HandleHealth)
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestLiveness(t *testing.T) {
	h := New(logger.NewNop(), "core-service", "test", Check{Name: "postgres", Ping: down})

	rec := httptest.NewRecorder()
	h.HandleLiveness(rec, httptest.NewRequest(http.MethodGet, "/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"alive"}`, rec.Body.String())
}
