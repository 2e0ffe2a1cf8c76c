package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"dabwish/pkg/logger"
)

// Check pings one dependency
type Check struct {
	Name string
	// Optional dependencies only degrade /health and never fail /ready
	Optional bool
	Ping     func(ctx context.Context) error
}

// Handler provides health check endpoints
type Handler struct {
	log         *logger.Logger
	checks      []Check
	startTime   time.Time
	serviceName string
	version     string
}

// New creates a new health check handler
func New(log *logger.Logger, serviceName, version string, checks ...Check) *Handler {
	return &Handler{
		log:         log.With("component", "health"),
		checks:      checks,
		startTime:   time.Now(),
		serviceName: serviceName,
		version:     version,
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status    string                     `json:"status"` // "healthy", "degraded", "unhealthy"
	Service   string                     `json:"service"`
	Version   string                     `json:"version"`
	Uptime    string                     `json:"uptime"`
	Timestamp string                     `json:"timestamp"`
	Checks    map[string]ComponentHealth `json:"checks"`
}

// ComponentHealth represents health of a single component
type ComponentHealth struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time,omitempty"`
	Error        string `json:"error,omitempty"`
}

// HandleLiveness returns 200 OK while the process is running
func (h *Handler) HandleLiveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// HandleReadiness fails when any required dependency is down
func (h *Handler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks, requiredDown, _ := h.run(ctx)
	status := h.status(checks)

	code := http.StatusOK
	if requiredDown > 0 {
		status.Status = "unhealthy"
		code = http.StatusServiceUnavailable
		h.log.Warnw("Readiness check failed", "checks", checks)
	}
	writeJSON(w, code, status)
}

// HandleHealth returns detailed health status. Degraded still answers 200.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	checks, requiredDown, optionalDown := h.run(ctx)
	status := h.status(checks)

	code := http.StatusOK
	switch {
	case requiredDown > 0:
		status.Status = "unhealthy"
		code = http.StatusServiceUnavailable
	case optionalDown > 0:
		status.Status = "degraded"
	}
	writeJSON(w, code, status)
}

func (h *Handler) run(ctx context.Context) (map[string]ComponentHealth, int, int) {
	results := make(map[string]ComponentHealth, len(h.checks))
	requiredDown, optionalDown := 0, 0

	for _, c := range h.checks {
		res := h.ping(ctx, c)
		results[c.Name] = res
		if res.Status == "healthy" {
			continue
		}
		if c.Optional {
			optionalDown++
		} else {
			requiredDown++
		}
	}
	return results, requiredDown, optionalDown
}

func (h *Handler) ping(ctx context.Context, c Check) ComponentHealth {
	start := time.Now()
	err := c.Ping(ctx)
	elapsed := time.Since(start)

	if err != nil {
		h.log.Errorw("Health check failed", "component", c.Name, "error", err, "elapsed", elapsed)
		return ComponentHealth{Status: "unhealthy", ResponseTime: elapsed.String(), Error: err.Error()}
	}
	return ComponentHealth{Status: "healthy", ResponseTime: elapsed.String()}
}

func (h *Handler) status(checks map[string]ComponentHealth) HealthStatus {
	return HealthStatus{
		Status:    "healthy",
		Service:   h.serviceName,
		Version:   h.version,
		Uptime:    time.Since(h.startTime).String(),
		Timestamp: time.Now().Format(time.RFC3339),
		Checks:    checks,
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
