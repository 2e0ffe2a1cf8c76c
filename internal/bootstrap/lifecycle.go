package bootstrap

import (
	"context"
	"sync"
	"time"

	"dabwish/internal/api"
	"dabwish/internal/workers"
	"dabwish/pkg/errors"
	"dabwish/pkg/logger"
)

// closer is anything released during shutdown
type closer interface {
	Close() error
}

// namedCloser pairs a resource with the name used in shutdown logs
type namedCloser struct {
	name string
	c    closer
}

// ShutdownPlan lists what a service owns, in the order it is torn down
type ShutdownPlan struct {
	HTTPServer *api.Server
	Scheduler  *workers.Scheduler
	// Stoppers run right after the HTTP server, e.g. the Telegram bot
	Stoppers []func()
	// Consumers are closed before waiting for their goroutines to unblock reads
	Consumers []namedCloser
	Producer  closer
	// Databases are closed last; other components may need them while stopping
	Databases    []namedCloser
	ErrorTracker errors.Tracker
}

// Lifecycle manages graceful shutdown of components
type Lifecycle struct {
	shutdownTimeout time.Duration
	log             *logger.Logger
}

// NewLifecycle creates a new lifecycle manager
func NewLifecycle(log *logger.Logger) *Lifecycle {
	return &Lifecycle{
		shutdownTimeout: 60 * time.Second,
		log:             log,
	}
}

// Shutdown tears the plan down: no new requests first, then background work,
// then the event bus, then logs and databases
func (l *Lifecycle) Shutdown(wg *sync.WaitGroup, plan ShutdownPlan) {
	log := l.log
	shutdownCtx, cancel := context.WithTimeout(context.Background(), l.shutdownTimeout)
	defer cancel()

	log.Info("[1/7] Stopping HTTP server...")
	if plan.HTTPServer != nil {
		httpCtx, httpCancel := context.WithTimeout(shutdownCtx, 10*time.Second)
		if err := plan.HTTPServer.Shutdown(httpCtx); err != nil {
			log.Errorw("HTTP server shutdown failed", "error", err)
		}
		httpCancel()
	}
	for _, stop := range plan.Stoppers {
		stop()
	}

	log.Info("[2/7] Stopping background workers...")
	if plan.Scheduler != nil && plan.Scheduler.IsRunning() {
		if err := plan.Scheduler.Stop(); err != nil {
			log.Errorw("Workers shutdown failed", "error", err)
		}
	}

	log.Info("[3/7] Closing Kafka consumers...")
	l.closeAll(plan.Consumers, "Kafka consumer close failed")

	log.Info("[4/7] Waiting for goroutines...")
	l.waitForGoroutines(wg, 35*time.Second)

	log.Info("[5/7] Closing Kafka producer...")
	if plan.Producer != nil {
		if err := plan.Producer.Close(); err != nil {
			log.Errorw("Kafka producer close failed", "error", err)
		} else {
			log.Info("✓ Kafka producer closed")
		}
	}

	log.Info("[6/7] Flushing error tracker and logs...")
	l.flushErrorTracker(shutdownCtx, plan.ErrorTracker)
	_ = logger.Sync()

	log.Info("[7/7] Closing database connections...")
	l.closeAll(plan.Databases, "Database close failed")

	log.Info("✅ Graceful shutdown complete")
}

func (l *Lifecycle) closeAll(items []namedCloser, failure string) {
	for _, item := range items {
		if item.c == nil {
			continue
		}
		if err := item.c.Close(); err != nil {
			l.log.Errorw(failure, "name", item.name, "error", err)
		}
	}
}

// waitForGoroutines waits for all goroutines with a timeout
func (l *Lifecycle) waitForGoroutines(wg *sync.WaitGroup, timeout time.Duration) {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		l.log.Info("✓ All goroutines finished")
	case <-time.After(timeout):
		l.log.Warnw("⚠ Some goroutines did not finish within timeout", "timeout", timeout)
	}
}

func (l *Lifecycle) flushErrorTracker(ctx context.Context, tracker errors.Tracker) {
	if tracker == nil {
		return
	}

	flushCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := tracker.Flush(flushCtx); err != nil {
		l.log.Errorw("Error tracker flush failed", "error", err)
	}
}
