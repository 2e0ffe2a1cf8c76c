package workers

import (
	"context"
	"sync"
	"time"

	"dabwish/internal/metrics"
	"dabwish/pkg/errors"
	"dabwish/pkg/logger"
)

// DefaultStopTimeout bounds how long Stop waits for running iterations
const DefaultStopTimeout = 30 * time.Second

// Scheduler runs every registered worker on its own ticker
type Scheduler struct {
	workers     []Worker
	stats       map[string]*Stats
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.RWMutex
	log         *logger.Logger
	stopTimeout time.Duration
	started     bool
}

// NewScheduler creates a new worker scheduler
func NewScheduler(log *logger.Logger) *Scheduler {
	return &Scheduler{
		log:         log.With("component", "scheduler"),
		stopTimeout: DefaultStopTimeout,
		stats:       make(map[string]*Stats),
	}
}

// RegisterWorker adds a worker. Registration after Start is ignored.
func (s *Scheduler) RegisterWorker(w Worker) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		s.log.Warnw("Cannot register worker after scheduler has started", "worker", w.Name())
		return
	}

	s.workers = append(s.workers, w)
	s.stats[w.Name()] = &Stats{}
	s.log.Infow("Worker registered", "worker", w.Name(), "interval", w.Interval())
}

// Start launches every worker with a positive interval. Each one runs immediately and then on its interval.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errors.Wrapf(errors.ErrInternal, "scheduler already started")
	}

	s.started = true
	s.ctx, s.cancel = context.WithCancel(ctx)
	workers := append([]Worker(nil), s.workers...)
	s.mu.Unlock()

	s.log.Infow("Starting worker scheduler", "workers", len(workers))

	for _, w := range workers {
		if w.Interval() <= 0 {
			s.log.Infow("Skipping disabled worker", "worker", w.Name())
			continue
		}
		s.wg.Add(1)
		go s.runWorker(w)
	}

	return nil
}

// Stop cancels all workers and waits for running iterations to finish
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return errors.Wrapf(errors.ErrInternal, "scheduler not started")
	}
	s.cancel()
	s.mu.Unlock()

	s.log.Info("Stopping worker scheduler...")

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	var shutdownErr error
	select {
	case <-done:
		s.log.Info("✓ All workers stopped")
	case <-time.After(s.stopTimeout):
		s.log.Warnw("Worker shutdown timed out", "timeout", s.stopTimeout)
		shutdownErr = errors.Wrapf(errors.ErrInternal, "shutdown timeout after %s", s.stopTimeout)
	}

	s.mu.Lock()
	s.started = false
	s.mu.Unlock()

	return shutdownErr
}

func (s *Scheduler) runWorker(w Worker) {
	defer s.wg.Done()

	ticker := time.NewTicker(w.Interval())
	defer ticker.Stop()

	s.executeWorker(w)

	for {
		select {
		case <-s.ctx.Done():
			s.log.Debugw("Worker stopping", "worker", w.Name())
			return
		case <-ticker.C:
			s.executeWorker(w)
		}
	}
}

// executeWorker runs one iteration. Panics and errors are logged and never stop the loop.
func (s *Scheduler) executeWorker(w Worker) {
	start := time.Now()

	var err error
	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrapf(errors.ErrInternal, "worker panicked: %v", r)
			s.log.Errorw("Worker panicked", "worker", w.Name(), "panic", r)
		}

		duration := time.Since(start)
		metrics.RecordWorkerExecution(w.Name(), duration, err)
		s.mu.Lock()
		if st, ok := s.stats[w.Name()]; ok {
			st.record(start, duration, err)
		}
		s.mu.Unlock()
	}()

	err = w.Run(s.ctx)
	if err != nil {
		if s.ctx.Err() != nil {
			s.log.Debugw("Worker interrupted by shutdown", "worker", w.Name(), "error", err)
			return
		}
		s.log.Errorw("Worker execution failed", "worker", w.Name(), "error", err, "duration", time.Since(start))
		return
	}
	s.log.Debugw("Worker execution completed", "worker", w.Name(), "duration", time.Since(start))
}

// GetWorkers returns all registered workers
func (s *Scheduler) GetWorkers() []Worker {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Worker(nil), s.workers...)
}

// Stats returns the run statistics of the named worker
func (s *Scheduler) Stats(name string) (Stats, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.stats[name]
	if !ok {
		return Stats{}, false
	}
	return *st, true
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}
