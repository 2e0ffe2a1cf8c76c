package reconnect

import (
	"context"
	"sync"
	"time"
)

// Backoff tracks consecutive failures of a long-running loop and grows the
// pause between attempts exponentially up to a cap. It never gives up.
type Backoff struct {
	min        time.Duration
	max        time.Duration
	multiplier float64

	mu       sync.Mutex
	current  time.Duration
	failures int
}

// Config configures the backoff
type Config struct {
	MinBackoff        time.Duration // Default: 500ms
	MaxBackoff        time.Duration // Default: 30s
	BackoffMultiplier float64       // Default: 2.0
}

// New creates a backoff with defaults filled in
func New(cfg Config) *Backoff {
	if cfg.MinBackoff <= 0 {
		cfg.MinBackoff = 500 * time.Millisecond
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 30 * time.Second
	}
	if cfg.MaxBackoff < cfg.MinBackoff {
		cfg.MaxBackoff = cfg.MinBackoff
	}
	if cfg.BackoffMultiplier < 1 {
		cfg.BackoffMultiplier = 2.0
	}
	return &Backoff{
		min:        cfg.MinBackoff,
		max:        cfg.MaxBackoff,
		multiplier: cfg.BackoffMultiplier,
		current:    cfg.MinBackoff,
	}
}

// RecordFailure returns the pause to take before the next attempt and
// grows the following one
func (b *Backoff) RecordFailure() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	wait := b.current

	next := time.Duration(float64(b.current) * b.multiplier)
	if next > b.max {
		next = b.max
	}
	b.current = next
	return wait
}

// RecordSuccess resets the backoff. Returns how many failures preceded it.
func (b *Backoff) RecordSuccess() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.failures
	b.failures = 0
	b.current = b.min
	return n
}

// Failures returns the number of consecutive failures
func (b *Backoff) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}

// Wait records a failure and sleeps for the resulting pause. Returns
// ctx.Err() if the context ends first.
func (b *Backoff) Wait(ctx context.Context) error {
	timer := time.NewTimer(b.RecordFailure())
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
