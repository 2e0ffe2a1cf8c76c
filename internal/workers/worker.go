package workers

import (
	"context"
	"time"
)

// Worker is a periodic background job. A worker whose Interval is not
// positive is disabled and never started.
type Worker interface {
	Name() string
	Run(ctx context.Context) error
	Interval() time.Duration
}

// Job adapts a plain function to Worker
type Job struct {
	name     string
	interval time.Duration
	run      func(ctx context.Context) error
}

// NewJob creates a job that calls run every interval
func NewJob(name string, interval time.Duration, run func(ctx context.Context) error) *Job {
	return &Job{name: name, interval: interval, run: run}
}

func (j *Job) Name() string { return j.name }

func (j *Job) Interval() time.Duration { return j.interval }

func (j *Job) Run(ctx context.Context) error { return j.run(ctx) }

// Stats summarises the runs of one worker
type Stats struct {
	Runs          int64
	Failures      int64
	LastRun       time.Time
	LastError     error
	LastDuration  time.Duration
	TotalDuration time.Duration
}

// AvgDuration is the mean run time, zero before the first run
func (s Stats) AvgDuration() time.Duration {
	if s.Runs == 0 {
		return 0
	}
	return time.Duration(int64(s.TotalDuration) / s.Runs)
}

func (s *Stats) record(at time.Time, d time.Duration, err error) {
	s.Runs++
	s.LastRun = at
	s.LastDuration = d
	s.TotalDuration += d
	s.LastError = err
	if err != nil {
		s.Failures++
	}
}
