package sentry

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"

	"dabwish/pkg/errors"
)

const flushTimeout = 2 * time.Second

// Tracker reports errors to Sentry. Every event is tagged with the service name
// so core and notifier issues can be told apart in one project.
type Tracker struct {
	hub     *sentry.Hub
	service string
}

var _ errors.Tracker = (*Tracker)(nil)

// New creates a new Sentry tracker
func New(dsn, environment, service string) (*Tracker, error) {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
		ServerName:  service,
	})
	if err != nil {
		return nil, errors.Wrap(err, "init sentry")
	}

	return &Tracker{hub: sentry.CurrentHub(), service: service}, nil
}

// CaptureError sends err to Sentry on a hub clone so tags never leak between
// events. A "user_id" tag also sets the Sentry user.
func (t *Tracker) CaptureError(_ context.Context, err error, tags map[string]string) error {
	if err == nil {
		return nil
	}

	hub := t.hub.Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("service", t.service)
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		if id, ok := tags["user_id"]; ok {
			scope.SetUser(sentry.User{ID: id})
		}
		scope.SetLevel(sentry.LevelError)
	})
	hub.CaptureException(err)
	return nil
}

// Flush waits for pending events; a timeout is reported as ErrTimeout
func (t *Tracker) Flush(ctx context.Context) error {
	timeout := flushTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if d := time.Until(deadline); d < timeout {
			timeout = d
		}
	}
	if !sentry.Flush(timeout) {
		return errors.Wrap(errors.ErrTimeout, "sentry flush")
	}
	return nil
}
