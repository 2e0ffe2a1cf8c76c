package noop

import (
	"context"

	"dabwish/pkg/errors"
)

// Tracker discards everything. Chosen at startup when error tracking is disabled.
type Tracker struct{}

var _ errors.Tracker = (*Tracker)(nil)

func New() *Tracker { return &Tracker{} }

func (*Tracker) CaptureError(context.Context, error, map[string]string) error { return nil }

func (*Tracker) Flush(context.Context) error { return nil }
