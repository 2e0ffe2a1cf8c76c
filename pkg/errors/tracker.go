package errors

import "context"

// Tracker forwards errors to an external service. The logger reports every
// error-level entry through it; shutdown flushes it.
type Tracker interface {
	// CaptureError reports err with tags attached. It must not block on the network.
	CaptureError(ctx context.Context, err error, tags map[string]string) error

	// Flush waits until queued reports are delivered or ctx ends
	Flush(ctx context.Context) error
}
