package consumers

import (
	"context"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"dabwish/internal/events"
	"dabwish/internal/metrics"
	"dabwish/pkg/logger"
	"dabwish/pkg/reconnect"
)

const (
	handleTimeout = 30 * time.Second
	commitTimeout = 5 * time.Second
	// handleAttempts bounds how often a failing handler is retried before
	// the message is committed and skipped
	handleAttempts = 5
)

// MessageReader is the consuming half of the Kafka adapter
type MessageReader interface {
	Fetch(ctx context.Context) (kafkago.Message, error)
	Commit(ctx context.Context, msg kafkago.Message) error
	Topic() string
	Close() error
}

// lagReporter is implemented by readers that know how far behind they are
type lagReporter interface {
	Lag() int64
}

// Handler processes one decoded event
type Handler[T any] func(ctx context.Context, e *T) error

// EventConsumer reads one topic, decodes every message into T and hands it
// to the handler. Undecodable messages are skipped and handler errors are
// retried with backoff up to handleAttempts times, then logged and skipped;
// neither stops the loop. The offset is committed once the message was
// handled or given up on, which gives at-least-once delivery. A message whose
// retries are cut short by shutdown is left uncommitted and redelivered.
type EventConsumer[T any, PT interface {
	*T
	events.Event
}] struct {
	reader  MessageReader
	handle  Handler[T]
	name    string
	timeout time.Duration
	backoff *reconnect.Backoff
	retry   *reconnect.Backoff
	log     *logger.Logger
}

// NewEventConsumer creates a consumer named name for reader
func NewEventConsumer[T any, PT interface {
	*T
	events.Event
}](reader MessageReader, name string, handle Handler[T], log *logger.Logger) *EventConsumer[T, PT] {
	return &EventConsumer[T, PT]{
		reader:  reader,
		handle:  handle,
		name:    name,
		timeout: handleTimeout,
		backoff: reconnect.New(reconnect.Config{}),
		retry:   reconnect.New(reconnect.Config{MinBackoff: time.Second, MaxBackoff: 10 * time.Second}),
		log:     log.With("component", "consumer", "consumer", name, "topic", reader.Topic()),
	}
}

// Name identifies the consumer in logs
func (c *EventConsumer[T, PT]) Name() string {
	return c.name
}

// Start consumes until ctx is cancelled. The reader is closed on return.
func (c *EventConsumer[T, PT]) Start(ctx context.Context) error {
	c.log.Info("Starting consumer...")

	defer func() {
		if err := c.reader.Close(); err != nil {
			c.log.Errorw("Failed to close consumer", "error", err)
			return
		}
		c.log.Info("✓ Consumer closed")
	}()

	for {
		msg, err := c.reader.Fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.log.Info("Consumer stopping (context cancelled)")
				return nil
			}
			c.log.Warnw("Failed to read message, backing off",
				"consecutive_failures", c.backoff.Failures()+1, "error", err)
			if c.backoff.Wait(ctx) != nil {
				c.log.Info("Consumer stopping (context cancelled)")
				return nil
			}
			continue
		}
		if n := c.backoff.RecordSuccess(); n > 0 {
			c.log.Infow("Reading recovered", "previous_failures", n)
		}

		if c.handleMessage(ctx, msg) {
			c.commit(ctx, msg)
		}

		if ctx.Err() != nil {
			c.log.Info("Consumer stopping after processing current message")
			return nil
		}
	}
}

func (c *EventConsumer[T, PT]) commit(ctx context.Context, msg kafkago.Message) {
	commitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), commitTimeout)
	defer cancel()

	topic := c.reader.Topic()
	if err := c.reader.Commit(commitCtx, msg); err != nil {
		metrics.CommitFailures.WithLabelValues(topic).Inc()
		c.log.Warnw("Failed to commit offset, message will be redelivered",
			"partition", msg.Partition, "offset", msg.Offset, "error", err)
	}
	if lr, ok := c.reader.(lagReporter); ok {
		metrics.ConsumerLag.WithLabelValues(topic).Set(float64(lr.Lag()))
	}
}

// handleMessage reports whether the message is done with and may be
// committed. The attempt in progress finishes even when shutdown starts
// meanwhile; only the pause before a retry is cut short.
func (c *EventConsumer[T, PT]) handleMessage(ctx context.Context, msg kafkago.Message) bool {
	topic := c.reader.Topic()

	var e T
	if err := events.Decode(msg.Value, PT(&e)); err != nil {
		metrics.EventsConsumed.WithLabelValues(topic, "decode_error").Inc()
		c.log.Errorw("Skipping undecodable message",
			"key", string(msg.Key),
			"partition", msg.Partition,
			"offset", msg.Offset,
			"error", err,
		)
		return true
	}
	defer c.retry.RecordSuccess()

	for attempt := 1; ; attempt++ {
		handleCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		err := c.handle(handleCtx, &e)
		cancel()
		if err == nil {
			metrics.EventsConsumed.WithLabelValues(topic, "success").Inc()
			return true
		}

		if attempt >= handleAttempts {
			metrics.EventsConsumed.WithLabelValues(topic, "handler_error").Inc()
			c.log.Errorw("Giving up on event", "key", string(msg.Key), "offset", msg.Offset,
				"attempts", attempt, "error", err)
			return true
		}

		c.log.Warnw("Failed to handle event, retrying", "key", string(msg.Key), "offset", msg.Offset,
			"attempt", attempt, "error", err)
		if c.retry.Wait(ctx) != nil {
			c.log.Warnw("Shutdown during retries, leaving event for redelivery",
				"key", string(msg.Key), "offset", msg.Offset)
			return false
		}
	}
}
