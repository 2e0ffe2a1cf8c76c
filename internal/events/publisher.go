package events

import (
	"context"

	"dabwish/internal/adapters/config"
	"dabwish/internal/metrics"
	"dabwish/pkg/errors"
	"dabwish/pkg/logger"
)

// BinaryProducer writes an encoded, keyed message to a topic
type BinaryProducer interface {
	PublishBinary(ctx context.Context, topic string, key []byte, value []byte) error
}

// TelegramPublisher emits verification requests for the notifier
type TelegramPublisher interface {
	PublishVerificationCode(ctx context.Context, e *TelegramVerificationCodeEvent) error
}

// WishPublisher emits wish lifecycle events
type WishPublisher interface {
	PublishWishCreated(ctx context.Context, e *WishCreatedEvent) error
	PublishWishUpdated(ctx context.Context, e *WishUpdatedEvent) error
}

// NotificationPublisher emits one notification per subscriber
type NotificationPublisher interface {
	PublishWishNotification(ctx context.Context, e *WishNotificationEvent) error
}

// UserPublisher emits user lifecycle events
type UserPublisher interface {
	PublishUserCreated(ctx context.Context, e *UserCreatedEvent) error
}

// Publisher encodes events with Avro and sends them to Kafka
type Publisher struct {
	producer BinaryProducer
	topics   config.TopicsConfig
	log      *logger.Logger
}

var (
	_ TelegramPublisher     = (*Publisher)(nil)
	_ WishPublisher         = (*Publisher)(nil)
	_ NotificationPublisher = (*Publisher)(nil)
	_ UserPublisher         = (*Publisher)(nil)
)

// NewPublisher creates a new event publisher
func NewPublisher(producer BinaryProducer, topics config.TopicsConfig, log *logger.Logger) *Publisher {
	return &Publisher{
		producer: producer,
		topics:   topics,
		log:      log.With("component", "event_publisher"),
	}
}

func (p *Publisher) PublishVerificationCode(ctx context.Context, e *TelegramVerificationCodeEvent) error {
	return p.publish(ctx, p.topics.TelegramVerification, e)
}

func (p *Publisher) PublishWishCreated(ctx context.Context, e *WishCreatedEvent) error {
	return p.publish(ctx, p.topics.WishCreated, e)
}

func (p *Publisher) PublishWishUpdated(ctx context.Context, e *WishUpdatedEvent) error {
	return p.publish(ctx, p.topics.WishUpdated, e)
}

func (p *Publisher) PublishWishNotification(ctx context.Context, e *WishNotificationEvent) error {
	return p.publish(ctx, p.topics.WishNotification, e)
}

func (p *Publisher) PublishUserCreated(ctx context.Context, e *UserCreatedEvent) error {
	return p.publish(ctx, p.topics.UserCreated, e)
}

func (p *Publisher) publish(ctx context.Context, topic string, e Event) error {
	data, err := Encode(e)
	if err != nil {
		metrics.RecordPublish(topic, err)
		return err
	}

	err = p.producer.PublishBinary(ctx, topic, []byte(e.Key()), data)
	metrics.RecordPublish(topic, err)
	if err != nil {
		p.log.Errorw("Failed to publish event", "topic", topic, "key", e.Key(), "error", err)
		return errors.Wrap(err, "send to kafka")
	}

	p.log.Debugw("Event published", "topic", topic, "key", e.Key(), "size_bytes", len(data))
	return nil
}

// Noop drops every event. Used when Kafka is disabled.
type Noop struct {
	log *logger.Logger
}

// NewNoop creates a publisher that only logs at debug level
func NewNoop(log *logger.Logger) *Noop {
	return &Noop{log: log.With("component", "event_publisher", "mode", "noop")}
}

func (n *Noop) drop(kind, key string) error {
	n.log.Debugw("Event publishing disabled, dropping event", "event", kind, "key", key)
	return nil
}

func (n *Noop) PublishVerificationCode(_ context.Context, e *TelegramVerificationCodeEvent) error {
	return n.drop("telegram_verification_code", e.Key())
}

func (n *Noop) PublishWishCreated(_ context.Context, e *WishCreatedEvent) error {
	return n.drop("wish_created", e.Key())
}

func (n *Noop) PublishWishUpdated(_ context.Context, e *WishUpdatedEvent) error {
	return n.drop("wish_updated", e.Key())
}

func (n *Noop) PublishWishNotification(_ context.Context, e *WishNotificationEvent) error {
	return n.drop("wish_notification", e.Key())
}

func (n *Noop) PublishUserCreated(_ context.Context, e *UserCreatedEvent) error {
	return n.drop("user_created", e.Key())
}
