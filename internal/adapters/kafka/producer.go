package kafka

import (
	"context"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"dabwish/pkg/errors"
	"dabwish/pkg/logger"
)

// Producer writes pre-encoded messages. One writer is kept per topic.
type Producer struct {
	mu      sync.Mutex
	writers map[string]*kafka.Writer
	brokers []string
	timeout time.Duration
	log     *logger.Logger
}

// ProducerConfig holds producer configuration
type ProducerConfig struct {
	Brokers      []string
	WriteTimeout time.Duration
}

// NewProducer creates a new Kafka producer
func NewProducer(cfg ProducerConfig) *Producer {
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	return &Producer{
		writers: make(map[string]*kafka.Writer),
		brokers: cfg.Brokers,
		timeout: cfg.WriteTimeout,
		log:     logger.Get().With("component", "kafka_producer"),
	}
}

func (p *Producer) writer(topic string) *kafka.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()

	if w, ok := p.writers[topic]; ok {
		return w
	}

	// Hash balancer keeps every message with the same key on one partition
	w := &kafka.Writer{
		Addr:                   kafka.TCP(p.brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		WriteTimeout:           p.timeout,
		AllowAutoTopicCreation: true,
	}
	p.writers[topic] = w
	return w
}

// PublishBinary sends one keyed message with an already encoded value
func (p *Producer) PublishBinary(ctx context.Context, topic string, key []byte, value []byte) error {
	msg := kafka.Message{Key: key, Value: value, Time: time.Now()}
	if err := p.writer(topic).WriteMessages(ctx, msg); err != nil {
		return errors.Wrapf(err, "publish to %s", topic)
	}

	p.log.Debugw("Published message", "topic", topic, "key", string(key), "bytes", len(value))
	return nil
}

// Close closes every writer and reports all failures
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs errors.MultiError
	for topic, w := range p.writers {
		if err := w.Close(); err != nil {
			errs.Add(errors.Wrapf(err, "close writer for %s", topic))
		}
	}
	p.writers = make(map[string]*kafka.Writer)
	return errs.ErrorOrNil()
}
