package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"

	"dabwish/pkg/errors"
	"dabwish/pkg/logger"
)

// ConsumerConfig describes one group member reading one topic
type ConsumerConfig struct {
	Brokers  []string
	GroupID  string
	Topic    string
	MinBytes int
	MaxBytes int
	// MaxWait bounds how long a fetch waits for MinBytes to accumulate
	MaxWait time.Duration
}

// Consumer fetches messages from one topic. Offsets are committed only
// through Commit, so a message that was fetched but never committed is
// delivered again after a restart or rebalance.
type Consumer struct {
	reader *kafka.Reader
	topic  string
	log    *logger.Logger
}

func NewConsumer(cfg ConsumerConfig, log *logger.Logger) *Consumer {
	if cfg.MinBytes == 0 {
		cfg.MinBytes = 1
	}
	if cfg.MaxBytes == 0 {
		cfg.MaxBytes = 10e6
	}
	if cfg.MaxWait == 0 {
		cfg.MaxWait = time.Second
	}

	log = log.With("component", "kafka_consumer", "topic", cfg.Topic, "group_id", cfg.GroupID)
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		Topic:       cfg.Topic,
		MinBytes:    cfg.MinBytes,
		MaxBytes:    cfg.MaxBytes,
		MaxWait:     cfg.MaxWait,
		StartOffset: kafka.FirstOffset,
	})
	log.Infow("Kafka consumer created", "brokers", cfg.Brokers)

	return &Consumer{reader: reader, topic: cfg.Topic, log: log}
}

func (c *Consumer) Topic() string { return c.topic }

// Fetch returns the next message without committing it. It returns ctx.Err()
// without touching the network when ctx is already done.
func (c *Consumer) Fetch(ctx context.Context) (kafka.Message, error) {
	if err := ctx.Err(); err != nil {
		return kafka.Message{}, err
	}

	msg, err := c.reader.FetchMessage(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return kafka.Message{}, ctx.Err()
		}
		return kafka.Message{}, errors.Wrapf(err, "fetch from %s", c.topic)
	}
	return msg, nil
}

// Commit marks msg and everything before it in its partition as processed
func (c *Consumer) Commit(ctx context.Context, msg kafka.Message) error {
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		return errors.Wrapf(err, "commit %s/%d@%d", c.topic, msg.Partition, msg.Offset)
	}
	return nil
}

// Lag is the number of messages behind the partition head as of the last fetch
func (c *Consumer) Lag() int64 {
	return c.reader.Stats().Lag
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
