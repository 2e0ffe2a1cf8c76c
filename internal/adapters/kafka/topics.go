package kafka

import (
	"context"
	"net"
	"strconv"

	"github.com/segmentio/kafka-go"

	"dabwish/pkg/errors"
)

// EnsureTopics creates missing topics through the cluster controller.
// Topics that already exist are left unchanged.
func EnsureTopics(ctx context.Context, brokers []string, partitions int, topics ...string) error {
	if len(brokers) == 0 {
		return errors.Wrap(errors.ErrInvalidInput, "no kafka brokers configured")
	}

	var d kafka.Dialer
	conn, err := d.DialContext(ctx, "tcp", brokers[0])
	if err != nil {
		return errors.Wrap(err, "dial kafka")
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return errors.Wrap(err, "lookup kafka controller")
	}

	ctrl, err := d.DialContext(ctx, "tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return errors.Wrap(err, "dial kafka controller")
	}
	defer ctrl.Close()

	configs := make([]kafka.TopicConfig, 0, len(topics))
	for _, t := range topics {
		configs = append(configs, kafka.TopicConfig{
			Topic:             t,
			NumPartitions:     partitions,
			ReplicationFactor: 1,
		})
	}

	if err := ctrl.CreateTopics(configs...); err != nil && !errors.Is(err, kafka.TopicAlreadyExists) {
		return errors.Wrap(err, "create topics")
	}
	return nil
}
