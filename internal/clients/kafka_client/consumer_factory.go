package kafka_client

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

// ConsumerFunc runs a consumer loop until ctx is done.
type ConsumerFunc func(context.Context, *kafka.Consumer)

// Registry maps topics to the consumer loop that handles them. The process
// entry point owns one and starts the loop for the configured topic.
type Registry struct {
	consumers   map[string]ConsumerFunc
	newConsumer func(KafkaConfig) (*kafka.Consumer, error)
}

func NewRegistry() *Registry {
	return &Registry{
		consumers:   make(map[string]ConsumerFunc),
		newConsumer: NewConsumer,
	}
}

func (r *Registry) Register(topic string, fn ConsumerFunc) {
	r.consumers[topic] = fn
}

// Start opens a consumer for cfg.Topic and blocks in its registered loop.
func (r *Registry) Start(ctx context.Context, cfg KafkaConfig) error {
	consumerFunc, exists := r.consumers[cfg.Topic]
	if !exists {
		return fmt.Errorf("[ConsumerFactory] No consumer found for topic: %s", cfg.Topic)
	}

	consumer, err := r.newConsumer(cfg)
	if err != nil {
		return fmt.Errorf("[ConsumerFactory] Failed to initialize Kafka consumer: %w", err)
	}
	defer consumer.Close()

	slog.Info("[ConsumerFactory] Starting consumer for topic...", slog.String("topic", cfg.Topic))
	consumerFunc(ctx, consumer)

	return nil
}
