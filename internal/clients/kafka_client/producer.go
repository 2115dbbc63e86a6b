package kafka_client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

// Producer publishes JSON messages inside Kafka transactions so downstream
// read_committed consumers never see partial batches.
type Producer struct {
	producer *kafka.Producer
}

// KeyedMessage is one record of a transactional batch.
type KeyedMessage struct {
	Key   string
	Value any
}

func NewProducer(ctx context.Context, cfg KafkaConfig) (*Producer, error) {
	slog.Info("[KafkaClient] Initializing Kafka Producer...",
		slog.String("broker", cfg.Broker),
		slog.String("transactional_id", cfg.TransactionalID))

	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":                     cfg.Broker,
		"security.protocol":                     "PLAINTEXT",
		"api.version.request":                   "true",
		"enable.idempotence":                    true,
		"acks":                                  "all",
		"max.in.flight.requests.per.connection": 1,
		"transactional.id":                      cfg.TransactionalID,
	})
	if err != nil {
		return nil, fmt.Errorf("[KafkaClient] Failed to create producer: %w", err)
	}

	if err := p.InitTransactions(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("[KafkaClient] Failed to init transactions: %w", err)
	}

	slog.Info("[KafkaClient] Kafka Producer initialized successfully")
	return &Producer{producer: p}, nil
}

func (p *Producer) Close() {
	slog.Info("[KafkaClient] Shutting down Kafka producer...")
	if remaining := p.producer.Flush(5000); remaining > 0 {
		slog.Warn("[KafkaClient] Not all messages were delivered before shutdown",
			slog.Int("remaining", remaining))
	}
	p.producer.Close()
	slog.Info("[KafkaClient] Kafka producer shut down")
}

// Publish sends every message to topic in a single transaction.
func (p *Producer) Publish(ctx context.Context, topic string, messages ...KeyedMessage) error {
	if len(messages) == 0 {
		return nil
	}

	if err := p.producer.BeginTransaction(); err != nil {
		return fmt.Errorf("[KafkaClient] failed to begin transaction: %w", err)
	}

	for _, m := range messages {
		value, err := json.Marshal(m.Value)
		if err != nil {
			return p.abort(ctx, fmt.Errorf("[KafkaClient] failed to marshal %s: %w", m.Key, err))
		}

		msg := &kafka.Message{
			TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
			Key:            []byte(m.Key),
			Value:          value,
		}

		for i := 0; i < 3; i++ {
			err = p.producer.Produce(msg, nil)
			if err == nil {
				break
			}
			slog.Warn("[KafkaClient] Failed to produce message, retrying...",
				slog.Int("attempt", i+1),
				slog.String("error", err.Error()))
		}
		if err != nil {
			return p.abort(ctx, err)
		}
	}

	var commitErr error
	for i := 0; i < 3; i++ {
		commitErr = p.producer.CommitTransaction(ctx)
		if commitErr == nil {
			break
		}
		slog.Warn("[KafkaClient] Failed to commit transaction, retrying...",
			slog.Int("attempt", i+1))
	}
	if commitErr != nil {
		return p.abort(ctx, fmt.Errorf("[KafkaClient] failed to commit transaction after 3 retries: %w", commitErr))
	}

	slog.Debug("[KafkaClient] Published messages transactionally",
		slog.String("topic", topic),
		slog.Int("count", len(messages)))
	return nil
}

func (p *Producer) abort(ctx context.Context, cause error) error {
	if abortErr := p.producer.AbortTransaction(ctx); abortErr != nil {
		return fmt.Errorf("[KafkaClient] failed to abort transaction after %v: %w", cause, abortErr)
	}
	return cause
}
