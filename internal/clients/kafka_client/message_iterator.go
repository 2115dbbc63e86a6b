package kafka_client

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/jonboulle/clockwork"
)

// MessageReader is the part of *kafka.Consumer the iterator polls.
type MessageReader interface {
	ReadMessage(timeout time.Duration) (*kafka.Message, error)
}

type KafkaMessageIterator struct {
	consumer MessageReader
	clock    clockwork.Clock
}

func NewKafkaMessageIterator(consumer MessageReader, clock clockwork.Clock) *KafkaMessageIterator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &KafkaMessageIterator{consumer: consumer, clock: clock}
}

// Next blocks until a message arrives or ctx is done. Poll timeouts are not
// counted as failures.
func (it *KafkaMessageIterator) Next(ctx context.Context) (*kafka.Message, error) {
	if it.consumer == nil {
		return nil, errors.New("[KafkaIterator] Kafka consumer has not been initialized")
	}

	for i := 0; i < MAX_RETRIES; {
		if err := ctx.Err(); err != nil {
			slog.Warn("[KafkaIterator] Context cancelled, stopping iterator")
			return nil, err
		}

		msg, err := it.consumer.ReadMessage(POLL_INTERVAL)
		if err == nil {
			return msg, nil
		}

		var kafkaErr kafka.Error
		if errors.As(err, &kafkaErr) {
			switch kafkaErr.Code() {
			case kafka.ErrTimedOut:
				continue
			case kafka.ErrAllBrokersDown:
				slog.Error("[KafkaIterator] All Kafka brokers are down. Aborting")
				return nil, err
			}
		}

		i++
		slog.Warn("[KafkaIterator] Failed to read message, retrying...",
			slog.Int("attempt", i),
			slog.Int("max_retries", MAX_RETRIES),
			slog.String("error", err.Error()))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-it.clock.After(RETRY_DELAY):
		}
	}
	return nil, errors.New("[KafkaIterator] Failed to read message after retries")
}
