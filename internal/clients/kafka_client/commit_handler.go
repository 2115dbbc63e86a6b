package kafka_client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/jonboulle/clockwork"
)

// OffsetCommitter is the part of *kafka.Consumer the commit handler uses.
type OffsetCommitter interface {
	CommitMessage(msg *kafka.Message) ([]kafka.TopicPartition, error)
}

// KafkaCommitHandler commits one message offset at a time, retrying
// transient broker errors.
type KafkaCommitHandler struct {
	consumer OffsetCommitter
	clock    clockwork.Clock
}

func NewCommitHandler(consumer OffsetCommitter, clock clockwork.Clock) *KafkaCommitHandler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &KafkaCommitHandler{consumer: consumer, clock: clock}
}

func (ch *KafkaCommitHandler) Commit(ctx context.Context, msg *kafka.Message) error {
	if ch.consumer == nil {
		return errors.New("[KafkaCommitHandler] Kafka consumer has not been initialized")
	}

	partition := slog.Int("partition", int(msg.TopicPartition.Partition))
	offset := slog.String("offset", msg.TopicPartition.Offset.String())

	for i := 0; i < MAX_RETRIES; i++ {
		if err := ctx.Err(); err != nil {
			slog.Warn("[KafkaCommitHandler] Context canceled, stopping commit")
			return err
		}

		_, err := ch.consumer.CommitMessage(msg)
		if err == nil {
			slog.Debug("[KafkaCommitHandler] Committed offset", partition, offset)
			return nil
		}

		var kafkaErr kafka.Error
		if errors.As(err, &kafkaErr) && kafkaErr.Code() == kafka.ErrAllBrokersDown {
			slog.Error("[KafkaCommitHandler] All Kafka brokers are down. Aborting commit")
			return err
		}
		slog.Warn("[KafkaCommitHandler] Failed to commit offset, retrying...",
			slog.Int("attempt", i+1),
			slog.String("error", err.Error()),
			partition, offset)

		if i == MAX_RETRIES-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ch.clock.After(RETRY_DELAY):
		}
	}

	return fmt.Errorf("[KafkaCommitHandler] Failed to commit message after %d retries", MAX_RETRIES)
}
