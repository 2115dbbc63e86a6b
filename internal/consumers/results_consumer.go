package consumers

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/jonboulle/clockwork"

	"github.com/spacesedan/courtsense/internal/clients/kafka_client"
	"github.com/spacesedan/courtsense/internal/db"
	"github.com/spacesedan/courtsense/internal/models"
	"github.com/spacesedan/courtsense/internal/utils"
)

type ResultStore interface {
	StoreResults(ctx context.Context, results []models.ReviewModeration) error
}

// ResultsConsumer persists ReviewModeration events in batches and commits
// their offsets once the batch is stored.
type ResultsConsumer struct {
	store      ResultStore
	buffer     *utils.BatchBuffer[models.ReviewModeration]
	tracker    *utils.MessageTracker
	clock      clockwork.Clock
	retryDelay time.Duration
}

func NewResultsConsumer(store ResultStore) *ResultsConsumer {
	return &ResultsConsumer{
		store:      store,
		buffer:     utils.NewBatchBuffer[models.ReviewModeration](db.DYNAMODB_BATCH_SIZE),
		tracker:    utils.NewMessageTracker(),
		clock:      clockwork.NewRealClock(),
		retryDelay: kafka_client.RETRY_DELAY,
	}
}

func (c *ResultsConsumer) Consume(ctx context.Context, consumer *kafka.Consumer, _ ...*atomic.Bool) {
	iterator := kafka_client.NewKafkaMessageIterator(consumer, c.clock)
	committer := kafka_client.NewCommitHandler(consumer, c.clock)

	slog.Info("[ResultsConsumer] Listening for moderation results...")
	if err := c.run(ctx, iterator, committer); err != nil {
		slog.Error("[ResultsConsumer] Stopping consumer", slog.String("error", err.Error()))
	}
}

func (c *ResultsConsumer) run(ctx context.Context, source MessageSource, committer Committer) error {
	ticker := c.clock.NewTicker(utils.BATCH_TIMEOUT)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Warn("[ResultsConsumer] Consumer shutting down, flushing buffer...")
			return c.flush(context.WithoutCancel(ctx), committer)
		case <-ticker.Chan():
			if err := c.flush(ctx, committer); err != nil {
				return err
			}
		default:
			msg, err := source.Next(ctx)
			if err != nil {
				if ctx.Err() != nil {
					continue
				}
				utils.HandleConsumerError(err)
				continue
			}

			full, err := c.add(msg)
			if err != nil {
				slog.Warn("[ResultsConsumer] Skipping malformed result",
					slog.String("error", err.Error()))
				if err := committer.Commit(ctx, msg); err != nil {
					slog.Warn("[ResultsConsumer] Failed to commit offset",
						slog.String("error", err.Error()))
				}
				continue
			}
			if full {
				if err := c.flush(ctx, committer); err != nil {
					return err
				}
			}
		}
	}
}

func (c *ResultsConsumer) add(msg *kafka.Message) (bool, error) {
	var result models.ReviewModeration
	if err := utils.DeserializeFromJSON(msg.Value, &result); err != nil {
		return false, err
	}
	if result.ReviewID == "" {
		return false, fmt.Errorf("moderation result without review_id")
	}

	c.tracker.Track(result.ReviewID, msg)
	return c.buffer.Add(result), nil
}

// flush stores the buffered batch, then commits the offsets that carried it.
// A review delivered more than once is written once, from its latest copy,
// and every message that carried it is committed.
func (c *ResultsConsumer) flush(ctx context.Context, committer Committer) error {
	batch := latestByReview(c.buffer.GetAndClear())
	if len(batch) == 0 {
		return nil
	}

	var err error
	for i := 0; i < 3; i++ {
		err = c.store.StoreResults(ctx, batch)
		if err == nil {
			break
		}
		slog.Error("[ResultsConsumer] Failed to write results to DynamoDB",
			slog.String("error", err.Error()),
			slog.Int("attempt", i+1))
		if i < 2 && c.retryDelay > 0 {
			c.clock.Sleep(c.retryDelay)
		}
	}
	if err != nil {
		return fmt.Errorf("[ResultsConsumer] store %d results: %w", len(batch), err)
	}

	for _, result := range batch {
		for _, msg := range c.tracker.Take(result.ReviewID) {
			if err := committer.Commit(ctx, msg); err != nil {
				slog.Warn("[ResultsConsumer] Failed to commit offset",
					slog.String("review_id", result.ReviewID),
					slog.String("error", err.Error()))
			}
		}
	}
	slog.Info("[ResultsConsumer] Stored moderation batch", slog.Int("count", len(batch)))
	return nil
}

// latestByReview drops all but the last result per review id. DynamoDB
// rejects a batch write that names the same key twice.
func latestByReview(batch []models.ReviewModeration) []models.ReviewModeration {
	last := make(map[string]int, len(batch))
	for i, result := range batch {
		last[result.ReviewID] = i
	}
	if len(last) == len(batch) {
		return batch
	}

	out := make([]models.ReviewModeration, 0, len(last))
	for i, result := range batch {
		if last[result.ReviewID] == i {
			out = append(out, result)
		}
	}
	return out
}
