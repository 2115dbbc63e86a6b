package consumers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/jonboulle/clockwork"

	"github.com/spacesedan/courtsense/internal/clients/kafka_client"
	"github.com/spacesedan/courtsense/internal/models"
	"github.com/spacesedan/courtsense/internal/sentiment"
	"github.com/spacesedan/courtsense/internal/utils"
)

const publishAttempts = 3

var ErrMalformedReview = errors.New("malformed review message")

type Publisher interface {
	Publish(ctx context.Context, topic string, messages ...kafka_client.KeyedMessage) error
}

type ReviewDeduper interface {
	IsReviewProcessed(ctx context.Context, reviewID string) bool
	MarkReviewProcessed(ctx context.Context, reviewID string) error
}

type SentimentAnalyzer interface {
	AnalyzeSentiment(ctx context.Context, text string, useExternalModel bool, language string) models.SentimentResult
}

// ReviewModerator turns ReviewSubmitted events into ReviewModeration events.
// Flagged reviews are hidden pending manual review.
type ReviewModerator struct {
	analyzer         SentimentAnalyzer
	publisher        Publisher
	dedup            ReviewDeduper
	useExternalModel bool
	clock            clockwork.Clock
	retryDelay       time.Duration
}

// NewReviewModerator builds a moderator. dedup may be nil.
func NewReviewModerator(analyzer SentimentAnalyzer, publisher Publisher, dedup ReviewDeduper, useExternalModel bool) *ReviewModerator {
	return &ReviewModerator{
		analyzer:         analyzer,
		publisher:        publisher,
		dedup:            dedup,
		useExternalModel: useExternalModel,
		clock:            clockwork.NewRealClock(),
		retryDelay:       kafka_client.RETRY_DELAY,
	}
}

// Moderate scores one review. The external model is skipped while any of
// the health flags is down.
func (m *ReviewModerator) Moderate(ctx context.Context, review models.ReviewSubmitted, health ...*atomic.Bool) models.ReviewModeration {
	language := strings.TrimSpace(review.Language)
	if language == "" {
		language = sentiment.DefaultLanguage
	}

	useExternal := m.useExternalModel && allHealthy(health)
	result := m.analyzer.AnalyzeSentiment(ctx, review.Text, useExternal, language)

	return models.ReviewModeration{
		ReviewID:   review.ReviewID,
		CourtID:    review.CourtID,
		Language:   language,
		Sentiment:  result,
		Hidden:     result.Flagged,
		AnalyzedAt: m.clock.Now().UTC(),
	}
}

// HandleMessage moderates and publishes one encoded review. Malformed
// payloads return ErrMalformedReview and should be skipped.
func (m *ReviewModerator) HandleMessage(ctx context.Context, value []byte, health ...*atomic.Bool) error {
	var review models.ReviewSubmitted
	if err := utils.DeserializeFromJSON(value, &review); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedReview, err)
	}
	if strings.TrimSpace(review.ReviewID) == "" {
		return fmt.Errorf("%w: missing review_id", ErrMalformedReview)
	}

	if m.dedup != nil && m.dedup.IsReviewProcessed(ctx, review.ReviewID) {
		slog.Info("[ReviewConsumer] Review already moderated, skipping",
			slog.String("review_id", review.ReviewID))
		return nil
	}

	moderation := m.Moderate(ctx, review, health...)

	var err error
	for i := 0; i < publishAttempts; i++ {
		err = m.publisher.Publish(ctx, kafka_client.KAFKA_TOPIC_REVIEW_MODERATION,
			kafka_client.KeyedMessage{Key: moderation.ReviewID, Value: moderation})
		if err == nil {
			break
		}
		slog.Warn("[ReviewConsumer] Moderation publishing failed",
			slog.Int("attempt", i+1),
			slog.String("review_id", moderation.ReviewID),
			slog.String("error", err.Error()))
		if i < publishAttempts-1 && m.retryDelay > 0 {
			m.clock.Sleep(m.retryDelay)
		}
	}
	if err != nil {
		return fmt.Errorf("[ReviewConsumer] publish moderation for %s: %w", moderation.ReviewID, err)
	}

	if m.dedup != nil {
		if err := m.dedup.MarkReviewProcessed(ctx, moderation.ReviewID); err != nil {
			slog.Warn("[ReviewConsumer] Failed to mark review processed",
				slog.String("review_id", moderation.ReviewID),
				slog.String("error", err.Error()))
		}
	}

	slog.Info("[ReviewConsumer] Review moderated",
		slog.String("review_id", moderation.ReviewID),
		slog.String("label", string(moderation.Sentiment.Label)),
		slog.String("method", string(moderation.Sentiment.Method)),
		slog.Bool("hidden", moderation.Hidden))
	return nil
}

// Consume is the registry entry for the review-submitted topic.
func (m *ReviewModerator) Consume(ctx context.Context, consumer *kafka.Consumer, health ...*atomic.Bool) {
	iterator := kafka_client.NewKafkaMessageIterator(consumer, m.clock)
	committer := kafka_client.NewCommitHandler(consumer, m.clock)

	slog.Info("[ReviewConsumer] Listening for reviews...")
	if err := m.run(ctx, iterator, committer, health...); err != nil {
		slog.Error("[ReviewConsumer] Stopping consumer", slog.String("error", err.Error()))
	}
}

// run stops on the first publish failure so the uncommitted message is
// redelivered after restart.
func (m *ReviewModerator) run(ctx context.Context, source MessageSource, committer Committer, health ...*atomic.Bool) error {
	for {
		select {
		case <-ctx.Done():
			slog.Warn("[ReviewConsumer] Consumer shutting down...")
			return nil
		default:
		}

		msg, err := source.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			utils.HandleConsumerError(err)
			continue
		}

		if err := m.HandleMessage(ctx, msg.Value, health...); err != nil {
			if !errors.Is(err, ErrMalformedReview) {
				return err
			}
			slog.Warn("[ReviewConsumer] Skipping malformed review",
				slog.String("error", err.Error()))
		}

		if err := committer.Commit(ctx, msg); err != nil {
			slog.Warn("[ReviewConsumer] Failed to commit offset",
				slog.String("error", err.Error()))
		}
	}
}
