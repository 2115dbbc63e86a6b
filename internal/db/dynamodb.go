package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/spacesedan/courtsense/internal/models"
)

const (
	MODERATION_TABLE_NAME = "ReviewModeration"
	DYNAMODB_BATCH_SIZE   = 25
	moderationTTL         = 90 * 24 * time.Hour
)

// BatchWriter is the slice of the DynamoDB client the moderation store uses.
type BatchWriter interface {
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

type ModerationResultStore struct {
	client       BatchWriter
	table        string
	retryBackoff time.Duration
	now          func() time.Time
}

func NewModerationResultStore(client BatchWriter) *ModerationResultStore {
	return &ModerationResultStore{
		client:       client,
		table:        MODERATION_TABLE_NAME,
		retryBackoff: 500 * time.Millisecond,
		now:          time.Now,
	}
}

// StoreResults writes results in chunks of 25, retrying unprocessed items
// with exponential backoff.
func (s *ModerationResultStore) StoreResults(ctx context.Context, results []models.ReviewModeration) error {
	for i := 0; i < len(results); i += DYNAMODB_BATCH_SIZE {
		select {
		case <-ctx.Done():
			slog.Warn("[DynamoDB] context canceled")
			return ctx.Err()
		default:
		}

		end := min(i+DYNAMODB_BATCH_SIZE, len(results))

		writeRequests := make([]types.WriteRequest, 0, end-i)
		for _, result := range results[i:end] {
			item, err := s.moderationItem(result)
			if err != nil {
				return fmt.Errorf("[DynamoDB] Failed to marshal moderation %s: %w", result.ReviewID, err)
			}
			writeRequests = append(writeRequests, types.WriteRequest{
				PutRequest: &types.PutRequest{Item: item},
			})
		}

		if err := s.writeBatch(ctx, writeRequests); err != nil {
			return err
		}
	}

	slog.Info("[DynamoDB] Successfully stored moderation results", slog.Int("count", len(results)))
	return nil
}

func (s *ModerationResultStore) writeBatch(ctx context.Context, writeRequests []types.WriteRequest) error {
	out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
		RequestItems: map[string][]types.WriteRequest{s.table: writeRequests},
	})
	if err != nil {
		return fmt.Errorf("[DynamoDB] Failed to batch write moderation results: %w", err)
	}

	retryCount := 0
	backoff := s.retryBackoff
	for len(out.UnprocessedItems) > 0 && retryCount < 3 {
		time.Sleep(backoff)
		backoff *= 2

		slog.Warn("[DynamoDB] Retrying unprocessed moderation items...",
			slog.Int("attempt", retryCount+1),
			slog.Int("remaining", len(out.UnprocessedItems[s.table])))

		out, err = s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: out.UnprocessedItems,
		})
		if err != nil {
			return fmt.Errorf("[DynamoDB] Retry error %w", err)
		}
		retryCount++
	}

	if remaining := len(out.UnprocessedItems[s.table]); remaining > 0 {
		return fmt.Errorf("[DynamoDB] %d moderation items were not written after retries", remaining)
	}
	return nil
}

// GetResult loads the stored moderation outcome of one review.
func (s *ModerationResultStore) GetResult(ctx context.Context, reviewID string) (*models.ReviewModeration, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"review_id": &types.AttributeValueMemberS{Value: reviewID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("[DynamoDB] Failed to get moderation %s: %w", reviewID, err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}

	var result models.ReviewModeration
	if err := attributevalue.UnmarshalMapWithOptions(out.Item, &result, func(o *attributevalue.DecoderOptions) {
		o.TagKey = "json"
	}); err != nil {
		return nil, fmt.Errorf("[DynamoDB] Unable to unmarshal moderation %s: %w", reviewID, err)
	}
	return &result, nil
}

func (s *ModerationResultStore) moderationItem(result models.ReviewModeration) (map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMapWithOptions(result, func(o *attributevalue.EncoderOptions) {
		o.TagKey = "json"
	})
	if err != nil {
		return nil, err
	}
	item["ttl"] = &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", s.now().Add(moderationTTL).Unix())}
	return item, nil
}
