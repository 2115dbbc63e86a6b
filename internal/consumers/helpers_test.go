package consumers

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/courtsense/internal/clients/kafka_client"
	"github.com/spacesedan/courtsense/internal/models"
)

type sliceSource struct {
	msgs   []*kafka.Message
	cancel context.CancelFunc
	pos    int
}

func (s *sliceSource) Next(context.Context) (*kafka.Message, error) {
	if s.pos >= len(s.msgs) {
		s.cancel()
		return nil, context.Canceled
	}
	msg := s.msgs[s.pos]
	s.pos++
	return msg, nil
}

type recordingCommitter struct {
	committed []*kafka.Message
}

func (c *recordingCommitter) Commit(_ context.Context, msg *kafka.Message) error {
	c.committed = append(c.committed, msg)
	return nil
}

type fakePublisher struct {
	mu       sync.Mutex
	failures int
	topics   []string
	messages []kafka_client.KeyedMessage
}

func (p *fakePublisher) Publish(_ context.Context, topic string, msgs ...kafka_client.KeyedMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failures > 0 {
		p.failures--
		return errors.New("broker unavailable")
	}
	p.topics = append(p.topics, topic)
	p.messages = append(p.messages, msgs...)
	return nil
}

type fakeDeduper struct {
	seen map[string]bool
}

func (d *fakeDeduper) IsReviewProcessed(_ context.Context, id string) bool { return d.seen[id] }

func (d *fakeDeduper) MarkReviewProcessed(_ context.Context, id string) error {
	d.seen[id] = true
	return nil
}

type recordingAnalyzer struct {
	result      models.SentimentResult
	texts       []string
	languages   []string
	useExternal []bool
}

func (a *recordingAnalyzer) AnalyzeSentiment(_ context.Context, text string, useExternal bool, language string) models.SentimentResult {
	a.texts = append(a.texts, text)
	a.languages = append(a.languages, language)
	a.useExternal = append(a.useExternal, useExternal)
	return a.result
}

func encode(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func message(t *testing.T, offset int64, v any) *kafka.Message {
	topic := "test"
	return &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Offset: kafka.Offset(offset)},
		Value:          encode(t, v),
	}
}
