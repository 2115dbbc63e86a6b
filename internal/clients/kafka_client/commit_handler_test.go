package kafka_client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOffsetCommitter struct {
	mu       sync.Mutex
	failures []error
	calls    int
}

func (f *fakeOffsetCommitter) CommitMessage(*kafka.Message) ([]kafka.TopicPartition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.failures) > 0 {
		err := f.failures[0]
		f.failures = f.failures[1:]
		return nil, err
	}
	return nil, nil
}

func (f *fakeOffsetCommitter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testMessage() *kafka.Message {
	topic := KAFKA_TOPIC_REVIEW_MODERATION
	return &kafka.Message{TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: 0, Offset: 42}}
}

func TestCommitRetriesOnClock(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	transient := kafka.NewError(kafka.ErrTransport, "connection reset", false)
	consumer := &fakeOffsetCommitter{failures: []error{transient, transient}}
	clock := clockwork.NewFakeClock()
	handler := NewCommitHandler(consumer, clock)

	done := make(chan error, 1)
	go func() { done <- handler.Commit(ctx, testMessage()) }()

	for i := 0; i < 2; i++ {
		require.NoError(t, clock.BlockUntilContext(ctx, 1))
		clock.Advance(RETRY_DELAY)
	}

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-ctx.Done():
		t.Fatal("commit did not finish")
	}
	assert.Equal(t, 3, consumer.callCount())
}

func TestCommitAbortsWhenBrokersDown(t *testing.T) {
	consumer := &fakeOffsetCommitter{failures: []error{kafka.NewError(kafka.ErrAllBrokersDown, "down", false)}}
	handler := NewCommitHandler(consumer, clockwork.NewFakeClock())

	err := handler.Commit(context.Background(), testMessage())
	var kafkaErr kafka.Error
	require.ErrorAs(t, err, &kafkaErr)
	assert.Equal(t, kafka.ErrAllBrokersDown, kafkaErr.Code())
	assert.Equal(t, 1, consumer.callCount())
}

func TestCommitStopsWhenContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	consumer := &fakeOffsetCommitter{failures: []error{errors.New("request timed out")}}
	clock := clockwork.NewFakeClock()
	handler := NewCommitHandler(consumer, clock)

	done := make(chan error, 1)
	go func() { done <- handler.Commit(ctx, testMessage()) }()

	waitCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	require.NoError(t, clock.BlockUntilContext(waitCtx, 1))
	cancel()

	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, 1, consumer.callCount())
}

func TestCommitWithoutConsumer(t *testing.T) {
	err := NewCommitHandler(nil, nil).Commit(context.Background(), testMessage())
	assert.ErrorContains(t, err, "not been initialized")
}
