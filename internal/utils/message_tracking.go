package utils

import (
	"sync"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

// MessageTracker maps review ids to the Kafka messages that carried them so
// offsets are committed only after the review is persisted. A redelivered
// review keeps every message it arrived on.
type MessageTracker struct {
	mu       sync.Mutex
	messages map[string][]*kafka.Message
}

func NewMessageTracker() *MessageTracker {
	return &MessageTracker{messages: make(map[string][]*kafka.Message)}
}

func (t *MessageTracker) Track(reviewID string, msg *kafka.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages[reviewID] = append(t.messages[reviewID], msg)
}

// Take returns and forgets the messages tracked for reviewID, oldest first.
func (t *MessageTracker) Take(reviewID string) []*kafka.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	msgs := t.messages[reviewID]
	delete(t.messages, reviewID)
	return msgs
}
