package utils

import (
	"sync"
	"testing"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchBufferReportsFull(t *testing.T) {
	b := NewBatchBuffer[int](3)
	assert.False(t, b.Add(1))
	assert.False(t, b.Add(2))
	assert.True(t, b.Add(3))
	assert.Equal(t, 3, b.Size())

	assert.Equal(t, []int{1, 2, 3}, b.GetAndClear())
	assert.False(t, b.HasData())
	assert.Nil(t, b.GetAndClear())
}

func TestBatchBufferDefaultCapacity(t *testing.T) {
	b := NewBatchBuffer[string](0)
	for i := 0; i < BATCH_SIZE-1; i++ {
		assert.False(t, b.Add("x"))
	}
	assert.True(t, b.Add("x"))
}

func TestBatchBufferConcurrentAdd(t *testing.T) {
	b := NewBatchBuffer[int](1000)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b.Add(i)
		}(i)
	}
	wg.Wait()
	assert.Len(t, b.GetAndClear(), 50)
}

func TestMessageTrackerTakeOnce(t *testing.T) {
	tracker := NewMessageTracker()
	msg := &kafka.Message{Value: []byte("{}")}
	tracker.Track("r1", msg)

	got := tracker.Take("r1")
	require.Len(t, got, 1)
	assert.Same(t, msg, got[0])

	assert.Empty(t, tracker.Take("r1"))
}

func TestMessageTrackerKeepsRedeliveries(t *testing.T) {
	tracker := NewMessageTracker()
	first := &kafka.Message{Value: []byte(`{"v":1}`)}
	second := &kafka.Message{Value: []byte(`{"v":2}`)}
	tracker.Track("r1", first)
	tracker.Track("r1", second)

	assert.Equal(t, []*kafka.Message{first, second}, tracker.Take("r1"))
}

func TestDeserializeFromJSON(t *testing.T) {
	var v struct {
		ID string `json:"id"`
	}
	assert.NoError(t, DeserializeFromJSON([]byte(`{"id":"r1"}`), &v))
	assert.Equal(t, "r1", v.ID)
	assert.Error(t, DeserializeFromJSON([]byte(`{`), &v))
}
