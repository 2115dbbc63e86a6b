package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryUntilSucceeds(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clock := clockwork.NewFakeClock()
	attempts := 0
	done := make(chan error, 1)
	go func() {
		done <- retryUntil(ctx, clock, producerRetryInterval, func() error {
			attempts++
			if attempts < 3 {
				return errors.New("broker not ready")
			}
			return nil
		})
	}()

	for i := 0; i < 2; i++ {
		require.NoError(t, clock.BlockUntilContext(ctx, 1))
		clock.Advance(producerRetryInterval)
	}
	require.NoError(t, <-done)
	assert.Equal(t, 3, attempts)
}

func TestRetryUntilReturnsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	clock := clockwork.NewFakeClock()

	done := make(chan error, 1)
	go func() {
		done <- retryUntil(ctx, clock, producerRetryInterval, func() error {
			return errors.New("broker not ready")
		})
	}()

	waitCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	require.NoError(t, clock.BlockUntilContext(waitCtx, 1))
	cancel()

	err := <-done
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorContains(t, err, "broker not ready")
}

func TestClosersRunInReverseOrder(t *testing.T) {
	var order []string
	c := closers{
		func() { order = append(order, "pool") },
		func() { order = append(order, "valkey") },
		func() { order = append(order, "producer") },
	}
	c.closeAll()
	assert.Equal(t, []string{"producer", "valkey", "pool"}, order)
}
