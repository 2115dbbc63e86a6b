package consumers

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

type ConsumerFunc func(ctx context.Context, consumer *kafka.Consumer, health ...*atomic.Bool)

// ConsumerWrapper adapts a ConsumerFunc to the registry signature, handing it
// the health flags of the dependencies it may skip when they are down.
type ConsumerWrapper struct {
	name   string
	fn     ConsumerFunc
	health []*atomic.Bool
}

func WrapConsumer(name string, fn ConsumerFunc, health ...*atomic.Bool) ConsumerWrapper {
	return ConsumerWrapper{
		name:   name,
		fn:     fn,
		health: health,
	}
}

func (cw ConsumerWrapper) WithHealthCheck(health *atomic.Bool) ConsumerWrapper {
	cw.health = append(cw.health, health)
	return cw
}

func (cw ConsumerWrapper) Handler() func(ctx context.Context, consumer *kafka.Consumer) {
	return func(ctx context.Context, consumer *kafka.Consumer) {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("[ConsumerWrapper] Consumer panicked",
					slog.String("consumer", cw.name),
					slog.Any("panic", r))
			}
		}()
		cw.fn(ctx, consumer, cw.health...)
	}
}

// MessageSource yields Kafka messages one at a time.
type MessageSource interface {
	Next(ctx context.Context) (*kafka.Message, error)
}

type Committer interface {
	Commit(ctx context.Context, msg *kafka.Message) error
}

func allHealthy(health []*atomic.Bool) bool {
	for _, h := range health {
		if h != nil && !h.Load() {
			return false
		}
	}
	return true
}
