package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/spacesedan/courtsense/config"
	"github.com/spacesedan/courtsense/internal/clients"
	"github.com/spacesedan/courtsense/internal/clients/kafka_client"
	"github.com/spacesedan/courtsense/internal/consumers"
	"github.com/spacesedan/courtsense/internal/db"
	"github.com/spacesedan/courtsense/internal/keywords"
	"github.com/spacesedan/courtsense/internal/logging"
	"github.com/spacesedan/courtsense/internal/monitoring"
	"github.com/spacesedan/courtsense/internal/sentiment"
)

const (
	externalModelTimeout  = 20 * time.Second
	producerRetryInterval = 5 * time.Second
)

func main() {
	if err := run(); err != nil {
		slog.Error("[Main] Moderator exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// run returns instead of exiting so deferred cleanup always happens.
func run() error {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)

	settings, err := config.Load()
	if err != nil {
		logging.InitLogger("info")
		return fmt.Errorf("[Main] Invalid configuration: %w", err)
	}
	logging.InitLogger(settings.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := kafka_client.GetKafkaConfig(settings.KafkaBroker, settings.KafkaGroupID)
	registry := kafka_client.NewRegistry()

	switch cfg.Topic {
	case kafka_client.KAFKA_TOPIC_REVIEW_SUBMITTED:
		cleanup, err := registerReviewModerator(ctx, settings, cfg, registry)
		if err != nil {
			return fmt.Errorf("[Main] Failed to set up review moderator: %w", err)
		}
		defer cleanup()
	case kafka_client.KAFKA_TOPIC_REVIEW_MODERATION:
		if err := registerResultsConsumer(ctx, settings, registry); err != nil {
			return fmt.Errorf("[Main] Failed to set up results consumer: %w", err)
		}
	}

	if err := registry.Start(ctx, cfg); err != nil {
		return fmt.Errorf("[Main] Failed to start consumer: %w", err)
	}
	return nil
}

// closers runs in reverse registration order.
type closers []func()

func (c closers) closeAll() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

// retryUntil calls connect every interval until it succeeds or ctx is done.
func retryUntil(ctx context.Context, clock clockwork.Clock, interval time.Duration, connect func() error) error {
	for {
		err := connect()
		if err == nil {
			return nil
		}
		slog.Warn("[Main] Kafka init failed, retrying...", slog.String("error", err.Error()))
		select {
		case <-ctx.Done():
			return fmt.Errorf("gave up connecting: %w", errors.Join(ctx.Err(), err))
		case <-clock.After(interval):
		}
	}
}

func registerReviewModerator(ctx context.Context, settings config.Settings, cfg kafka_client.KafkaConfig, registry *kafka_client.Registry) (func(), error) {
	var opened closers

	var store keywords.KeywordStore
	pool, err := db.InitDB(ctx, settings.DatabaseURL)
	if err != nil {
		slog.Warn("[Main] Keyword store unavailable, scoring with the fallback lexicon",
			slog.String("error", err.Error()))
	} else {
		opened = append(opened, pool.Close)
		store = db.NewKeywordRepository(pool)
	}

	accessor := keywords.NewAccessor(store, keywords.WithCacheTTL(settings.KeywordCacheTTL))
	accessor.GetKeywords(ctx, settings.DefaultLanguage, true)

	var external sentiment.Scorer
	externalHealthy := &atomic.Bool{}
	externalHealthy.Store(true)
	if settings.UseExternalModel {
		client, err := clients.GetOpenAIClient(settings.OpenAIAPIKey, settings.OpenAIBaseURL, settings.OpenAIModel)
		if err != nil {
			slog.Warn("[Main] External model disabled", slog.String("error", err.Error()))
		} else {
			external = sentiment.NewExternalModelScorer(client, externalModelTimeout)
			go monitoring.MonitorHealth(ctx, clockwork.NewRealClock(), "external-model", client, externalHealthy)
		}
	}
	analyzer := sentiment.NewAnalyzer(sentiment.NewRuleBasedScorer(accessor), external)

	var dedup consumers.ReviewDeduper
	if settings.ValkeyAddress != "" {
		vc, err := clients.InitValkey(clients.ValkeyOptions{
			Address:  settings.ValkeyAddress,
			Password: settings.ValkeyPassword,
			TLS:      settings.ValkeyTLS,
		})
		if err != nil {
			slog.Warn("[Main] Review dedup disabled", slog.String("error", err.Error()))
		} else {
			opened = append(opened, vc.Close)
			dedup = vc
		}
	}

	var producer *kafka_client.Producer
	err = retryUntil(ctx, clockwork.NewRealClock(), producerRetryInterval, func() error {
		p, err := kafka_client.NewProducer(ctx, cfg)
		producer = p
		return err
	})
	if err != nil {
		opened.closeAll()
		return nil, err
	}
	opened = append(opened, producer.Close)

	moderator := consumers.NewReviewModerator(analyzer, producer, dedup, settings.UseExternalModel)
	registry.Register(kafka_client.KAFKA_TOPIC_REVIEW_SUBMITTED,
		consumers.WrapConsumer("review-moderator", moderator.Consume).
			WithHealthCheck(externalHealthy).Handler())

	return opened.closeAll, nil
}

func registerResultsConsumer(ctx context.Context, settings config.Settings, registry *kafka_client.Registry) error {
	client, err := clients.GetDynamoDBClient(ctx, settings.AWSRegion, settings.AWSEndpoint)
	if err != nil {
		return err
	}

	results := consumers.NewResultsConsumer(db.NewModerationResultStore(client))
	registry.Register(kafka_client.KAFKA_TOPIC_REVIEW_MODERATION,
		consumers.WrapConsumer("results", results.Consume).Handler())
	return nil
}
