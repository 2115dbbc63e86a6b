package clients

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/valkey-io/valkey-go"
)

var (
	valkeyInstance *ValkeyClient
	valkeyOnce     sync.Once
	valkeyErr      error
)

type ValkeyOptions struct {
	Address  string
	Password string
	TLS      bool
}

// ValkeyClient remembers which reviews were already moderated so that
// redelivered Kafka messages are not analyzed twice.
type ValkeyClient struct {
	Client valkey.Client
	opts   ValkeyOptions
	mu     sync.Mutex
}

const (
	VALKEY_REVIEW_KEY_PREFIX = "courtsense:moderated:"
	VALKEY_REVIEW_TTL        = 7 * 24 * time.Hour
)

func InitValkey(o ValkeyOptions) (*ValkeyClient, error) {
	valkeyOnce.Do(func() {
		client, err := connectValkey(o)
		if err != nil {
			valkeyErr = err
			return
		}
		slog.Info("[ValkeyClient] Successfully connected to valkey")
		valkeyInstance = &ValkeyClient{Client: client, opts: o}
	})
	return valkeyInstance, valkeyErr
}

func connectValkey(o ValkeyOptions) (valkey.Client, error) {
	if o.Address == "" {
		return nil, errors.New("[ValkeyClient] VALKEY_INIT_ADDRESS is not set")
	}

	opts := valkey.ClientOption{
		InitAddress:      []string{o.Address},
		Password:         o.Password,
		ConnWriteTimeout: 5 * time.Second,
		SelectDB:         0,
	}
	if o.TLS {
		opts.TLSConfig = &tls.Config{InsecureSkipVerify: false}
	}

	client, err := valkey.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("[ValkeyClient] failed to create Valkey: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("[ValkeyClient] failed to ping Valkey: %w", err)
	}
	return client, nil
}

func (vc *ValkeyClient) recreateClient() {
	vc.mu.Lock()
	defer vc.mu.Unlock()

	slog.Warn("[ValkeyClient] Attempting to recreate Valkey client...")
	client, err := connectValkey(vc.opts)
	if err != nil {
		slog.Error("[ValkeyClient] Recreate failed", slog.String("error", err.Error()))
		return
	}
	vc.Client.Close()
	vc.Client = client
	slog.Info("[ValkeyClient] Valkey client recreated")
}

func (vc *ValkeyClient) Close() {
	if vc != nil && vc.Client != nil {
		vc.Client.Close()
	}
}

// IsReviewProcessed reports whether reviewID was already moderated. Lookup
// errors count as not processed; analysis is idempotent.
func (vc *ValkeyClient) IsReviewProcessed(ctx context.Context, reviewID string) bool {
	res := vc.DoWithRetry(ctx, vc.Client.B().Exists().Key(reviewKey(reviewID)).Build().Pin(), MAX_RETRIES)
	n, err := res.AsInt64()
	if err != nil {
		return false
	}
	return n > 0
}

func (vc *ValkeyClient) MarkReviewProcessed(ctx context.Context, reviewID string) error {
	cmd := vc.Client.B().Set().Key(reviewKey(reviewID)).Value("1").
		ExSeconds(int64(VALKEY_REVIEW_TTL.Seconds())).Build().Pin()

	if err := vc.DoWithRetry(ctx, cmd, MAX_RETRIES).Error(); err != nil {
		return fmt.Errorf("[ValkeyClient] mark %s processed: %w", reviewID, err)
	}

	slog.Debug("[ValkeyClient] Review marked as processed", slog.String("review_id", reviewID))
	return nil
}

func reviewKey(reviewID string) string {
	return VALKEY_REVIEW_KEY_PREFIX + reviewID
}

// DoWithRetry expects a pinned command so it can be sent more than once.
func (vc *ValkeyClient) DoWithRetry(ctx context.Context, completed valkey.Completed, retries int) valkey.ValkeyResult {
	var result valkey.ValkeyResult
	for i := 0; i < retries; i++ {
		vc.mu.Lock()
		client := vc.Client
		vc.mu.Unlock()

		result = client.Do(ctx, completed)
		if result.Error() == nil {
			break
		}

		slog.Warn("[ValkeyClient] Do failed",
			slog.Int("attempt", i+1),
			slog.String("error", result.Error().Error()))

		if isConnectionError(result.Error()) {
			vc.recreateClient()
		}
		time.Sleep(INITIAL_BACKOFF)
	}

	return result
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "EOF") ||
		strings.Contains(msg, "i/o timeout")
}
