package clients

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const openAIRequestTimeout = 60 * time.Second

var ErrMissingAPIKey = errors.New("[OpenAIClient] OPENAI_API_KEY is not set")

var (
	openAIClientInstance *OpenAIClient
	openAIOnce           sync.Once
)

// OpenAIClient sends chat completions used by the external sentiment model.
type OpenAIClient struct {
	Client *openai.Client
	Model  string
}

// GetOpenAIClient returns the process-wide client. baseURL may point at any
// OpenAI compatible endpoint.
func GetOpenAIClient(apiKey, baseURL, model string) (*OpenAIClient, error) {
	if apiKey == "" {
		slog.Error("[OpenAIClient] Missing OPENAI_API_KEY in environment variables")
		return nil, ErrMissingAPIKey
	}

	openAIOnce.Do(func() {
		opts := []option.RequestOption{
			option.WithAPIKey(apiKey),
			option.WithRequestTimeout(openAIRequestTimeout),
			option.WithMaxRetries(MAX_RETRIES),
			option.WithHeader("User-Agent", USER_AGENT),
		}
		if baseURL != "" {
			opts = append(opts, option.WithBaseURL(baseURL))
		}

		openAIClientInstance = &OpenAIClient{
			Client: openai.NewClient(opts...),
			Model:  model,
		}
		slog.Info("[OpenAIClient] OpenAI client initialized",
			slog.String("model", model),
			slog.Duration("timeout", openAIRequestTimeout))
	})
	return openAIClientInstance, nil
}

// Complete runs one system+user exchange and returns the first choice.
func (c *OpenAIClient) Complete(ctx context.Context, system, user string) (string, error) {
	completion, err := c.Client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		}),
		Model:       openai.F(openai.ChatModel(c.Model)),
		Temperature: openai.Float(0),
	})
	if err != nil {
		return "", err
	}

	if len(completion.Choices) == 0 || strings.TrimSpace(completion.Choices[0].Message.Content) == "" {
		return "", errors.New("[OpenAIClient] empty completion")
	}
	return completion.Choices[0].Message.Content, nil
}

// HealthCheck reports whether the configured model is reachable.
func (c *OpenAIClient) HealthCheck(ctx context.Context) bool {
	if _, err := c.Client.Models.Get(ctx, c.Model); err != nil {
		slog.Warn("[OpenAIClient] Health check failed", slog.String("error", err.Error()))
		return false
	}
	return true
}
