package sentiment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spacesedan/courtsense/internal/models"
)

var (
	ErrExternalModelUnavailable = errors.New("external model is not configured")
	ErrMalformedModelResponse   = errors.New("external model returned a malformed response")
)

// ChatCompleter sends one system+user exchange to a hosted model and
// returns the raw reply.
type ChatCompleter interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

const externalModelPrompt = `You moderate customer reviews of sports courts.
Rate the sentiment of the review written in language %q.

### STRICT OUTPUT FORMAT
Return only valid JSON, exactly:
{"score": <number from -1.0 to 1.0>, "label": "positive" | "negative" | "neutral", "confidence": <number from 0.0 to 1.0>, "flagged": <true if abusive, scam accusations or very negative>, "reasons": ["short phrase", ...]}

No markdown, no text before or after the JSON.`

// ExternalModelScorer delegates scoring to a hosted LLM. Any failure is
// returned so a FallbackScorer can take over.
type ExternalModelScorer struct {
	client  ChatCompleter
	timeout time.Duration
}

func NewExternalModelScorer(client ChatCompleter, timeout time.Duration) *ExternalModelScorer {
	return &ExternalModelScorer{client: client, timeout: timeout}
}

func (s *ExternalModelScorer) Analyze(ctx context.Context, text, language string) (models.SentimentResult, error) {
	if s == nil || s.client == nil {
		return models.SentimentResult{}, ErrExternalModelUnavailable
	}
	if language == "" {
		language = DefaultLanguage
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := s.client.Complete(ctx, fmt.Sprintf(externalModelPrompt, language), PlainText(text))
	if err != nil {
		return models.SentimentResult{}, fmt.Errorf("[ExternalModelScorer] completion failed: %w", err)
	}

	result, err := parseModelResponse(raw)
	if err != nil {
		slog.Warn("[ExternalModelScorer] Unusable model response",
			slog.String("error", err.Error()),
			getPreview(raw))
		return models.SentimentResult{}, err
	}

	slog.Debug("[ExternalModelScorer] Review scored",
		slog.Float64("score", result.Score),
		slog.Duration("elapsed", time.Since(start)))
	return result, nil
}

func parseModelResponse(raw string) (models.SentimentResult, error) {
	var resp models.ExternalSentimentResponse
	if err := json.Unmarshal([]byte(cleanModelResponse(raw)), &resp); err != nil {
		return models.SentimentResult{}, fmt.Errorf("%w: %v", ErrMalformedModelResponse, err)
	}
	if resp.Score == nil || resp.Confidence == nil {
		return models.SentimentResult{}, fmt.Errorf("%w: missing score or confidence", ErrMalformedModelResponse)
	}
	switch models.SentimentLabel(resp.Label) {
	case models.LabelPositive, models.LabelNegative, models.LabelNeutral:
	default:
		return models.SentimentResult{}, fmt.Errorf("%w: unknown label %q", ErrMalformedModelResponse, resp.Label)
	}

	// The label is re-derived so it always agrees with the clamped score.
	score := clamp(*resp.Score, -1, 1)
	return models.SentimentResult{
		Score:        score,
		Label:        labelFor(score),
		Confidence:   clamp(*resp.Confidence, minConfidence, maxConfidence),
		Flagged:      resp.Flagged,
		MatchedTerms: nonNil(resp.Reasons),
		Method:       models.MethodExternalModel,
	}, nil
}

// cleanModelResponse strips markdown code fences some models wrap JSON in.
func cleanModelResponse(response string) string {
	cleaned := strings.TrimSpace(response)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}

const previewRunes = 50

// getPreview keeps the first previewRunes characters of a model response.
func getPreview(raw string) slog.Attr {
	if utf8.RuneCountInString(raw) > previewRunes {
		raw = string([]rune(raw)[:previewRunes])
	}
	return slog.String("raw_response", raw)
}
