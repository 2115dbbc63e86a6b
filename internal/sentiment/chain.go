package sentiment

import (
	"context"
	"log/slog"

	"github.com/spacesedan/courtsense/internal/models"
)

// FallbackScorer tries Primary and, on any error, answers with Fallback.
type FallbackScorer struct {
	Primary  Scorer
	Fallback Scorer
}

func (f FallbackScorer) Analyze(ctx context.Context, text, language string) (models.SentimentResult, error) {
	result, err := f.Primary.Analyze(ctx, text, language)
	if err == nil {
		return result, nil
	}

	slog.Warn("[FallbackScorer] Primary scorer failed, falling back",
		slog.String("error", err.Error()))
	return f.Fallback.Analyze(ctx, text, language)
}
