package sentiment

import (
	"context"

	"github.com/spacesedan/courtsense/internal/models"
)

// Scorer turns review text into a SentimentResult.
type Scorer interface {
	Analyze(ctx context.Context, text, language string) (models.SentimentResult, error)
}

// KeywordSource supplies the lexicon for a language. It must not fail; the
// keyword accessor degrades to cached or hardcoded lexicons on its own.
type KeywordSource interface {
	GetKeywords(ctx context.Context, language string, forceRefresh bool) *models.LexiconSnapshot
}

const (
	positiveThreshold = 0.2
	negativeThreshold = -0.2

	minConfidence = 0.1
	maxConfidence = 0.95
)

func labelFor(score float64) models.SentimentLabel {
	switch {
	case score > positiveThreshold:
		return models.LabelPositive
	case score < negativeThreshold:
		return models.LabelNegative
	default:
		return models.LabelNeutral
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
