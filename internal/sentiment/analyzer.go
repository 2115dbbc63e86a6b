package sentiment

import (
	"context"
	"log/slog"

	"github.com/spacesedan/courtsense/internal/keywords"
	"github.com/spacesedan/courtsense/internal/models"
)

const DefaultLanguage = keywords.DefaultLanguage

// Analyzer is the entry point the review moderation workflow calls.
type Analyzer struct {
	rules    *RuleBasedScorer
	external Scorer
}

// NewAnalyzer builds an Analyzer. external may be nil, in which case
// requests for the external model are served by the rule-based scorer.
func NewAnalyzer(rules *RuleBasedScorer, external Scorer) *Analyzer {
	if rules == nil {
		rules = NewRuleBasedScorer(nil)
	}
	return &Analyzer{rules: rules, external: external}
}

// AnalyzeSentiment always returns a well-formed result.
func (a *Analyzer) AnalyzeSentiment(ctx context.Context, text string, useExternalModel bool, language string) models.SentimentResult {
	if !useExternalModel || a.external == nil {
		return a.rules.AnalyzeText(ctx, text, language)
	}

	result, err := FallbackScorer{Primary: a.external, Fallback: a.rules}.Analyze(ctx, text, language)
	if err != nil {
		slog.Error("[Analyzer] Rule-based fallback failed, using hardcoded lexicon",
			slog.String("error", err.Error()))
		return AnalyzeWithFallbackLexicon(text)
	}
	return result
}
