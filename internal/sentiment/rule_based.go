package sentiment

import (
	"context"

	"github.com/spacesedan/courtsense/internal/models"
)

const fullConfidenceMultiplier = 2.5

// RuleBasedScorer scores text against the live lexicon of a KeywordSource.
type RuleBasedScorer struct {
	keywords KeywordSource
}

func NewRuleBasedScorer(keywords KeywordSource) *RuleBasedScorer {
	return &RuleBasedScorer{keywords: keywords}
}

// Analyze never returns an error.
func (s *RuleBasedScorer) Analyze(ctx context.Context, text, language string) (models.SentimentResult, error) {
	return s.AnalyzeText(ctx, text, language), nil
}

func (s *RuleBasedScorer) AnalyzeText(ctx context.Context, text, language string) models.SentimentResult {
	if language == "" {
		language = DefaultLanguage
	}

	var snap *models.LexiconSnapshot
	if s.keywords != nil {
		snap = s.keywords.GetKeywords(ctx, language, false)
	}
	if snap == nil {
		return AnalyzeWithFallbackLexicon(text)
	}

	return ScoreLexicon(text, snap)
}

// ScoreLexicon runs the full rule set against an explicit snapshot.
func ScoreLexicon(text string, snap *models.LexiconSnapshot) models.SentimentResult {
	t := tallyLexicon(text, snap)
	score := clamp(t.score, -1, 1)
	confidence := clamp(t.density()*fullConfidenceMultiplier, minConfidence, maxConfidence)

	return models.SentimentResult{
		Score:        score,
		Label:        labelFor(score),
		Confidence:   confidence,
		Flagged:      IsFlagged(t.MatchCounts, score, confidence),
		MatchedTerms: nonNil(t.terms),
		Method:       models.MethodRuleBased,
	}
}

// IsFlagged is the moderation rule used when the keyword store path is
// available.
func IsFlagged(m MatchCounts, score, confidence float64) bool {
	return m.StrongNegative > 0 ||
		(score < -0.6 && confidence > 0.3) ||
		(m.Negative >= 3 && m.StrongNegative == 0) ||
		(score < -0.4 && m.Negative >= 2)
}

func nonNil(terms []string) []string {
	if terms == nil {
		return []string{}
	}
	return terms
}
