package sentiment

import (
	"github.com/spacesedan/courtsense/internal/keywords"
	"github.com/spacesedan/courtsense/internal/models"
)

const fallbackConfidenceMultiplier = 2.0

// AnalyzeWithFallbackLexicon scores text synchronously against the
// hardcoded lexicon, for callers that cannot wait on the keyword store.
// Its confidence multiplier and flag rule differ from ScoreLexicon and are
// kept that way on purpose; see IsFlaggedFallback.
func AnalyzeWithFallbackLexicon(text string) models.SentimentResult {
	t := tallyLexicon(text, keywords.FallbackLexicon())
	score := clamp(t.score, -1, 1)
	confidence := clamp(t.density()*fallbackConfidenceMultiplier, minConfidence, maxConfidence)

	return models.SentimentResult{
		Score:        score,
		Label:        labelFor(score),
		Confidence:   confidence,
		Flagged:      IsFlaggedFallback(t.MatchCounts, score, confidence),
		MatchedTerms: nonNil(t.terms),
		Method:       models.MethodFallbackLexicon,
	}
}

// IsFlaggedFallback is the moderation rule of the synchronous path.
func IsFlaggedFallback(m MatchCounts, score, confidence float64) bool {
	return m.StrongNegative > 0 ||
		(score < -0.5 && confidence > 0.3) ||
		m.Negative >= 3
}
