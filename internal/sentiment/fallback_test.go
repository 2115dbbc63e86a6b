package sentiment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spacesedan/courtsense/internal/models"
)

func TestAnalyzeWithFallbackLexicon_Examples(t *testing.T) {
	pos := AnalyzeWithFallbackLexicon("Sân rất tốt, sạch sẽ, nhân viên thân thiện")
	assert.InDelta(t, 0.66, pos.Score, 1e-9)
	assert.Equal(t, models.LabelPositive, pos.Label)
	assert.False(t, pos.Flagged)
	assert.Equal(t, models.MethodFallbackLexicon, pos.Method)

	neg := AnalyzeWithFallbackLexicon("Dịch vụ rất tệ, lừa đảo khách hàng")
	assert.Equal(t, -1.0, neg.Score)
	assert.True(t, neg.Flagged)

	neutral := AnalyzeWithFallbackLexicon("Sân bình thường, không có gì đặc biệt")
	assert.Zero(t, neutral.Score)
	assert.Equal(t, 0.1, neutral.Confidence)
	assert.False(t, neutral.Flagged)
}

func TestAnalyzeWithFallbackLexicon_UsesLowerDensityMultiplier(t *testing.T) {
	text := "Sân rất tốt, sạch sẽ, nhân viên thân thiện"

	sync := AnalyzeWithFallbackLexicon(text)
	full := fallbackScorer().AnalyzeText(context.Background(), text, "vi")

	assert.InDelta(t, 2.0/9.0*2.0, sync.Confidence, 1e-9)
	assert.InDelta(t, 2.0/9.0*2.5, full.Confidence, 1e-9)
	assert.Equal(t, full.Score, sync.Score)
	assert.Equal(t, full.MatchedTerms, sync.MatchedTerms)
}

func TestIsFlaggedFallback(t *testing.T) {
	cases := []struct {
		name       string
		counts     MatchCounts
		score      float64
		confidence float64
		want       bool
	}{
		{"strong negative", MatchCounts{StrongNegative: 1}, 0.5, 0.5, true},
		{"below -0.5 and confident", MatchCounts{Negative: 1}, -0.55, 0.5, true},
		{"below -0.5 but unsure", MatchCounts{Negative: 1}, -0.55, 0.3, false},
		{"three negatives", MatchCounts{Negative: 3}, -0.1, 0.1, true},
		{"two negatives below -0.4", MatchCounts{Negative: 2}, -0.45, 0.2, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsFlaggedFallback(tc.counts, tc.score, tc.confidence))
		})
	}
}

func TestFlagRulesDiverge(t *testing.T) {
	// -0.55 with one negative: only the synchronous rule flags it.
	m := MatchCounts{Negative: 1}
	assert.False(t, IsFlagged(m, -0.55, 0.5))
	assert.True(t, IsFlaggedFallback(m, -0.55, 0.5))

	// -0.45 with two negatives: only the full rule flags it.
	m = MatchCounts{Negative: 2}
	assert.True(t, IsFlagged(m, -0.45, 0.2))
	assert.False(t, IsFlaggedFallback(m, -0.45, 0.2))
}
