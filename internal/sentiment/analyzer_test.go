package sentiment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spacesedan/courtsense/internal/keywords"
	"github.com/spacesedan/courtsense/internal/models"
)

func TestAnalyzeSentiment_RuleBasedByDefault(t *testing.T) {
	client := &fakeCompleter{reply: `{"score": 0.9, "label": "positive", "confidence": 0.9}`}
	a := NewAnalyzer(fallbackScorer(), NewExternalModelScorer(client, 0))

	res := a.AnalyzeSentiment(context.Background(), "Sân rất tốt", false, "vi")

	assert.Equal(t, models.MethodRuleBased, res.Method)
	assert.Zero(t, client.calls)
}

func TestAnalyzeSentiment_ExternalModel(t *testing.T) {
	client := &fakeCompleter{reply: `{"score": 0.9, "label": "positive", "confidence": 0.9}`}
	a := NewAnalyzer(fallbackScorer(), NewExternalModelScorer(client, 0))

	res := a.AnalyzeSentiment(context.Background(), "Sân rất tốt", true, "vi")

	assert.Equal(t, models.MethodExternalModel, res.Method)
	assert.Equal(t, 1, client.calls)
}

func TestAnalyzeSentiment_ExternalFailureFallsBack(t *testing.T) {
	client := &fakeCompleter{err: errors.New("missing credentials")}
	a := NewAnalyzer(fallbackScorer(), NewExternalModelScorer(client, 0))

	res := a.AnalyzeSentiment(context.Background(), "Dịch vụ rất tệ, lừa đảo khách hàng", true, "vi")

	assert.Equal(t, models.MethodRuleBased, res.Method)
	assert.True(t, res.Flagged)
	assert.Equal(t, -1.0, res.Score)
}

func TestAnalyzeSentiment_NoExternalConfigured(t *testing.T) {
	a := NewAnalyzer(nil, nil)

	res := a.AnalyzeSentiment(context.Background(), "tốt", true, "vi")

	assert.Equal(t, models.MethodFallbackLexicon, res.Method)
}

func TestAnalyzeSentiment_StoreUnavailable(t *testing.T) {
	a := NewAnalyzer(NewRuleBasedScorer(keywords.NewAccessor(nil)), nil)

	res := a.AnalyzeSentiment(context.Background(), "Sân rất tốt, sạch sẽ, nhân viên thân thiện", false, "vi")

	assert.Equal(t, models.LabelPositive, res.Label)
	assert.Equal(t, models.MethodRuleBased, res.Method)
	assert.InDelta(t, 0.66, res.Score, 1e-9)
}
