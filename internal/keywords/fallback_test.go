package keywords

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/courtsense/internal/models"
)

func TestFallbackLexicon_Contents(t *testing.T) {
	snap := FallbackLexicon()

	assert.Equal(t, "vi", snap.Language)
	assert.Equal(t, models.LexiconFromFallback, snap.Source)
	assert.Len(t, snap.Positive, 10)
	assert.Len(t, snap.Negative, 10)
	assert.Len(t, snap.StrongNegative, 7)

	weights := map[string]float64{}
	for _, p := range models.PolarityClasses {
		for _, kw := range snap.Group(p) {
			assert.Equal(t, p, kw.Polarity)
			assert.True(t, kw.Active)
			assert.Zero(t, kw.ID)
			weights[kw.Text] = kw.Weight
		}
	}
	assert.Equal(t, 1.0, weights["tốt"])
	assert.Equal(t, 1.2, weights["sạch sẽ"])
	assert.Equal(t, 0.8, weights["chán"])
	assert.Equal(t, 2.0, weights["lừa đảo"])
	assert.Equal(t, 1.8, weights["không bao giờ quay lại"])
}

func TestFallbackLexicon_SortedByWeight(t *testing.T) {
	snap := FallbackLexicon()
	for _, p := range models.PolarityClasses {
		group := snap.Group(p)
		for i := 1; i < len(group); i++ {
			assert.GreaterOrEqual(t, group[i-1].Weight, group[i].Weight)
		}
	}
	assert.Equal(t, "hoàn hảo", snap.Positive[0].Text)
	assert.Equal(t, "xuất sắc", snap.Positive[1].Text)
}

func TestFallbackLexicon_ReturnsCopies(t *testing.T) {
	a := FallbackLexicon()
	a.Positive[0].Weight = 0.1
	b := FallbackLexicon()
	assert.Equal(t, 1.5, b.Positive[0].Weight)
}

func TestDefaultKeywords_ExtendsFallback(t *testing.T) {
	all := DefaultKeywords()
	require.Greater(t, len(all), FallbackLexicon().Size())

	seen := map[string]bool{}
	for _, kw := range all {
		key := string(kw.Polarity) + "|" + kw.Text
		assert.False(t, seen[key], "duplicate seed %s", key)
		seen[key] = true
		_, err := ValidateInput(models.KeywordInput{
			Text: kw.Text, Polarity: kw.Polarity, Weight: &kw.Weight, Language: kw.Language,
		})
		assert.NoError(t, err, kw.Text)
	}
	assert.True(t, seen["positive|tốt"])
	assert.True(t, seen["positive|thân thiện"])
}
