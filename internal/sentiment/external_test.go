package sentiment

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/courtsense/internal/models"
)

type fakeCompleter struct {
	reply  string
	err    error
	system string
	user   string
	calls  int
}

func (f *fakeCompleter) Complete(_ context.Context, system, user string) (string, error) {
	f.calls++
	f.system, f.user = system, user
	return f.reply, f.err
}

func TestExternalModelScorer_ParsesReply(t *testing.T) {
	client := &fakeCompleter{reply: "```json\n{\"score\": -0.8, \"label\": \"negative\", \"confidence\": 0.99, \"flagged\": true, \"reasons\": [\"scam\"]}\n```"}
	scorer := NewExternalModelScorer(client, 0)

	res, err := scorer.Analyze(context.Background(), "**Lừa đảo** xem [ảnh](https://example.com/x.png)", "vi")

	require.NoError(t, err)
	assert.Equal(t, -0.8, res.Score)
	assert.Equal(t, models.LabelNegative, res.Label)
	assert.Equal(t, 0.95, res.Confidence)
	assert.True(t, res.Flagged)
	assert.Equal(t, []string{"scam"}, res.MatchedTerms)
	assert.Equal(t, models.MethodExternalModel, res.Method)
	assert.Equal(t, "Lừa đảo xem ảnh", client.user)
	assert.Contains(t, client.system, `"vi"`)
}

func TestExternalModelScorer_LabelFollowsClampedScore(t *testing.T) {
	client := &fakeCompleter{reply: `{"score": 3, "label": "neutral", "confidence": 0.5, "flagged": false}`}

	res, err := NewExternalModelScorer(client, 0).Analyze(context.Background(), "tốt", "vi")

	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Score)
	assert.Equal(t, models.LabelPositive, res.Label)
	assert.NotNil(t, res.MatchedTerms)
}

func TestExternalModelScorer_Failures(t *testing.T) {
	cases := []struct {
		name   string
		client ChatCompleter
		target error
	}{
		{"no client", nil, ErrExternalModelUnavailable},
		{"transport error", &fakeCompleter{err: errors.New("401 Unauthorized")}, nil},
		{"not json", &fakeCompleter{reply: "I think it is positive"}, ErrMalformedModelResponse},
		{"missing score", &fakeCompleter{reply: `{"label": "positive", "confidence": 0.5}`}, ErrMalformedModelResponse},
		{"bad label", &fakeCompleter{reply: `{"score": 0.5, "label": "happy", "confidence": 0.5}`}, ErrMalformedModelResponse},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewExternalModelScorer(tc.client, 0).Analyze(context.Background(), "tốt", "vi")
			require.Error(t, err)
			if tc.target != nil {
				assert.ErrorIs(t, err, tc.target)
			}
		})
	}
}

func TestFallbackScorer(t *testing.T) {
	ctx := context.Background()
	rules := fallbackScorer()

	ok := FallbackScorer{
		Primary:  NewExternalModelScorer(&fakeCompleter{reply: `{"score": 0.4, "label": "positive", "confidence": 0.7}`}, 0),
		Fallback: rules,
	}
	res, err := ok.Analyze(ctx, "Dịch vụ rất tệ", "vi")
	require.NoError(t, err)
	assert.Equal(t, models.MethodExternalModel, res.Method)

	broken := FallbackScorer{
		Primary:  NewExternalModelScorer(&fakeCompleter{err: errors.New("503 Service Unavailable")}, 0),
		Fallback: rules,
	}
	res, err = broken.Analyze(ctx, "Dịch vụ rất tệ, lừa đảo khách hàng", "vi")
	require.NoError(t, err)
	assert.Equal(t, rules.AnalyzeText(ctx, "Dịch vụ rất tệ, lừa đảo khách hàng", "vi"), res)
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "Sân tốt", PlainText("# Sân *tốt*"))
	assert.Equal(t, "xem", PlainText("xem https://example.com/a"))
	assert.Equal(t, "", PlainText(""))
	assert.Equal(t, `Tom & Jerry's <court>`, PlainText(`Tom & Jerry's &lt;court&gt;`))
}

func TestGetPreviewKeepsWholeRunes(t *testing.T) {
	raw := strings.Repeat("ệ", 49) + "ững đánh giá"
	attr := getPreview(raw)

	preview := attr.Value.String()
	assert.True(t, utf8.ValidString(preview))
	assert.Equal(t, 50, utf8.RuneCountInString(preview))
	assert.Equal(t, strings.Repeat("ệ", 49)+"ữ", preview)

	assert.Equal(t, "ngắn", getPreview("ngắn").Value.String())
}
