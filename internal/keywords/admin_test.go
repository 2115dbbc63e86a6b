package keywords

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/courtsense/internal/models"
)

func TestListKeywords_Filters(t *testing.T) {
	a, store, _ := newTestAccessor(t)
	mustAdd(store.MemoryStore, "tốt", models.PolarityPositive, 1.0, "vi")
	mustAdd(store.MemoryStore, "tệ", models.PolarityNegative, 1.0, "vi")
	off := mustAdd(store.MemoryStore, "chán", models.PolarityNegative, 0.8, "vi")
	mustAdd(store.MemoryStore, "bad", models.PolarityNegative, 1.0, "en")
	ctx := context.Background()
	_, err := a.SetActive(ctx, []int64{off.ID}, false, "admin")
	require.NoError(t, err)

	all, err := a.ListKeywords(ctx, models.KeywordFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	neg, err := a.ListKeywords(ctx, models.KeywordFilter{Language: "VI", Polarity: models.PolarityNegative})
	require.NoError(t, err)
	assert.Len(t, neg, 2)

	active := false
	inactive, err := a.ListKeywords(ctx, models.KeywordFilter{Active: &active})
	require.NoError(t, err)
	require.Len(t, inactive, 1)
	assert.Equal(t, "chán", inactive[0].Text)

	found, err := a.ListKeywords(ctx, models.KeywordFilter{Search: "TỐ"})
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestSetActive_RemovesFromLexicon(t *testing.T) {
	a, store, _ := newTestAccessor(t)
	kw := mustAdd(store.MemoryStore, "tốt", models.PolarityPositive, 1.0, "vi")
	mustAdd(store.MemoryStore, "hay", models.PolarityPositive, 1.0, "vi")
	ctx := context.Background()

	require.Len(t, a.GetKeywords(ctx, "vi", false).Positive, 2)

	n, err := a.SetActive(ctx, []int64{kw.ID, 404}, false, "admin")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	snap := a.GetKeywords(ctx, "vi", false)
	require.Len(t, snap.Positive, 1)
	assert.Equal(t, "hay", snap.Positive[0].Text)

	n, err = a.SetActive(ctx, nil, true, "admin")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBulkDelete(t *testing.T) {
	a, store, _ := newTestAccessor(t)
	k1 := mustAdd(store.MemoryStore, "tốt", models.PolarityPositive, 1.0, "vi")
	k2 := mustAdd(store.MemoryStore, "hay", models.PolarityPositive, 1.0, "vi")
	mustAdd(store.MemoryStore, "đẹp", models.PolarityPositive, 1.1, "vi")
	ctx := context.Background()

	n, err := a.BulkDelete(ctx, []int64{k1.ID, k2.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	snap := a.GetKeywords(ctx, "vi", false)
	require.Len(t, snap.Positive, 1)
	assert.Equal(t, "đẹp", snap.Positive[0].Text)
}

func TestReseed(t *testing.T) {
	a, store, _ := newTestAccessor(t)
	mustAdd(store.MemoryStore, "custom", models.PolarityPositive, 1.0, "vi")
	ctx := context.Background()
	a.GetKeywords(ctx, "vi", false)

	n, err := a.Reseed(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, int64(len(DefaultKeywords())), n)

	snap := a.GetKeywords(ctx, "vi", false)
	assert.Equal(t, models.LexiconFromStore, snap.Source)
	assert.Equal(t, len(DefaultKeywords()), snap.Size())
	for _, kw := range snap.Positive {
		assert.NotEqual(t, "custom", kw.Text)
	}
}

func TestExport_CSV(t *testing.T) {
	a, store, _ := newTestAccessor(t)
	kw := mustAdd(store.MemoryStore, "tốt", models.PolarityPositive, 1.0, "vi")
	cat := int64(3)
	require.NoError(t, store.UpdateKeyword(context.Background(), kw.ID, models.KeywordPatch{CategoryID: &cat}, "admin"))
	mustAdd(store.MemoryStore, "thất vọng", models.PolarityNegative, 1.3, "vi")

	var buf bytes.Buffer
	n, err := a.Export(context.Background(), &buf, ExportCSV, models.KeywordFilter{Language: "vi"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, []string{"tốt", "positive", "1", "vi", "true", "3"}, records[1])
	assert.Equal(t, []string{"thất vọng", "negative", "1.3", "vi", "true", ""}, records[2])
}

func TestExport_JSON(t *testing.T) {
	a, store, _ := newTestAccessor(t)
	mustAdd(store.MemoryStore, "tốt", models.PolarityPositive, 1.0, "vi")

	var buf bytes.Buffer
	_, err := a.Export(context.Background(), &buf, ExportJSON, models.KeywordFilter{})
	require.NoError(t, err)

	var out []models.Keyword
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "tốt", out[0].Text)
}

func TestExport_UnknownFormat(t *testing.T) {
	a, _, _ := newTestAccessor(t)
	_, err := a.Export(context.Background(), &bytes.Buffer{}, "xml", models.KeywordFilter{})
	assert.ErrorContains(t, err, "unsupported export format")
}

func TestListCategories(t *testing.T) {
	store := NewMemoryStore(models.Category{ID: 1, Name: "Dịch vụ", Color: "#16a34a", Active: true})
	a := NewAccessor(store)

	cats, err := a.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "Dịch vụ", cats[0].Name)
}
