package keywords

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/spacesedan/courtsense/internal/models"
)

type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportJSON ExportFormat = "json"
)

var csvHeader = []string{"keyword", "type", "weight", "language", "active", "category_id"}

func (a *Accessor) ListKeywords(ctx context.Context, filter models.KeywordFilter) ([]models.Keyword, error) {
	if a.store == nil {
		return nil, &StoreUnavailableError{Op: "list keywords", Err: errNoStore}
	}
	filter.Language = NormalizeLanguage(filter.Language)
	kws, err := a.store.ListKeywords(ctx, filter)
	if err != nil {
		return nil, writeError("list keywords", err)
	}
	return kws, nil
}

func (a *Accessor) ListCategories(ctx context.Context) ([]models.Category, error) {
	if a.store == nil {
		return nil, &StoreUnavailableError{Op: "list categories", Err: errNoStore}
	}
	cats, err := a.store.ListCategories(ctx)
	if err != nil {
		return nil, writeError("list categories", err)
	}
	return cats, nil
}

// SetActive bulk-activates or deactivates keywords and returns how many rows
// changed.
func (a *Accessor) SetActive(ctx context.Context, ids []int64, active bool, actorID string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	if a.store == nil {
		return 0, &StoreUnavailableError{Op: "set active", Err: errNoStore}
	}

	n, err := a.store.SetKeywordsActive(ctx, ids, active, actorID)
	a.InvalidateAll()
	if err != nil {
		return 0, writeError("set active", err)
	}

	slog.Info("[KeywordAccessor] Bulk active update",
		slog.Bool("active", active),
		slog.Int64("updated", n),
		slog.String("actor", actorID))
	return n, nil
}

func (a *Accessor) BulkDelete(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	if a.store == nil {
		return 0, &StoreUnavailableError{Op: "bulk delete", Err: errNoStore}
	}

	n, err := a.store.DeleteKeywords(ctx, ids)
	a.InvalidateAll()
	if err != nil {
		return 0, writeError("bulk delete", err)
	}

	slog.Info("[KeywordAccessor] Bulk delete", slog.Int64("deleted", n))
	return n, nil
}

// Reseed replaces every stored keyword with DefaultKeywords.
func (a *Accessor) Reseed(ctx context.Context, actorID string) (int64, error) {
	if a.store == nil {
		return 0, &StoreUnavailableError{Op: "reseed", Err: errNoStore}
	}

	n, err := a.store.ReplaceAllKeywords(ctx, DefaultKeywords(), actorID)
	a.InvalidateAll()
	if err != nil {
		slog.Error("[KeywordAccessor] Reseed failed", slog.String("error", err.Error()))
		return 0, writeError("reseed", err)
	}

	slog.Info("[KeywordAccessor] Keywords reseeded",
		slog.Int64("count", n),
		slog.String("actor", actorID))
	return n, nil
}

// Export writes the keywords matching filter to w.
func (a *Accessor) Export(ctx context.Context, w io.Writer, format ExportFormat, filter models.KeywordFilter) (int, error) {
	kws, err := a.ListKeywords(ctx, filter)
	if err != nil {
		return 0, err
	}

	switch format {
	case ExportJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if kws == nil {
			kws = []models.Keyword{}
		}
		if err := enc.Encode(kws); err != nil {
			return 0, fmt.Errorf("[KeywordAccessor] failed to encode keywords: %w", err)
		}
	case ExportCSV, "":
		cw := csv.NewWriter(w)
		if err := cw.Write(csvHeader); err != nil {
			return 0, fmt.Errorf("[KeywordAccessor] failed to write csv header: %w", err)
		}
		for _, kw := range kws {
			if err := cw.Write(keywordRecord(kw)); err != nil {
				return 0, fmt.Errorf("[KeywordAccessor] failed to write csv row: %w", err)
			}
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			return 0, fmt.Errorf("[KeywordAccessor] failed to flush csv: %w", err)
		}
	default:
		return 0, fmt.Errorf("[KeywordAccessor] unsupported export format %q", format)
	}

	return len(kws), nil
}

func keywordRecord(kw models.Keyword) []string {
	category := ""
	if kw.CategoryID != nil {
		category = strconv.FormatInt(*kw.CategoryID, 10)
	}
	return []string{
		kw.Text,
		string(kw.Polarity),
		strconv.FormatFloat(kw.Weight, 'f', -1, 64),
		kw.Language,
		strconv.FormatBool(kw.Active),
		category,
	}
}
