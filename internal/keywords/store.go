package keywords

import (
	"context"

	"github.com/spacesedan/courtsense/internal/models"
)

// KeywordStore is the persistent home of the lexicon.
//
// ActiveKeywords returns the active rows of one language ordered by
// descending weight then text. Mutations report ErrKeywordNotFound and
// ErrDuplicateKeyword; any other error means the store could not be used.
type KeywordStore interface {
	ActiveKeywords(ctx context.Context, language string) ([]models.Keyword, error)
	ListKeywords(ctx context.Context, filter models.KeywordFilter) ([]models.Keyword, error)
	InsertKeyword(ctx context.Context, kw models.Keyword, actorID string) (models.Keyword, error)
	UpdateKeyword(ctx context.Context, id int64, patch models.KeywordPatch, actorID string) error
	DeleteKeywords(ctx context.Context, ids []int64) (int64, error)
	SetKeywordsActive(ctx context.Context, ids []int64, active bool, actorID string) (int64, error)
	ReplaceAllKeywords(ctx context.Context, kws []models.Keyword, actorID string) (int64, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
}
