package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spacesedan/courtsense/internal/keywords"
	"github.com/spacesedan/courtsense/internal/models"
)

const keywordColumns = `id, keyword, type, weight, language, is_active, category_id, created_by, updated_by, created_at, updated_at`

// polarityOrder sorts rows positive, negative, strong_negative.
const polarityOrder = `CASE type WHEN 'positive' THEN 0 WHEN 'negative' THEN 1 ELSE 2 END`

// KeywordRepository is the PostgreSQL keywords.KeywordStore.
type KeywordRepository struct {
	db Querier
}

func NewKeywordRepository(db Querier) *KeywordRepository {
	return &KeywordRepository{db: db}
}

func (r *KeywordRepository) ActiveKeywords(ctx context.Context, language string) ([]models.Keyword, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+keywordColumns+`
		FROM sentiment_keywords
		WHERE language = $1 AND is_active
		ORDER BY `+polarityOrder+`, weight DESC, keyword`, language)
	if err != nil {
		if IsUndefinedTable(err) {
			slog.Warn("[KeywordRepository] sentiment_keywords does not exist yet")
		}
		return nil, fmt.Errorf("[KeywordRepository] query active keywords: %w", err)
	}
	return collectKeywords(rows)
}

func (r *KeywordRepository) ListKeywords(ctx context.Context, f models.KeywordFilter) ([]models.Keyword, error) {
	where, args := buildKeywordFilter(f)
	rows, err := r.db.Query(ctx, `
		SELECT `+keywordColumns+`
		FROM sentiment_keywords`+where+`
		ORDER BY `+polarityOrder+`, weight DESC, keyword`, args...)
	if err != nil {
		return nil, fmt.Errorf("[KeywordRepository] list keywords: %w", err)
	}
	return collectKeywords(rows)
}

func (r *KeywordRepository) InsertKeyword(ctx context.Context, kw models.Keyword, actorID string) (models.Keyword, error) {
	err := r.db.QueryRow(ctx, `
		INSERT INTO sentiment_keywords (keyword, type, weight, language, is_active, category_id, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING id, created_at, updated_at`,
		kw.Text, string(kw.Polarity), kw.Weight, kw.Language, kw.Active, kw.CategoryID, actorID,
	).Scan(&kw.ID, &kw.CreatedAt, &kw.UpdatedAt)
	if err != nil {
		return models.Keyword{}, mapWriteError(err)
	}
	kw.CreatedBy, kw.UpdatedBy = actorID, actorID
	return kw, nil
}

func (r *KeywordRepository) UpdateKeyword(ctx context.Context, id int64, p models.KeywordPatch, actorID string) error {
	query, args := buildKeywordUpdate(id, p, actorID)
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return mapWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return keywords.ErrKeywordNotFound
	}
	return nil
}

func (r *KeywordRepository) DeleteKeywords(ctx context.Context, ids []int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM sentiment_keywords WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, fmt.Errorf("[KeywordRepository] delete keywords: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *KeywordRepository) SetKeywordsActive(ctx context.Context, ids []int64, active bool, actorID string) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE sentiment_keywords
		SET is_active = $1, updated_by = $2, updated_at = NOW()
		WHERE id = ANY($3)`, active, actorID, ids)
	if err != nil {
		return 0, fmt.Errorf("[KeywordRepository] set active: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ReplaceAllKeywords deletes every keyword and copies kws in, in one
// transaction.
func (r *KeywordRepository) ReplaceAllKeywords(ctx context.Context, kws []models.Keyword, actorID string) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("[KeywordRepository] begin reseed: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Warn("[KeywordRepository] Rollback failed", slog.String("error", err.Error()))
		}
	}()

	if _, err := tx.Exec(ctx, `DELETE FROM sentiment_keywords`); err != nil {
		return 0, fmt.Errorf("[KeywordRepository] clear keywords: %w", err)
	}

	rows := make([][]any, 0, len(kws))
	for _, kw := range kws {
		rows = append(rows, []any{kw.Text, string(kw.Polarity), kw.Weight, kw.Language, kw.Active, kw.CategoryID, actorID, actorID})
	}
	n, err := tx.CopyFrom(ctx,
		pgx.Identifier{"sentiment_keywords"},
		[]string{"keyword", "type", "weight", "language", "is_active", "category_id", "created_by", "updated_by"},
		pgx.CopyFromRows(rows))
	if err != nil {
		return 0, mapWriteError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("[KeywordRepository] commit reseed: %w", err)
	}
	return n, nil
}

func (r *KeywordRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, description, color, is_active
		FROM sentiment_categories
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("[KeywordRepository] list categories: %w", err)
	}
	defer rows.Close()

	var cats []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Color, &c.Active); err != nil {
			return nil, fmt.Errorf("[KeywordRepository] scan category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func collectKeywords(rows pgx.Rows) ([]models.Keyword, error) {
	defer rows.Close()

	var out []models.Keyword
	for rows.Next() {
		var (
			kw       models.Keyword
			polarity string
		)
		if err := rows.Scan(&kw.ID, &kw.Text, &polarity, &kw.Weight, &kw.Language, &kw.Active,
			&kw.CategoryID, &kw.CreatedBy, &kw.UpdatedBy, &kw.CreatedAt, &kw.UpdatedAt); err != nil {
			return nil, fmt.Errorf("[KeywordRepository] scan keyword: %w", err)
		}
		kw.Polarity = models.PolarityClass(polarity)
		out = append(out, kw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("[KeywordRepository] read keywords: %w", err)
	}
	return out, nil
}

func buildKeywordFilter(f models.KeywordFilter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	add := func(clause string, arg any) {
		args = append(args, arg)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if f.Language != "" {
		add("language = $%d", f.Language)
	}
	if f.Polarity != "" {
		add("type = $%d", string(f.Polarity))
	}
	if f.Active != nil {
		add("is_active = $%d", *f.Active)
	}
	if f.CategoryID != nil {
		add("category_id = $%d", *f.CategoryID)
	}
	if f.Search != "" {
		add("keyword ILIKE '%%' || $%d || '%%'", f.Search)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return "\n\t\tWHERE " + strings.Join(clauses, " AND "), args
}

func buildKeywordUpdate(id int64, p models.KeywordPatch, actorID string) (string, []any) {
	var (
		sets []string
		args []any
	)
	set := func(column string, arg any) {
		args = append(args, arg)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if p.Text != nil {
		set("keyword", *p.Text)
	}
	if p.Polarity != nil {
		set("type", string(*p.Polarity))
	}
	if p.Weight != nil {
		set("weight", *p.Weight)
	}
	if p.CategoryID != nil {
		set("category_id", *p.CategoryID)
	}
	if p.Active != nil {
		set("is_active", *p.Active)
	}
	set("updated_by", actorID)
	sets = append(sets, "updated_at = NOW()")

	args = append(args, id)
	query := fmt.Sprintf("UPDATE sentiment_keywords SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	return query, args
}

func mapWriteError(err error) error {
	if pgErrorCode(err) == pgUniqueViolation {
		return keywords.ErrDuplicateKeyword
	}
	return fmt.Errorf("[KeywordRepository] write failed: %w", err)
}
