package keywords

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/spacesedan/courtsense/internal/models"
)

const DefaultLanguage = "vi"

// Accessor serves lexicon snapshots out of a TTL cache in front of a
// KeywordStore and keeps keyword mutations consistent with that cache.
type Accessor struct {
	store KeywordStore
	cache *LexiconCache
}

type Option func(*accessorOptions)

type accessorOptions struct {
	ttl   time.Duration
	clock clockwork.Clock
}

func WithCacheTTL(ttl time.Duration) Option {
	return func(o *accessorOptions) { o.ttl = ttl }
}

func WithClock(clock clockwork.Clock) Option {
	return func(o *accessorOptions) { o.clock = clock }
}

func NewAccessor(store KeywordStore, opts ...Option) *Accessor {
	o := accessorOptions{ttl: DefaultCacheTTL, clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Accessor{
		store: store,
		cache: NewLexiconCache(o.ttl, o.clock),
	}
}

// GetKeywords returns the lexicon for language. It never fails: when the
// store cannot be read it serves the last cached snapshot for that language,
// or the hardcoded fallback lexicon when nothing was ever cached. An empty
// store also yields the fallback lexicon.
func (a *Accessor) GetKeywords(ctx context.Context, language string, forceRefresh bool) (snap *models.LexiconSnapshot) {
	language = NormalizeLanguage(language)
	if language == "" {
		language = DefaultLanguage
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("[KeywordAccessor] Recovered from panic while loading keywords",
				slog.String("language", language),
				slog.Any("panic", r))
			snap = a.degrade(language, &StoreUnavailableError{Op: "load", Err: fmt.Errorf("panic: %v", r)})
		}
	}()

	if !forceRefresh {
		if cached, fresh := a.cache.Get(language); cached != nil && fresh {
			return cached
		}
	}

	if a.store == nil {
		return a.degrade(language, &StoreUnavailableError{Op: "load", Err: errNoStore})
	}

	rows, err := a.store.ActiveKeywords(ctx, language)
	if err != nil {
		return a.degrade(language, &StoreUnavailableError{Op: "load", Err: err})
	}

	if len(rows) == 0 {
		slog.Warn("[KeywordAccessor] No active keywords in store, using fallback lexicon",
			slog.String("language", language))
		return FallbackLexicon()
	}

	snap = buildSnapshot(language, rows, a.cache.Now())
	a.cache.Set(language, snap)

	slog.Debug("[KeywordAccessor] Loaded keywords from store",
		slog.String("language", language),
		slog.Int("positive", len(snap.Positive)),
		slog.Int("negative", len(snap.Negative)),
		slog.Int("strong_negative", len(snap.StrongNegative)))

	return snap
}

func (a *Accessor) degrade(language string, cause error) *models.LexiconSnapshot {
	if cached, _ := a.cache.Get(language); cached != nil {
		slog.Warn("[KeywordAccessor] Keyword store unavailable, serving cached lexicon",
			slog.String("language", language),
			slog.Time("loaded_at", cached.LoadedAt),
			slog.String("error", cause.Error()))
		return cached
	}

	slog.Warn("[KeywordAccessor] Keyword store unavailable, using fallback lexicon",
		slog.String("language", language),
		slog.String("error", cause.Error()))
	return FallbackLexicon()
}

// Invalidate drops the cached snapshot of one language.
func (a *Accessor) Invalidate(language string) {
	a.cache.Invalidate(NormalizeLanguage(language))
}

// InvalidateAll drops every cached snapshot.
func (a *Accessor) InvalidateAll() {
	a.cache.Clear()
}

// AddKeyword validates and stores a new keyword, then drops the cache of its
// language.
func (a *Accessor) AddKeyword(ctx context.Context, in models.KeywordInput, actorID string) (models.Keyword, error) {
	in, err := ValidateInput(in)
	if err != nil {
		return models.Keyword{}, err
	}

	kw := models.Keyword{
		Text:       in.Text,
		Polarity:   in.Polarity,
		Weight:     DefaultWeight,
		Language:   in.Language,
		Active:     true,
		CategoryID: in.CategoryID,
	}
	if in.Weight != nil {
		kw.Weight = *in.Weight
	}
	if in.Active != nil {
		kw.Active = *in.Active
	}

	if a.store == nil {
		return models.Keyword{}, &StoreUnavailableError{Op: "add keyword", Err: errNoStore}
	}
	stored, err := a.store.InsertKeyword(ctx, kw, actorID)
	a.Invalidate(kw.Language)
	if err != nil {
		slog.Error("[KeywordAccessor] Failed to add keyword",
			slog.String("keyword", kw.Text),
			slog.String("error", err.Error()))
		return models.Keyword{}, writeError("add keyword", err)
	}

	slog.Info("[KeywordAccessor] Keyword added",
		slog.Int64("id", stored.ID),
		slog.String("keyword", stored.Text),
		slog.String("type", string(stored.Polarity)),
		slog.String("actor", actorID))
	return stored, nil
}

// UpdateKeyword applies a partial update. The language of the existing row
// is not known here, so every cached language is dropped.
func (a *Accessor) UpdateKeyword(ctx context.Context, id int64, patch models.KeywordPatch, actorID string) error {
	patch, err := ValidatePatch(patch)
	if err != nil {
		return err
	}

	if a.store == nil {
		return &StoreUnavailableError{Op: "update keyword", Err: errNoStore}
	}
	err = a.store.UpdateKeyword(ctx, id, patch, actorID)
	a.InvalidateAll()
	if err != nil {
		slog.Error("[KeywordAccessor] Failed to update keyword",
			slog.Int64("id", id),
			slog.String("error", err.Error()))
		return writeError("update keyword", err)
	}

	slog.Info("[KeywordAccessor] Keyword updated", slog.Int64("id", id), slog.String("actor", actorID))
	return nil
}

// DeleteKeyword removes one keyword and drops every cached language.
func (a *Accessor) DeleteKeyword(ctx context.Context, id int64) error {
	if a.store == nil {
		return &StoreUnavailableError{Op: "delete keyword", Err: errNoStore}
	}
	n, err := a.store.DeleteKeywords(ctx, []int64{id})
	a.InvalidateAll()
	if err != nil {
		slog.Error("[KeywordAccessor] Failed to delete keyword",
			slog.Int64("id", id),
			slog.String("error", err.Error()))
		return writeError("delete keyword", err)
	}
	if n == 0 {
		return writeError("delete keyword", ErrKeywordNotFound)
	}

	slog.Info("[KeywordAccessor] Keyword deleted", slog.Int64("id", id))
	return nil
}

// buildSnapshot groups store rows by class. Inactive rows and unknown
// classes are skipped.
func buildSnapshot(language string, rows []models.Keyword, now time.Time) *models.LexiconSnapshot {
	snap := &models.LexiconSnapshot{
		Language: language,
		Source:   models.LexiconFromStore,
		LoadedAt: now,
	}
	for _, kw := range rows {
		if !kw.Active {
			continue
		}
		switch kw.Polarity {
		case models.PolarityPositive:
			snap.Positive = append(snap.Positive, kw)
		case models.PolarityNegative:
			snap.Negative = append(snap.Negative, kw)
		case models.PolarityStrongNegative:
			snap.StrongNegative = append(snap.StrongNegative, kw)
		default:
			slog.Warn("[KeywordAccessor] Skipping keyword with unknown type",
				slog.Int64("id", kw.ID),
				slog.String("type", string(kw.Polarity)))
		}
	}
	sortByWeight(snap.Positive)
	sortByWeight(snap.Negative)
	sortByWeight(snap.StrongNegative)
	return snap
}
