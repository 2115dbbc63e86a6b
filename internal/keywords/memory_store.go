package keywords

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spacesedan/courtsense/internal/models"
)

// MemoryStore is a KeywordStore held in process memory. It backs offline
// tooling and tests.
type MemoryStore struct {
	mu         sync.Mutex
	nextID     int64
	keywords   map[int64]models.Keyword
	categories []models.Category
}

func NewMemoryStore(categories ...models.Category) *MemoryStore {
	return &MemoryStore{
		nextID:     1,
		keywords:   make(map[int64]models.Keyword),
		categories: categories,
	}
}

// NewSeededMemoryStore returns a store preloaded with DefaultKeywords.
func NewSeededMemoryStore() *MemoryStore {
	s := NewMemoryStore()
	_, _ = s.ReplaceAllKeywords(context.Background(), DefaultKeywords(), "seed")
	return s
}

func (s *MemoryStore) ActiveKeywords(ctx context.Context, language string) ([]models.Keyword, error) {
	active := true
	return s.ListKeywords(ctx, models.KeywordFilter{Language: language, Active: &active})
}

func (s *MemoryStore) ListKeywords(_ context.Context, f models.KeywordFilter) ([]models.Keyword, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Keyword
	for _, kw := range s.keywords {
		if matchesFilter(kw, f) {
			out = append(out, kw)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Polarity != out[j].Polarity {
			return polarityRank(out[i].Polarity) < polarityRank(out[j].Polarity)
		}
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].Text < out[j].Text
	})
	return out, nil
}

func (s *MemoryStore) InsertKeyword(_ context.Context, kw models.Keyword, actorID string) (models.Keyword, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conflicts(kw, 0) {
		return models.Keyword{}, ErrDuplicateKeyword
	}
	now := time.Now().UTC()
	kw.ID = s.nextID
	kw.CreatedBy, kw.UpdatedBy = actorID, actorID
	kw.CreatedAt, kw.UpdatedAt = now, now
	s.keywords[kw.ID] = kw
	s.nextID++
	return kw, nil
}

func (s *MemoryStore) UpdateKeyword(_ context.Context, id int64, p models.KeywordPatch, actorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kw, ok := s.keywords[id]
	if !ok {
		return ErrKeywordNotFound
	}
	if p.Text != nil {
		kw.Text = *p.Text
	}
	if p.Polarity != nil {
		kw.Polarity = *p.Polarity
	}
	if p.Weight != nil {
		kw.Weight = *p.Weight
	}
	if p.CategoryID != nil {
		kw.CategoryID = p.CategoryID
	}
	if p.Active != nil {
		kw.Active = *p.Active
	}
	if s.conflicts(kw, id) {
		return ErrDuplicateKeyword
	}
	kw.UpdatedBy = actorID
	kw.UpdatedAt = time.Now().UTC()
	s.keywords[id] = kw
	return nil
}

func (s *MemoryStore) DeleteKeywords(_ context.Context, ids []int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, id := range ids {
		if _, ok := s.keywords[id]; ok {
			delete(s.keywords, id)
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) SetKeywordsActive(_ context.Context, ids []int64, active bool, actorID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, id := range ids {
		kw, ok := s.keywords[id]
		if !ok {
			continue
		}
		kw.Active = active
		kw.UpdatedBy = actorID
		kw.UpdatedAt = time.Now().UTC()
		s.keywords[id] = kw
		n++
	}
	return n, nil
}

func (s *MemoryStore) ReplaceAllKeywords(_ context.Context, kws []models.Keyword, actorID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.keywords = make(map[int64]models.Keyword, len(kws))
	now := time.Now().UTC()
	for _, kw := range kws {
		if s.conflicts(kw, 0) {
			continue
		}
		kw.ID = s.nextID
		kw.CreatedBy, kw.UpdatedBy = actorID, actorID
		kw.CreatedAt, kw.UpdatedAt = now, now
		s.keywords[kw.ID] = kw
		s.nextID++
	}
	return int64(len(s.keywords)), nil
}

func (s *MemoryStore) ListCategories(context.Context) ([]models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Category(nil), s.categories...), nil
}

// conflicts must be called with mu held.
func (s *MemoryStore) conflicts(kw models.Keyword, selfID int64) bool {
	for id, other := range s.keywords {
		if id != selfID && other.Text == kw.Text && other.Polarity == kw.Polarity && other.Language == kw.Language {
			return true
		}
	}
	return false
}

func matchesFilter(kw models.Keyword, f models.KeywordFilter) bool {
	if f.Language != "" && kw.Language != f.Language {
		return false
	}
	if f.Polarity != "" && kw.Polarity != f.Polarity {
		return false
	}
	if f.Active != nil && kw.Active != *f.Active {
		return false
	}
	if f.CategoryID != nil && (kw.CategoryID == nil || *kw.CategoryID != *f.CategoryID) {
		return false
	}
	if f.Search != "" && !strings.Contains(kw.Text, strings.ToLower(f.Search)) {
		return false
	}
	return true
}

func polarityRank(p models.PolarityClass) int {
	for i, c := range models.PolarityClasses {
		if c == p {
			return i
		}
	}
	return len(models.PolarityClasses)
}
