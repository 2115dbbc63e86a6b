package keywords

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/spacesedan/courtsense/internal/models"
)

var errStoreDown = errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")

// flakyStore counts reads and can be switched into a failing or panicking mode.
type flakyStore struct {
	*MemoryStore
	reads      atomic.Int64
	failReads  atomic.Bool
	failWrites atomic.Bool
	panicReads atomic.Bool
}

func newFlakyStore() *flakyStore {
	return &flakyStore{MemoryStore: NewMemoryStore()}
}

func (s *flakyStore) ActiveKeywords(ctx context.Context, language string) ([]models.Keyword, error) {
	s.reads.Add(1)
	if s.panicReads.Load() {
		panic("driver exploded")
	}
	if s.failReads.Load() {
		return nil, errStoreDown
	}
	return s.MemoryStore.ActiveKeywords(ctx, language)
}

func (s *flakyStore) InsertKeyword(ctx context.Context, kw models.Keyword, actorID string) (models.Keyword, error) {
	if s.failWrites.Load() {
		return models.Keyword{}, errStoreDown
	}
	return s.MemoryStore.InsertKeyword(ctx, kw, actorID)
}

func (s *flakyStore) UpdateKeyword(ctx context.Context, id int64, p models.KeywordPatch, actorID string) error {
	if s.failWrites.Load() {
		return errStoreDown
	}
	return s.MemoryStore.UpdateKeyword(ctx, id, p, actorID)
}

func weight(w float64) *float64 { return &w }

func text(s string) *string { return &s }

func mustAdd(s *MemoryStore, text string, p models.PolarityClass, w float64, lang string) models.Keyword {
	kw, err := s.InsertKeyword(context.Background(), models.Keyword{
		Text: text, Polarity: p, Weight: w, Language: lang, Active: true,
	}, "test")
	if err != nil {
		panic(err)
	}
	return kw
}
