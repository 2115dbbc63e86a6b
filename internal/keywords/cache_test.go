package keywords

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"

	"github.com/spacesedan/courtsense/internal/models"
)

func TestLexiconCache_Miss(t *testing.T) {
	cache := NewLexiconCache(time.Minute, clockwork.NewFakeClock())

	snap, fresh := cache.Get("vi")
	assert.Nil(t, snap)
	assert.False(t, fresh)
}

func TestLexiconCache_StaleEntryIsKept(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cache := NewLexiconCache(time.Minute, clock)
	snap := &models.LexiconSnapshot{Language: "vi", LoadedAt: clock.Now()}
	cache.Set("vi", snap)

	got, fresh := cache.Get("vi")
	assert.Same(t, snap, got)
	assert.True(t, fresh)

	clock.Advance(time.Minute)
	_, fresh = cache.Get("vi")
	assert.True(t, fresh, "exactly at the TTL is still fresh")

	clock.Advance(time.Second)
	got, fresh = cache.Get("vi")
	assert.Same(t, snap, got)
	assert.False(t, fresh)
}

func TestLexiconCache_InvalidateAndClear(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cache := NewLexiconCache(time.Minute, clock)
	cache.Set("vi", &models.LexiconSnapshot{LoadedAt: clock.Now()})
	cache.Set("en", &models.LexiconSnapshot{LoadedAt: clock.Now()})

	cache.Invalidate("vi")
	snap, _ := cache.Get("vi")
	assert.Nil(t, snap)
	assert.Equal(t, 1, cache.Size())

	cache.Clear()
	assert.Equal(t, 0, cache.Size())
}

func TestLexiconCache_DefaultsTTL(t *testing.T) {
	cache := NewLexiconCache(0, nil)
	assert.Equal(t, DefaultCacheTTL, cache.ttl)
}
