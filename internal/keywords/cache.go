package keywords

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/spacesedan/courtsense/internal/models"
)

const DefaultCacheTTL = 5 * time.Minute

// LexiconCache holds one snapshot per language. Entries are swapped whole so
// readers never see a half-built snapshot. Stale entries are kept until
// replaced or invalidated so they can serve as a fallback.
type LexiconCache struct {
	mu      sync.RWMutex
	entries map[string]*models.LexiconSnapshot
	ttl     time.Duration
	clock   clockwork.Clock
}

func NewLexiconCache(ttl time.Duration, clock clockwork.Clock) *LexiconCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &LexiconCache{
		entries: make(map[string]*models.LexiconSnapshot),
		ttl:     ttl,
		clock:   clock,
	}
}

// Get returns the cached snapshot for language and whether it is still
// within the TTL. A nil snapshot means nothing is cached.
func (c *LexiconCache) Get(language string) (*models.LexiconSnapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap, ok := c.entries[language]
	if !ok {
		return nil, false
	}
	return snap, c.clock.Since(snap.LoadedAt) <= c.ttl
}

func (c *LexiconCache) Set(language string, snap *models.LexiconSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[language] = snap
}

func (c *LexiconCache) Invalidate(language string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, language)
}

func (c *LexiconCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*models.LexiconSnapshot)
}

func (c *LexiconCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *LexiconCache) Now() time.Time {
	return c.clock.Now()
}
