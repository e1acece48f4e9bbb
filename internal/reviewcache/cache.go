// Package reviewcache holds the single-slot cache of approved reviews for
// the public pages. The slot is keyed by language and time-boxed; on a
// fetch failure a stale slot is served rather than an empty page.
package reviewcache

import (
	"context"
	"sync"
	"time"

	"github.com/barsamweb/reviews/internal/models"
	"github.com/barsamweb/reviews/internal/monitoring"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Fetch loads approved reviews for one language from the store
type Fetch func(ctx context.Context, language models.Language) ([]models.Review, error)

type slot struct {
	data      []models.Review
	timestamp time.Time
	language  models.Language
}

// Cache is a single-slot, language-scoped, time-boxed cache. Concurrent
// callers for the same language join one in-flight fetch instead of racing.
type Cache struct {
	mu    sync.Mutex
	slot  slot
	ttl   time.Duration
	fetch Fetch
	group singleflight.Group

	now func() time.Time
}

// New creates a cache around the given fetch function
func New(ttl time.Duration, fetch Fetch) *Cache {
	return &Cache{
		ttl:   ttl,
		fetch: fetch,
		now:   time.Now,
	}
}

// Get returns approved reviews for a language. A valid slot is served
// without touching the store; otherwise one fetch runs per language and
// every concurrent caller shares its result. When the fetch fails and a
// non-empty slot exists (any language), the stale data is returned as a
// degraded fallback.
func (c *Cache) Get(ctx context.Context, language models.Language) ([]models.Review, error) {
	c.mu.Lock()
	if c.valid(language) {
		data := c.slot.data
		c.mu.Unlock()
		monitoring.RecordCacheHit(string(language))
		return data, nil
	}
	c.mu.Unlock()
	monitoring.RecordCacheMiss(string(language))

	v, err, _ := c.group.Do(string(language), func() (any, error) {
		// A fetch that completed while this caller waited fills the slot
		c.mu.Lock()
		if c.valid(language) {
			data := c.slot.data
			c.mu.Unlock()
			return data, nil
		}
		c.mu.Unlock()

		reviews, err := c.fetch(ctx, language)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.slot = slot{data: reviews, timestamp: c.now(), language: language}
		c.mu.Unlock()
		return reviews, nil
	})
	if err != nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		if len(c.slot.data) > 0 {
			log.Warn().
				Err(err).
				Str("language", string(language)).
				Str("cached_language", string(c.slot.language)).
				Msg("Serving stale review cache after fetch failure")
			return c.slot.data, nil
		}
		return nil, err
	}
	return v.([]models.Review), nil
}

// Invalidate drops the slot so the next Get hits the store
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.slot = slot{}
	c.mu.Unlock()
}

// valid reports whether the slot serves the requested language. Callers
// hold c.mu.
func (c *Cache) valid(language models.Language) bool {
	if len(c.slot.data) == 0 || c.slot.language != language {
		return false
	}
	return c.now().Sub(c.slot.timestamp) < c.ttl
}
