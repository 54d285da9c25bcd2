// Package cache memoizes favicon resolution in a ristretto cache. Entries
// are keyed by resolved site URL, so "example.com" and
// "https://www.example.com" share one entry.
package cache

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/raysh454/favicond/internal/favicon"
	"github.com/raysh454/favicond/internal/logging"
	"github.com/raysh454/favicond/internal/model"
	"github.com/raysh454/favicond/internal/utils"
)

type Config struct {
	Enabled bool `yaml:"enabled"`

	// TTL bounds how long a found favicon is served without re-resolving.
	TTL time.Duration `yaml:"ttl"`

	// MaxBytes caps the total payload size held in memory.
	MaxBytes int64 `yaml:"max_bytes"`
}

func DefaultConfig() Config {
	return Config{
		Enabled:  true,
		TTL:      time.Hour,
		MaxBytes: 64 << 20,
	}
}

// Observer is told about every lookup.
type Observer interface {
	ObserveCache(hit bool)
}

// entryOverhead is added to each entry's cost so that empty icons still
// count against MaxBytes.
const entryOverhead = 256

// Cache is a favicon.Source that serves repeated lookups from memory and
// delegates misses. Only found favicons are cached.
type Cache struct {
	next     favicon.Source
	store    *ristretto.Cache[string, *model.Favicon]
	ttl      time.Duration
	observer Observer
	logger   logging.Logger

	hits   atomic.Uint64
	misses atomic.Uint64
}

type Option func(*Cache)

func WithObserver(o Observer) Option {
	return func(c *Cache) { c.observer = o }
}

func New(next favicon.Source, cfg Config, logger logging.Logger, opts ...Option) (*Cache, error) {
	if next == nil {
		return nil, fmt.Errorf("cache: next source is nil")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultConfig().MaxBytes
	}

	// NumCounters should be about 10x the expected number of entries.
	counters := maxBytes / 4096 * 10
	if counters < 1000 {
		counters = 1000
	}

	rc, err := ristretto.NewCache(&ristretto.Config[string, *model.Favicon]{
		NumCounters:        counters,
		MaxCost:            maxBytes,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create ristretto cache: %w", err)
	}

	c := &Cache{
		next:   next,
		store:  rc,
		ttl:    cfg.TTL,
		logger: logger.With(logging.Field{Key: "component", Value: "cache"}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Key returns the cache key of identifier, or false when the identifier
// does not resolve to a URL.
func Key(identifier string) (string, bool) {
	u, err := utils.ResolveSiteURL(identifier)
	if err != nil {
		return "", false
	}
	return u.String(), true
}

func (c *Cache) Resolve(ctx context.Context, identifier string) (*model.Favicon, error) {
	key, ok := Key(identifier)
	if !ok {
		return c.next.Resolve(ctx, identifier)
	}

	if fav, found := c.store.Get(key); found {
		c.record(true)
		c.logger.Debug("cache hit", logging.Field{Key: "key", Value: key})
		return clone(fav, identifier), nil
	}
	c.record(false)

	fav, err := c.next.Resolve(ctx, identifier)
	if err != nil {
		return nil, err
	}

	cost := int64(len(fav.Data)) + entryOverhead
	var stored bool
	if c.ttl > 0 {
		stored = c.store.SetWithTTL(key, clone(fav, fav.Site), cost, c.ttl)
	} else {
		stored = c.store.Set(key, clone(fav, fav.Site), cost)
	}
	if !stored {
		c.logger.Debug("cache rejected entry", logging.Field{Key: "key", Value: key})
	}
	return fav, nil
}

func (c *Cache) record(hit bool) {
	if hit {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	if c.observer != nil {
		c.observer.ObserveCache(hit)
	}
}

// Stats returns lookup counters since creation.
func (c *Cache) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

// Wait blocks until pending writes are visible to Get.
func (c *Cache) Wait() { c.store.Wait() }

// Invalidate drops the entry of identifier.
func (c *Cache) Invalidate(identifier string) {
	if key, ok := Key(identifier); ok {
		c.store.Del(key)
	}
}

func (c *Cache) Close() error {
	c.store.Close()
	return nil
}

// clone copies fav so callers cannot mutate cached bytes, and reports the
// caller's identifier as the site.
func clone(fav *model.Favicon, site string) *model.Favicon {
	cp := *fav
	cp.Site = site
	cp.Data = append([]byte(nil), fav.Data...)
	return &cp
}
