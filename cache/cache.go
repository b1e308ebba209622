// Package cache keeps recently resolved short URL documents in memory so hot
// redirects skip the Redis round trip. Entries are invalidated on delete and
// expire on their own TTL otherwise; usage counters are never served from
// here.
package cache

import (
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/rs/zerolog/log"

	"github.com/HaslienFotografene/haslien-short-2/config"
	"github.com/HaslienFotografene/haslien-short-2/model"
)

// docCost approximates the in-memory size of one document.
const docCost = 1024

// Cache wraps Ristretto with document-shaped accessors.
type Cache struct {
	client *ristretto.Cache
	ttl    time.Duration
}

// New creates a cache sized from configuration.
func New(cfg config.CacheConfig) (*Cache, error) {
	maxCost := int64(cfg.MaxSizeMB) * 1024 * 1024

	client, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: int64(cfg.CounterSize),
		MaxCost:     maxCost,
		BufferItems: 64,
		Metrics:     true,
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("max_size_mb", cfg.MaxSizeMB).
		Int("ttl_seconds", cfg.TTLSeconds).
		Msg("Document cache initialized")

	return &Cache{
		client: client,
		ttl:    time.Duration(cfg.TTLSeconds) * time.Second,
	}, nil
}

// GetDoc returns the cached document for a path, if present.
func (c *Cache) GetDoc(path string) (*model.ShortURL, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	value, found := c.client.Get(path)
	if !found {
		return nil, false
	}
	doc, ok := value.(model.ShortURL)
	if !ok {
		return nil, false
	}
	return &doc, true
}

// SetDoc stores a document under its path for the configured TTL.
func (c *Cache) SetDoc(path string, doc model.ShortURL) {
	if c == nil || c.client == nil {
		return
	}
	c.client.SetWithTTL(path, doc, docCost, c.ttl)
}

// Invalidate drops a path from the cache.
func (c *Cache) Invalidate(path string) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Del(path)
}

// Close cleanly shuts the cache down.
func (c *Cache) Close() {
	if c != nil && c.client != nil {
		c.client.Close()
	}
}

// MetricsSnapshot is a point-in-time view of cache performance.
type MetricsSnapshot struct {
	Hits        uint64  `json:"hits"`
	Misses      uint64  `json:"misses"`
	KeysAdded   uint64  `json:"keysAdded"`
	KeysEvicted uint64  `json:"keysEvicted"`
	HitRatio    float64 `json:"hitRatio"`
	TTLSeconds  int     `json:"ttlSeconds"`
}

// Snapshot returns current cache metrics.
func (c *Cache) Snapshot() MetricsSnapshot {
	if c == nil {
		return MetricsSnapshot{}
	}
	if c.client == nil || c.client.Metrics == nil {
		return MetricsSnapshot{TTLSeconds: int(c.ttl.Seconds())}
	}

	m := c.client.Metrics
	hits, misses := m.Hits(), m.Misses()

	ratio := 0.0
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}

	return MetricsSnapshot{
		Hits:        hits,
		Misses:      misses,
		KeysAdded:   m.KeysAdded(),
		KeysEvicted: m.KeysEvicted(),
		HitRatio:    ratio,
		TTLSeconds:  int(c.ttl.Seconds()),
	}
}
