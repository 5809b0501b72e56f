// Package cache keeps parsed dictionaries in memory between searches.
package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/standardbeagle/wordshift/internal/debug"
	"github.com/standardbeagle/wordshift/internal/dictionary"
)

// Cache configuration constants
const (
	DefaultMaxEntries = 16
	DefaultTTL        = 30 * time.Minute
)

// CacheConfig defines configuration options
type CacheConfig struct {
	MaxEntries int
	TTL        time.Duration // zero keeps entries until evicted or invalidated
}

// DefaultCacheConfig returns default configuration
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		MaxEntries: DefaultMaxEntries,
		TTL:        DefaultTTL,
	}
}

type cachedWordSet struct {
	words       *dictionary.WordSet
	cachedAt    int64 // Unix nano
	accessCount int64
}

// WordSetCache maps a dictionary reference (file path or URL) to its parsed
// word set. Concurrent loads of the same reference share one fetch.
type WordSetCache struct {
	entries sync.Map // map[string]*cachedWordSet
	loads   singleflight.Group

	maxEntries int
	ttlNanos   int64

	hits      int64
	misses    int64
	evictions int64
	count     int64

	now func() time.Time
}

// NewWordSetCache creates a cache.
func NewWordSetCache(config CacheConfig) *WordSetCache {
	if config.MaxEntries <= 0 {
		config.MaxEntries = DefaultMaxEntries
	}
	return &WordSetCache{
		maxEntries: config.MaxEntries,
		ttlNanos:   config.TTL.Nanoseconds(),
		now:        time.Now,
	}
}

// Key returns the cache key for a source.
func Key(src dictionary.Source) string {
	switch s := src.(type) {
	case *dictionary.FileSource:
		return s.Path
	case *dictionary.HTTPSource:
		return s.URL
	default:
		return src.Name()
	}
}

// Get returns a cached, unexpired word set.
func (c *WordSetCache) Get(key string) (*dictionary.WordSet, bool) {
	if val, ok := c.entries.Load(key); ok {
		cached := val.(*cachedWordSet)
		if !c.expired(cached) {
			atomic.AddInt64(&cached.accessCount, 1)
			atomic.AddInt64(&c.hits, 1)
			return cached.words, true
		}
		// Expired - delete lazily
		if c.entries.CompareAndDelete(key, val) {
			atomic.AddInt64(&c.count, -1)
			atomic.AddInt64(&c.evictions, 1)
		}
	}
	atomic.AddInt64(&c.misses, 1)
	return nil, false
}

// Put stores a word set, evicting the oldest entry when the cache is full.
func (c *WordSetCache) Put(key string, words *dictionary.WordSet) {
	entry := &cachedWordSet{words: words, cachedAt: c.now().UnixNano()}
	if _, loaded := c.entries.Swap(key, entry); !loaded {
		if atomic.AddInt64(&c.count, 1) > int64(c.maxEntries) {
			c.evictOldest(key)
		}
	}
}

// GetOrLoad returns the cached word set for src or loads and caches it.
func (c *WordSetCache) GetOrLoad(ctx context.Context, src dictionary.Source) (*dictionary.WordSet, error) {
	key := Key(src)
	if words, ok := c.Get(key); ok {
		return words, nil
	}

	v, err, _ := c.loads.Do(key, func() (interface{}, error) {
		words, err := dictionary.Load(ctx, src)
		if err != nil {
			return nil, err
		}
		c.Put(key, words)
		return words, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*dictionary.WordSet), nil
}

// Invalidate drops the entry for key. It reports whether one was present.
func (c *WordSetCache) Invalidate(key string) bool {
	if _, ok := c.entries.LoadAndDelete(key); ok {
		atomic.AddInt64(&c.count, -1)
		debug.LogDictionary("cache invalidated %s\n", key)
		return true
	}
	return false
}

// Clear removes all entries and keeps statistics.
func (c *WordSetCache) Clear() {
	c.entries.Range(func(key, _ interface{}) bool {
		if _, ok := c.entries.LoadAndDelete(key); ok {
			atomic.AddInt64(&c.count, -1)
		}
		return true
	})
}

// CleanExpired removes expired entries and returns how many were removed.
func (c *WordSetCache) CleanExpired() int {
	cleaned := 0
	c.entries.Range(func(key, value interface{}) bool {
		if c.expired(value.(*cachedWordSet)) && c.entries.CompareAndDelete(key, value) {
			atomic.AddInt64(&c.count, -1)
			cleaned++
		}
		return true
	})
	atomic.AddInt64(&c.evictions, int64(cleaned))
	return cleaned
}

func (c *WordSetCache) expired(cached *cachedWordSet) bool {
	if c.ttlNanos <= 0 {
		return false
	}
	return c.now().UnixNano()-cached.cachedAt > c.ttlNanos
}

// evictOldest removes the least recently stored entry other than keep.
func (c *WordSetCache) evictOldest(keep string) {
	var oldestKey interface{}
	var oldestVal interface{}
	oldestTime := int64(-1)

	c.entries.Range(func(key, value interface{}) bool {
		if key == keep {
			return true
		}
		cached := value.(*cachedWordSet)
		if oldestTime < 0 || cached.cachedAt < oldestTime {
			oldestKey, oldestVal, oldestTime = key, value, cached.cachedAt
		}
		return true
	})

	if oldestKey != nil && c.entries.CompareAndDelete(oldestKey, oldestVal) {
		atomic.AddInt64(&c.count, -1)
		atomic.AddInt64(&c.evictions, 1)
	}
}

// CacheStats holds cache statistics
type CacheStats struct {
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Evictions int64   `json:"evictions"`
	Entries   int     `json:"entries"`
	HitRate   float64 `json:"hit_rate"`
}

// Stats returns cache statistics
func (c *WordSetCache) Stats() CacheStats {
	hits := atomic.LoadInt64(&c.hits)
	misses := atomic.LoadInt64(&c.misses)

	hitRate := float64(0)
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return CacheStats{
		Hits:      hits,
		Misses:    misses,
		Evictions: atomic.LoadInt64(&c.evictions),
		Entries:   int(atomic.LoadInt64(&c.count)),
		HitRate:   hitRate,
	}
}
