package cache

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/wordshift/internal/dictionary"
)

// countingSource counts fetches.
type countingSource struct {
	text    string
	fetches int32
}

func (s *countingSource) Name() string { return "counting" }

func (s *countingSource) Fetch(ctx context.Context) (string, error) {
	atomic.AddInt32(&s.fetches, 1)
	return s.text, nil
}

func TestWordSetCache_GetOrLoad(t *testing.T) {
	c := NewWordSetCache(DefaultCacheConfig())
	src := &countingSource{text: "ねこ\nいぬ\n"}

	words, err := c.GetOrLoad(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 2, words.Len())

	again, err := c.GetOrLoad(context.Background(), src)
	require.NoError(t, err)
	assert.Same(t, words, again)
	assert.Equal(t, int32(1), atomic.LoadInt32(&src.fetches))

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.Entries)
	assert.InDelta(t, 0.5, stats.HitRate, 0.001)
}

func TestWordSetCache_ConcurrentLoads(t *testing.T) {
	c := NewWordSetCache(DefaultCacheConfig())
	src := &countingSource{text: "ねこ\n"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			words, err := c.GetOrLoad(context.Background(), src)
			assert.NoError(t, err)
			assert.Equal(t, 1, words.Len())
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, c.Stats().Entries)
}

func TestWordSetCache_LoadError(t *testing.T) {
	c := NewWordSetCache(DefaultCacheConfig())
	src := &dictionary.FileSource{Path: filepath.Join(t.TempDir(), "missing.txt")}

	_, err := c.GetOrLoad(context.Background(), src)
	assert.Error(t, err)
	assert.Equal(t, 0, c.Stats().Entries)
}

func TestWordSetCache_Invalidate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "words.txt")
	require.NoError(t, os.WriteFile(path, []byte("ねこ\n"), 0644))

	c := NewWordSetCache(DefaultCacheConfig())
	src := &dictionary.FileSource{Path: path}

	words, err := c.GetOrLoad(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 1, words.Len())

	require.NoError(t, os.WriteFile(path, []byte("ねこ\nいぬ\n"), 0644))
	assert.True(t, c.Invalidate(path))
	assert.False(t, c.Invalidate(path))

	words, err = c.GetOrLoad(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 2, words.Len())
}

func TestWordSetCache_TTL(t *testing.T) {
	c := NewWordSetCache(CacheConfig{MaxEntries: 4, TTL: time.Minute})
	now := time.Unix(1000, 0)
	c.now = func() time.Time { return now }

	c.Put("a", dictionary.NewWordSet("ねこ"))
	_, ok := c.Get("a")
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Stats().Entries)

	c.Put("b", dictionary.NewWordSet("いぬ"))
	now = now.Add(2 * time.Minute)
	assert.Equal(t, 1, c.CleanExpired())
	assert.Equal(t, 0, c.Stats().Entries)
}

func TestWordSetCache_EvictsOldest(t *testing.T) {
	c := NewWordSetCache(CacheConfig{MaxEntries: 2})
	now := time.Unix(1000, 0)
	c.now = func() time.Time { now = now.Add(time.Second); return now }

	c.Put("a", dictionary.NewWordSet("a"))
	c.Put("b", dictionary.NewWordSet("b"))
	c.Put("c", dictionary.NewWordSet("c"))

	_, okA := c.Get("a")
	_, okB := c.Get("b")
	_, okC := c.Get("c")
	assert.False(t, okA)
	assert.True(t, okB)
	assert.True(t, okC)
	assert.Equal(t, 2, c.Stats().Entries)
	assert.Equal(t, int64(1), c.Stats().Evictions)
}

func TestWordSetCache_Clear(t *testing.T) {
	c := NewWordSetCache(DefaultCacheConfig())
	c.Put("a", dictionary.NewWordSet("a"))
	c.Put("b", dictionary.NewWordSet("b"))
	c.Clear()
	assert.Equal(t, 0, c.Stats().Entries)

	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "/tmp/a.txt", Key(&dictionary.FileSource{Path: "/tmp/a.txt", DisplayName: "a.txt"}))
	assert.Equal(t, "https://example.com/a.txt", Key(&dictionary.HTTPSource{URL: "https://example.com/a.txt"}))
	assert.Equal(t, "counting", Key(&countingSource{}))
}
