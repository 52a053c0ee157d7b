package archive

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"mateometeo/internal/modules/weather/types"
)

// Cache wraps a Source and keeps every loaded month in memory. Concurrent
// loads of the same month share one fetch. Failed loads are not cached.
//
// Returned slices are shared between callers and must not be modified.
type Cache struct {
	source Source
	group  singleflight.Group

	mu    sync.RWMutex
	files map[Month][]types.Sample

	hits   atomic.Int64
	misses atomic.Int64
}

type CacheStats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Entries int   `json:"entries"`
}

func NewCache(source Source) *Cache {
	return &Cache{
		source: source,
		files:  make(map[Month][]types.Sample),
	}
}

func (c *Cache) Name() string {
	return c.source.Name() + " [cached]"
}

// Months is not cached; the manifest is small and may change while running.
func (c *Cache) Months(ctx context.Context) ([]Month, error) {
	return c.source.Months(ctx)
}

func (c *Cache) Load(ctx context.Context, m Month) ([]types.Sample, error) {
	c.mu.RLock()
	samples, ok := c.files[m]
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
		slog.Debug("archive cache hit", "month", m.String())
		return samples, nil
	}

	c.misses.Add(1)
	v, err, shared := c.group.Do(m.String(), func() (any, error) {
		// the fetch outlives any single caller that gave up waiting
		samples, err := c.source.Load(context.WithoutCancel(ctx), m)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.files[m] = samples
		c.mu.Unlock()
		return samples, nil
	})
	if err != nil {
		return nil, err
	}
	samples = v.([]types.Sample)
	slog.Debug("archive cache miss", "month", m.String(), "samples", len(samples), "shared", shared)
	return samples, nil
}

func (c *Cache) Invalidate(m Month) {
	c.mu.Lock()
	delete(c.files, m)
	c.mu.Unlock()
}

func (c *Cache) Clear() {
	c.mu.Lock()
	clear(c.files)
	c.mu.Unlock()
}

func (c *Cache) Stats() CacheStats {
	c.mu.RLock()
	entries := len(c.files)
	c.mu.RUnlock()
	return CacheStats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Entries: entries,
	}
}

var _ Source = (*Cache)(nil)
