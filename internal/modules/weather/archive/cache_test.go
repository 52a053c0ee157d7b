package archive

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"mateometeo/internal/modules/weather/types"
)

type countingSource struct {
	loads atomic.Int32
	fail  atomic.Bool
}

func (c *countingSource) Name() string { return "counting" }

func (c *countingSource) Months(context.Context) ([]Month, error) {
	return []Month{{2025, time.July}}, nil
}

func (c *countingSource) Load(_ context.Context, m Month) ([]types.Sample, error) {
	c.loads.Add(1)
	if c.fail.Load() {
		return nil, errors.New("unavailable")
	}
	return []types.Sample{{Timestamp: m.FirstDay().UnixMilli()}}, nil
}

func TestCache_Load(t *testing.T) {
	src := &countingSource{}
	c := NewCache(src)
	ctx := context.Background()
	jul := Month{2025, time.July}

	for range 3 {
		samples, err := c.Load(ctx, jul)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if len(samples) != 1 {
			t.Fatalf("len(samples) = %d; want 1", len(samples))
		}
	}
	if got := src.loads.Load(); got != 1 {
		t.Errorf("source loads = %d; want 1", got)
	}
	stats := c.Stats()
	if stats.Hits != 2 || stats.Misses != 1 || stats.Entries != 1 {
		t.Errorf("Stats() = %+v; want 2 hits, 1 miss, 1 entry", stats)
	}

	c.Invalidate(jul)
	if _, err := c.Load(ctx, jul); err != nil {
		t.Fatalf("Load after Invalidate: %v", err)
	}
	if got := src.loads.Load(); got != 2 {
		t.Errorf("source loads after Invalidate = %d; want 2", got)
	}

	c.Clear()
	if got := c.Stats().Entries; got != 0 {
		t.Errorf("Entries after Clear = %d; want 0", got)
	}
}

func TestCache_ErrorsAreNotCached(t *testing.T) {
	src := &countingSource{}
	src.fail.Store(true)
	c := NewCache(src)
	jul := Month{2025, time.July}

	if _, err := c.Load(context.Background(), jul); err == nil {
		t.Fatal("Load err = nil; want error")
	}
	src.fail.Store(false)
	if _, err := c.Load(context.Background(), jul); err != nil {
		t.Fatalf("Load after recovery: %v", err)
	}
	if got := c.Stats().Entries; got != 1 {
		t.Errorf("Entries = %d; want 1", got)
	}
}

func TestCache_ConcurrentLoads(t *testing.T) {
	src := &countingSource{}
	c := NewCache(src)
	jul := Month{2025, time.July}

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Load(context.Background(), jul); err != nil {
				t.Errorf("Load: %v", err)
			}
		}()
	}
	wg.Wait()

	stats := c.Stats()
	if stats.Hits+stats.Misses != 16 {
		t.Errorf("hits+misses = %d; want 16", stats.Hits+stats.Misses)
	}
	if got := int64(src.loads.Load()); got > stats.Misses {
		t.Errorf("source loads = %d; want <= misses (%d)", got, stats.Misses)
	}
}

func TestCache_Name(t *testing.T) {
	if got := NewCache(&countingSource{}).Name(); got != "counting [cached]" {
		t.Errorf("Name() = %q; want %q", got, "counting [cached]")
	}
}
