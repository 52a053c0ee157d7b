package archive

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLoader_LoadRange(t *testing.T) {
	loader := NewLoader(NewFSSource(testArchive(t), "test"), 2)

	t.Run("local day spans two files", func(t *testing.T) {
		samples, err := loader.LoadRange(context.Background(), date("2025-07-01"), date("2025-07-01"))
		if err != nil {
			t.Fatalf("LoadRange: %v", err)
		}
		want := []int64{utc(2025, 6, 30, 22, 30), utc(2025, 7, 1, 12, 0), utc(2025, 7, 1, 21, 59)}
		if len(samples) != len(want) {
			t.Fatalf("len(samples) = %d; want %d", len(samples), len(want))
		}
		for i, s := range samples {
			if s.Timestamp != want[i] {
				t.Errorf("samples[%d].t = %d; want %d", i, s.Timestamp, want[i])
			}
		}
	})

	t.Run("months outside the manifest have no data", func(t *testing.T) {
		samples, err := loader.LoadRange(context.Background(), date("2024-01-01"), date("2024-01-31"))
		if err != nil {
			t.Fatalf("LoadRange: %v", err)
		}
		if samples == nil || len(samples) != 0 {
			t.Errorf("samples = %v; want empty, non-nil", samples)
		}
	})

	t.Run("listed but missing file", func(t *testing.T) {
		_, err := loader.LoadRange(context.Background(), date("2025-08-01"), date("2025-08-02"))
		if !errors.Is(err, ErrMonthNotFound) {
			t.Errorf("err = %v; want ErrMonthNotFound", err)
		}
	})

	t.Run("reversed range", func(t *testing.T) {
		if _, err := loader.LoadRange(context.Background(), date("2025-07-02"), date("2025-07-01")); err == nil {
			t.Error("err = nil; want error")
		}
	})
}

func TestMonthsBetween(t *testing.T) {
	from, to := date("2025-07-01"), date("2025-07-31")
	offset := 2 * time.Hour
	got := monthsBetween(from.Add(-offset).UnixMilli(), to.AddDate(0, 0, 1).Add(-offset).UnixMilli()-1, from, to)
	want := []Month{{2025, time.June}, {2025, time.July}}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("monthsBetween() = %v; want %v", got, want)
	}
}
