package archive

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"mateometeo/internal/modules/weather/types"
)

// maxParallelLoads bounds how many month files a single range fetches at once.
const maxParallelLoads = 4

// Loader turns a local date range into the samples the aggregation core needs.
type Loader struct {
	source      Source
	offsetHours int
}

func NewLoader(source Source, localOffsetHours int) *Loader {
	return &Loader{source: source, offsetHours: localOffsetHours}
}

func (l *Loader) Source() Source {
	return l.source
}

func (l *Loader) Months(ctx context.Context) ([]Month, error) {
	months, err := l.source.Months(ctx)
	if err != nil {
		return nil, fmt.Errorf("list months from %s: %w", l.source.Name(), err)
	}
	return months, nil
}

// LoadRange returns the samples between the start of local day from and the
// end of local day to, both included, in time order. from and to are dates at
// midnight UTC, as returned by time.Parse("2006-01-02", ...).
// Months missing from the manifest are treated as having no data.
func (l *Loader) LoadRange(ctx context.Context, from, to time.Time) ([]types.Sample, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("range end %s is before start %s", to.Format(time.DateOnly), from.Format(time.DateOnly))
	}
	offset := time.Duration(l.offsetHours) * time.Hour
	fromMs := from.Add(-offset).UnixMilli()
	toMs := to.AddDate(0, 0, 1).Add(-offset).UnixMilli() - 1

	available, err := l.Months(ctx)
	if err != nil {
		return nil, err
	}
	wanted := monthsBetween(fromMs, toMs, from, to)
	var months []Month
	for _, m := range available {
		if slices.Contains(wanted, m) {
			months = append(months, m)
		}
	}
	if len(months) == 0 {
		slog.Debug("no archive months in range", "from", from.Format(time.DateOnly), "to", to.Format(time.DateOnly))
		return []types.Sample{}, nil
	}

	perMonth := make([][]types.Sample, len(months))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLoads)
	for i, m := range months {
		g.Go(func() error {
			samples, err := l.source.Load(gctx, m)
			if err != nil {
				return fmt.Errorf("load %s: %w", m, err)
			}
			perMonth[i] = samples
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := []types.Sample{}
	for _, samples := range perMonth {
		for _, s := range samples {
			if s.Timestamp >= fromMs && s.Timestamp <= toMs {
				out = append(out, s)
			}
		}
	}
	slices.SortStableFunc(out, func(a, b types.Sample) int {
		return cmp.Compare(a.Timestamp, b.Timestamp)
	})
	slog.Debug("loaded range", "from", from.Format(time.DateOnly), "to", to.Format(time.DateOnly), "months", len(months), "samples", len(out))
	return out, nil
}

// monthsBetween lists the months a range may touch. Files may be split by UTC
// or by local month, so both readings of the bounds are covered.
func monthsBetween(fromMs, toMs int64, fromLocal, toLocal time.Time) []Month {
	lo := MonthOf(time.UnixMilli(fromMs).UTC())
	if m := MonthOf(fromLocal); m.Compare(lo) < 0 {
		lo = m
	}
	hi := MonthOf(time.UnixMilli(toMs).UTC())
	if m := MonthOf(toLocal); m.Compare(hi) > 0 {
		hi = m
	}
	var out []Month
	for m := lo; m.Compare(hi) <= 0; m = m.Next() {
		out = append(out, m)
	}
	return out
}
