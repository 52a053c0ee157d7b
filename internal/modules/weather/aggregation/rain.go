package aggregation

import (
	"cmp"
	"slices"

	"mateometeo/internal/modules/weather/types"
)

// RainIncrements maps a sample timestamp (epoch ms) to the rain that fell
// since the previous valid counter reading. Only positive amounts are stored.
type RainIncrements map[int64]float64

// ReconstructRain converts the station's cumulative rain counter into
// per-sample increments. A drop in the counter is a reset (local midnight or
// a station restart) and the whole new reading counts as fresh rain. Samples
// without a rain reading are skipped and do not break the chain.
func ReconstructRain(samples []types.Sample) RainIncrements {
	sorted := sortedByTime(samples)
	incs := make(RainIncrements)

	valid := 0
	for _, s := range sorted {
		if s.RainCumulative != nil {
			valid++
		}
	}
	if valid < 2 {
		return incs
	}

	var last float64
	hasLast := false
	for _, s := range sorted {
		if s.RainCumulative == nil {
			continue
		}
		current := *s.RainCumulative
		increment := current
		if hasLast && current >= last {
			increment = current - last
		}
		if increment > 0 {
			incs[s.Timestamp] += increment
		}
		last = current
		hasLast = true
	}
	return incs
}

// Total is the unrounded sum of all increments.
func (r RainIncrements) Total() float64 {
	total := 0.0
	for _, ts := range r.timestamps() {
		total += r[ts]
	}
	return total
}

// Between sums increments with from <= ts < to.
func (r RainIncrements) Between(from, to int64) float64 {
	total := 0.0
	for _, ts := range r.timestamps() {
		if ts >= from && ts < to {
			total += r[ts]
		}
	}
	return total
}

// ByBucket sums increments per bucket start as assigned by keyFn.
func (r RainIncrements) ByBucket(keyFn func(ts int64) int64) map[int64]float64 {
	out := make(map[int64]float64)
	for _, ts := range r.timestamps() {
		out[keyFn(ts)] += r[ts]
	}
	return out
}

// timestamps returns keys in ascending order so float sums are reproducible.
func (r RainIncrements) timestamps() []int64 {
	return sortedKeys(map[int64]float64(r))
}

// sortedByTime returns a time-ordered copy. Equal timestamps keep input order.
func sortedByTime(samples []types.Sample) []types.Sample {
	out := slices.Clone(samples)
	slices.SortStableFunc(out, func(a, b types.Sample) int {
		return cmp.Compare(a.Timestamp, b.Timestamp)
	})
	return out
}
