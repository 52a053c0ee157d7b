package aggregation

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"mateometeo/internal/modules/weather/types"
)

// Method tells chart adapters how a variable was reduced per period.
type Method string

const (
	MethodAvg  Method = "avg"
	MethodSum  Method = "sum"
	MethodMode Method = "mode"
)

// Period is one bucket of the aggregated series.
type Period struct {
	Start       int64                   `json:"start"`
	End         int64                   `json:"end"`
	Label       string                  `json:"label"`
	Samples     int                     `json:"samples"`
	Values      map[types.Variable]Stat `json:"values"`
	WindDirMode *float64                `json:"windDirMode"`
}

// Rain returns the period rainfall, 0 when nothing fell.
func (p Period) Rain() float64 {
	if st, ok := p.Values[types.VarRain]; ok && st.Sum != nil {
		return *st.Sum
	}
	return 0
}

// Result is returned by every aggregation entry point. It is never nil on
// success; an empty Periods slice means there was no data.
type Result struct {
	Granularity Granularity               `json:"granularity"`
	Variables   []types.Variable          `json:"variables"`
	Periods     []Period                  `json:"periods"`
	Summary     Summary                   `json:"summary"`
	WindRose    []float64                 `json:"windRose"`
	Methods     map[types.Variable]Method `json:"methods"`
}

func (r *Result) Empty() bool {
	return len(r.Periods) == 0
}

func newResult(g Granularity, vars []types.Variable) *Result {
	methods := make(map[types.Variable]Method, len(vars))
	for _, v := range vars {
		switch v {
		case types.VarRain:
			methods[v] = MethodSum
		case types.VarWindDirection:
			methods[v] = MethodMode
		default:
			methods[v] = MethodAvg
		}
	}
	return &Result{
		Granularity: g,
		Variables:   vars,
		Periods:     []Period{},
		Methods:     methods,
	}
}

// AggregateDay aggregates one station-local calendar day (YYYY-MM-DD) into
// 24 hourly periods. Hours without samples are still emitted, with nil
// averages and zero rain, so charts get a continuous series.
func AggregateDay(samples []types.Sample, date string, opts Options) (*Result, error) {
	day, err := time.Parse(dateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("%w: day %q (expected YYYY-MM-DD)", ErrInvalidPeriod, date)
	}

	vars := types.AllVariables
	sorted := filterSorted(samples, func(ts int64) bool {
		return LocalDate(ts, opts.LocalOffsetHours) == date
	})
	res := newResult(Hourly, vars)
	incs := ReconstructRain(sorted)
	res.Summary = summarizeSorted(sorted, incs, vars, opts)
	res.WindRose = WindRose(sorted, opts.MinWindSpeed)
	if len(sorted) == 0 {
		return res, nil
	}

	var hours [24][]types.Sample
	for _, s := range sorted {
		h := LocalHour(s.Timestamp, opts.LocalOffsetHours)
		hours[h] = append(hours[h], s)
	}

	dayStart := day.Add(-opts.offset()).UnixMilli()
	hourMs := time.Hour.Milliseconds()
	for h := range 24 {
		start := dayStart + int64(h)*hourMs
		p := buildPeriod(hours[h], start, start+hourMs, incs, vars, opts)
		p.Label = fmt.Sprintf("%02d:00", h)
		res.Periods = append(res.Periods, p)
	}
	fillPeriodRain(&res.Summary.Rain, res.Periods)
	return res, nil
}

// AggregateMonth aggregates one station-local calendar month (YYYY-MM) into
// daily periods. Only days with samples are emitted.
func AggregateMonth(samples []types.Sample, month string, opts Options) (*Result, error) {
	if _, err := time.Parse(monthLayout, month); err != nil {
		return nil, fmt.Errorf("%w: month %q (expected YYYY-MM)", ErrInvalidPeriod, month)
	}

	prefix := month + "-"
	sorted := filterSorted(samples, func(ts int64) bool {
		return strings.HasPrefix(LocalDate(ts, opts.LocalOffsetHours), prefix)
	})
	res, err := aggregateSorted(sorted, Daily, types.AllVariables, opts)
	if err != nil {
		return nil, err
	}
	res.WindRose = WindRose(sorted, opts.MinWindSpeed)
	return res, nil
}

// AggregateCustomRange aggregates samples already filtered to an arbitrary
// range. The bucket width follows from rangeDays (see ChooseGranularity).
// Each requested variable is summarized independently over the same samples.
// An empty vars slice means every variable.
func AggregateCustomRange(samples []types.Sample, vars []types.Variable, rangeDays float64, opts Options) (*Result, error) {
	return Aggregate(samples, ChooseGranularity(rangeDays), vars, opts)
}

// Aggregate buckets samples with an explicit granularity. It fails only for
// an unknown granularity.
func Aggregate(samples []types.Sample, g Granularity, vars []types.Variable, opts Options) (*Result, error) {
	if len(vars) == 0 {
		vars = types.AllVariables
	}
	res, err := aggregateSorted(sortedByTime(samples), g, vars, opts)
	if err != nil {
		return nil, err
	}
	if wantsWindRose(vars) {
		res.WindRose = WindRose(samples, opts.MinWindSpeed)
	}
	return res, nil
}

func aggregateSorted(sorted []types.Sample, g Granularity, vars []types.Variable, opts Options) (*Result, error) {
	b, err := NewBucketer(g, opts.LocalOffsetHours)
	if err != nil {
		return nil, err
	}

	res := newResult(g, vars)
	incs := ReconstructRain(sorted)
	res.Summary = summarizeSorted(sorted, incs, vars, opts)
	if len(sorted) == 0 {
		return res, nil
	}

	// sorted input keeps bucket starts non-decreasing, so runs are contiguous
	runStart := 0
	for i := 1; i <= len(sorted); i++ {
		if i < len(sorted) && b.Start(sorted[i].Timestamp) == b.Start(sorted[runStart].Timestamp) {
			continue
		}
		start := b.Start(sorted[runStart].Timestamp)
		p := buildPeriod(sorted[runStart:i], start, b.End(start), incs, vars, opts)
		p.Label = b.Label(start)
		res.Periods = append(res.Periods, p)
		runStart = i
	}

	if slices.Contains(vars, types.VarRain) {
		fillPeriodRain(&res.Summary.Rain, res.Periods)
	}
	return res, nil
}

func buildPeriod(samples []types.Sample, start, end int64, incs RainIncrements, vars []types.Variable, opts Options) Period {
	sc := newScope(vars, opts.MinWindSpeed)
	for _, s := range samples {
		sc.add(s)
	}
	rain := incs.Between(start, end)
	return Period{
		Start:       start,
		End:         end,
		Samples:     sc.samples,
		Values:      sc.values(&rain),
		WindDirMode: sc.dirs.mode(),
	}
}

// fillPeriodRain records the sum of per-period rain and the wettest period.
// The first period reaching the maximum wins; with no rain the maximum is 0
// and has no time.
func fillPeriodRain(rs *RainSummary, periods []Period) {
	sum, max := 0.0, 0.0
	var maxTime *int64
	for _, p := range periods {
		r := p.Rain()
		sum += r
		if r > max {
			max = r
			t := p.Start
			maxTime = &t
		}
	}
	rs.SumOfPeriods = &sum
	rs.MaxPeriod = &max
	rs.MaxPeriodTime = maxTime
}

func wantsWindRose(vars []types.Variable) bool {
	for _, v := range vars {
		switch v {
		case types.VarWindSpeed, types.VarWindGust, types.VarWindDirection:
			return true
		}
	}
	return false
}

func filterSorted(samples []types.Sample, keep func(ts int64) bool) []types.Sample {
	var out []types.Sample
	for _, s := range samples {
		if keep(s.Timestamp) {
			out = append(out, s)
		}
	}
	return sortedByTime(out)
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
