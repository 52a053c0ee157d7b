package aggregation

import (
	"mateometeo/internal/modules/weather/types"
)

// Stat is the descriptive summary of one variable over one scope. Fields that
// have no data are nil so they serialize as JSON null.
type Stat struct {
	Avg     *float64 `json:"avg"`
	Min     *float64 `json:"min"`
	MinTime *int64   `json:"minTime"`
	Max     *float64 `json:"max"`
	MaxTime *int64   `json:"maxTime"`
	Sum     *float64 `json:"sum"`
	Count   int      `json:"count"`
}

// RainSummary describes rainfall over a scope. Totals are unrounded; use
// RoundTenth when displaying them.
type RainSummary struct {
	Total          *float64 `json:"total"`
	SumOfPeriods   *float64 `json:"sumOfPeriods"`
	MaxPeriod      *float64 `json:"maxPeriod"`
	MaxPeriodTime  *int64   `json:"maxPeriodTime"`
	MaxDay         *float64 `json:"maxDay"`
	MaxDayTime     *int64   `json:"maxDayTime"`
	RainyDays      int      `json:"rainyDays"`
	AvgPerRainyDay *float64 `json:"avgPerRainyDay"`
}

// Summary is the whole-scope result. Values holds an entry for every
// requested variable even when nothing was measured.
type Summary struct {
	Samples     int                     `json:"samples"`
	Values      map[types.Variable]Stat `json:"values"`
	WindDirMode *float64                `json:"windDirMode"`
	Rain        RainSummary             `json:"rain"`
}

// Value returns the stat for v, or an all-nil Stat.
func (s Summary) Value(v types.Variable) Stat {
	return s.Values[v]
}

// accumulator tracks sum, count and the first occurrence of each extreme.
type accumulator struct {
	sum              float64
	count            int
	min, max         float64
	minTime, maxTime int64
	hasMin, hasMax   bool

	// positiveMin ignores readings <= 0 for the minimum. A zero gust means no
	// gust was measured, not a calm minimum.
	positiveMin bool
}

func (a *accumulator) add(v float64, ts int64) {
	a.sum += v
	a.count++
	if !a.hasMax || v > a.max {
		a.max, a.maxTime, a.hasMax = v, ts, true
	}
	if a.positiveMin && v <= 0 {
		return
	}
	if !a.hasMin || v < a.min {
		a.min, a.minTime, a.hasMin = v, ts, true
	}
}

func (a *accumulator) stat() Stat {
	var st Stat
	st.Count = a.count
	if a.count == 0 {
		return st
	}
	avg := a.sum / float64(a.count)
	sum := a.sum
	st.Avg = &avg
	st.Sum = &sum
	if a.hasMax {
		max, maxTime := a.max, a.maxTime
		st.Max, st.MaxTime = &max, &maxTime
	}
	if a.hasMin {
		min, minTime := a.min, a.minTime
		st.Min, st.MinTime = &min, &minTime
	}
	return st
}

// modeCounter counts exact direction values. The first value to reach the
// highest count in sample order wins ties.
type modeCounter struct {
	counts map[float64]int
	order  []float64
}

func (m *modeCounter) add(dir float64) {
	if m.counts == nil {
		m.counts = make(map[float64]int)
	}
	if _, ok := m.counts[dir]; !ok {
		m.order = append(m.order, dir)
	}
	m.counts[dir]++
}

func (m *modeCounter) mode() *float64 {
	best, bestCount := 0.0, 0
	for _, dir := range m.order {
		if c := m.counts[dir]; c > bestCount {
			best, bestCount = dir, c
		}
	}
	if bestCount == 0 {
		return nil
	}
	return &best
}

// windQualifies reports whether the sample's direction is trustworthy.
func windQualifies(s types.Sample, minSpeed float64) bool {
	return s.WindSpeed != nil && *s.WindSpeed >= minSpeed && s.WindDirection != nil
}

// scope accumulates statistics over one collection of samples.
type scope struct {
	vars         []types.Variable
	accs         map[types.Variable]*accumulator
	dirs         modeCounter
	rainReadings int
	samples      int
	minWindSpeed float64
}

func newScope(vars []types.Variable, minWindSpeed float64) *scope {
	sc := &scope{
		vars:         vars,
		accs:         make(map[types.Variable]*accumulator, len(vars)),
		minWindSpeed: minWindSpeed,
	}
	for _, v := range vars {
		if isAveraged(v) {
			sc.accs[v] = &accumulator{positiveMin: v == types.VarWindGust}
		}
	}
	return sc
}

func (sc *scope) add(s types.Sample) {
	sc.samples++
	for v, acc := range sc.accs {
		if val := s.Value(v); val != nil {
			acc.add(*val, s.Timestamp)
		}
	}
	if s.RainCumulative != nil {
		sc.rainReadings++
	}
	if windQualifies(s, sc.minWindSpeed) {
		sc.dirs.add(*s.WindDirection)
	}
}

// values builds the per-variable map. rain is the scope's rain total, used
// only when rain was requested.
func (sc *scope) values(rain *float64) map[types.Variable]Stat {
	out := make(map[types.Variable]Stat, len(sc.vars))
	for _, v := range sc.vars {
		switch {
		case v == types.VarRain:
			out[v] = Stat{Sum: rain, Count: sc.rainReadings}
		case isAveraged(v):
			out[v] = sc.accs[v].stat()
		}
	}
	return out
}

// isAveraged reports whether v gets avg/min/max treatment. Rain is summed
// from increments and wind direction only has a mode.
func isAveraged(v types.Variable) bool {
	switch v {
	case types.VarRain, types.VarWindDirection:
		return false
	}
	return true
}

// Summarize computes the whole-range summary for every variable.
func Summarize(samples []types.Sample, opts Options) Summary {
	return SummarizeVariables(samples, types.AllVariables, opts)
}

// SummarizeVariables computes independent summaries for vars over the same
// samples. Input order does not matter.
func SummarizeVariables(samples []types.Sample, vars []types.Variable, opts Options) Summary {
	sorted := sortedByTime(samples)
	return summarizeSorted(sorted, ReconstructRain(sorted), vars, opts)
}

func summarizeSorted(sorted []types.Sample, incs RainIncrements, vars []types.Variable, opts Options) Summary {
	sc := newScope(vars, opts.MinWindSpeed)
	for _, s := range sorted {
		sc.add(s)
	}

	var rain *float64
	if sc.rainReadings > 0 {
		total := incs.Total()
		rain = &total
	}

	summary := Summary{
		Samples:     sc.samples,
		Values:      sc.values(rain),
		WindDirMode: sc.dirs.mode(),
	}
	summary.Rain.Total = rain
	if rain != nil {
		fillDailyRain(&summary.Rain, incs, *rain, opts)
	}
	return summary
}

// fillDailyRain adds the wettest local day and the average over rainy days.
func fillDailyRain(rs *RainSummary, incs RainIncrements, total float64, opts Options) {
	days, _ := NewBucketer(Daily, opts.LocalOffsetHours)
	daily := incs.ByBucket(days.Start)

	var maxDay float64
	var maxDayTime *int64
	for _, start := range sortedKeys(daily) {
		amount := daily[start]
		if amount <= 0 {
			continue
		}
		rs.RainyDays++
		if amount > maxDay {
			maxDay = amount
			t := start
			maxDayTime = &t
		}
	}
	rs.MaxDay = &maxDay
	rs.MaxDayTime = maxDayTime
	if rs.RainyDays > 0 {
		avg := total / float64(rs.RainyDays)
		rs.AvgPerRainyDay = &avg
	}
}
