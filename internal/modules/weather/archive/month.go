package archive

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Month identifies one monthly archive file.
type Month struct {
	Year  int
	Month time.Month
}

func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth parses YYYY-MM.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return Month{}, fmt.Errorf("parse month %q: %w", s, err)
	}
	return MonthOf(t), nil
}

// ParseMonthFile parses an archive file name such as 2025_07.json.
func ParseMonthFile(name string) (Month, error) {
	base, ok := strings.CutSuffix(name, ".json")
	if !ok {
		return Month{}, fmt.Errorf("archive file %q: missing .json suffix", name)
	}
	y, m, ok := strings.Cut(base, "_")
	if !ok || len(y) != 4 || len(m) != 2 {
		return Month{}, fmt.Errorf("archive file %q: expected YYYY_MM.json", name)
	}
	year, err := strconv.Atoi(y)
	if err != nil {
		return Month{}, fmt.Errorf("archive file %q: year: %w", name, err)
	}
	month, err := strconv.Atoi(m)
	if err != nil {
		return Month{}, fmt.Errorf("archive file %q: month: %w", name, err)
	}
	if month < 1 || month > 12 {
		return Month{}, fmt.Errorf("archive file %q: month %d out of range", name, month)
	}
	return Month{Year: year, Month: time.Month(month)}, nil
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

func (m Month) FileName() string {
	return fmt.Sprintf("%04d_%02d.json", m.Year, int(m.Month))
}

// FirstDay is midnight of the first day, in UTC.
func (m Month) FirstDay() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// LastDay is midnight of the last day, in UTC.
func (m Month) LastDay() time.Time {
	return m.FirstDay().AddDate(0, 1, -1)
}

func (m Month) Next() Month {
	return MonthOf(m.FirstDay().AddDate(0, 1, 0))
}

func (m Month) Compare(o Month) int {
	if c := cmp.Compare(m.Year, o.Year); c != 0 {
		return c
	}
	return cmp.Compare(m.Month, o.Month)
}

// sortMonths sorts in place and drops duplicates.
func sortMonths(months []Month) []Month {
	slices.SortFunc(months, Month.Compare)
	return slices.Compact(months)
}

// AvailableRange returns the first day of the earliest month and the last day
// of the latest one. ok is false when months is empty.
func AvailableRange(months []Month) (from, to time.Time, ok bool) {
	if len(months) == 0 {
		return time.Time{}, time.Time{}, false
	}
	lo := slices.MinFunc(months, Month.Compare)
	hi := slices.MaxFunc(months, Month.Compare)
	return lo.FirstDay(), hi.LastDay(), true
}

// AvailabilitySummary renders months grouped by year with consecutive months
// collapsed into ranges, e.g. "2024/ 3-7, 2024/ 10, 2025/ 1".
func AvailabilitySummary(months []Month) string {
	if len(months) == 0 {
		return "No data available."
	}
	sorted := sortMonths(slices.Clone(months))

	var parts []string
	start := sorted[0]
	prev := sorted[0]
	flush := func() {
		part := fmt.Sprintf("%d/ %d", start.Year, int(start.Month))
		if prev != start {
			part += fmt.Sprintf("-%d", int(prev.Month))
		}
		parts = append(parts, part)
	}
	for _, m := range sorted[1:] {
		if m.Year == prev.Year && m.Month == prev.Month+1 {
			prev = m
			continue
		}
		flush()
		start, prev = m, m
	}
	flush()
	return strings.Join(parts, ", ")
}
