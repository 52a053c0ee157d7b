package aggregation

import (
	"fmt"
	"time"
)

type Granularity string

const (
	Hourly Granularity = "hourly"
	Daily  Granularity = "daily"
	Weekly Granularity = "weekly"
)

const (
	// Ranges up to this many days are charted hour by hour.
	HourlyMaxRangeDays = 2
	// Ranges longer than this many days are charted week by week.
	DailyMaxRangeDays = 90
)

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"
)

// ChooseGranularity picks the bucket width for a custom range.
func ChooseGranularity(rangeDays float64) Granularity {
	switch {
	case rangeDays <= HourlyMaxRangeDays:
		return Hourly
	case rangeDays > DailyMaxRangeDays:
		return Weekly
	default:
		return Daily
	}
}

// InclusiveDays counts calendar days from fromDate to toDate, both included.
// Both arguments are expected at midnight of their day.
func InclusiveDays(fromDate, toDate time.Time) float64 {
	return toDate.Sub(fromDate).Hours()/24 + 1
}

// Bucketer maps timestamps to period buckets using a fixed local offset.
type Bucketer struct {
	granularity Granularity
	offset      time.Duration
}

func NewBucketer(g Granularity, localOffsetHours int) (Bucketer, error) {
	switch g {
	case Hourly, Daily, Weekly:
	default:
		return Bucketer{}, fmt.Errorf("%w: %q", ErrUnsupportedGranularity, g)
	}
	return Bucketer{granularity: g, offset: time.Duration(localOffsetHours) * time.Hour}, nil
}

func (b Bucketer) Granularity() Granularity {
	return b.granularity
}

// local returns the wall-clock time at the station expressed in a UTC location.
func (b Bucketer) local(ts int64) time.Time {
	return time.UnixMilli(ts).UTC().Add(b.offset)
}

// Start returns the epoch ms at which the bucket containing ts begins.
func (b Bucketer) Start(ts int64) int64 {
	l := b.local(ts)
	var start time.Time
	switch b.granularity {
	case Hourly:
		start = l.Truncate(time.Hour)
	case Daily:
		start = localMidnight(l)
	case Weekly:
		day := localMidnight(l)
		sinceMonday := (int(day.Weekday()) + 6) % 7
		start = day.AddDate(0, 0, -sinceMonday)
	}
	return start.Add(-b.offset).UnixMilli()
}

// End returns the exclusive end of the bucket starting at start.
func (b Bucketer) End(start int64) int64 {
	switch b.granularity {
	case Hourly:
		return start + time.Hour.Milliseconds()
	case Daily:
		return start + 24*time.Hour.Milliseconds()
	default:
		return start + 7*24*time.Hour.Milliseconds()
	}
}

// Label renders a bucket start for tables and chart axes.
func (b Bucketer) Label(start int64) string {
	l := b.local(start)
	if b.granularity == Hourly {
		return l.Format("2006-01-02 15:00")
	}
	return l.Format(dateLayout)
}

// LocalHour is the station hour of ts: UTC hour plus offset, wrapped to 0..23.
func LocalHour(ts int64, localOffsetHours int) int {
	h := (time.UnixMilli(ts).UTC().Hour() + localOffsetHours) % 24
	if h < 0 {
		h += 24
	}
	return h
}

// LocalDate is the station calendar date of ts as YYYY-MM-DD.
func LocalDate(ts int64, localOffsetHours int) string {
	offset := time.Duration(localOffsetHours) * time.Hour
	return time.UnixMilli(ts).UTC().Add(offset).Format(dateLayout)
}

func localMidnight(l time.Time) time.Time {
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, time.UTC)
}
