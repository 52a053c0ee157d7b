// Package aggregation turns raw station samples into per-period aggregates and
// whole-range summaries. Every function here is pure: no I/O, no logging, no
// shared state, so results can be cached or computed in parallel by callers.
package aggregation

import (
	"errors"
	"time"
)

const (
	// DefaultLocalOffsetHours is the fixed station offset from UTC. Daylight
	// saving is not modelled.
	DefaultLocalOffsetHours = 2

	// DefaultMinWindSpeed (m/s) is the speed below which a wind direction
	// reading is discarded for mode and wind rose purposes.
	DefaultMinWindSpeed = 0.5
)

var (
	ErrInvalidPeriod          = errors.New("invalid period")
	ErrUnsupportedGranularity = errors.New("unsupported granularity")
)

// Options carries the station-specific knobs shared by all entry points.
type Options struct {
	LocalOffsetHours int
	MinWindSpeed     float64
}

func DefaultOptions() Options {
	return Options{
		LocalOffsetHours: DefaultLocalOffsetHours,
		MinWindSpeed:     DefaultMinWindSpeed,
	}
}

func (o Options) offset() time.Duration {
	return time.Duration(o.LocalOffsetHours) * time.Hour
}
