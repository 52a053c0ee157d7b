package aggregation

import (
	"math"
	"time"

	"mateometeo/internal/modules/weather/types"
)

// base is a Monday, midnight UTC.
var base = time.Date(2025, 7, 7, 0, 0, 0, 0, time.UTC)

func at(d time.Duration) int64 {
	return base.Add(d).UnixMilli()
}

func utc(year int, month time.Month, day, hour, min int) int64 {
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC).UnixMilli()
}

func approx(got, want float64) bool {
	return math.Abs(got-want) < 1e-9
}

func rainSample(ts int64, v *float64) types.Sample {
	return types.Sample{Timestamp: ts, RainCumulative: v}
}

func windSample(ts int64, speed, dir float64) types.Sample {
	return types.Sample{Timestamp: ts, WindSpeed: types.Float(speed), WindDirection: types.Float(dir)}
}
