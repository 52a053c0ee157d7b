package aggregation

import (
	"math"

	"mateometeo/internal/modules/weather/types"
)

// CompassSectors is the number of wind rose sectors, each 22.5 degrees wide.
const CompassSectors = 16

const sectorWidth = 360.0 / CompassSectors

var compassPoints = [CompassSectors]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// Sector returns the compass sector index (0 = N) for a direction in degrees.
func Sector(deg float64) int {
	s := int(math.Floor(deg/sectorWidth+0.5)) % CompassSectors
	if s < 0 {
		s += CompassSectors
	}
	return s
}

// CompassPoint renders a direction as N, NNE, ... NNW, or "-" when absent.
func CompassPoint(deg *float64) string {
	if deg == nil || math.IsNaN(*deg) {
		return "-"
	}
	return compassPoints[Sector(*deg)]
}

// CompassPoints returns the sector labels in wind rose order.
func CompassPoints() []string {
	return compassPoints[:]
}

// WindRose returns the share (percent) of qualifying samples per sector.
// Samples with speed below minSpeed, or without speed or direction, are
// ignored. When nothing qualifies the result is sixteen zeros, never nil.
func WindRose(samples []types.Sample, minSpeed float64) []float64 {
	var counts [CompassSectors]int
	total := 0
	for _, s := range samples {
		if !windQualifies(s, minSpeed) {
			continue
		}
		counts[Sector(*s.WindDirection)]++
		total++
	}

	rose := make([]float64, CompassSectors)
	if total == 0 {
		return rose
	}
	for i, c := range counts {
		rose[i] = float64(c) / float64(total) * 100
	}
	return rose
}
