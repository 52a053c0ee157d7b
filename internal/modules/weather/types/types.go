package types

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sample is one station reading as stored in the monthly archive files.
// A nil field means the sensor reported nothing; it never stands for zero.
type Sample struct {
	Timestamp      int64    `json:"t"`
	Temperature    *float64 `json:"temp"`
	Humidity       *float64 `json:"hum"`
	Pressure       *float64 `json:"press"`
	WindSpeed      *float64 `json:"ws"`
	WindGust       *float64 `json:"wg"`
	WindDirection  *float64 `json:"wd"`
	RainCumulative *float64 `json:"rain"`
	RainRate       *float64 `json:"rr,omitempty"`
	SolarRadiation *float64 `json:"sr"`
	UVIndex        *float64 `json:"uv"`
}

// Time returns the sample timestamp in UTC.
func (s Sample) Time() time.Time {
	return time.UnixMilli(s.Timestamp).UTC()
}

// Validate reports values that cannot come from a working station.
func (s Sample) Validate() error {
	if s.Timestamp <= 0 {
		return errors.New("timestamp is required")
	}
	if s.WindDirection != nil && (*s.WindDirection < 0 || *s.WindDirection >= 360) {
		return fmt.Errorf("wind direction out of range: %f (must be 0 <= wd < 360)", *s.WindDirection)
	}
	if s.RainCumulative != nil && *s.RainCumulative < 0 {
		return fmt.Errorf("rain counter must not be negative: %f", *s.RainCumulative)
	}
	if s.Humidity != nil && (*s.Humidity < 0 || *s.Humidity > 100) {
		return fmt.Errorf("humidity out of range: %f (must be 0-100)", *s.Humidity)
	}
	return nil
}

// Value returns the raw reading for v.
func (s Sample) Value(v Variable) *float64 {
	switch v {
	case VarTemperature:
		return s.Temperature
	case VarHumidity:
		return s.Humidity
	case VarPressure:
		return s.Pressure
	case VarWindSpeed:
		return s.WindSpeed
	case VarWindGust:
		return s.WindGust
	case VarWindDirection:
		return s.WindDirection
	case VarRain:
		return s.RainCumulative
	case VarRainRate:
		return s.RainRate
	case VarSolarRadiation:
		return s.SolarRadiation
	case VarUVIndex:
		return s.UVIndex
	}
	return nil
}

var ErrUnknownVariable = errors.New("unknown variable")

// Variable names a measured quantity in API requests and aggregate records.
type Variable string

const (
	VarTemperature    Variable = "temp"
	VarHumidity       Variable = "humidity"
	VarPressure       Variable = "pressure"
	VarWindSpeed      Variable = "wind_speed"
	VarWindGust       Variable = "wind_gust"
	VarWindDirection  Variable = "wind_dir"
	VarRain           Variable = "rain"
	VarRainRate       Variable = "rain_rate"
	VarSolarRadiation Variable = "solar_rad"
	VarUVIndex        Variable = "uv"
)

// AllVariables lists every variable in display order.
var AllVariables = []Variable{
	VarTemperature,
	VarHumidity,
	VarPressure,
	VarWindSpeed,
	VarWindGust,
	VarWindDirection,
	VarRain,
	VarRainRate,
	VarSolarRadiation,
	VarUVIndex,
}

// ParseVariable accepts API names and the archive short keys (hum, press, ws, ...).
func ParseVariable(s string) (Variable, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "temp", "temperature":
		return VarTemperature, nil
	case "humidity", "hum":
		return VarHumidity, nil
	case "pressure", "press":
		return VarPressure, nil
	case "wind_speed", "ws":
		return VarWindSpeed, nil
	case "wind_gust", "wg":
		return VarWindGust, nil
	case "wind_dir", "wd":
		return VarWindDirection, nil
	case "rain":
		return VarRain, nil
	case "rain_rate", "rr":
		return VarRainRate, nil
	case "solar_rad", "sr":
		return VarSolarRadiation, nil
	case "uv":
		return VarUVIndex, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownVariable, s)
}

// ParseVariables parses a comma separated list, dropping duplicates.
func ParseVariables(s string) ([]Variable, error) {
	var out []Variable
	seen := make(map[Variable]bool)
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		v, err := ParseVariable(part)
		if err != nil {
			return nil, err
		}
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out, nil
}

// Float returns a pointer to v. Handy for building samples in code.
func Float(v float64) *float64 {
	return &v
}
