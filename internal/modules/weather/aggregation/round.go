package aggregation

import "github.com/shopspring/decimal"

// RoundTenth rounds v to one decimal place, half away from zero. It is meant
// for display only; aggregates are kept unrounded.
func RoundTenth(v float64) float64 {
	return decimal.NewFromFloat(v).Round(1).InexactFloat64()
}

// RoundTenthPtr is RoundTenth for optional values.
func RoundTenthPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := RoundTenth(*v)
	return &r
}
