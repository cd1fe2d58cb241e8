// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/home-affordability/pkg/constants"
)

// Round rounds a value to two decimals, i.e. to represent real currency.
// Used for making logical comparisons.
func Round(val float64) float64 {
	return math.Round(val*constants.DecimalPrecision) / constants.DecimalPrecision
}

// IsZero checks if a value is effectively zero (within tolerance)
func IsZero(val float64) bool {
	return math.Abs(val) <= constants.CurrencyTolerance
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// Exceeds reports whether amount is above limit once both are rounded to
// the cent, so an amount recomputed onto a limit does not trip it.
func Exceeds(amount, limit float64) bool {
	return Round(amount) > Round(limit)
}

// AtOrBelow is the complement of Exceeds.
func AtOrBelow(amount, limit float64) bool {
	return !Exceeds(amount, limit)
}

// IsFiniteNonNegative reports whether val is a usable monetary input.
func IsFiniteNonNegative(val float64) bool {
	return !math.IsNaN(val) && !math.IsInf(val, 0) && val >= 0
}

// Clamp bounds val to [low, high].
func Clamp(val, low, high float64) float64 {
	return math.Max(low, math.Min(high, val))
}

// ToFraction converts a percentage (10 for 10%) into a fraction (0.10).
func ToFraction(percentage float64) float64 {
	return percentage / constants.PercentageMultiplier
}

// ToPercentage converts a fraction (0.10) into a percentage (10).
func ToPercentage(fraction float64) float64 {
	return fraction * constants.PercentageMultiplier
}
