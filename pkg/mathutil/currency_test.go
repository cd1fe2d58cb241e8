package mathutil

import (
	"math"
	"testing"
)

func TestRound(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"Round up at midpoint", 1.235, 1.24},
		{"Round down below midpoint", 1.234, 1.23},
		{"No rounding needed", 1.23, 1.23},
		{"Large number", 12345.678, 12345.68},
		{"Negative number round down", -1.234, -1.23},
		{"Zero", 0.0, 0.0},
		{"Very small positive", 0.001, 0.00},
		{"Loan amount float noise", 806500.0000000001, 806500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Round(tt.input)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("Round(%v) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestIsZero(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected bool
	}{
		{"Exactly zero", 0.0, true},
		{"Very small negative", -0.001, true},
		{"Just above tolerance", 0.02, false},
		{"Exactly tolerance", 0.01, true},
		{"Large negative", -100.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsZero(tt.input)
			if result != tt.expected {
				t.Errorf("IsZero(%v) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestWithinTolerance(t *testing.T) {
	if !WithinTolerance(100.00, 100.005, 0.01) {
		t.Error("expected values within a cent to compare equal")
	}
	if WithinTolerance(100.00, 100.02, 0.01) {
		t.Error("expected values two cents apart to differ")
	}
}

func TestExceeds(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		limit    float64
		expected bool
	}{
		{"Clearly above", 1600000, 806500, true},
		{"Clearly below", 726300, 806500, false},
		{"Exactly at limit", 806500, 806500, false},
		{"Float noise above limit", 806500.0000001, 806500, false},
		{"Under half a cent above", 806500.004, 806500, false},
		{"One cent above", 806500.01, 806500, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Exceeds(tt.amount, tt.limit); got != tt.expected {
				t.Errorf("Exceeds(%v, %v) = %v, expected %v", tt.amount, tt.limit, got, tt.expected)
			}
			if got := AtOrBelow(tt.amount, tt.limit); got == tt.expected {
				t.Errorf("AtOrBelow(%v, %v) = %v, expected %v", tt.amount, tt.limit, got, !tt.expected)
			}
		})
	}
}

func TestIsFiniteNonNegative(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected bool
	}{
		{"Zero", 0, true},
		{"Positive", 807000, true},
		{"Negative", -1, false},
		{"NaN", math.NaN(), false},
		{"Positive infinity", math.Inf(1), false},
		{"Negative infinity", math.Inf(-1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFiniteNonNegative(tt.input); got != tt.expected {
				t.Errorf("IsFiniteNonNegative(%v) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(12, 1, 10); got != 10 {
		t.Errorf("Clamp(12, 1, 10) = %v, expected 10", got)
	}
	if got := Clamp(0.5, 1, 10); got != 1 {
		t.Errorf("Clamp(0.5, 1, 10) = %v, expected 1", got)
	}
	if got := Clamp(6.5, 1, 10); got != 6.5 {
		t.Errorf("Clamp(6.5, 1, 10) = %v, expected 6.5", got)
	}
}

func TestPercentageConversions(t *testing.T) {
	if got := ToFraction(10); math.Abs(got-0.10) > 1e-12 {
		t.Errorf("ToFraction(10) = %v, expected 0.10", got)
	}
	if got := ToPercentage(0.59675); math.Abs(got-59.675) > 1e-9 {
		t.Errorf("ToPercentage(0.59675) = %v, expected 59.675", got)
	}
}
