package eligibility

import (
	"fmt"
	"sort"

	"github.com/iwvelando/home-affordability/pkg/constants"
)

// Limits holds the loan-size tiers for one occupancy unit count.
type Limits struct {
	Conforming  float64 `json:"conforming"`
	HighBalance float64 `json:"highBalance"`
	// Max is the absolute ceiling; zero means the high-balance limit.
	Max float64 `json:"max,omitempty"`
}

// MaxLoanLimit returns the program ceiling for the unit count.
func (l Limits) MaxLoanLimit() float64 {
	if l.Max > 0 {
		return l.Max
	}
	return l.HighBalance
}

func (l Limits) validate(units int) error {
	if l.Conforming <= 0 {
		return fmt.Errorf("%w: %d-unit conforming limit must be positive", ErrInvalidLimits, units)
	}
	if l.HighBalance < l.Conforming {
		return fmt.Errorf("%w: %d-unit high-balance limit %.2f is below conforming %.2f",
			ErrInvalidLimits, units, l.HighBalance, l.Conforming)
	}
	if l.Max < 0 {
		return fmt.Errorf("%w: %d-unit max limit must not be negative", ErrInvalidLimits, units)
	}
	return nil
}

// LimitsTable maps occupancy unit counts to their limits. It is immutable
// once built.
type LimitsTable struct {
	byUnits map[int]Limits
}

// NewLimitsTable validates and copies the given limits.
func NewLimitsTable(limits map[int]Limits) (*LimitsTable, error) {
	if len(limits) == 0 {
		return nil, fmt.Errorf("%w: limits table is empty", ErrInvalidLimits)
	}

	t := &LimitsTable{byUnits: make(map[int]Limits, len(limits))}
	for units, l := range limits {
		if units < constants.MinUnits || units > constants.MaxUnits {
			return nil, fmt.Errorf("%w: unit count %d outside %d-%d",
				ErrInvalidLimits, units, constants.MinUnits, constants.MaxUnits)
		}
		if err := l.validate(units); err != nil {
			return nil, err
		}
		t.byUnits[units] = l
	}
	return t, nil
}

// Lookup returns the limits for a unit count.
func (t *LimitsTable) Lookup(units int) (Limits, bool) {
	l, ok := t.byUnits[units]
	return l, ok
}

// Units returns the configured unit counts in ascending order.
func (t *LimitsTable) Units() []int {
	units := make([]int, 0, len(t.byUnits))
	for u := range t.byUnits {
		units = append(units, u)
	}
	sort.Ints(units)
	return units
}

// DefaultLimits are the 2025 baseline conforming and high-balance limits.
var DefaultLimits = map[int]Limits{
	1: {Conforming: 806500, HighBalance: 1209750},
	2: {Conforming: 1032650, HighBalance: 1548975},
	3: {Conforming: 1248150, HighBalance: 1872225},
	4: {Conforming: 1551250, HighBalance: 2326875},
}

// DefaultLimitsTable returns the built-in limits.
func DefaultLimitsTable() *LimitsTable {
	t, err := NewLimitsTable(DefaultLimits)
	if err != nil {
		panic(fmt.Sprintf("invalid built-in limits: %v", err))
	}
	return t
}
