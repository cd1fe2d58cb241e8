package validation

import (
	"fmt"
	"math"

	"github.com/iwvelando/home-affordability/pkg/constants"
	"github.com/iwvelando/home-affordability/pkg/loans"
)

// ValidateUnits checks that an occupancy unit count is in range.
func ValidateUnits(units int) error {
	if units < constants.MinUnits || units > constants.MaxUnits {
		return fmt.Errorf("expected unit count between %d and %d, got %d",
			constants.MinUnits, constants.MaxUnits, units)
	}
	return nil
}

// ValidatePercentage checks a percentage entered by a caller, e.g. 10 for 10%.
// The upper bound is exclusive unless inclusive is set.
func ValidatePercentage(field string, pct float64, inclusive bool) error {
	if math.IsNaN(pct) || pct < 0 || pct > constants.PercentageMultiplier ||
		(!inclusive && pct == constants.PercentageMultiplier) {
		bound := ")"
		if inclusive {
			bound = "]"
		}
		return fmt.Errorf("expected %s in [0, 100%s, got %v", field, bound, pct)
	}
	return nil
}

// ValidateBuyer checks the raw form figures and returns one message per
// problem. Rate and term are not checked since callers clamp them.
func ValidateBuyer(b loans.Buyer) []string {
	var problems []string
	if math.IsNaN(b.PurchasePrice) || b.PurchasePrice <= 0 {
		problems = append(problems, fmt.Sprintf("purchase price must be positive, got %v", b.PurchasePrice))
	}

	annual := []struct {
		field string
		value float64
	}{
		{"property tax", b.AnnualPropertyTax},
		{"home insurance", b.AnnualHomeInsurance},
		{"flood insurance", b.AnnualFloodInsurance},
	}
	for _, a := range annual {
		if math.IsNaN(a.value) || a.value < 0 {
			problems = append(problems, fmt.Sprintf("%s must not be negative, got %v", a.field, a.value))
		}
	}
	return problems
}
