package validation

import (
	"math"
	"testing"

	"github.com/iwvelando/home-affordability/pkg/loans"
)

func TestValidateUnits(t *testing.T) {
	for units := 1; units <= 4; units++ {
		if err := ValidateUnits(units); err != nil {
			t.Errorf("ValidateUnits(%d) unexpected error = %v", units, err)
		}
	}
	for _, units := range []int{-1, 0, 5} {
		if err := ValidateUnits(units); err == nil {
			t.Errorf("ValidateUnits(%d) expected error but got none", units)
		}
	}
}

func TestValidatePercentage(t *testing.T) {
	tests := []struct {
		name      string
		pct       float64
		inclusive bool
		expectErr bool
	}{
		{name: "Zero", pct: 0},
		{name: "Typical", pct: 10},
		{name: "Hundred inclusive", pct: 100, inclusive: true},
		{name: "Hundred exclusive", pct: 100, expectErr: true},
		{name: "Negative", pct: -1, inclusive: true, expectErr: true},
		{name: "Above hundred", pct: 100.5, inclusive: true, expectErr: true},
		{name: "NaN", pct: math.NaN(), expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePercentage("down payment", tt.pct, tt.inclusive)
			if tt.expectErr && err == nil {
				t.Errorf("ValidatePercentage(%v) expected error but got none", tt.pct)
			}
			if !tt.expectErr && err != nil {
				t.Errorf("ValidatePercentage(%v) unexpected error = %v", tt.pct, err)
			}
		})
	}
}

func TestValidateBuyer(t *testing.T) {
	valid := loans.Buyer{PurchasePrice: 807000, AnnualPropertyTax: 9600, AnnualHomeInsurance: 1800}
	if problems := ValidateBuyer(valid); len(problems) != 0 {
		t.Errorf("ValidateBuyer() unexpected problems %v", problems)
	}

	invalid := loans.Buyer{PurchasePrice: 0, AnnualPropertyTax: -1, AnnualFloodInsurance: math.NaN()}
	if problems := ValidateBuyer(invalid); len(problems) != 3 {
		t.Errorf("ValidateBuyer() expected 3 problems, got %v", problems)
	}
}
