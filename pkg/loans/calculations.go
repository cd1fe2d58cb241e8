// Package loans computes the purchase figures and flat monthly payment for a
// mortgage quote.
package loans

import (
	"errors"
	"fmt"
	"math"

	"github.com/iwvelando/home-affordability/pkg/constants"
	"github.com/iwvelando/home-affordability/pkg/mathutil"
)

// ErrInvalidInput is returned for malformed or degenerate numeric inputs.
var ErrInvalidInput = errors.New("invalid input")

// Inputs holds everything needed to price one quote. Percentages are
// fractions, i.e. 0.10 for 10%, except AnnualInterestRatePct which is a
// percentage (6.5 for 6.5%).
type Inputs struct {
	PurchasePrice         float64
	LoanTermYears         int
	AnnualInterestRatePct float64
	DownPaymentPct        float64
	SellerConcessionPct   float64
	AnnualPropertyTax     float64
	AnnualHomeInsurance   float64
	AnnualFloodInsurance  float64
}

// Quote holds the values derived from one set of Inputs.
type Quote struct {
	TotalSalePrice      float64 `json:"totalSalePrice"`
	LoanAmount          float64 `json:"loanAmount"`
	CashToClose         float64 `json:"cashToClose"`
	MonthlyPayment      float64 `json:"monthlyPayment"`
	TotalMonthlyPayment float64 `json:"totalMonthlyPayment"`
	MonthlyTax          float64 `json:"monthlyTax"`
	MonthlyInsurance    float64 `json:"monthlyInsurance"`
	MonthlyFlood        float64 `json:"monthlyFlood"`
}

// LTV returns the loan-to-value ratio of the quote as a fraction.
func (q Quote) LTV() float64 {
	if q.TotalSalePrice == 0 {
		return 0
	}
	return q.LoanAmount / q.TotalSalePrice
}

// Compute prices a quote. It either fully succeeds or returns an error
// wrapping ErrInvalidInput; no partial Quote is ever returned.
func Compute(in Inputs) (Quote, error) {
	if err := in.Validate(); err != nil {
		return Quote{}, err
	}

	totalSalePrice := in.PurchasePrice / (1 - in.SellerConcessionPct)
	loanAmount := totalSalePrice * (1 - in.DownPaymentPct)
	cashToClose := totalSalePrice * in.DownPaymentPct
	termMonths := in.LoanTermYears * constants.MonthsPerYear

	monthlyPayment := CalculateMonthlyPayment(loanAmount, in.AnnualInterestRatePct, termMonths)

	q := Quote{
		TotalSalePrice:   totalSalePrice,
		LoanAmount:       loanAmount,
		CashToClose:      cashToClose,
		MonthlyPayment:   monthlyPayment,
		MonthlyTax:       in.AnnualPropertyTax / constants.MonthsPerYear,
		MonthlyInsurance: in.AnnualHomeInsurance / constants.MonthsPerYear,
		MonthlyFlood:     in.AnnualFloodInsurance / constants.MonthsPerYear,
	}
	q.TotalMonthlyPayment = q.MonthlyPayment + q.MonthlyTax + q.MonthlyInsurance + q.MonthlyFlood

	return q, nil
}

// CalculateMonthlyPayment calculates the monthly payment for a loan using the
// standard amortization formula.
func CalculateMonthlyPayment(loanAmount, annualInterestRatePct float64, termMonths int) float64 {
	periodicInterestRate := annualInterestRatePct / (constants.PercentageMultiplier * constants.MonthsPerYear)
	if periodicInterestRate < constants.ZeroRateThreshold {
		// For zero interest, simply divide the principal by term
		return loanAmount / float64(termMonths)
	}

	discountFactor := 1 - math.Pow(1+periodicInterestRate, -float64(termMonths))
	return periodicInterestRate * loanAmount / discountFactor
}

// Validate checks that the inputs can be priced.
func (in Inputs) Validate() error {
	money := []struct {
		field string
		value float64
	}{
		{"purchase price", in.PurchasePrice},
		{"annual interest rate", in.AnnualInterestRatePct},
		{"annual property tax", in.AnnualPropertyTax},
		{"annual home insurance", in.AnnualHomeInsurance},
		{"annual flood insurance", in.AnnualFloodInsurance},
	}
	for _, m := range money {
		if !mathutil.IsFiniteNonNegative(m.value) {
			return fmt.Errorf("%w: %s must be a finite non-negative number, got %v", ErrInvalidInput, m.field, m.value)
		}
	}

	if in.LoanTermYears <= 0 {
		return fmt.Errorf("%w: loan term must be positive, got %d years", ErrInvalidInput, in.LoanTermYears)
	}
	if !mathutil.IsFiniteNonNegative(in.SellerConcessionPct) || in.SellerConcessionPct >= 1 {
		return fmt.Errorf("%w: seller concession must be in [0, 1), got %v", ErrInvalidInput, in.SellerConcessionPct)
	}
	if !mathutil.IsFiniteNonNegative(in.DownPaymentPct) || in.DownPaymentPct > 1 {
		return fmt.Errorf("%w: down payment must be in [0, 1], got %v", ErrInvalidInput, in.DownPaymentPct)
	}

	return nil
}

// Clamp returns a copy of the inputs with the interest rate and term bounded
// to the ranges a caller accepts from a form.
func (in Inputs) Clamp() Inputs {
	in.AnnualInterestRatePct = mathutil.Clamp(in.AnnualInterestRatePct,
		constants.MinInterestRatePct, constants.MaxInterestRatePct)
	switch {
	case in.LoanTermYears < constants.MinLoanTermYears:
		in.LoanTermYears = constants.MinLoanTermYears
	case in.LoanTermYears > constants.MaxLoanTermYears:
		in.LoanTermYears = constants.MaxLoanTermYears
	}
	return in
}
