package eligibility

import "github.com/iwvelando/home-affordability/pkg/loans"

// Status classifies a quote against the loan-size tiers.
type Status string

const (
	StatusEligible                Status = "Eligible"
	StatusExceedsConforming       Status = "ExceedsConforming"
	StatusOutsideHighBalanceRange Status = "OutsideHighBalanceRange"
	StatusExceedsMax              Status = "ExceedsMax"
)

// CorrectionKind names the two ways a verdict can be fixed.
type CorrectionKind string

const (
	AdjustedDownPayment CorrectionKind = "AdjustedDownPayment"
	AlternateFormula    CorrectionKind = "AlternateFormula"
)

// Violation is one limit the loan amount fell outside of.
type Violation struct {
	Status Status  `json:"status"`
	Limit  float64 `json:"limit"`
}

// Correction is a suggested change that restores eligibility. Applying it is
// the caller's job: evaluate again with the new down payment or formula.
type Correction struct {
	Kind              CorrectionKind `json:"kind"`
	NewDownPaymentPct float64        `json:"newDownPaymentPct,omitempty"`
	FormulaID         string         `json:"formulaId,omitempty"`
	Quote             loans.Quote    `json:"quote"`
}

// Verdict is the outcome of classifying one quote.
type Verdict struct {
	// Status is the violation with display precedence, or Eligible.
	Status        Status       `json:"status"`
	LimitViolated float64      `json:"limitViolated,omitempty"`
	Violations    []Violation  `json:"violations,omitempty"`
	LTV           float64      `json:"ltv"`
	Corrections   []Correction `json:"corrections,omitempty"`
}

// Eligible reports whether no limit was violated.
func (v Verdict) Eligible() bool {
	return v.Status == StatusEligible
}

// SuggestedCorrection returns the highest-priority correction, if any.
func (v Verdict) SuggestedCorrection() (Correction, bool) {
	if len(v.Corrections) == 0 {
		return Correction{}, false
	}
	return v.Corrections[0], true
}

// Has reports whether the verdict includes a violation with the given status.
func (v Verdict) Has(status Status) bool {
	for _, violation := range v.Violations {
		if violation.Status == status {
			return true
		}
	}
	return false
}
