// Package eligibility classifies a mortgage quote against conforming,
// high-balance and maximum loan limits and proposes corrections when the
// chosen formula is ineligible.
//
// A Resolver holds only read-only data, so Evaluate may be called
// concurrently. Applying a correction is always a new Evaluate call made by
// the caller; nothing is chained or retried here.
package eligibility

import (
	"context"
	"errors"
	"fmt"

	"github.com/iwvelando/home-affordability/pkg/constants"
	"github.com/iwvelando/home-affordability/pkg/loans"
	"github.com/iwvelando/home-affordability/pkg/mathutil"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrUnknownFormula is returned when the formula id is not in the catalog.
	ErrUnknownFormula = errors.New("unknown formula")
	// ErrUnknownUnitCount is returned when the limits table has no entry for
	// the requested unit count.
	ErrUnknownUnitCount = errors.New("unknown unit count")
	// ErrInvalidCatalog is returned for malformed formulas.
	ErrInvalidCatalog = errors.New("invalid formula catalog")
	// ErrInvalidLimits is returned for malformed limits.
	ErrInvalidLimits = errors.New("invalid loan limits")
)

// Request is one evaluation. DownPaymentOverride, when set, replaces the
// formula's down payment; it is how an AdjustedDownPayment correction is
// applied.
type Request struct {
	Buyer               loans.Buyer `json:"buyer"`
	FormulaID           string      `json:"formula"`
	Units               int         `json:"units"`
	DownPaymentOverride *float64    `json:"downPaymentOverride,omitempty"`
}

// Result pairs a formula with its evaluation.
type Result struct {
	Formula Formula     `json:"formula"`
	Quote   loans.Quote `json:"quote"`
	Verdict Verdict     `json:"verdict"`
}

// Resolver evaluates requests against a catalog and a limits table.
type Resolver struct {
	logger  *zap.Logger
	catalog *Catalog
	limits  *LimitsTable
}

// NewResolver creates a resolver. Nil catalog or limits fall back to the
// built-in defaults.
func NewResolver(logger *zap.Logger, catalog *Catalog, limits *LimitsTable) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	if limits == nil {
		limits = DefaultLimitsTable()
	}
	return &Resolver{logger: logger, catalog: catalog, limits: limits}
}

// Catalog returns the resolver's formula catalog.
func (r *Resolver) Catalog() *Catalog {
	return r.catalog
}

// Limits returns the resolver's limits table.
func (r *Resolver) Limits() *LimitsTable {
	return r.limits
}

// Evaluate computes the quote for the chosen formula, classifies it and,
// when ineligible, attaches corrections.
func (r *Resolver) Evaluate(req Request) (loans.Quote, Verdict, error) {
	formula, ok := r.catalog.Lookup(req.FormulaID)
	if !ok {
		return loans.Quote{}, Verdict{}, fmt.Errorf("%w: %q", ErrUnknownFormula, req.FormulaID)
	}

	downPayment := formula.DownPaymentPct
	if req.DownPaymentOverride != nil {
		downPayment = *req.DownPaymentOverride
	}

	quote, err := loans.Compute(req.Buyer.Inputs(downPayment, formula.SellerConcessionPct))
	if err != nil {
		return loans.Quote{}, Verdict{}, err
	}

	limits, ok := r.limits.Lookup(req.Units)
	if !ok {
		return loans.Quote{}, Verdict{}, fmt.Errorf("%w: %d", ErrUnknownUnitCount, req.Units)
	}

	verdict := Verdict{Status: StatusEligible, LTV: quote.LTV()}
	verdict.Violations = classify(quote, formula, limits)
	if len(verdict.Violations) > 0 {
		primary := precedence(verdict.Violations)
		verdict.Status = primary.Status
		verdict.LimitViolated = primary.Limit
		verdict.Corrections = r.corrections(req, formula, downPayment, quote, verdict.Violations, limits)
	}

	r.logger.Debug(fmt.Sprintf("evaluated formula %s for %d units", formula.ID, req.Units),
		zap.String("op", "eligibility.Evaluate"),
		zap.String("status", string(verdict.Status)),
		zap.Float64("loanAmount", quote.LoanAmount),
		zap.Int("corrections", len(verdict.Corrections)),
	)

	return quote, verdict, nil
}

// EvaluateAll evaluates every catalog formula for the same buyer and unit
// count in parallel. Results are returned in catalog order.
func (r *Resolver) EvaluateAll(ctx context.Context, buyer loans.Buyer, units int) ([]Result, error) {
	formulas := r.catalog.Formulas()
	results := make([]Result, len(formulas))

	g, gctx := errgroup.WithContext(ctx)
	for i, f := range formulas {
		i, f := i, f
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			quote, verdict, err := r.Evaluate(Request{Buyer: buyer, FormulaID: f.ID, Units: units})
			if err != nil {
				return fmt.Errorf("formula %s: %w", f.ID, err)
			}
			results[i] = Result{Formula: f, Quote: quote, Verdict: verdict}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func classify(quote loans.Quote, formula Formula, limits Limits) []Violation {
	var violations []Violation
	loan := quote.LoanAmount

	switch formula.Tier {
	case constants.TierConforming:
		if mathutil.Exceeds(loan, limits.Conforming) {
			violations = append(violations, Violation{Status: StatusExceedsConforming, Limit: limits.Conforming})
		}
	case constants.TierHighBalance:
		if mathutil.AtOrBelow(loan, limits.Conforming) {
			violations = append(violations, Violation{Status: StatusOutsideHighBalanceRange, Limit: limits.Conforming})
		} else if mathutil.Exceeds(loan, limits.HighBalance) {
			violations = append(violations, Violation{Status: StatusOutsideHighBalanceRange, Limit: limits.HighBalance})
		}
	}

	if ceiling := limits.MaxLoanLimit(); mathutil.Exceeds(loan, ceiling) {
		violations = append(violations, Violation{Status: StatusExceedsMax, Limit: ceiling})
	}
	return violations
}

// precedence picks the violation to display: ExceedsMax wins, otherwise the
// tier violation.
func precedence(violations []Violation) Violation {
	for _, v := range violations {
		if v.Status == StatusExceedsMax {
			return v
		}
	}
	return violations[0]
}

// binding picks the violation alternates are searched for: the tier
// violation when there is one, otherwise ExceedsMax.
func binding(violations []Violation) Violation {
	for _, v := range violations {
		if v.Status != StatusExceedsMax {
			return v
		}
	}
	return violations[0]
}

// adjustmentTarget returns the lowest limit the loan amount is above, if any.
func adjustmentTarget(loan float64, violations []Violation) (float64, bool) {
	target, found := 0.0, false
	for _, v := range violations {
		if mathutil.Exceeds(loan, v.Limit) && (!found || v.Limit < target) {
			target, found = v.Limit, true
		}
	}
	return target, found
}

func (r *Resolver) corrections(req Request, chosen Formula, downPayment float64, quote loans.Quote, violations []Violation, limits Limits) []Correction {
	var out []Correction

	if target, ok := adjustmentTarget(quote.LoanAmount, violations); ok && quote.TotalSalePrice > 0 {
		newDownPayment := downPayment + (quote.LoanAmount-target)/quote.TotalSalePrice
		if newDownPayment < 1 {
			adjusted, err := loans.Compute(req.Buyer.Inputs(newDownPayment, chosen.SellerConcessionPct))
			if err == nil {
				out = append(out, Correction{
					Kind:              AdjustedDownPayment,
					NewDownPaymentPct: newDownPayment,
					Quote:             adjusted,
				})
			}
		}
	}

	inBand := bandFor(binding(violations).Status, limits)
	for _, f := range r.catalog.formulas {
		if f.ID == chosen.ID {
			continue
		}
		candidate, err := loans.Compute(req.Buyer.Inputs(f.DownPaymentPct, f.SellerConcessionPct))
		if err != nil {
			r.logger.Debug(fmt.Sprintf("skipping alternate formula %s", f.ID),
				zap.String("op", "eligibility.corrections"),
				zap.Error(err),
			)
			continue
		}
		if inBand(f, candidate.LoanAmount) {
			out = append(out, Correction{Kind: AlternateFormula, FormulaID: f.ID, Quote: candidate})
			break
		}
	}

	return out
}

// bandFor returns the test an alternate formula must pass to fix the given
// violation. The max-limit fix accepts any tier.
func bandFor(status Status, limits Limits) func(Formula, float64) bool {
	switch status {
	case StatusExceedsConforming:
		return func(f Formula, loan float64) bool {
			return f.Tier == constants.TierConforming && mathutil.AtOrBelow(loan, limits.Conforming)
		}
	case StatusOutsideHighBalanceRange:
		return func(f Formula, loan float64) bool {
			return f.Tier == constants.TierHighBalance &&
				mathutil.Exceeds(loan, limits.Conforming) &&
				mathutil.AtOrBelow(loan, limits.HighBalance)
		}
	default:
		ceiling := limits.MaxLoanLimit()
		return func(_ Formula, loan float64) bool {
			return mathutil.AtOrBelow(loan, ceiling)
		}
	}
}
