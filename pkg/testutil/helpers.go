// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/home-affordability/pkg/eligibility"
)

// FindResult finds the result for a formula ID in the results slice.
// Returns a pointer to the result if found, nil otherwise.
func FindResult(results []eligibility.Result, formulaID string) *eligibility.Result {
	for i := range results {
		if results[i].Formula.ID == formulaID {
			return &results[i]
		}
	}
	return nil
}

// FindCorrection returns the first correction of the given kind.
func FindCorrection(verdict eligibility.Verdict, kind eligibility.CorrectionKind) (eligibility.Correction, bool) {
	for _, c := range verdict.Corrections {
		if c.Kind == kind {
			return c, true
		}
	}
	return eligibility.Correction{}, false
}
