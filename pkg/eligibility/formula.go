package eligibility

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/iwvelando/home-affordability/pkg/constants"
	"github.com/iwvelando/home-affordability/pkg/mathutil"
)

// Formula is a named down-payment / seller-concession combination. Its tier
// decides which loan-size band it is valid in.
type Formula struct {
	ID                  string  `json:"id"`
	Tier                string  `json:"tier"`
	DownPaymentPct      float64 `json:"downPaymentPct"`
	SellerConcessionPct float64 `json:"sellerConcessionPct"`
	MaxLTV              float64 `json:"maxLtv"`
}

// ParseFormulaID splits an identifier such as "C.10.0" or "HB.5.3" into its
// tier, down payment and seller concession. The percentages in the
// identifier are returned as fractions.
func ParseFormulaID(id string) (tier string, downPaymentPct, sellerConcessionPct float64, err error) {
	parts := strings.Split(strings.TrimSpace(id), constants.FormulaIDSeparator)
	if len(parts) != 3 {
		return "", 0, 0, fmt.Errorf("%w: formula id %q must look like TIER.DOWN.CONCESSION", ErrInvalidCatalog, id)
	}

	tier = parts[0]
	if tier != constants.TierConforming && tier != constants.TierHighBalance {
		return "", 0, 0, fmt.Errorf("%w: formula id %q has unknown tier %q", ErrInvalidCatalog, id, tier)
	}

	down, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return "", 0, 0, fmt.Errorf("%w: formula id %q has invalid down payment: %v", ErrInvalidCatalog, id, err)
	}
	concession, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return "", 0, 0, fmt.Errorf("%w: formula id %q has invalid seller concession: %v", ErrInvalidCatalog, id, err)
	}

	return tier, mathutil.ToFraction(down), mathutil.ToFraction(concession), nil
}

// NewFormula builds a Formula from its identifier. A zero maxLTV defaults to
// the loan-to-value implied by the down payment.
func NewFormula(id string, maxLTV float64) (Formula, error) {
	tier, down, concession, err := ParseFormulaID(id)
	if err != nil {
		return Formula{}, err
	}

	f := Formula{
		ID:                  strings.TrimSpace(id),
		Tier:                tier,
		DownPaymentPct:      down,
		SellerConcessionPct: concession,
		MaxLTV:              maxLTV,
	}
	if f.MaxLTV == 0 {
		f.MaxLTV = 1 - down
	}
	return f, f.validate()
}

func (f Formula) validate() error {
	if f.DownPaymentPct < 0 || f.DownPaymentPct >= 1 {
		return fmt.Errorf("%w: formula %s down payment must be in [0, 100)", ErrInvalidCatalog, f.ID)
	}
	if f.SellerConcessionPct < 0 || f.SellerConcessionPct >= 1 {
		return fmt.Errorf("%w: formula %s seller concession must be in [0, 100)", ErrInvalidCatalog, f.ID)
	}
	if f.MaxLTV <= 0 || f.MaxLTV > 1 {
		return fmt.Errorf("%w: formula %s max LTV must be in (0, 1]", ErrInvalidCatalog, f.ID)
	}
	return nil
}

// Catalog is an ordered, immutable list of formulas. The order is the
// tie-break when searching for an alternate formula.
type Catalog struct {
	formulas []Formula
	index    map[string]int
}

// NewCatalog validates the formulas and keeps them in the given order.
func NewCatalog(formulas ...Formula) (*Catalog, error) {
	if len(formulas) == 0 {
		return nil, fmt.Errorf("%w: catalog is empty", ErrInvalidCatalog)
	}

	c := &Catalog{
		formulas: make([]Formula, 0, len(formulas)),
		index:    make(map[string]int, len(formulas)),
	}
	for _, f := range formulas {
		if err := f.validate(); err != nil {
			return nil, err
		}
		if _, dup := c.index[f.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate formula id %s", ErrInvalidCatalog, f.ID)
		}
		c.index[f.ID] = len(c.formulas)
		c.formulas = append(c.formulas, f)
	}
	return c, nil
}

// NewCatalogFromIDs builds a catalog from identifiers alone.
func NewCatalogFromIDs(ids ...string) (*Catalog, error) {
	formulas := make([]Formula, 0, len(ids))
	for _, id := range ids {
		f, err := NewFormula(id, 0)
		if err != nil {
			return nil, err
		}
		formulas = append(formulas, f)
	}
	return NewCatalog(formulas...)
}

// Lookup returns the formula with the given identifier.
func (c *Catalog) Lookup(id string) (Formula, bool) {
	i, ok := c.index[id]
	if !ok {
		return Formula{}, false
	}
	return c.formulas[i], true
}

// Formulas returns a copy of the catalog in order.
func (c *Catalog) Formulas() []Formula {
	return append([]Formula(nil), c.formulas...)
}

// Len returns the number of formulas.
func (c *Catalog) Len() int {
	return len(c.formulas)
}

// DefaultFormulaIDs is the built-in catalog order.
var DefaultFormulaIDs = []string{
	"C.3.0", "C.3.3", "C.5.0", "C.5.3", "C.10.0", "C.10.3",
	"C.15.0", "C.20.0", "C.20.3", "C.25.0",
	"HB.5.0", "HB.10.0", "HB.10.3", "HB.15.0", "HB.20.0", "HB.25.0",
}

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() *Catalog {
	c, err := NewCatalogFromIDs(DefaultFormulaIDs...)
	if err != nil {
		panic(fmt.Sprintf("invalid built-in catalog: %v", err))
	}
	return c
}
