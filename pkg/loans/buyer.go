package loans

// Buyer holds the raw form inputs that do not depend on the chosen loan
// formula.
type Buyer struct {
	PurchasePrice         float64 `json:"purchasePrice" yaml:"purchasePrice" mapstructure:"purchasePrice"`
	LoanTermYears         int     `json:"loanTermYears" yaml:"loanTermYears" mapstructure:"loanTermYears"`
	AnnualInterestRatePct float64 `json:"interestRate" yaml:"interestRate" mapstructure:"interestRate"`
	AnnualPropertyTax     float64 `json:"propertyTax" yaml:"propertyTax" mapstructure:"propertyTax"`
	AnnualHomeInsurance   float64 `json:"homeInsurance" yaml:"homeInsurance" mapstructure:"homeInsurance"`
	AnnualFloodInsurance  float64 `json:"floodInsurance" yaml:"floodInsurance" mapstructure:"floodInsurance"`
}

// Inputs combines the buyer's figures with a down payment and seller
// concession, both given as fractions.
func (b Buyer) Inputs(downPaymentPct, sellerConcessionPct float64) Inputs {
	return Inputs{
		PurchasePrice:         b.PurchasePrice,
		LoanTermYears:         b.LoanTermYears,
		AnnualInterestRatePct: b.AnnualInterestRatePct,
		DownPaymentPct:        downPaymentPct,
		SellerConcessionPct:   sellerConcessionPct,
		AnnualPropertyTax:     b.AnnualPropertyTax,
		AnnualHomeInsurance:   b.AnnualHomeInsurance,
		AnnualFloodInsurance:  b.AnnualFloodInsurance,
	}
}

// Clamp bounds the rate and term the same way Inputs.Clamp does.
func (b Buyer) Clamp() Buyer {
	clamped := b.Inputs(0, 0).Clamp()
	b.AnnualInterestRatePct = clamped.AnnualInterestRatePct
	b.LoanTermYears = clamped.LoanTermYears
	return b
}
