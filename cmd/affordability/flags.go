package main

import (
	"errors"
	"strings"

	"github.com/iwvelando/home-affordability/pkg/eligibility"
	"github.com/iwvelando/home-affordability/pkg/loans"
	"github.com/iwvelando/home-affordability/pkg/validation"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// buyerFlags holds the form inputs shared by the pricing subcommands.
type buyerFlags struct {
	buyer   loans.Buyer
	formula string
	units   int
}

func addBuyerFlags(cmd *cobra.Command, withFormula bool) *buyerFlags {
	bf := &buyerFlags{}
	flags := cmd.Flags()
	flags.Float64Var(&bf.buyer.PurchasePrice, "price", 0, "purchase price")
	flags.IntVar(&bf.buyer.LoanTermYears, "term", 0, "loan term in years")
	flags.Float64Var(&bf.buyer.AnnualInterestRatePct, "rate", 0, "annual interest rate percent")
	flags.Float64Var(&bf.buyer.AnnualPropertyTax, "tax", 0, "annual property tax")
	flags.Float64Var(&bf.buyer.AnnualHomeInsurance, "insurance", 0, "annual home insurance")
	flags.Float64Var(&bf.buyer.AnnualFloodInsurance, "flood", 0, "annual flood insurance")
	flags.IntVar(&bf.units, "units", 0, "occupancy units (1-4)")
	if withFormula {
		flags.StringVar(&bf.formula, "formula", "", "loan formula id, e.g. C.10.0")
	}
	return bf
}

// resolve fills every flag the caller did not set from the configured
// defaults, clamps rate and term, then validates what is left.
func (bf *buyerFlags) resolve(a *app, flags *pflag.FlagSet) (eligibility.Request, error) {
	d := a.conf.Defaults
	buyer := bf.buyer

	if !flags.Changed("price") {
		buyer.PurchasePrice = d.Buyer.PurchasePrice
	}
	if !flags.Changed("term") {
		buyer.LoanTermYears = d.Buyer.LoanTermYears
	}
	if !flags.Changed("rate") {
		buyer.AnnualInterestRatePct = d.Buyer.AnnualInterestRatePct
	}
	if !flags.Changed("tax") {
		buyer.AnnualPropertyTax = d.Buyer.AnnualPropertyTax
	}
	if !flags.Changed("insurance") {
		buyer.AnnualHomeInsurance = d.Buyer.AnnualHomeInsurance
	}
	if !flags.Changed("flood") {
		buyer.AnnualFloodInsurance = d.Buyer.AnnualFloodInsurance
	}

	units := bf.units
	if !flags.Changed("units") {
		units = d.Units
	}
	formula := bf.formula
	if !flags.Changed("formula") {
		formula = d.Formula
	}

	if problems := validation.ValidateBuyer(buyer); len(problems) > 0 {
		return eligibility.Request{}, errors.New(strings.Join(problems, "; "))
	}
	if err := validation.ValidateUnits(units); err != nil {
		return eligibility.Request{}, err
	}

	return eligibility.Request{
		Buyer:     buyer.Clamp(),
		FormulaID: formula,
		Units:     units,
	}, nil
}
