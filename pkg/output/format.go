// Package output provides utilities for formatting and displaying quotes and
// eligibility results.
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/iwvelando/home-affordability/pkg/eligibility"
	"github.com/iwvelando/home-affordability/pkg/loans"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// csvHeader mirrors the columns of the quote summary export.
var csvHeader = []string{
	"formula", "status", "total sale price", "loan amount", "cash to close",
	"monthly payment", "monthly tax", "monthly insurance", "monthly flood",
	"total monthly payment", "ltv", "suggestion",
}

// PrettyQuote writes a human-readable quote summary.
func PrettyQuote(w io.Writer, quote loans.Quote) {
	p := message.NewPrinter(language.English)
	_, _ = p.Fprintf(w, "Total sale price      | $%.2f\n", quote.TotalSalePrice)
	_, _ = p.Fprintf(w, "Loan amount           | $%.2f\n", quote.LoanAmount)
	_, _ = p.Fprintf(w, "Cash to close         | $%.2f\n", quote.CashToClose)
	_, _ = p.Fprintf(w, "Monthly P&I           | $%.2f\n", quote.MonthlyPayment)
	_, _ = p.Fprintf(w, "Monthly tax           | $%.2f\n", quote.MonthlyTax)
	_, _ = p.Fprintf(w, "Monthly insurance     | $%.2f\n", quote.MonthlyInsurance)
	_, _ = p.Fprintf(w, "Monthly flood         | $%.2f\n", quote.MonthlyFlood)
	_, _ = p.Fprintf(w, "Total monthly payment | $%.2f\n", quote.TotalMonthlyPayment)
}

// PrettyResult writes one formula's quote, verdict and corrections.
func PrettyResult(w io.Writer, result eligibility.Result) {
	p := message.NewPrinter(language.English)
	fmt.Fprintf(w, "--- Formula %s ---\n", result.Formula.ID)
	PrettyQuote(w, result.Quote)
	_, _ = p.Fprintf(w, "LTV                   | %.2f%%\n", result.Verdict.LTV*100)
	fmt.Fprintf(w, "Status                | %s\n", result.Verdict.Status)
	for _, v := range result.Verdict.Violations {
		_, _ = p.Fprintf(w, "  violates %s limit $%.2f\n", v.Status, v.Limit)
	}
	for i, c := range result.Verdict.Corrections {
		_, _ = p.Fprintf(w, "  suggestion %d: %s\n", i+1, describe(c))
	}
}

// resultsRow lays out the PrettyResults columns; money is right aligned.
const resultsRow = "%-7s | %15s | %15s | %13s | %s\n"

// PrettyResults writes a compact table of every formula.
func PrettyResults(w io.Writer, results []eligibility.Result) {
	p := message.NewPrinter(language.English)
	fmt.Fprintf(w, resultsRow, "Formula", "Loan Amount", "Cash to Close", "Monthly Total", "Status")
	fmt.Fprintf(w, resultsRow, strings.Repeat("_", 7), strings.Repeat("_", 15),
		strings.Repeat("_", 15), strings.Repeat("_", 13), strings.Repeat("_", 6))
	for _, r := range results {
		fmt.Fprintf(w, resultsRow, r.Formula.ID,
			p.Sprintf("$%.2f", r.Quote.LoanAmount),
			p.Sprintf("$%.2f", r.Quote.CashToClose),
			p.Sprintf("$%.2f", r.Quote.TotalMonthlyPayment),
			r.Verdict.Status)
	}
}

// PrettyFormulas writes the catalog in order.
func PrettyFormulas(w io.Writer, formulas []eligibility.Formula) {
	fmt.Fprintf(w, "Formula | Tier | Down Payment | Seller Concession | Max LTV\n")
	fmt.Fprintf(w, "_______ | ____ | ____________ | _________________ | _______\n")
	for _, f := range formulas {
		fmt.Fprintf(w, "%-7s | %-4s | %.2f%% | %.2f%% | %.2f%%\n",
			f.ID, f.Tier, f.DownPaymentPct*100, f.SellerConcessionPct*100, f.MaxLTV*100)
	}
}

// CsvResults writes one row per result in comma-separated value format.
func CsvResults(w io.Writer, results []eligibility.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range results {
		suggestion := ""
		if c, ok := r.Verdict.SuggestedCorrection(); ok {
			suggestion = describe(c)
		}
		row := []string{
			r.Formula.ID,
			string(r.Verdict.Status),
			money(r.Quote.TotalSalePrice),
			money(r.Quote.LoanAmount),
			money(r.Quote.CashToClose),
			money(r.Quote.MonthlyPayment),
			money(r.Quote.MonthlyTax),
			money(r.Quote.MonthlyInsurance),
			money(r.Quote.MonthlyFlood),
			money(r.Quote.TotalMonthlyPayment),
			strconv.FormatFloat(r.Verdict.LTV, 'f', 4, 64),
			suggestion,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// CsvQuote writes a single quote with no formula or verdict.
func CsvQuote(w io.Writer, quote loans.Quote) error {
	return CsvResults(w, []eligibility.Result{{
		Quote:   quote,
		Verdict: eligibility.Verdict{LTV: quote.LTV()},
	}})
}

// CsvString renders results as CSV.
func CsvString(results []eligibility.Result) (string, error) {
	var b strings.Builder
	if err := CsvResults(&b, results); err != nil {
		return "", err
	}
	return b.String(), nil
}

func describe(c eligibility.Correction) string {
	p := message.NewPrinter(language.English)
	switch c.Kind {
	case eligibility.AdjustedDownPayment:
		return p.Sprintf("raise down payment to %.3f%% (loan $%.2f)", c.NewDownPaymentPct*100, c.Quote.LoanAmount)
	case eligibility.AlternateFormula:
		return p.Sprintf("switch to %s (loan $%.2f)", c.FormulaID, c.Quote.LoanAmount)
	default:
		return string(c.Kind)
	}
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
