package output

import (
	"bytes"
	"encoding/csv"
	"reflect"
	"strings"
	"testing"

	"github.com/iwvelando/home-affordability/pkg/eligibility"
	"github.com/iwvelando/home-affordability/pkg/loans"
)

func evaluate(t *testing.T, price float64, formula string) eligibility.Result {
	t.Helper()
	r := eligibility.NewResolver(nil, nil, nil)
	buyer := loans.Buyer{
		PurchasePrice:         price,
		LoanTermYears:         30,
		AnnualInterestRatePct: 6.5,
		AnnualPropertyTax:     9600,
		AnnualHomeInsurance:   1800,
	}
	quote, verdict, err := r.Evaluate(eligibility.Request{Buyer: buyer, FormulaID: formula, Units: 1})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	f, _ := r.Catalog().Lookup(formula)
	return eligibility.Result{Formula: f, Quote: quote, Verdict: verdict}
}

func TestPrettyQuote(t *testing.T) {
	var buf bytes.Buffer
	PrettyQuote(&buf, evaluate(t, 807000, "C.10.0").Quote)
	output := buf.String()

	for _, want := range []string{
		"Total sale price      | $807,000.00",
		"Loan amount           | $726,300.00",
		"Cash to close         | $80,700.00",
		"Monthly tax           | $800.00",
		"Monthly insurance     | $150.00",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("PrettyQuote missing %q in:\n%s", want, output)
		}
	}
}

func TestPrettyResult(t *testing.T) {
	var buf bytes.Buffer
	PrettyResult(&buf, evaluate(t, 2000000, "C.20.0"))
	output := buf.String()

	for _, want := range []string{
		"--- Formula C.20.0 ---",
		"Loan amount           | $1,600,000.00",
		"Status                | ExceedsMax",
		"violates ExceedsConforming limit $806,500.00",
		"violates ExceedsMax limit $1,209,750.00",
		"suggestion 1: raise down payment to 59.675% (loan $806,500.00)",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("PrettyResult missing %q in:\n%s", want, output)
		}
	}
}

func TestPrettyResults(t *testing.T) {
	results := []eligibility.Result{
		evaluate(t, 850000, "C.3.0"),
		evaluate(t, 850000, "C.10.0"),
	}

	var buf bytes.Buffer
	PrettyResults(&buf, results)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")

	if len(lines) != 4 {
		t.Fatalf("expected header, separator and 2 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[2], "C.3.0") || !strings.Contains(lines[2], "ExceedsConforming") {
		t.Errorf("unexpected first row %q", lines[2])
	}
	if !strings.HasPrefix(lines[3], "C.10.0") || !strings.Contains(lines[3], "Eligible") {
		t.Errorf("unexpected second row %q", lines[3])
	}
	if !strings.Contains(lines[2], "|     $824,500.00 |") {
		t.Errorf("expected right-aligned loan amount in %q", lines[2])
	}

	// every row puts its column separators where the header does
	header := separators(lines[0])
	for _, line := range lines[1:] {
		if got := separators(line); !reflect.DeepEqual(got, header) {
			t.Errorf("columns misaligned: %q has separators at %v, header at %v", line, got, header)
		}
	}
}

func separators(line string) []int {
	var idx []int
	for i, r := range line {
		if r == '|' {
			idx = append(idx, i)
		}
	}
	return idx
}

func TestPrettyFormulas(t *testing.T) {
	var buf bytes.Buffer
	PrettyFormulas(&buf, eligibility.DefaultCatalog().Formulas())
	output := buf.String()

	if !strings.Contains(output, "C.10.3  | C    | 10.00% | 3.00% | 90.00%") {
		t.Errorf("PrettyFormulas missing C.10.3 row in:\n%s", output)
	}
	if strings.Index(output, "C.25.0") > strings.Index(output, "HB.5.0") {
		t.Error("PrettyFormulas did not keep catalog order")
	}
}

func TestCsvResults(t *testing.T) {
	results := []eligibility.Result{
		evaluate(t, 850000, "C.3.0"),
		evaluate(t, 807000, "C.10.0"),
	}

	var buf bytes.Buffer
	if err := CsvResults(&buf, results); err != nil {
		t.Fatalf("CsvResults() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header and 2 rows, got %d", len(records))
	}
	if records[0][0] != "formula" || len(records[0]) != len(csvHeader) {
		t.Errorf("unexpected header %v", records[0])
	}

	first := records[1]
	if first[0] != "C.3.0" || first[1] != "ExceedsConforming" {
		t.Errorf("unexpected first row %v", first)
	}
	if first[3] != "824500.00" {
		t.Errorf("expected loan amount 824500.00, got %s", first[3])
	}
	if !strings.HasPrefix(first[11], "raise down payment") {
		t.Errorf("expected suggestion, got %q", first[11])
	}

	second := records[2]
	if second[1] != "Eligible" || second[11] != "" {
		t.Errorf("unexpected second row %v", second)
	}
	if second[10] != "0.9000" {
		t.Errorf("expected ltv 0.9000, got %s", second[10])
	}
}

func TestCsvQuote(t *testing.T) {
	var buf bytes.Buffer
	if err := CsvQuote(&buf, evaluate(t, 807000, "C.10.0").Quote); err != nil {
		t.Fatalf("CsvQuote() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[1], ",,807000.00,726300.00,80700.00") {
		t.Errorf("unexpected quote row %q", lines[1])
	}
}

func TestCsvString(t *testing.T) {
	s, err := CsvString([]eligibility.Result{evaluate(t, 807000, "C.10.0")})
	if err != nil {
		t.Fatalf("CsvString() error = %v", err)
	}
	if !strings.HasPrefix(s, "formula,status,") {
		t.Errorf("unexpected CSV %q", s)
	}
}
