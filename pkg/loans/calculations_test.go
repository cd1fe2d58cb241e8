package loans

import (
	"errors"
	"math"
	"testing"
)

func baseInputs() Inputs {
	return Inputs{
		PurchasePrice:         807000,
		LoanTermYears:         30,
		AnnualInterestRatePct: 6.5,
		DownPaymentPct:        0.10,
		SellerConcessionPct:   0,
		AnnualPropertyTax:     9600,
		AnnualHomeInsurance:   1800,
		AnnualFloodInsurance:  600,
	}
}

func TestCalculateMonthlyPayment(t *testing.T) {
	tests := []struct {
		name                  string
		loanAmount            float64
		annualInterestRatePct float64
		termMonths            int
		expectedRange         []float64 // [min, max] expected range
	}{
		{
			name:                  "Standard 30-year mortgage",
			loanAmount:            240000,
			annualInterestRatePct: 6.0,
			termMonths:            360,
			expectedRange:         []float64{1400, 1500}, // Around $1439
		},
		{
			name:                  "15-year mortgage",
			loanAmount:            400000,
			annualInterestRatePct: 5.5,
			termMonths:            180,
			expectedRange:         []float64{3260, 3280}, // Around $3268
		},
		{
			name:                  "Zero interest loan",
			loanAmount:            12000,
			annualInterestRatePct: 0.0,
			termMonths:            60,
			expectedRange:         []float64{199.99, 200.01},
		},
		{
			name:                  "Fully paid down",
			loanAmount:            0,
			annualInterestRatePct: 5.0,
			termMonths:            360,
			expectedRange:         []float64{0, 0},
		},
		{
			name:                  "High interest loan",
			loanAmount:            10000,
			annualInterestRatePct: 18.0,
			termMonths:            36,
			expectedRange:         []float64{360, 380}, // Around $362
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateMonthlyPayment(tt.loanAmount, tt.annualInterestRatePct, tt.termMonths)

			if result < tt.expectedRange[0] || result > tt.expectedRange[1] {
				t.Errorf("CalculateMonthlyPayment() = %.2f, expected range [%.2f, %.2f]",
					result, tt.expectedRange[0], tt.expectedRange[1])
			}
		})
	}
}

func TestComputeFigures(t *testing.T) {
	q, err := Compute(baseInputs())
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	if q.TotalSalePrice != 807000 {
		t.Errorf("TotalSalePrice = %.2f, expected 807000", q.TotalSalePrice)
	}
	if math.Abs(q.LoanAmount-726300) > 0.001 {
		t.Errorf("LoanAmount = %.2f, expected 726300", q.LoanAmount)
	}
	if math.Abs(q.CashToClose-80700) > 0.001 {
		t.Errorf("CashToClose = %.2f, expected 80700", q.CashToClose)
	}
	if q.MonthlyTax != 800 || q.MonthlyInsurance != 150 || q.MonthlyFlood != 50 {
		t.Errorf("escrow = %.2f/%.2f/%.2f, expected 800/150/50", q.MonthlyTax, q.MonthlyInsurance, q.MonthlyFlood)
	}

	expectedTotal := q.MonthlyPayment + 1000
	if math.Abs(q.TotalMonthlyPayment-expectedTotal) > 1e-9 {
		t.Errorf("TotalMonthlyPayment = %.2f, expected %.2f", q.TotalMonthlyPayment, expectedTotal)
	}
	if math.Abs(q.LTV()-0.90) > 1e-12 {
		t.Errorf("LTV() = %v, expected 0.90", q.LTV())
	}
}

func TestComputeSellerConcessionGrossUp(t *testing.T) {
	concessions := []float64{0, 0.03, 0.06, 0.5, 0.99}
	for _, sc := range concessions {
		in := baseInputs()
		in.PurchasePrice = 500000
		in.SellerConcessionPct = sc

		q, err := Compute(in)
		if err != nil {
			t.Fatalf("Compute(sc=%v) error = %v", sc, err)
		}

		if net := q.TotalSalePrice * (1 - sc); math.Abs(net-in.PurchasePrice) > 1e-6 {
			t.Errorf("sc=%v: net price %.6f, expected %.2f", sc, net, in.PurchasePrice)
		}
		if sum := q.LoanAmount + q.CashToClose; math.Abs(sum-q.TotalSalePrice) > 1e-6 {
			t.Errorf("sc=%v: loan + cash = %.6f, expected %.6f", sc, sum, q.TotalSalePrice)
		}
	}
}

func TestComputeMonotonicInDownPayment(t *testing.T) {
	previous, err := Compute(baseInputs())
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	for _, dp := range []float64{0.15, 0.20, 0.25, 0.50, 0.90} {
		in := baseInputs()
		in.DownPaymentPct = dp
		q, err := Compute(in)
		if err != nil {
			t.Fatalf("Compute(dp=%v) error = %v", dp, err)
		}
		if q.LoanAmount >= previous.LoanAmount {
			t.Errorf("dp=%v: loan amount %.2f did not decrease from %.2f", dp, q.LoanAmount, previous.LoanAmount)
		}
		if q.MonthlyPayment >= previous.MonthlyPayment {
			t.Errorf("dp=%v: monthly payment %.2f did not decrease from %.2f", dp, q.MonthlyPayment, previous.MonthlyPayment)
		}
		previous = q
	}
}

func TestComputeZeroRate(t *testing.T) {
	in := baseInputs()
	in.AnnualInterestRatePct = 0

	q, err := Compute(in)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	expected := 726300.0 / 360
	if math.Abs(q.MonthlyPayment-expected) > 1e-6 {
		t.Errorf("MonthlyPayment = %.4f, expected %.4f", q.MonthlyPayment, expected)
	}
	if math.IsNaN(q.MonthlyPayment) {
		t.Error("MonthlyPayment must not be NaN for a zero rate")
	}
}

func TestComputeDeterministic(t *testing.T) {
	first, err := Compute(baseInputs())
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	for i := 0; i < 10; i++ {
		again, _ := Compute(baseInputs())
		if again != first {
			t.Fatalf("Compute() run %d = %+v, expected %+v", i, again, first)
		}
	}
}

func TestComputeInvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Inputs)
	}{
		{"Seller concession of 100%", func(in *Inputs) { in.SellerConcessionPct = 1.0 }},
		{"Seller concession above 100%", func(in *Inputs) { in.SellerConcessionPct = 1.5 }},
		{"Negative seller concession", func(in *Inputs) { in.SellerConcessionPct = -0.01 }},
		{"Zero term", func(in *Inputs) { in.LoanTermYears = 0 }},
		{"Negative term", func(in *Inputs) { in.LoanTermYears = -30 }},
		{"Negative rate", func(in *Inputs) { in.AnnualInterestRatePct = -1 }},
		{"NaN price", func(in *Inputs) { in.PurchasePrice = math.NaN() }},
		{"Infinite tax", func(in *Inputs) { in.AnnualPropertyTax = math.Inf(1) }},
		{"Negative insurance", func(in *Inputs) { in.AnnualHomeInsurance = -5 }},
		{"Negative flood", func(in *Inputs) { in.AnnualFloodInsurance = -5 }},
		{"Down payment above 100%", func(in *Inputs) { in.DownPaymentPct = 1.2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := baseInputs()
			tt.mutate(&in)

			q, err := Compute(in)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("Compute() error = %v, expected ErrInvalidInput", err)
			}
			if q != (Quote{}) {
				t.Errorf("Compute() returned partial quote %+v", q)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	in := baseInputs()
	in.AnnualInterestRatePct = 14
	in.LoanTermYears = 40

	clamped := in.Clamp()
	if clamped.AnnualInterestRatePct != 10 {
		t.Errorf("clamped rate = %v, expected 10", clamped.AnnualInterestRatePct)
	}
	if clamped.LoanTermYears != 30 {
		t.Errorf("clamped term = %d, expected 30", clamped.LoanTermYears)
	}
	if in.LoanTermYears != 40 {
		t.Error("Clamp() must not modify the receiver")
	}

	in.AnnualInterestRatePct = 0
	in.LoanTermYears = 1
	clamped = in.Clamp()
	if clamped.AnnualInterestRatePct != 1 || clamped.LoanTermYears != 5 {
		t.Errorf("clamped = %v%%/%dy, expected 1%%/5y", clamped.AnnualInterestRatePct, clamped.LoanTermYears)
	}
}
