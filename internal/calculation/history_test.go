package calculation

import (
	"context"
	"testing"
	"time"

	"github.com/rpgo/statutory-calculator/internal/domain"
	"github.com/rpgo/statutory-calculator/internal/ytd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runPeriod snapshots history, calculates and posts the result, like one
// payroll run of the March period.
func runPeriod(t *testing.T, h *ytd.HistoryProvider, runID string, in *domain.CalculationInput) *domain.CalculationResult {
	t.Helper()
	start := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	snap, err := h.Snapshot(context.Background(), ytd.Key{EmployeeID: in.EmployeeID, TaxYear: 2025, PeriodStart: start})
	require.NoError(t, err)
	snap.ApplyTo(in)

	res, err := NewEngine().Calculate(in)
	require.NoError(t, err)
	require.NoError(t, h.Record(in.EmployeeID, ytd.LinesFromResult(runID, 2025, start, res)...))
	return res
}

func TestOffCycleRunFromHistory(t *testing.T) {
	tests := []struct {
		name       string
		method     domain.TaxMethod
		refunds    bool
		mainGross  string
		extraGross string
		mainTax    string
		extraTax   string
		ytdIncome  string
	}{
		// tax(6000) = 300, less the 200 already withheld this period
		{name: "cumulative with refunds", method: domain.TaxCumulative, refunds: true, mainGross: "5000", extraGross: "1000", mainTax: "200.00", extraTax: "100.00", ytdIncome: "6000.00"},
		{name: "cumulative without refunds", method: domain.TaxCumulative, mainGross: "5000", extraGross: "1000", mainTax: "200.00", extraTax: "100.00", ytdIncome: "6000.00"},
		// tax(10000) = 900, less 200
		{name: "cumulative into top band", method: domain.TaxCumulative, refunds: true, mainGross: "5000", extraGross: "5000", mainTax: "200.00", extraTax: "700.00", ytdIncome: "10000.00"},
		// each run is taxed on its own pay
		{name: "non-cumulative", method: domain.TaxNonCumulative, mainGross: "5000", extraGross: "4000", mainTax: "200.00", extraTax: "100.00", ytdIncome: "9000.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := ytd.NewHistoryProvider("PAYE")

			main := newInput(tt.mainGross, payeType())
			main.TaxMethod = tt.method
			main.AllowMidYearRefunds = tt.refunds
			first := runPeriod(t, h, "main", main)
			assertMoney(t, tt.mainTax, first.IncomeTax.PeriodTax)

			extra := newInput(tt.extraGross, payeType())
			extra.TaxMethod = tt.method
			extra.AllowMidYearRefunds = tt.refunds
			second := runPeriod(t, h, "off-cycle", extra)
			require.NotNil(t, second.IncomeTax)
			assertMoney(t, tt.extraTax, second.IncomeTax.PeriodTax)
			assertMoney(t, tt.mainTax, second.IncomeTax.PeriodTaxAlreadyPaid)
			assertMoney(t, tt.ytdIncome, second.IncomeTax.YTDTaxableIncome)
			assert.False(t, second.IncomeTax.Refund)
			assert.False(t, second.IncomeTax.Clamped)
		})
	}
}

func TestOffCycleRunRespectsMonthlyReliefCap(t *testing.T) {
	h := ytd.NewHistoryProvider("PAYE")
	newRun := func() *domain.CalculationInput {
		in := newInput("3000", percentageType("PENSION", "Pension", "0.1", "0"), payeType())
		in.Relief = &domain.TaxReliefContext{Rules: []domain.TaxReliefRule{{
			StatutoryCode: "PENSION", ReliefPercentage: d("1"), MonthlyCap: dp("300"), AppliesToEmployeeContribution: true,
		}}}
		return in
	}

	first := runPeriod(t, h, "main", newRun())
	assertMoney(t, "300.00", first.TotalTaxableIncomeReduction)

	second := runPeriod(t, h, "off-cycle", newRun())
	_, ok := second.Relief("PENSION")
	assert.False(t, ok, "monthly cap already used by the main run")
	assertMoney(t, "0.00", second.TotalTaxableIncomeReduction)
	assertMoney(t, "3000.00", second.AdjustedTaxableIncome)
	// cumulative: tax(2700 + 3000) = 270
	assertMoney(t, "270.00", second.IncomeTax.PeriodTax)
}
