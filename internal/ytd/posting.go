package ytd

import (
	"time"

	"github.com/rpgo/statutory-calculator/internal/domain"
)

// LinesFromResult converts a calculation result into the lines a payroll run
// posts, so the next period's snapshot sees them. An income-tax line is posted
// even when no tax was withheld, to carry the period's taxable income.
func LinesFromResult(runID string, taxYear int, periodStart time.Time, res *domain.CalculationResult) []domain.PostedLine {
	if res == nil {
		return nil
	}
	lines := make([]domain.PostedLine, 0, len(res.Deductions)+len(res.Reliefs)+1)
	taxPosted := false
	for _, d := range res.Deductions {
		l := domain.PostedLine{
			RunID:          runID,
			TaxYear:        taxYear,
			PeriodStart:    periodStart,
			Code:           d.Code,
			EmployeeAmount: d.EmployeeAmount,
			EmployerAmount: d.EmployerAmount,
		}
		if res.IncomeTax != nil && d.Code == res.IncomeTax.Code {
			l.TaxableIncome = res.AdjustedTaxableIncome
			taxPosted = true
		}
		lines = append(lines, l)
	}
	if res.IncomeTax != nil && !taxPosted && res.AdjustedTaxableIncome.IsPositive() {
		lines = append(lines, domain.PostedLine{
			RunID:         runID,
			TaxYear:       taxYear,
			PeriodStart:   periodStart,
			Code:          res.IncomeTax.Code,
			TaxableIncome: res.AdjustedTaxableIncome,
		})
	}
	for _, r := range res.Reliefs {
		lines = append(lines, domain.PostedLine{
			RunID:          runID,
			TaxYear:        taxYear,
			PeriodStart:    periodStart,
			ReliefCode:     r.Code,
			EmployeeAmount: r.Amount,
		})
	}
	return lines
}
