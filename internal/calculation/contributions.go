package calculation

import (
	"github.com/rpgo/statutory-calculator/internal/domain"
	money "github.com/rpgo/statutory-calculator/pkg/decimal"
	"github.com/shopspring/decimal"
)

// contribution is one non-tax deduction before rounding. The relief stage
// reads the unrounded values; Line is what gets emitted.
type contribution struct {
	Type     domain.StatutoryDeductionType
	Band     domain.RateBand
	Employee decimal.Decimal
	Employer decimal.Decimal
}

// Line rounds the contribution for emission.
func (c contribution) Line() domain.CalculatedStatutory {
	return domain.CalculatedStatutory{
		Code:           c.Type.Code,
		Name:           c.Type.Name,
		Class:          c.Type.Class,
		EmployeeAmount: money.RoundCents(c.Employee),
		EmployerAmount: money.RoundCents(c.Employer),
		Method:         c.Band.Method,
	}
}

// emitted reports whether either rounded share is strictly positive.
func (c contribution) emitted() bool {
	l := c.Line()
	return l.EmployeeAmount.IsPositive() || l.EmployerAmount.IsPositive()
}

// rawAmounts applies the band's calculation method to gross pay.
func rawAmounts(b domain.RateBand, gross decimal.Decimal, mondays int) (employee, employer decimal.Decimal) {
	switch b.Method {
	case domain.MethodPercentage:
		return gross.Mul(b.EmployeeRate), gross.Mul(b.EmployerRate)
	case domain.MethodPerMonday:
		n := decimal.NewFromInt(int64(mondays))
		return n.Mul(b.EmployeePerUnitAmount), n.Mul(b.EmployerPerUnitAmount)
	case domain.MethodFixed:
		return b.EmployeeFixedAmount, b.EmployerFixedAmount
	}
	return decimal.Zero, decimal.Zero
}

// capShare clamps one payer's raw amount, monthly cap first and then the
// annual cap net of what the year and the period already carry.
func capShare(raw decimal.Decimal, monthly, annual *decimal.Decimal, ytd, period decimal.Decimal) decimal.Decimal {
	amount := money.NonNegative(raw)
	amount = money.ClampToCap(amount, monthly, period)
	return money.ClampToCap(amount, annual, ytd, period)
}

// computeContributions runs every non-tax type in configuration order.
func (e *Engine) computeContributions(in *preparedInput) ([]contribution, error) {
	var out []contribution
	for _, dt := range in.DeductionTypes {
		if dt.Class.IsIncomeTax() {
			continue
		}
		band, ok, err := ResolveBand(dt, in.GrossPay, in.age, in.EffectiveDate)
		if err != nil {
			return nil, err
		}
		if !ok {
			e.Logger.Debugf("%s: no band for gross %s, skipping", dt.Code, in.GrossPay.StringFixed(2))
			continue
		}
		ee, er := rawAmounts(band, in.GrossPay, in.mondays)
		ytd, period := in.YTD.Get(dt.Code), in.Period.Get(dt.Code)
		c := contribution{
			Type:     dt,
			Band:     band,
			Employee: capShare(ee, band.EmployeeMonthlyCap, band.EmployeeAnnualCap, ytd.Employee, period.Employee),
			Employer: capShare(er, band.EmployerMonthlyCap, band.EmployerAnnualCap, ytd.Employer, period.Employer),
		}
		if !c.Employee.Equal(ee) || !c.Employer.Equal(er) {
			e.Logger.Debugf("%s: capped %s/%s to %s/%s", dt.Code,
				ee.StringFixed(2), er.StringFixed(2), c.Employee.StringFixed(2), c.Employer.StringFixed(2))
		}
		if !c.emitted() {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}
