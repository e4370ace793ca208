package calculation

import (
	"github.com/rpgo/statutory-calculator/internal/domain"
	money "github.com/rpgo/statutory-calculator/pkg/decimal"
	"github.com/shopspring/decimal"
)

// BracketTax computes progressive tax on income. Bands are walked in ascending
// order of lower bound; each contributes its rate on the slice of income it
// covers, and the walk stops at the first band whose upper bound reaches income.
// EmployeeRate carries the bracket rate.
func BracketTax(bands []domain.RateBand, income decimal.Decimal) decimal.Decimal {
	tax := decimal.Zero
	for _, b := range sortBands(bands) {
		if income.LessThanOrEqual(b.LowerBound) {
			break
		}
		top := income
		if b.UpperBound != nil {
			top = decimal.Min(income, *b.UpperBound)
		}
		tax = tax.Add(top.Sub(b.LowerBound).Mul(b.EmployeeRate))
		if b.UpperBound == nil || income.LessThanOrEqual(*b.UpperBound) {
			break
		}
	}
	return tax
}

// PAYEInput is everything the income-tax step needs once reliefs are known.
type PAYEInput struct {
	Code     domain.StatutoryCode
	Brackets []domain.RateBand
	Method   domain.TaxMethod

	AdjustedTaxableIncome decimal.Decimal
	TaxCredits            decimal.Decimal

	// Opening balances and the YTD history are added together.
	OpeningTaxableIncome decimal.Decimal
	OpeningTaxPaid       decimal.Decimal
	YTDTaxableIncome     decimal.Decimal
	YTDTaxPaid           decimal.Decimal
	// PeriodTaxableIncome and PeriodTaxPaid come from earlier runs of this
	// period. The cumulative method taxes them together with this run.
	PeriodTaxableIncome decimal.Decimal
	PeriodTaxPaid       decimal.Decimal

	AllowMidYearRefunds bool
}

// ComputeIncomeTax applies the cumulative or non-cumulative method. Monetary
// fields of the outcome are rounded to cents.
func ComputeIncomeTax(p PAYEInput) domain.IncomeTaxOutcome {
	prevIncome := p.OpeningTaxableIncome.Add(p.YTDTaxableIncome).Add(p.PeriodTaxableIncome)
	prevTax := p.OpeningTaxPaid.Add(p.YTDTaxPaid)

	var due, raw decimal.Decimal
	switch p.Method {
	case domain.TaxCumulative:
		due = BracketTax(p.Brackets, prevIncome.Add(p.AdjustedTaxableIncome))
		raw = due.Sub(prevTax).Sub(p.PeriodTaxPaid).Sub(p.TaxCredits)
	default:
		due = BracketTax(p.Brackets, p.AdjustedTaxableIncome)
		raw = due.Sub(p.TaxCredits)
	}

	out := domain.IncomeTaxOutcome{
		Code:                 p.Code,
		Method:               p.Method,
		TaxableIncome:        money.RoundCents(p.AdjustedTaxableIncome),
		PreviousYTDIncome:    money.RoundCents(prevIncome),
		PreviousYTDTax:       money.RoundCents(prevTax),
		PeriodTaxAlreadyPaid: money.RoundCents(p.PeriodTaxPaid),
		TotalTaxDue:          money.RoundCents(due),
		TaxCredits:           money.RoundCents(p.TaxCredits),
	}

	periodTax := money.RoundCents(raw)
	if periodTax.IsNegative() {
		if p.Method == domain.TaxCumulative && p.AllowMidYearRefunds {
			out.Refund = true
		} else {
			periodTax = decimal.Zero
			out.Clamped = true
		}
	}
	out.PeriodTax = periodTax
	out.YTDTaxableIncome = money.RoundCents(prevIncome.Add(p.AdjustedTaxableIncome))
	out.YTDTaxPaid = money.RoundCents(prevTax.Add(p.PeriodTaxPaid).Add(periodTax))
	return out
}

// incomeTaxLine returns the income-tax deduction for the outcome, or false when the
// period tax is zero.
func incomeTaxLine(dt domain.StatutoryDeductionType, o domain.IncomeTaxOutcome) (domain.CalculatedStatutory, bool) {
	if o.PeriodTax.IsZero() {
		return domain.CalculatedStatutory{}, false
	}
	ytdIncome, ytdTax := o.YTDTaxableIncome, o.YTDTaxPaid
	return domain.CalculatedStatutory{
		Code:             dt.Code,
		Name:             dt.Name,
		Class:            dt.Class,
		EmployeeAmount:   o.PeriodTax,
		EmployerAmount:   decimal.Zero,
		YTDTaxableIncome: &ytdIncome,
		YTDTaxPaid:       &ytdTax,
	}, true
}
