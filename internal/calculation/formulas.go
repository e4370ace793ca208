package calculation

import (
	"github.com/rpgo/statutory-calculator/internal/domain"
	money "github.com/rpgo/statutory-calculator/pkg/decimal"
	"github.com/shopspring/decimal"
)

// TieredFormula computes a monthly relief amount for a tiered scheme.
type TieredFormula func(scheme domain.TaxReliefScheme, grossPay decimal.Decimal) decimal.Decimal

// FormulaRegistry maps scheme codes to tiered formulas. Register is meant for
// setup; a registry shared by engines must not be modified afterwards.
type FormulaRegistry struct {
	formulas map[domain.SchemeCode]TieredFormula
}

// NewFormulaRegistry returns an empty registry.
func NewFormulaRegistry() *FormulaRegistry {
	return &FormulaRegistry{formulas: make(map[domain.SchemeCode]TieredFormula)}
}

// DefaultFormulaRegistry returns a registry carrying the built-in formulas.
func DefaultFormulaRegistry() *FormulaRegistry {
	r := NewFormulaRegistry()
	r.Register("CRA", ConsolidatedReliefAllowance)
	return r
}

// Register binds code to f, replacing any earlier binding.
func (r *FormulaRegistry) Register(code domain.SchemeCode, f TieredFormula) {
	r.formulas[code] = f
}

// Lookup returns the formula registered for code.
func (r *FormulaRegistry) Lookup(code domain.SchemeCode) (TieredFormula, bool) {
	if r == nil {
		return nil, false
	}
	f, ok := r.formulas[code]
	return f, ok
}

// Evaluate applies the formula registered for the scheme, falling back to the
// scheme's annual relief value spread over twelve months.
func (r *FormulaRegistry) Evaluate(scheme domain.TaxReliefScheme, grossPay decimal.Decimal) decimal.Decimal {
	if f, ok := r.Lookup(scheme.Code); ok {
		return f(scheme, grossPay)
	}
	return money.Monthly(scheme.ReliefValue)
}

var (
	craDefaultFloor = decimal.NewFromInt(200000)
	craFloorRate    = decimal.NewFromFloat(0.01)
	craIncomeRate   = decimal.NewFromFloat(0.20)
)

// ConsolidatedReliefAllowance is Nigeria's CRA: the higher of a fixed floor and
// 1% of annual gross, plus 20% of annual gross, apportioned monthly. The floor is
// the scheme's relief value, or 200,000 when unset.
func ConsolidatedReliefAllowance(scheme domain.TaxReliefScheme, grossPay decimal.Decimal) decimal.Decimal {
	annualGross := money.Annual(grossPay)
	floor := scheme.ReliefValue
	if !floor.IsPositive() {
		floor = craDefaultFloor
	}
	base := decimal.Max(floor, annualGross.Mul(craFloorRate))
	return money.Monthly(base.Add(annualGross.Mul(craIncomeRate)))
}
