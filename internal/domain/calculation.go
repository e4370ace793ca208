package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaxMethod selects how income tax accrues across the tax year.
type TaxMethod string

const (
	TaxCumulative    TaxMethod = "cumulative"
	TaxNonCumulative TaxMethod = "non_cumulative"
)

// DefaultQualifyingMondays is used for per-Monday levies when neither a count
// nor the pay-period dates are supplied.
const DefaultQualifyingMondays = 4

// CalculationInput is everything one calculation call consumes. It is plain
// data: collaborators fill it before the engine runs and the engine never
// mutates it.
type CalculationInput struct {
	EmployeeID string          `yaml:"employee_id" json:"employee_id"`
	GrossPay   decimal.Decimal `yaml:"gross_pay" json:"gross_pay"`
	// Age wins over BirthDate when both are set.
	Age               *int       `yaml:"age,omitempty" json:"age,omitempty"`
	BirthDate         *time.Time `yaml:"birth_date,omitempty" json:"birth_date,omitempty"`
	QualifyingMondays *int       `yaml:"qualifying_mondays,omitempty" json:"qualifying_mondays,omitempty"`
	EffectiveDate     time.Time  `yaml:"effective_date" json:"effective_date"`
	PeriodStart       *time.Time `yaml:"period_start,omitempty" json:"period_start,omitempty"`
	PeriodEnd         *time.Time `yaml:"period_end,omitempty" json:"period_end,omitempty"`

	// DeductionTypes are the country's active types in configuration order.
	DeductionTypes []StatutoryDeductionType `yaml:"deduction_types" json:"deduction_types"`

	OpeningBalances  *OpeningBalances `yaml:"opening_balances,omitempty" json:"opening_balances,omitempty"`
	YTD              StatutoryAmounts `yaml:"ytd" json:"ytd"`
	Period           StatutoryAmounts `yaml:"period" json:"period"`
	YTDTaxableIncome decimal.Decimal  `yaml:"ytd_taxable_income" json:"ytd_taxable_income"`
	// PeriodTaxableIncome is taxable income already taxed by earlier runs of
	// this pay period.
	PeriodTaxableIncome decimal.Decimal `yaml:"period_taxable_income" json:"period_taxable_income"`

	TaxMethod           TaxMethod         `yaml:"tax_method" json:"tax_method"`
	AllowMidYearRefunds bool              `yaml:"allow_mid_year_refunds" json:"allow_mid_year_refunds"`
	Relief              *TaxReliefContext `yaml:"relief,omitempty" json:"relief,omitempty"`
}

// CalculatedStatutory is one emitted deduction line.
type CalculatedStatutory struct {
	Code           StatutoryCode     `json:"code"`
	Name           string            `json:"name"`
	Class          DeductionClass    `json:"class"`
	EmployeeAmount decimal.Decimal   `json:"employee_amount"`
	EmployerAmount decimal.Decimal   `json:"employer_amount"`
	Method         CalculationMethod `json:"method,omitempty"`
	// Set on the income-tax line only.
	YTDTaxableIncome *decimal.Decimal `json:"ytd_taxable_income,omitempty"`
	YTDTaxPaid       *decimal.Decimal `json:"ytd_tax_paid,omitempty"`
}

// CalculatedRelief is one emitted relief line.
type CalculatedRelief struct {
	Code                 ReliefCode      `json:"code"`
	Name                 string          `json:"name"`
	Source               ReliefSource    `json:"source"`
	ReliefType           ReliefType      `json:"relief_type"`
	Amount               decimal.Decimal `json:"amount"`
	ReducesTaxableIncome bool            `json:"reduces_taxable_income"`
	IsTaxCredit          bool            `json:"is_tax_credit"`
}

// IncomeTaxOutcome explains how the period's income tax was reached. It is set
// whenever an income-tax type is configured, including when the period tax is
// zero and no income-tax line was emitted.
type IncomeTaxOutcome struct {
	Code                 StatutoryCode   `json:"code"`
	Method               TaxMethod       `json:"method"`
	TaxableIncome        decimal.Decimal `json:"taxable_income"`
	PreviousYTDIncome    decimal.Decimal `json:"previous_ytd_income"`
	PreviousYTDTax       decimal.Decimal `json:"previous_ytd_tax"`
	PeriodTaxAlreadyPaid decimal.Decimal `json:"period_tax_already_paid"`
	TotalTaxDue          decimal.Decimal `json:"total_tax_due"`
	TaxCredits           decimal.Decimal `json:"tax_credits"`
	PeriodTax            decimal.Decimal `json:"period_tax"`
	YTDTaxableIncome     decimal.Decimal `json:"ytd_taxable_income"`
	YTDTaxPaid           decimal.Decimal `json:"ytd_tax_paid"`
	// Clamped is true when a negative period tax was forced to zero because
	// mid-year refunds are not allowed.
	Clamped bool `json:"clamped"`
	// Refund is true when a negative period tax was emitted.
	Refund bool `json:"refund"`
}

// CalculationResult is the engine's output for one employee and pay period.
type CalculationResult struct {
	EmployeeID                  string                `json:"employee_id,omitempty"`
	Deductions                  []CalculatedStatutory `json:"deductions"`
	TotalEmployeeDeductions     decimal.Decimal       `json:"total_employee_deductions"`
	TotalEmployerContributions  decimal.Decimal       `json:"total_employer_contributions"`
	Reliefs                     []CalculatedRelief    `json:"reliefs,omitempty"`
	TotalTaxableIncomeReduction decimal.Decimal       `json:"total_taxable_income_reduction"`
	TotalTaxCredits             decimal.Decimal       `json:"total_tax_credits"`
	AdjustedTaxableIncome       decimal.Decimal       `json:"adjusted_taxable_income"`
	IncomeTax                   *IncomeTaxOutcome     `json:"income_tax,omitempty"`
}

// Deduction returns the emitted line for code.
func (r *CalculationResult) Deduction(code StatutoryCode) (CalculatedStatutory, bool) {
	for _, d := range r.Deductions {
		if d.Code == code {
			return d, true
		}
	}
	return CalculatedStatutory{}, false
}

// Relief returns the emitted relief for code.
func (r *CalculationResult) Relief(code ReliefCode) (CalculatedRelief, bool) {
	for _, rl := range r.Reliefs {
		if rl.Code == code {
			return rl, true
		}
	}
	return CalculatedRelief{}, false
}
