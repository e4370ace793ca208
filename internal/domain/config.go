package domain

import (
	"time"

	"github.com/rpgo/statutory-calculator/pkg/dateutil"
	"github.com/shopspring/decimal"
)

// CountryConfig is a country's statutory configuration as loaded from YAML.
type CountryConfig struct {
	Country             string                   `yaml:"country" json:"country" validate:"required"`
	Currency            string                   `yaml:"currency" json:"currency"`
	TaxMethod           TaxMethod                `yaml:"tax_method" json:"tax_method" validate:"oneof=cumulative non_cumulative"`
	AllowMidYearRefunds bool                     `yaml:"allow_mid_year_refunds" json:"allow_mid_year_refunds"`
	DeductionTypes      []StatutoryDeductionType `yaml:"deduction_types" json:"deduction_types" validate:"required,min=1,dive"`
	ReliefRules         []TaxReliefRule          `yaml:"relief_rules" json:"relief_rules" validate:"dive"`
	ReliefSchemes       []TaxReliefScheme        `yaml:"relief_schemes" json:"relief_schemes" validate:"dive"`
	AutoApplyCodes      []SchemeCode             `yaml:"auto_apply_codes,omitempty" json:"auto_apply_codes,omitempty"`
}

// IncomeTaxType returns the country's income-tax type, if any.
func (c *CountryConfig) IncomeTaxType() (StatutoryDeductionType, bool) {
	for _, t := range c.DeductionTypes {
		if t.Class.IsIncomeTax() {
			return t, true
		}
	}
	return StatutoryDeductionType{}, false
}

// ActiveDeductionTypes returns the types effective on date, in configuration
// order. Effective dates compare by calendar day.
func (c *CountryConfig) ActiveDeductionTypes(date time.Time) []StatutoryDeductionType {
	out := make([]StatutoryDeductionType, 0, len(c.DeductionTypes))
	for _, t := range c.DeductionTypes {
		if dateutil.WithinRange(date, t.EffectiveFrom, t.EffectiveTo) {
			out = append(out, t)
		}
	}
	return out
}

// PostedLine is one statutory or relief amount recorded by an earlier payroll
// run. Exactly one of Code and ReliefCode is set.
type PostedLine struct {
	RunID          string          `yaml:"run_id" json:"run_id"`
	TaxYear        int             `yaml:"tax_year" json:"tax_year"`
	PeriodStart    time.Time       `yaml:"period_start" json:"period_start"`
	Code           StatutoryCode   `yaml:"code,omitempty" json:"code,omitempty"`
	ReliefCode     ReliefCode      `yaml:"relief_code,omitempty" json:"relief_code,omitempty"`
	EmployeeAmount decimal.Decimal `yaml:"employee_amount" json:"employee_amount"`
	EmployerAmount decimal.Decimal `yaml:"employer_amount" json:"employer_amount"`
	// TaxableIncome is the adjusted taxable income the run taxed; income-tax lines only.
	TaxableIncome decimal.Decimal `yaml:"taxable_income" json:"taxable_income"`
}

// PayPeriodRequest is one employee's pay period as supplied to the CLI.
type PayPeriodRequest struct {
	EmployeeID        string                     `yaml:"employee_id" json:"employee_id" validate:"required"`
	GrossPay          decimal.Decimal            `yaml:"gross_pay" json:"gross_pay"`
	Age               *int                       `yaml:"age,omitempty" json:"age,omitempty" validate:"omitempty,gte=0,lte=130"`
	BirthDate         *time.Time                 `yaml:"birth_date,omitempty" json:"birth_date,omitempty"`
	TaxYear           int                        `yaml:"tax_year" json:"tax_year" validate:"required,gte=1900"`
	PeriodStart       time.Time                  `yaml:"period_start" json:"period_start" validate:"required"`
	PeriodEnd         time.Time                  `yaml:"period_end" json:"period_end" validate:"required"`
	QualifyingMondays *int                       `yaml:"qualifying_mondays,omitempty" json:"qualifying_mondays,omitempty" validate:"omitempty,gte=0,lte=5"`
	OpeningBalances   *OpeningBalances           `yaml:"opening_balances,omitempty" json:"opening_balances,omitempty"`
	History           []PostedLine               `yaml:"history" json:"history" validate:"dive"`
	Enrollments       []EmployeeReliefEnrollment `yaml:"enrollments" json:"enrollments" validate:"dive"`
}
