package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatutoryCode identifies a statutory deduction type within a country, e.g. "PENSION" or "PAYE".
type StatutoryCode string

// DeductionClass classifies a statutory deduction type. Only ClassIncomeTax is
// treated specially; every other class goes through the contribution calculator.
type DeductionClass string

const (
	ClassIncomeTax      DeductionClass = "income_tax"
	ClassPension        DeductionClass = "pension"
	ClassSocialSecurity DeductionClass = "social_security"
	ClassHealthLevy     DeductionClass = "health_levy"
	ClassOther          DeductionClass = "other"
)

// IsIncomeTax reports whether the class is the progressive income tax.
func (c DeductionClass) IsIncomeTax() bool { return c == ClassIncomeTax }

// CalculationMethod is how a rate band turns gross pay into an amount.
type CalculationMethod string

const (
	MethodPercentage CalculationMethod = "percentage"
	MethodFixed      CalculationMethod = "fixed"
	MethodPerMonday  CalculationMethod = "per_monday"
)

// StatutoryDeductionType is one kind of mandated withholding for a country.
// It is reference data: the engine never creates or mutates it.
type StatutoryDeductionType struct {
	ID            string         `yaml:"id" json:"id"`
	Code          StatutoryCode  `yaml:"code" json:"code" validate:"required"`
	Country       string         `yaml:"country" json:"country"`
	Class         DeductionClass `yaml:"class" json:"class" validate:"required"`
	Name          string         `yaml:"name" json:"name" validate:"required"`
	EffectiveFrom time.Time      `yaml:"effective_from" json:"effective_from"`
	EffectiveTo   *time.Time     `yaml:"effective_to,omitempty" json:"effective_to,omitempty"`
	Bands         []RateBand     `yaml:"bands" json:"bands" validate:"dive"`
}

// RateBand is one tier of a deduction type's schedule.
//
// For contribution types LowerBound/UpperBound bound the period's gross pay; for
// the income-tax type they bound cumulative taxable income and EmployeeRate is the
// bracket rate. Bounds are half-open [LowerBound, UpperBound); a nil UpperBound is
// unbounded. Age limits are inclusive and optional.
type RateBand struct {
	ID            string            `yaml:"id" json:"id"`
	LowerBound    decimal.Decimal   `yaml:"lower_bound" json:"lower_bound"`
	UpperBound    *decimal.Decimal  `yaml:"upper_bound,omitempty" json:"upper_bound,omitempty"`
	MinAge        *int              `yaml:"min_age,omitempty" json:"min_age,omitempty" validate:"omitempty,gte=0,lte=130"`
	MaxAge        *int              `yaml:"max_age,omitempty" json:"max_age,omitempty" validate:"omitempty,gte=0,lte=130"`
	EffectiveFrom time.Time         `yaml:"effective_from" json:"effective_from"`
	EffectiveTo   *time.Time        `yaml:"effective_to,omitempty" json:"effective_to,omitempty"`
	Method        CalculationMethod `yaml:"method" json:"method"`

	EmployeeRate          decimal.Decimal `yaml:"employee_rate" json:"employee_rate"`
	EmployerRate          decimal.Decimal `yaml:"employer_rate" json:"employer_rate"`
	EmployeeFixedAmount   decimal.Decimal `yaml:"employee_fixed_amount" json:"employee_fixed_amount"`
	EmployerFixedAmount   decimal.Decimal `yaml:"employer_fixed_amount" json:"employer_fixed_amount"`
	EmployeePerUnitAmount decimal.Decimal `yaml:"employee_per_unit_amount" json:"employee_per_unit_amount"`
	EmployerPerUnitAmount decimal.Decimal `yaml:"employer_per_unit_amount" json:"employer_per_unit_amount"`

	EmployeeAnnualCap  *decimal.Decimal `yaml:"employee_annual_cap,omitempty" json:"employee_annual_cap,omitempty"`
	EmployerAnnualCap  *decimal.Decimal `yaml:"employer_annual_cap,omitempty" json:"employer_annual_cap,omitempty"`
	EmployeeMonthlyCap *decimal.Decimal `yaml:"employee_monthly_cap,omitempty" json:"employee_monthly_cap,omitempty"`
	EmployerMonthlyCap *decimal.Decimal `yaml:"employer_monthly_cap,omitempty" json:"employer_monthly_cap,omitempty"`
}

// HasAgeWindow reports whether the band is restricted by employee age.
func (b RateBand) HasAgeWindow() bool { return b.MinAge != nil || b.MaxAge != nil }

// AdmitsAge reports whether age falls inside the band's age window. A band with
// an age window never admits an unknown age.
func (b RateBand) AdmitsAge(age *int) bool {
	if !b.HasAgeWindow() {
		return true
	}
	if age == nil {
		return false
	}
	if b.MinAge != nil && *age < *b.MinAge {
		return false
	}
	if b.MaxAge != nil && *age > *b.MaxAge {
		return false
	}
	return true
}

// ContainsAmount reports whether amount lies in [LowerBound, UpperBound).
func (b RateBand) ContainsAmount(amount decimal.Decimal) bool {
	if amount.LessThan(b.LowerBound) {
		return false
	}
	return b.UpperBound == nil || amount.LessThan(*b.UpperBound)
}

// Caps returns every configured cap; used by validation.
func (b RateBand) Caps() map[string]*decimal.Decimal {
	return map[string]*decimal.Decimal{
		"employee_annual_cap":  b.EmployeeAnnualCap,
		"employer_annual_cap":  b.EmployerAnnualCap,
		"employee_monthly_cap": b.EmployeeMonthlyCap,
		"employer_monthly_cap": b.EmployerMonthlyCap,
	}
}

// OpeningBalances is the YTD snapshot imported for a mid-year joiner or after a
// migration. It is read-only input.
type OpeningBalances struct {
	EmployeeID    string          `yaml:"employee_id,omitempty" json:"employee_id,omitempty"`
	TaxYear       int             `yaml:"tax_year" json:"tax_year"`
	AsOf          time.Time       `yaml:"as_of" json:"as_of"`
	TaxableIncome decimal.Decimal `yaml:"taxable_income" json:"taxable_income"`
	TaxPaid       decimal.Decimal `yaml:"tax_paid" json:"tax_paid"`
}

// PayerAmounts holds an employee share and an employer share.
type PayerAmounts struct {
	Employee decimal.Decimal `yaml:"employee" json:"employee"`
	Employer decimal.Decimal `yaml:"employer" json:"employer"`
}

// Add returns the component-wise sum.
func (p PayerAmounts) Add(o PayerAmounts) PayerAmounts {
	return PayerAmounts{Employee: p.Employee.Add(o.Employee), Employer: p.Employer.Add(o.Employer)}
}

// StatutoryAmounts maps statutory codes to accumulated amounts. YTD maps exclude
// the current period; Period maps hold what earlier runs already withheld for
// the same period.
type StatutoryAmounts map[StatutoryCode]PayerAmounts

// Get returns the amounts for code, zero when absent or when the map is nil.
func (s StatutoryAmounts) Get(code StatutoryCode) PayerAmounts {
	if s == nil {
		return PayerAmounts{}
	}
	return s[code]
}
