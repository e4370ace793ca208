package domain

import (
	"github.com/shopspring/decimal"
)

// SchemeCode identifies a tax relief scheme, e.g. "CRA" or "NHF_RELIEF".
type SchemeCode string

// ReliefCode keys claimed-relief balances. Statutory reliefs use the statutory
// code of the contribution they derive from; scheme reliefs use the scheme code.
type ReliefCode string

// ClaimedReliefs maps relief codes to the amount already claimed this tax year.
type ClaimedReliefs map[ReliefCode]decimal.Decimal

// Lookup returns the claimed amount and whether the code was present.
func (c ClaimedReliefs) Lookup(code ReliefCode) (decimal.Decimal, bool) {
	if c == nil {
		return decimal.Zero, false
	}
	v, ok := c[code]
	return v, ok
}

// ReliefMethod is how a scheme's relief amount is derived.
type ReliefMethod string

const (
	ReliefFixedAmount              ReliefMethod = "fixed_amount"
	ReliefPercentageOfIncome       ReliefMethod = "percentage_of_income"
	ReliefPercentageOfContribution ReliefMethod = "percentage_of_contribution"
	ReliefTiered                   ReliefMethod = "tiered"
)

// ReliefType is how a relief acts on the tax computation.
type ReliefType string

const (
	ReliefDeduction   ReliefType = "deduction"
	ReliefCredit      ReliefType = "credit"
	ReliefExemption   ReliefType = "exemption"
	ReliefReducedRate ReliefType = "reduced_rate"
)

// ReducesTaxableIncome reports whether the relief lowers the taxable base.
func (t ReliefType) ReducesTaxableIncome() bool {
	return t == ReliefDeduction || t == ReliefExemption
}

// IsTaxCredit reports whether the relief is subtracted from tax owed.
func (t ReliefType) IsTaxCredit() bool { return t == ReliefCredit }

// CategoryPersonalRelief marks schemes that apply to everyone without enrollment.
const CategoryPersonalRelief = "personal_relief"

// ReliefSource tells statutory-contribution relief apart from scheme relief.
type ReliefSource string

const (
	SourceStatutory ReliefSource = "statutory"
	SourceScheme    ReliefSource = "scheme"
)

// TaxReliefRule makes part of a statutory contribution deductible from taxable income.
type TaxReliefRule struct {
	StatutoryCode                 StatutoryCode    `yaml:"statutory_code" json:"statutory_code" validate:"required"`
	ReliefPercentage              decimal.Decimal  `yaml:"relief_percentage" json:"relief_percentage"`
	MonthlyCap                    *decimal.Decimal `yaml:"monthly_cap,omitempty" json:"monthly_cap,omitempty"`
	AnnualCap                     *decimal.Decimal `yaml:"annual_cap,omitempty" json:"annual_cap,omitempty"`
	AppliesToEmployeeContribution bool             `yaml:"applies_to_employee_contribution" json:"applies_to_employee_contribution"`
	AppliesToEmployerContribution bool             `yaml:"applies_to_employer_contribution" json:"applies_to_employer_contribution"`
}

// TaxReliefScheme is a relief not tied to a mandatory contribution.
type TaxReliefScheme struct {
	Code             SchemeCode       `yaml:"code" json:"code" validate:"required"`
	Name             string           `yaml:"name" json:"name"`
	Category         string           `yaml:"category" json:"category"`
	Method           ReliefMethod     `yaml:"method" json:"method" validate:"oneof=fixed_amount percentage_of_income percentage_of_contribution tiered"`
	ReliefType       ReliefType       `yaml:"relief_type" json:"relief_type" validate:"oneof=deduction credit exemption reduced_rate"`
	ReliefValue      decimal.Decimal  `yaml:"relief_value" json:"relief_value"`
	ReliefPercentage decimal.Decimal  `yaml:"relief_percentage" json:"relief_percentage"`
	MonthlyCap       *decimal.Decimal `yaml:"monthly_cap,omitempty" json:"monthly_cap,omitempty"`
	AnnualCap        *decimal.Decimal `yaml:"annual_cap,omitempty" json:"annual_cap,omitempty"`
	MinAge           *int             `yaml:"min_age,omitempty" json:"min_age,omitempty" validate:"omitempty,gte=0,lte=130"`
	MaxAge           *int             `yaml:"max_age,omitempty" json:"max_age,omitempty" validate:"omitempty,gte=0,lte=130"`
	IsActive         bool             `yaml:"is_active" json:"is_active"`
}

// IsAgeGated reports whether the scheme restricts eligibility by age.
func (s TaxReliefScheme) IsAgeGated() bool { return s.MinAge != nil || s.MaxAge != nil }

// AdmitsAge reports whether age falls in the scheme's eligibility window. An
// age-gated scheme never admits an unknown age.
func (s TaxReliefScheme) AdmitsAge(age *int) bool {
	if !s.IsAgeGated() {
		return true
	}
	if age == nil {
		return false
	}
	if s.MinAge != nil && *age < *s.MinAge {
		return false
	}
	if s.MaxAge != nil && *age > *s.MaxAge {
		return false
	}
	return true
}

// EnrollmentStatus is the lifecycle state of an employee's relief enrollment.
type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "active"
	EnrollmentSuspended EnrollmentStatus = "suspended"
	EnrollmentEnded     EnrollmentStatus = "ended"
)

// EmployeeReliefEnrollment links an employee to a scheme.
type EmployeeReliefEnrollment struct {
	SchemeCode             SchemeCode       `yaml:"scheme_code" json:"scheme_code" validate:"required"`
	Status                 EnrollmentStatus `yaml:"status" json:"status" validate:"oneof=active suspended ended"`
	ContributionAmount     decimal.Decimal  `yaml:"contribution_amount" json:"contribution_amount"`
	ContributionPercentage decimal.Decimal  `yaml:"contribution_percentage" json:"contribution_percentage"`
	YTDClaimed             decimal.Decimal  `yaml:"ytd_claimed" json:"ytd_claimed"`
}

// IsActive reports whether the enrollment currently applies.
func (e EmployeeReliefEnrollment) IsActive() bool { return e.Status == EnrollmentActive }

// TaxReliefContext bundles everything the relief engine needs for one employee.
type TaxReliefContext struct {
	Rules       []TaxReliefRule            `yaml:"rules" json:"rules"`
	Schemes     []TaxReliefScheme          `yaml:"schemes" json:"schemes"`
	Enrollments []EmployeeReliefEnrollment `yaml:"enrollments" json:"enrollments"`
	Claimed     ClaimedReliefs             `yaml:"claimed" json:"claimed"`
	// PeriodClaimed is the part of Claimed posted by earlier runs of this pay
	// period; monthly caps are net of it.
	PeriodClaimed ClaimedReliefs `yaml:"period_claimed,omitempty" json:"period_claimed,omitempty"`
	// AutoApplyCodes overrides the engine's default auto-apply allow-list when non-empty.
	AutoApplyCodes []SchemeCode `yaml:"auto_apply_codes,omitempty" json:"auto_apply_codes,omitempty"`
}
