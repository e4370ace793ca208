package calculation

import (
	"errors"
	"fmt"

	"github.com/rpgo/statutory-calculator/internal/domain"
	"github.com/rpgo/statutory-calculator/pkg/dateutil"
	"github.com/shopspring/decimal"
)

// preparedInput is a validated CalculationInput plus the values derived from it.
type preparedInput struct {
	*domain.CalculationInput
	age     *int
	mondays int
	taxType *domain.StatutoryDeductionType
}

// incomeTax returns the configured income-tax type, if any.
func (p *preparedInput) incomeTax() (domain.StatutoryDeductionType, bool) {
	if p.taxType == nil {
		return domain.StatutoryDeductionType{}, false
	}
	return *p.taxType, true
}

// prepare rejects inputs the engine must not calculate with and derives age
// and the qualifying-Monday count.
func (e *Engine) prepare(in *domain.CalculationInput) (*preparedInput, error) {
	if in == nil {
		return nil, fmt.Errorf("nil calculation input: %w", ErrInvalidInput)
	}
	if in.GrossPay.IsNegative() {
		return nil, fmt.Errorf("gross pay %s is negative: %w", in.GrossPay.String(), ErrInvalidInput)
	}
	if in.EffectiveDate.IsZero() {
		return nil, fmt.Errorf("effective date is required: %w", ErrInvalidInput)
	}
	if err := ValidateDeductionTypes(in.DeductionTypes); err != nil {
		return nil, err
	}

	catalog := make(map[domain.StatutoryCode]domain.StatutoryDeductionType, len(in.DeductionTypes))
	var taxType *domain.StatutoryDeductionType
	for i, dt := range in.DeductionTypes {
		catalog[dt.Code] = dt
		if dt.Class.IsIncomeTax() {
			taxType = &in.DeductionTypes[i]
		}
	}
	if taxType != nil {
		switch in.TaxMethod {
		case domain.TaxCumulative, domain.TaxNonCumulative:
		default:
			return nil, fmt.Errorf("unknown tax method %q: %w", in.TaxMethod, ErrInvalidInput)
		}
	}

	taxCode := domain.StatutoryCode("")
	if taxType != nil {
		taxCode = taxType.Code
	}
	for name, amounts := range map[string]domain.StatutoryAmounts{"ytd": in.YTD, "period": in.Period} {
		for code, a := range amounts {
			if _, ok := catalog[code]; !ok {
				return nil, fmt.Errorf("%s amounts for %s: %w", name, code, ErrUnknownCode)
			}
			if code != taxCode && (a.Employee.IsNegative() || a.Employer.IsNegative()) {
				return nil, fmt.Errorf("%s amounts for %s are negative: %w", name, code, ErrInvalidInput)
			}
		}
	}
	if in.YTDTaxableIncome.IsNegative() {
		return nil, fmt.Errorf("ytd taxable income is negative: %w", ErrInvalidInput)
	}
	if in.PeriodTaxableIncome.IsNegative() {
		return nil, fmt.Errorf("period taxable income is negative: %w", ErrInvalidInput)
	}
	if ob := in.OpeningBalances; ob != nil && (ob.TaxableIncome.IsNegative() || ob.TaxPaid.IsNegative()) {
		return nil, fmt.Errorf("opening balances are negative: %w", ErrInvalidInput)
	}
	if err := validateRelief(in.Relief, catalog); err != nil {
		return nil, err
	}

	p := &preparedInput{
		CalculationInput: in,
		taxType:          taxType,
	}
	switch {
	case in.Age != nil:
		if *in.Age < 0 {
			return nil, fmt.Errorf("age %d is negative: %w", *in.Age, ErrInvalidInput)
		}
		p.age = in.Age
	case in.BirthDate != nil:
		if in.BirthDate.After(in.EffectiveDate) {
			return nil, fmt.Errorf("birth date after effective date: %w", ErrInvalidInput)
		}
		age := dateutil.Age(*in.BirthDate, in.EffectiveDate)
		p.age = &age
	}
	switch {
	case in.QualifyingMondays != nil:
		if *in.QualifyingMondays < 0 {
			return nil, fmt.Errorf("qualifying mondays %d is negative: %w", *in.QualifyingMondays, ErrInvalidInput)
		}
		p.mondays = *in.QualifyingMondays
	case in.PeriodStart != nil && in.PeriodEnd != nil:
		if in.PeriodEnd.Before(*in.PeriodStart) {
			return nil, fmt.Errorf("period ends before it starts: %w", ErrInvalidInput)
		}
		p.mondays = dateutil.CountMondays(*in.PeriodStart, *in.PeriodEnd)
	default:
		p.mondays = e.defaultMondays
	}
	return p, nil
}

// ValidateRelief checks relief configuration against the statutory catalog.
func ValidateRelief(rc *domain.TaxReliefContext, types []domain.StatutoryDeductionType) error {
	catalog := make(map[domain.StatutoryCode]domain.StatutoryDeductionType, len(types))
	for _, dt := range types {
		catalog[dt.Code] = dt
	}
	return validateRelief(rc, catalog)
}

func validateRelief(rc *domain.TaxReliefContext, catalog map[domain.StatutoryCode]domain.StatutoryDeductionType) error {
	if rc == nil {
		return nil
	}
	rules := make(map[domain.StatutoryCode]bool, len(rc.Rules))
	for _, r := range rc.Rules {
		dt, ok := catalog[r.StatutoryCode]
		if !ok {
			return fmt.Errorf("relief rule for %s: %w", r.StatutoryCode, ErrUnknownCode)
		}
		if dt.Class.IsIncomeTax() {
			return fmt.Errorf("relief rule cannot target income tax %s: %w", r.StatutoryCode, ErrInvalidInput)
		}
		if rules[r.StatutoryCode] {
			return fmt.Errorf("relief rule for %s configured twice: %w", r.StatutoryCode, ErrInvalidInput)
		}
		rules[r.StatutoryCode] = true
		if err := nonNegative("relief rule "+string(r.StatutoryCode), r.ReliefPercentage, r.MonthlyCap, r.AnnualCap); err != nil {
			return err
		}
	}

	schemes := make(map[domain.SchemeCode]bool, len(rc.Schemes))
	for _, s := range rc.Schemes {
		if schemes[s.Code] {
			return fmt.Errorf("relief scheme %s configured twice: %w", s.Code, ErrInvalidInput)
		}
		schemes[s.Code] = true
		switch s.Method {
		case domain.ReliefFixedAmount, domain.ReliefPercentageOfIncome, domain.ReliefPercentageOfContribution, domain.ReliefTiered:
		default:
			return fmt.Errorf("relief scheme %s: unknown method %q: %w", s.Code, s.Method, ErrInvalidInput)
		}
		switch s.ReliefType {
		case domain.ReliefDeduction, domain.ReliefCredit, domain.ReliefExemption, domain.ReliefReducedRate:
		default:
			return fmt.Errorf("relief scheme %s: unknown relief type %q: %w", s.Code, s.ReliefType, ErrInvalidInput)
		}
		if err := nonNegative("relief scheme "+string(s.Code), s.ReliefValue, s.MonthlyCap, s.AnnualCap); err != nil {
			return err
		}
		if s.ReliefPercentage.IsNegative() {
			return fmt.Errorf("relief scheme %s: negative percentage: %w", s.Code, ErrInvalidInput)
		}
	}

	active := make(map[domain.SchemeCode]bool, len(rc.Enrollments))
	for _, en := range rc.Enrollments {
		if !schemes[en.SchemeCode] {
			return fmt.Errorf("enrollment in %s: %w", en.SchemeCode, ErrUnknownCode)
		}
		if en.ContributionAmount.IsNegative() || en.ContributionPercentage.IsNegative() || en.YTDClaimed.IsNegative() {
			return fmt.Errorf("enrollment in %s has negative amounts: %w", en.SchemeCode, ErrInvalidInput)
		}
		if !en.IsActive() {
			continue
		}
		if active[en.SchemeCode] {
			return fmt.Errorf("two active enrollments in %s: %w", en.SchemeCode, ErrInvalidInput)
		}
		active[en.SchemeCode] = true
	}

	for _, claimed := range []domain.ClaimedReliefs{rc.Claimed, rc.PeriodClaimed} {
		for code, v := range claimed {
			if _, ok := catalog[domain.StatutoryCode(code)]; !ok && !schemes[domain.SchemeCode(code)] {
				return fmt.Errorf("claimed relief %s: %w", code, ErrUnknownCode)
			}
			if v.IsNegative() {
				return fmt.Errorf("claimed relief %s is negative: %w", code, ErrInvalidInput)
			}
		}
	}
	return nil
}

func nonNegative(what string, value decimal.Decimal, caps ...*decimal.Decimal) error {
	var errs []error
	if value.IsNegative() {
		errs = append(errs, fmt.Errorf("%s: negative value: %w", what, ErrInvalidInput))
	}
	for _, c := range caps {
		if c != nil && c.IsNegative() {
			errs = append(errs, fmt.Errorf("%s: negative cap: %w", what, ErrInvalidInput))
		}
	}
	return errors.Join(errs...)
}
