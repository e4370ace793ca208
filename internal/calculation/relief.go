package calculation

import (
	"github.com/rpgo/statutory-calculator/internal/domain"
	money "github.com/rpgo/statutory-calculator/pkg/decimal"
	"github.com/shopspring/decimal"
)

// DefaultAutoApplyCodes are the scheme codes applied without enrollment in
// addition to every personal_relief scheme.
var DefaultAutoApplyCodes = []domain.SchemeCode{
	"AGE_RELIEF",
	"SENIOR_CITIZEN_RELIEF",
	"YOUTH_RELIEF",
	"DISABILITY_RELIEF",
	"PERSONAL_ALLOWANCE",
	"PERSONAL_RELIEF",
	"CRA",
}

// reliefTotals is the relief stage's contribution to the result.
type reliefTotals struct {
	Lines           []domain.CalculatedRelief
	IncomeReduction decimal.Decimal
	TaxCredits      decimal.Decimal
}

func (t *reliefTotals) add(r domain.CalculatedRelief) {
	t.Lines = append(t.Lines, r)
	if r.ReducesTaxableIncome {
		t.IncomeReduction = t.IncomeReduction.Add(r.Amount)
	}
	if r.IsTaxCredit {
		t.TaxCredits = t.TaxCredits.Add(r.Amount)
	}
}

// newRelief rounds amount and reports false when nothing is left to emit.
func newRelief(code domain.ReliefCode, name string, src domain.ReliefSource, typ domain.ReliefType, amount decimal.Decimal) (domain.CalculatedRelief, bool) {
	amount = money.RoundCents(amount)
	if !amount.IsPositive() {
		return domain.CalculatedRelief{}, false
	}
	return domain.CalculatedRelief{
		Code:                 code,
		Name:                 name,
		Source:               src,
		ReliefType:           typ,
		Amount:               amount,
		ReducesTaxableIncome: typ.ReducesTaxableIncome(),
		IsTaxCredit:          typ.IsTaxCredit(),
	}, true
}

// computeReliefs unions statutory-contribution relief with scheme relief.
// Every line is capped on its own before it is summed.
func (e *Engine) computeReliefs(in *preparedInput, contribs []contribution) reliefTotals {
	var t reliefTotals
	rc := in.Relief
	if rc == nil {
		return t
	}
	e.statutoryReliefs(&t, rc, contribs)
	e.schemeReliefs(&t, in, rc)
	return t
}

func (e *Engine) statutoryReliefs(t *reliefTotals, rc *domain.TaxReliefContext, contribs []contribution) {
	rules := make(map[domain.StatutoryCode]domain.TaxReliefRule, len(rc.Rules))
	for _, r := range rc.Rules {
		rules[r.StatutoryCode] = r
	}
	for _, c := range contribs {
		rule, ok := rules[c.Type.Code]
		if !ok {
			continue
		}
		amount := decimal.Zero
		if rule.AppliesToEmployeeContribution {
			amount = amount.Add(c.Employee.Mul(rule.ReliefPercentage))
		}
		if rule.AppliesToEmployerContribution {
			amount = amount.Add(c.Employer.Mul(rule.ReliefPercentage))
		}
		code := domain.ReliefCode(c.Type.Code)
		claimed, _ := rc.Claimed.Lookup(code)
		periodClaimed, _ := rc.PeriodClaimed.Lookup(code)
		amount = capRelief(amount, rule.MonthlyCap, rule.AnnualCap, claimed, periodClaimed)
		if r, ok := newRelief(code, c.Type.Name+" relief", domain.SourceStatutory, domain.ReliefDeduction, amount); ok {
			t.add(r)
		}
	}
}

func (e *Engine) schemeReliefs(t *reliefTotals, in *preparedInput, rc *domain.TaxReliefContext) {
	schemes := make(map[domain.SchemeCode]domain.TaxReliefScheme, len(rc.Schemes))
	for _, s := range rc.Schemes {
		schemes[s.Code] = s
	}

	covered := make(map[domain.SchemeCode]bool)
	for i := range rc.Enrollments {
		en := &rc.Enrollments[i]
		if !en.IsActive() {
			continue
		}
		covered[en.SchemeCode] = true
		s := schemes[en.SchemeCode]
		if !s.IsActive {
			e.Logger.Debugf("scheme %s inactive, skipping enrollment", s.Code)
			continue
		}
		if !s.AdmitsAge(in.age) {
			e.Logger.Debugf("scheme %s: age outside eligibility window, skipping", s.Code)
			continue
		}
		claimed, ok := rc.Claimed.Lookup(domain.ReliefCode(s.Code))
		if !ok {
			claimed = en.YTDClaimed
		}
		periodClaimed, _ := rc.PeriodClaimed.Lookup(domain.ReliefCode(s.Code))
		amount := capRelief(e.schemeAmount(s, in.GrossPay, en), s.MonthlyCap, s.AnnualCap, claimed, periodClaimed)
		if r, ok := newRelief(domain.ReliefCode(s.Code), s.Name, domain.SourceScheme, s.ReliefType, amount); ok {
			t.add(r)
		}
	}

	auto := e.autoApply
	if len(rc.AutoApplyCodes) > 0 {
		auto = codeSet(rc.AutoApplyCodes)
	}
	for _, s := range rc.Schemes {
		if covered[s.Code] || !s.IsActive {
			continue
		}
		if s.Category != domain.CategoryPersonalRelief && !auto[s.Code] {
			continue
		}
		if s.IsAgeGated() && in.age == nil {
			e.Logger.Debugf("scheme %s is age gated and age is unknown, skipping", s.Code)
			continue
		}
		if !s.AdmitsAge(in.age) {
			continue
		}
		claimed, _ := rc.Claimed.Lookup(domain.ReliefCode(s.Code))
		periodClaimed, _ := rc.PeriodClaimed.Lookup(domain.ReliefCode(s.Code))
		amount := capRelief(e.schemeAmount(s, in.GrossPay, nil), s.MonthlyCap, s.AnnualCap, claimed, periodClaimed)
		if r, ok := newRelief(domain.ReliefCode(s.Code), s.Name, domain.SourceScheme, s.ReliefType, amount); ok {
			t.add(r)
		}
	}
}

// schemeAmount is the uncapped monthly relief for s. en is nil for auto-applied schemes.
func (e *Engine) schemeAmount(s domain.TaxReliefScheme, gross decimal.Decimal, en *domain.EmployeeReliefEnrollment) decimal.Decimal {
	switch s.Method {
	case domain.ReliefFixedAmount:
		return money.Monthly(s.ReliefValue)
	case domain.ReliefPercentageOfIncome:
		return gross.Mul(s.ReliefPercentage)
	case domain.ReliefPercentageOfContribution:
		if en == nil {
			return decimal.Zero
		}
		if en.ContributionAmount.IsPositive() {
			return en.ContributionAmount.Mul(s.ReliefPercentage)
		}
		return gross.Mul(en.ContributionPercentage).Mul(s.ReliefPercentage)
	case domain.ReliefTiered:
		return e.formulas.Evaluate(s, gross)
	}
	return decimal.Zero
}

// capRelief applies the monthly cap net of periodClaimed, then the annual cap
// net of claimed. claimed already includes periodClaimed.
func capRelief(amount decimal.Decimal, monthly, annual *decimal.Decimal, claimed, periodClaimed decimal.Decimal) decimal.Decimal {
	amount = money.NonNegative(amount)
	amount = money.ClampToCap(amount, monthly, periodClaimed)
	return money.ClampToCap(amount, annual, claimed)
}

func codeSet(codes []domain.SchemeCode) map[domain.SchemeCode]bool {
	set := make(map[domain.SchemeCode]bool, len(codes))
	for _, c := range codes {
		set[c] = true
	}
	return set
}
