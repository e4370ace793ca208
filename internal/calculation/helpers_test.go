package calculation

import (
	"testing"
	"time"

	"github.com/rpgo/statutory-calculator/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var testDate = time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func intp(i int) *int { return &i }

func assertMoney(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.Equal(t, want, got.StringFixed(2), msgAndArgs...)
}

func percentageType(code, name string, employee, employer string) domain.StatutoryDeductionType {
	return domain.StatutoryDeductionType{
		Code:  domain.StatutoryCode(code),
		Class: domain.ClassPension,
		Name:  name,
		Bands: []domain.RateBand{{
			ID:           code + "-1",
			LowerBound:   decimal.Zero,
			Method:       domain.MethodPercentage,
			EmployeeRate: d(employee),
			EmployerRate: d(employer),
		}},
	}
}

// payeType has brackets [0,3000)@0%, [3000,8000)@10%, [8000,∞)@20%.
func payeType() domain.StatutoryDeductionType {
	return domain.StatutoryDeductionType{
		Code:  "PAYE",
		Class: domain.ClassIncomeTax,
		Name:  "Pay As You Earn",
		Bands: []domain.RateBand{
			{ID: "paye-3", LowerBound: d("8000"), EmployeeRate: d("0.20")},
			{ID: "paye-1", LowerBound: d("0"), UpperBound: dp("3000"), EmployeeRate: d("0")},
			{ID: "paye-2", LowerBound: d("3000"), UpperBound: dp("8000"), EmployeeRate: d("0.10")},
		},
	}
}

func newInput(gross string, types ...domain.StatutoryDeductionType) *domain.CalculationInput {
	return &domain.CalculationInput{
		EmployeeID:     "EMP-001",
		GrossPay:       d(gross),
		EffectiveDate:  testDate,
		DeductionTypes: types,
		TaxMethod:      domain.TaxCumulative,
	}
}
