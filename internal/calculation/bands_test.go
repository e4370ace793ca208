package calculation

import (
	"testing"
	"time"

	"github.com/rpgo/statutory-calculator/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveBand(t *testing.T) {
	dt := domain.StatutoryDeductionType{
		Code:  "SSF",
		Class: domain.ClassSocialSecurity,
		Name:  "Social Security",
		Bands: []domain.RateBand{
			{ID: "low", LowerBound: d("0"), UpperBound: dp("1000"), Method: domain.MethodFixed, EmployeeFixedAmount: d("10")},
			{ID: "mid", LowerBound: d("1000"), UpperBound: dp("5000"), Method: domain.MethodFixed, EmployeeFixedAmount: d("20")},
			{ID: "high", LowerBound: d("5000"), MinAge: intp(18), MaxAge: intp(60), Method: domain.MethodFixed, EmployeeFixedAmount: d("30")},
		},
	}

	tests := []struct {
		name   string
		amount string
		age    *int
		wantID string
		wantOK bool
	}{
		{name: "lower bound is inclusive", amount: "0", wantID: "low", wantOK: true},
		{name: "upper bound is exclusive", amount: "1000", wantID: "mid", wantOK: true},
		{name: "inside middle band", amount: "4999.99", wantID: "mid", wantOK: true},
		{name: "age window admits", amount: "9000", age: intp(60), wantID: "high", wantOK: true},
		{name: "age window rejects", amount: "9000", age: intp(61), wantOK: false},
		{name: "unknown age never matches windowed band", amount: "9000", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			band, ok, err := ResolveBand(dt, d(tt.amount), tt.age, testDate)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantID, band.ID)
			}
		})
	}
}

func TestResolveBandEffectiveDates(t *testing.T) {
	endOf2024 := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	dt := domain.StatutoryDeductionType{
		Code:  "NHIS",
		Class: domain.ClassHealthLevy,
		Name:  "Health Insurance",
		Bands: []domain.RateBand{
			{ID: "2024", LowerBound: d("0"), EffectiveTo: &endOf2024, Method: domain.MethodPercentage, EmployeeRate: d("0.05")},
			{ID: "2025", LowerBound: d("0"), EffectiveFrom: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Method: domain.MethodPercentage, EmployeeRate: d("0.06")},
		},
	}
	require.NoError(t, ValidateDeductionTypes([]domain.StatutoryDeductionType{dt}))

	band, ok, err := ResolveBand(dt, d("100"), nil, endOf2024)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2024", band.ID)

	band, ok, err = ResolveBand(dt, d("100"), nil, testDate)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2025", band.ID)
}

func TestResolveBandOverlapFailsLoudly(t *testing.T) {
	dt := domain.StatutoryDeductionType{
		Code:  "PENSION",
		Class: domain.ClassPension,
		Name:  "Pension",
		Bands: []domain.RateBand{
			{ID: "a", LowerBound: d("0"), UpperBound: dp("5000"), Method: domain.MethodPercentage, EmployeeRate: d("0.05")},
			{ID: "b", LowerBound: d("4000"), Method: domain.MethodPercentage, EmployeeRate: d("0.08")},
		},
	}
	_, _, err := ResolveBand(dt, d("4500"), nil, testDate)
	assert.ErrorIs(t, err, ErrOverlappingBands)

	_, ok, err := ResolveBand(dt, d("3000"), nil, testDate)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.ErrorIs(t, ValidateDeductionTypes([]domain.StatutoryDeductionType{dt}), ErrOverlappingBands)
}

func TestValidateDeductionTypes(t *testing.T) {
	ageSplit := domain.StatutoryDeductionType{
		Code:  "SSNIT",
		Class: domain.ClassSocialSecurity,
		Name:  "Social Security",
		Bands: []domain.RateBand{
			{ID: "working", LowerBound: d("0"), MaxAge: intp(59), Method: domain.MethodPercentage, EmployeeRate: d("0.055")},
			{ID: "retired", LowerBound: d("0"), MinAge: intp(60), Method: domain.MethodPercentage},
		},
	}

	tests := []struct {
		name    string
		types   []domain.StatutoryDeductionType
		wantErr error
	}{
		{name: "valid", types: []domain.StatutoryDeductionType{percentageType("PENSION", "Pension", "0.08", "0.10"), payeType()}},
		{name: "disjoint age windows", types: []domain.StatutoryDeductionType{ageSplit}},
		{name: "two income tax types", types: []domain.StatutoryDeductionType{payeType(), func() domain.StatutoryDeductionType {
			p := payeType()
			p.Code = "PAYE2"
			return p
		}()}, wantErr: ErrDuplicateIncomeTax},
		{name: "duplicate code", types: []domain.StatutoryDeductionType{percentageType("NHF", "Housing", "0.025", "0"), percentageType("NHF", "Housing", "0.025", "0")}, wantErr: ErrInvalidInput},
		{name: "no bands", types: []domain.StatutoryDeductionType{{Code: "NSITF", Class: domain.ClassOther, Name: "NSITF"}}, wantErr: ErrMissingBands},
		{name: "negative cap", types: []domain.StatutoryDeductionType{func() domain.StatutoryDeductionType {
			p := percentageType("PENSION", "Pension", "0.08", "0.10")
			p.Bands[0].EmployeeAnnualCap = dp("-1")
			return p
		}()}, wantErr: ErrInvalidInput},
		{name: "unknown method", types: []domain.StatutoryDeductionType{func() domain.StatutoryDeductionType {
			p := percentageType("PENSION", "Pension", "0.08", "0.10")
			p.Bands[0].Method = "hourly"
			return p
		}()}, wantErr: ErrInvalidInput},
		{name: "inverted bounds", types: []domain.StatutoryDeductionType{func() domain.StatutoryDeductionType {
			p := percentageType("PENSION", "Pension", "0.08", "0.10")
			p.Bands[0].LowerBound = d("100")
			p.Bands[0].UpperBound = dp("50")
			return p
		}()}, wantErr: ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDeductionTypes(tt.types)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTaxBracketsRequireEffectiveBracket(t *testing.T) {
	paye := payeType()
	future := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range paye.Bands {
		paye.Bands[i].EffectiveFrom = future
	}
	_, err := TaxBrackets(paye, nil, testDate)
	assert.ErrorIs(t, err, ErrMissingBands)

	brackets, err := TaxBrackets(paye, nil, future)
	require.NoError(t, err)
	require.Len(t, brackets, 3)
	assert.Equal(t, "paye-1", brackets[0].ID)
	assert.Equal(t, "paye-3", brackets[2].ID)
}
