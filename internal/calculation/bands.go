package calculation

import (
	"fmt"
	"sort"
	"time"

	"github.com/rpgo/statutory-calculator/internal/domain"
	"github.com/rpgo/statutory-calculator/pkg/dateutil"
	"github.com/shopspring/decimal"
)

// ResolveBand returns the single band of dt that applies to amount, age and date.
// The boolean is false when no band matches; the caller then skips the type.
// More than one match means the configuration is inconsistent and is an error.
func ResolveBand(dt domain.StatutoryDeductionType, amount decimal.Decimal, age *int, date time.Time) (domain.RateBand, bool, error) {
	var (
		found   domain.RateBand
		matched int
	)
	for _, b := range dt.Bands {
		if !bandEffective(b, date) || !b.AdmitsAge(age) || !b.ContainsAmount(amount) {
			continue
		}
		matched++
		if matched > 1 {
			return domain.RateBand{}, false, fmt.Errorf("%s: bands %q and %q both match %s: %w",
				dt.Code, found.ID, b.ID, amount.StringFixed(2), ErrOverlappingBands)
		}
		found = b
	}
	return found, matched == 1, nil
}

func bandEffective(b domain.RateBand, date time.Time) bool {
	return dateutil.WithinRange(date, b.EffectiveFrom, b.EffectiveTo)
}

// sortBands returns a copy of bands ordered ascending by lower bound.
func sortBands(bands []domain.RateBand) []domain.RateBand {
	sorted := append([]domain.RateBand(nil), bands...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].LowerBound.LessThan(sorted[j].LowerBound)
	})
	return sorted
}

// TaxBrackets selects the income-tax brackets effective on date for age and
// checks that they do not overlap.
func TaxBrackets(dt domain.StatutoryDeductionType, age *int, date time.Time) ([]domain.RateBand, error) {
	var active []domain.RateBand
	for _, b := range dt.Bands {
		if bandEffective(b, date) && b.AdmitsAge(age) {
			active = append(active, b)
		}
	}
	if len(active) == 0 {
		return nil, fmt.Errorf("%s: no bracket effective on %s: %w", dt.Code, date.Format("2006-01-02"), ErrMissingBands)
	}
	sorted := sortBands(active)
	for i := 0; i < len(sorted)-1; i++ {
		cur, next := sorted[i], sorted[i+1]
		if cur.UpperBound == nil || cur.UpperBound.GreaterThan(next.LowerBound) {
			return nil, fmt.Errorf("%s: brackets %q and %q: %w", dt.Code, cur.ID, next.ID, ErrOverlappingBands)
		}
	}
	return sorted, nil
}

// ValidateDeductionTypes checks a country's deduction types for the configuration
// inconsistencies the engine refuses to calculate with.
func ValidateDeductionTypes(types []domain.StatutoryDeductionType) error {
	seen := make(map[domain.StatutoryCode]bool, len(types))
	incomeTax := 0
	for _, dt := range types {
		if dt.Code == "" {
			return fmt.Errorf("deduction type %q has no code: %w", dt.Name, ErrInvalidInput)
		}
		if seen[dt.Code] {
			return fmt.Errorf("deduction code %s configured twice: %w", dt.Code, ErrInvalidInput)
		}
		seen[dt.Code] = true
		if dt.Class.IsIncomeTax() {
			incomeTax++
			if incomeTax > 1 {
				return fmt.Errorf("%s: %w", dt.Code, ErrDuplicateIncomeTax)
			}
		}
		if len(dt.Bands) == 0 {
			return fmt.Errorf("%s: %w", dt.Code, ErrMissingBands)
		}
		for _, b := range dt.Bands {
			if err := validateBand(dt, b); err != nil {
				return err
			}
		}
		for i := 0; i < len(dt.Bands); i++ {
			for j := i + 1; j < len(dt.Bands); j++ {
				if bandsOverlap(dt.Bands[i], dt.Bands[j]) {
					return fmt.Errorf("%s: bands %q and %q: %w", dt.Code, dt.Bands[i].ID, dt.Bands[j].ID, ErrOverlappingBands)
				}
			}
		}
	}
	return nil
}

func validateBand(dt domain.StatutoryDeductionType, b domain.RateBand) error {
	if b.LowerBound.IsNegative() {
		return fmt.Errorf("%s band %q: lower bound cannot be negative: %w", dt.Code, b.ID, ErrInvalidInput)
	}
	if b.UpperBound != nil && b.UpperBound.LessThanOrEqual(b.LowerBound) {
		return fmt.Errorf("%s band %q: upper bound must exceed lower bound: %w", dt.Code, b.ID, ErrInvalidInput)
	}
	if b.MinAge != nil && b.MaxAge != nil && *b.MinAge > *b.MaxAge {
		return fmt.Errorf("%s band %q: min age exceeds max age: %w", dt.Code, b.ID, ErrInvalidInput)
	}
	for name, c := range b.Caps() {
		if c != nil && c.IsNegative() {
			return fmt.Errorf("%s band %q: %s cannot be negative: %w", dt.Code, b.ID, name, ErrInvalidInput)
		}
	}
	if b.EmployeeRate.IsNegative() || b.EmployerRate.IsNegative() {
		return fmt.Errorf("%s band %q: rates cannot be negative: %w", dt.Code, b.ID, ErrInvalidInput)
	}
	if dt.Class.IsIncomeTax() {
		return nil
	}
	switch b.Method {
	case domain.MethodPercentage, domain.MethodFixed, domain.MethodPerMonday:
	default:
		return fmt.Errorf("%s band %q: unknown method %q: %w", dt.Code, b.ID, b.Method, ErrInvalidInput)
	}
	if b.EmployeeFixedAmount.IsNegative() || b.EmployerFixedAmount.IsNegative() ||
		b.EmployeePerUnitAmount.IsNegative() || b.EmployerPerUnitAmount.IsNegative() {
		return fmt.Errorf("%s band %q: amounts cannot be negative: %w", dt.Code, b.ID, ErrInvalidInput)
	}
	return nil
}

// bandsOverlap reports whether some amount, age and date would match both bands.
func bandsOverlap(a, b domain.RateBand) bool {
	return amountsOverlap(a, b) && agesOverlap(a, b) && datesOverlap(a, b)
}

func amountsOverlap(a, b domain.RateBand) bool {
	aBelowB := b.UpperBound == nil || a.LowerBound.LessThan(*b.UpperBound)
	bBelowA := a.UpperBound == nil || b.LowerBound.LessThan(*a.UpperBound)
	return aBelowB && bBelowA
}

func agesOverlap(a, b domain.RateBand) bool {
	// A band without an age window admits every known age, so only the
	// windowed side constrains the intersection.
	lo := func(r domain.RateBand) int {
		if r.MinAge == nil {
			return 0
		}
		return *r.MinAge
	}
	hi := func(r domain.RateBand) int {
		if r.MaxAge == nil {
			return int(^uint(0) >> 1)
		}
		return *r.MaxAge
	}
	return lo(a) <= hi(b) && lo(b) <= hi(a)
}

func datesOverlap(a, b domain.RateBand) bool {
	startsBeforeEnd := func(start time.Time, end *time.Time) bool {
		return end == nil || start.IsZero() || !start.After(*end)
	}
	return startsBeforeEnd(a.EffectiveFrom, b.EffectiveTo) && startsBeforeEnd(b.EffectiveFrom, a.EffectiveTo)
}
