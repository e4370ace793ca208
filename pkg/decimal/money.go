package decimal

import (
	"github.com/shopspring/decimal"
)

// MonthsPerYear is the apportionment factor between annual and monthly amounts.
var MonthsPerYear = decimal.NewFromInt(12)

// Money represents a monetary amount with proper financial precision
type Money struct {
	decimal.Decimal
}

// NewMoneyFromDecimal creates a new Money instance from a decimal.Decimal
func NewMoneyFromDecimal(d decimal.Decimal) Money {
	return Money{d}
}

// NewMoneyFromString creates a new Money instance from a string
func NewMoneyFromString(value string) (Money, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Money{}, err
	}
	return Money{d}, nil
}

// String returns the string representation with two decimal places
func (m Money) String() string {
	return m.Decimal.StringFixed(2)
}

// Format prefixes the amount with a currency code, e.g. "NGN 1250.00".
// An empty currency yields the bare amount.
func (m Money) Format(currency string) string {
	if currency == "" {
		return m.String()
	}
	return currency + " " + m.String()
}

// RoundCents rounds d to two decimal places. Only emission boundaries should
// call this; running totals stay unrounded.
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// NonNegative floors d at zero.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Monthly apportions an annual amount to one month.
func Monthly(annual decimal.Decimal) decimal.Decimal {
	return annual.Div(MonthsPerYear)
}

// Annual converts a monthly amount to an annual one.
func Annual(monthly decimal.Decimal) decimal.Decimal {
	return monthly.Mul(MonthsPerYear)
}

// RemainingCap returns max(0, limit - sum(used)) floored to the cent, so a
// rounded emission can never push the total past limit.
func RemainingCap(limit decimal.Decimal, used ...decimal.Decimal) decimal.Decimal {
	remaining := limit
	for _, u := range used {
		remaining = remaining.Sub(u)
	}
	return NonNegative(remaining).RoundFloor(2)
}

// ClampToCap limits amount to what is left under limit after used amounts.
// A nil limit means uncapped and returns amount unchanged.
func ClampToCap(amount decimal.Decimal, limit *decimal.Decimal, used ...decimal.Decimal) decimal.Decimal {
	if limit == nil {
		return amount
	}
	return decimal.Min(amount, RemainingCap(*limit, used...))
}
