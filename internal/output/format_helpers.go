package output

import (
	"strconv"

	money "github.com/rpgo/statutory-calculator/pkg/decimal"
	"github.com/shopspring/decimal"
)

// FormatCurrency formats a decimal with 2 decimals, prefixed by the currency code when set.
func FormatCurrency(amount decimal.Decimal, currency string) string {
	return money.NewMoneyFromDecimal(amount).Format(currency)
}

func boolToString(b bool) string { return strconv.FormatBool(b) }
