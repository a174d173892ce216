package report

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when no report currency is configured or the
// configured code is unknown.
const DefaultCurrency = "USD"

// FormatMoney renders v in the minor-unit precision of currency,
// e.g. 1234.5 USD is "$1,234.50".
func FormatMoney(v float64, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		cur = money.GetCurrency(DefaultCurrency)
	}
	factor, _ := decimal.NewFromInt(10).PowInt32(int32(cur.Fraction))
	amount := decimal.NewFromFloat(v).Mul(factor).Round(0)
	return money.New(amount.IntPart(), cur.Code).Display()
}

// FormatPercent renders a ratio as a percentage with two decimals.
func FormatPercent(ratio float64) string {
	return decimal.NewFromFloat(ratio).Shift(2).StringFixed(2) + "%"
}

// FormatDays renders a days-outstanding ratio.
func FormatDays(days float64) string {
	return decimal.NewFromFloat(days).StringFixed(1) + " days"
}
