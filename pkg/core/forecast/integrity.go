package forecast

import (
	"fmt"
	"math"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// PeriodCheck is the accounting identity evaluated for one period.
type PeriodCheck struct {
	Date                 time.Time `json:"date"`
	Assets               float64   `json:"assets"`
	Liabilities          float64   `json:"liabilities"`
	Equity               float64   `json:"equity"`
	LiabilitiesAndEquity float64   `json:"liabilities_and_equity"`
	Difference           float64   `json:"difference"` // absolute
	Balanced             bool      `json:"balanced"`
}

// BalanceReport is the outcome of CheckBalance.
type BalanceReport struct {
	Label    string        `json:"label"`
	Periods  []PeriodCheck `json:"periods"`
	Balanced bool          `json:"balanced"`
}

// Unbalanced returns the periods outside tolerance.
func (r BalanceReport) Unbalanced() []PeriodCheck {
	var out []PeriodCheck
	for _, p := range r.Periods {
		if !p.Balanced {
			out = append(out, p)
		}
	}
	return out
}

// Lines returns one diagnostic line per period.
func (r BalanceReport) Lines() []string {
	lines := make([]string, 0, len(r.Periods))
	for _, p := range r.Periods {
		if p.Balanced {
			lines = append(lines, fmt.Sprintf("✓ [%s] Year %d: Balance sheet balances (Assets: %s)",
				r.Label, p.Date.Year(), FormatAmount(p.Assets)))
			continue
		}
		lines = append(lines, fmt.Sprintf("WARNING [%s] Year %d: Balance sheet does NOT balance! Assets: %s, Liabilities + Equity: %s, Difference: %s",
			r.Label, p.Date.Year(), FormatAmount(p.Assets), FormatAmount(p.LiabilitiesAndEquity), FormatAmount(p.Difference)))
	}
	return lines
}

// CheckBalance evaluates assets = liabilities + equity for every period
// within an absolute tolerance. It never modifies the periods. An empty
// forecast is balanced.
func CheckBalance(periods []BalancePeriod, label string, tolerance float64) BalanceReport {
	report := BalanceReport{Label: label, Periods: make([]PeriodCheck, 0, len(periods)), Balanced: true}

	for _, p := range periods {
		assets := p.Intangibles +
			p.NetPPE +
			p.OtherCurrentAssets +
			p.OtherNonCurrentAssets +
			p.AccountsReceivable +
			p.Inventory +
			p.Cash
		liabilities := p.AccountsPayable +
			p.OtherCurrentLiabilities +
			p.OtherNonCurrentLiabilities +
			p.LongTermDebt
		le := liabilities + p.Equity
		diff := math.Abs(assets - le)

		check := PeriodCheck{
			Date:                 p.Date,
			Assets:               assets,
			Liabilities:          liabilities,
			Equity:               p.Equity,
			LiabilitiesAndEquity: le,
			Difference:           diff,
			Balanced:             diff <= tolerance,
		}
		if !check.Balanced {
			report.Balanced = false
		}
		report.Periods = append(report.Periods, check)
	}
	return report
}

// amountFormatter prints currency-less amounts with two decimals and
// thousands separators.
var amountFormatter = money.NewFormatter(2, ".", ",", "", "1")

// FormatAmount renders v as e.g. "1,234,567.89".
func FormatAmount(v float64) string {
	if !finite(v) {
		return fmt.Sprint(v)
	}
	cents := decimal.NewFromFloat(v).Shift(2).Round(0).IntPart()
	return amountFormatter.Format(cents)
}
