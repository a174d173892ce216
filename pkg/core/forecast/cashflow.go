package forecast

import (
	"time"

	"statement_forecast/pkg/core/statement"
)

// CashFlowPeriod is one projected cash flow statement.
//
// Investment lines use prior - current, so growth in an asset is a cash
// outflow and shows negative.
type CashFlowPeriod struct {
	Date time.Time

	OperatingTaxes float64
	NOPAT          float64
	GrossCashFlow  float64

	InvestmentInWorkingCapital   float64
	InvestmentInOtherAssets      float64
	InvestmentInOtherLiabilities float64
	Capex                        float64
	OtherInvestment              float64

	UFCF          float64
	NetCashFlow   float64
	EquityResidue float64 // equity movement not explained by net income
}

// LineItems renders the period in the statement vocabulary.
func (p CashFlowPeriod) LineItems() statement.LineItems {
	return statement.LineItems{
		statement.OperatingTaxes:               p.OperatingTaxes,
		statement.NOPAT:                        p.NOPAT,
		statement.GrossCashFlow:                p.GrossCashFlow,
		statement.InvestmentInWorkingCapital:   p.InvestmentInWorkingCapital,
		statement.InvestmentInOtherAssets:      p.InvestmentInOtherAssets,
		statement.InvestmentInOtherLiabilities: p.InvestmentInOtherLiabilities,
		statement.Capex:                        p.Capex,
		statement.OtherInvestment:              p.OtherInvestment,
		statement.UFCF:                         p.UFCF,
		statement.NetCashFlow:                  p.NetCashFlow,
	}
}

// ProjectCashFlow derives the cash flow statement from consecutive balance
// sheet states. The first period is measured against the last historical
// period. Neither forecast is modified.
func ProjectCashFlow(hist *statement.Table, income []IncomePeriod, balance []BalancePeriod) []CashFlowPeriod {
	if len(income) == 0 || len(balance) == 0 {
		return nil
	}

	n := len(income)
	if len(balance) < n {
		n = len(balance)
	}

	prev := balanceFromItems(hist.Last())
	out := make([]CashFlowPeriod, 0, n)
	for i := 0; i < n; i++ {
		is, cur := income[i], balance[i]
		out = append(out, cashFlowPeriod(is, prev, cur))
		prev = cur
	}
	return out
}

func cashFlowPeriod(is IncomePeriod, prev, cur BalancePeriod) CashFlowPeriod {
	// delta is the cash effect of an asset going from a to b.
	delta := func(a, b float64) float64 { return a - b }

	cf := CashFlowPeriod{Date: is.Date}

	cf.OperatingTaxes = is.EBIT * is.TaxRate
	cf.NOPAT = is.EBIT - cf.OperatingTaxes
	cf.GrossCashFlow = cf.NOPAT + is.Depreciation

	cf.InvestmentInWorkingCapital = delta(prev.Inventory, cur.Inventory) +
		delta(prev.AccountsReceivable, cur.AccountsReceivable) -
		delta(prev.AccountsPayable, cur.AccountsPayable)
	cf.InvestmentInOtherAssets = delta(
		prev.OtherCurrentAssets+prev.OtherNonCurrentAssets,
		cur.OtherCurrentAssets+cur.OtherNonCurrentAssets,
	)
	cf.InvestmentInOtherLiabilities = -delta(
		prev.OtherCurrentLiabilities+prev.OtherNonCurrentLiabilities,
		cur.OtherCurrentLiabilities+cur.OtherNonCurrentLiabilities,
	)
	cf.Capex = delta(prev.NetPPE, cur.NetPPE)
	cf.OtherInvestment = delta(prev.Intangibles, cur.Intangibles)

	cf.UFCF = cf.GrossCashFlow +
		cf.InvestmentInWorkingCapital +
		cf.InvestmentInOtherAssets +
		cf.InvestmentInOtherLiabilities +
		cf.Capex +
		cf.OtherInvestment

	// Financing side. Debt and equity deltas are current - prior.
	taxTiming := cf.OperatingTaxes - is.Tax
	debtChange := cur.LongTermDebt - prev.LongTermDebt
	cf.EquityResidue = cur.Equity - prev.Equity - is.NetIncome

	cf.NetCashFlow = cf.UFCF +
		is.NetInterestIncome +
		is.OtherIncomeExpense +
		taxTiming +
		debtChange +
		cf.EquityResidue

	return cf
}
