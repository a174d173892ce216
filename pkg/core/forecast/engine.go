package forecast

import "statement_forecast/pkg/core/statement"

// Result is one company's complete forecast.
type Result struct {
	Ticker      string
	Assumptions Assumptions
	Income      []IncomePeriod
	Balance     []BalancePeriod
	CashFlow    []CashFlowPeriod
	Check       BalanceReport
}

// Empty reports that no forecast could be produced (no revenue history).
func (r *Result) Empty() bool {
	return r == nil || len(r.Income) == 0
}

// Balanced reports whether every forecast period satisfies the accounting
// identity. An empty result is balanced.
func (r *Result) Balanced() bool {
	return r.Empty() || r.Check.Balanced
}

// Table merges the three statements per period into one forecast table.
func (r *Result) Table() *statement.Table {
	t := &statement.Table{Periods: []statement.Period{}}
	if r == nil {
		return t
	}
	t.Ticker = r.Ticker
	for i, is := range r.Income {
		items := is.LineItems()
		if i < len(r.Balance) {
			items.Merge(r.Balance[i].LineItems())
		}
		if i < len(r.CashFlow) {
			items.Merge(r.CashFlow[i].LineItems())
		}
		t.Periods = append(t.Periods, statement.Period{Date: is.Date, Items: items})
	}
	return t
}

// Run forecasts one company. hist must already be sorted ascending and
// validated; it is never modified.
func Run(hist *statement.Table, params Parameters) *Result {
	ticker := ""
	if hist != nil {
		ticker = hist.Ticker
	}

	// 1. Income statement (estimates the ratio set)
	income, a := ProjectIncome(hist, params)
	res := &Result{Ticker: ticker, Assumptions: a, Income: income}
	if len(income) == 0 {
		res.Check = CheckBalance(nil, ticker, params.BalanceTolerance)
		return res
	}

	// 2. Balance sheet
	res.Balance = ProjectBalance(hist, income, a)

	// 3. Cash flow
	res.CashFlow = ProjectCashFlow(hist, income, res.Balance)

	// 4. Cash closes the balance sheet
	RollForwardCash(hist, res.Balance, res.CashFlow)

	// 5. Identity check
	res.Check = CheckBalance(res.Balance, ticker, params.BalanceTolerance)
	return res
}
