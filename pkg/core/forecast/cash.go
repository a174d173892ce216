package forecast

import "statement_forecast/pkg/core/statement"

// RollForwardCash completes the balance sheet forecast in place: starting
// from the last historical cash balance (0 if absent), each period's cash is
// the previous cash plus that period's net cash flow.
func RollForwardCash(hist *statement.Table, balance []BalancePeriod, cashflow []CashFlowPeriod) {
	if len(balance) == 0 || len(cashflow) == 0 {
		return
	}

	cash := hist.Last().Items.Get(statement.Cash)
	for i := range balance {
		if i >= len(cashflow) {
			break
		}
		cash += cashflow[i].NetCashFlow
		balance[i].Cash = cash
	}
}
