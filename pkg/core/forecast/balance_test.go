package forecast

import (
	"testing"

	"statement_forecast/pkg/core/statement"
)

// balancedHistory extends tenPercentHistory with balance sheets whose last
// period satisfies the accounting identity:
// assets 10+30+3+2+12.1+5+20 = 82.1, liabilities 6+2+5+15 = 28, equity 54.1.
func balancedHistory() *statement.Table {
	hist := tenPercentHistory()
	bs := []statement.LineItems{
		{
			statement.AccountsReceivable: 10, statement.Inventory: 4, statement.AccountsPayable: 5,
			statement.NetPPE: 25, statement.Intangibles: 10, statement.Cash: 15,
			statement.CurrentAssets: 31, statement.NonCurrentAssets: 37,
			statement.CurrentLiabilities: 7, statement.NonCurrentLiabilities: 20,
			statement.LongTermDebt: 15, statement.TotalEquity: 41,
		},
		{
			statement.AccountsReceivable: 11, statement.Inventory: 4.5, statement.AccountsPayable: 5.5,
			statement.NetPPE: 27, statement.Intangibles: 10, statement.Cash: 17,
			statement.CurrentAssets: 34.5, statement.NonCurrentAssets: 39,
			statement.CurrentLiabilities: 7.5, statement.NonCurrentLiabilities: 20,
			statement.LongTermDebt: 15, statement.TotalEquity: 46,
		},
		{
			statement.AccountsReceivable: 12.1, statement.Inventory: 5, statement.AccountsPayable: 6,
			statement.NetPPE: 30, statement.Intangibles: 10, statement.Cash: 20,
			statement.CurrentAssets: 40.1, statement.NonCurrentAssets: 42,
			statement.CurrentLiabilities: 8, statement.NonCurrentLiabilities: 20,
			statement.LongTermDebt: 15, statement.TotalEquity: 54.1,
			statement.OtherCurrentAssets: 3, statement.OtherNonCurrentAssets: 2,
			statement.OtherCurrentLiabilities: 2, statement.OtherNonCurrentLiabilities: 5,
		},
	}
	for i := range hist.Periods {
		hist.Periods[i].Items.Merge(bs[i])
	}
	return hist
}

func TestEstimateAssumptions_DaysOutstanding(t *testing.T) {
	a := EstimateAssumptions(balancedHistory(), DefaultParameters())

	// Last period only: AR 12.1 / revenue 121, inventory 5 and AP 6 / COGS 60.5.
	if !approx(a.DSO, 36) {
		t.Errorf("DSO = %v, want 36", a.DSO)
	}
	if !approx(a.DIO, 5/60.5*360) {
		t.Errorf("DIO = %v, want %v", a.DIO, 5/60.5*360)
	}
	if !approx(a.DPO, 6/60.5*360) {
		t.Errorf("DPO = %v, want %v", a.DPO, 6/60.5*360)
	}
}

func TestEstimateAssumptions_ZeroDenominators(t *testing.T) {
	hist := &statement.Table{Periods: []statement.Period{
		{Date: date(2023, 12, 31), Items: statement.LineItems{
			statement.TotalRevenue: 0, statement.Inventory: 10, statement.AccountsReceivable: 5,
		}},
	}}
	a := EstimateAssumptions(hist, DefaultParameters())
	if a.DIO != 0 || a.DPO != 0 || a.DSO != 0 {
		t.Errorf("days ratios should be 0 with zero denominators, got DIO=%v DPO=%v DSO=%v", a.DIO, a.DPO, a.DSO)
	}
	for item, r := range a.BalanceRatios {
		if r != 0 {
			t.Errorf("ratio %q = %v, want 0 with zero revenue", item, r)
		}
	}
}

func TestEstimateAssumptions_ResidualsFromSums(t *testing.T) {
	a := EstimateAssumptions(balancedHistory(), DefaultParameters())
	revenueSum := 331.0

	// Other current assets: CA - cash - AR - inventory, summed over the window.
	oca := (31 + 34.5 + 40.1) - (15 + 17 + 20) - (10 + 11 + 12.1) - (4 + 4.5 + 5)
	if got := a.BalanceRatios[statement.OtherCurrentAssets]; !approx(got, oca/revenueSum) {
		t.Errorf("other current assets ratio = %v, want %v", got, oca/revenueSum)
	}
	oncl := 60.0 - 45.0
	if got := a.BalanceRatios[statement.OtherNonCurrentLiabilities]; !approx(got, oncl/revenueSum) {
		t.Errorf("other non-current liabilities ratio = %v, want %v", got, oncl/revenueSum)
	}
	if got := a.BalanceRatios[statement.NetPPE]; !approx(got, 82/revenueSum) {
		t.Errorf("PPE ratio = %v, want %v", got, 82/revenueSum)
	}
}

func TestProjectBalance(t *testing.T) {
	hist := balancedHistory()
	params := DefaultParameters()
	income, a := ProjectIncome(hist, params)
	balance := ProjectBalance(hist, income, a)

	if len(balance) != len(income) {
		t.Fatalf("expected %d balance periods, got %d", len(income), len(balance))
	}

	equity := 54.1
	for i, p := range balance {
		is := income[i]
		equity += is.NetIncome

		if !approx(p.Equity, equity) {
			t.Errorf("period %d equity = %v, want opening + cumulative NI = %v", i+1, p.Equity, equity)
		}
		if p.LongTermDebt != 15 || p.Intangibles != 10 {
			t.Errorf("period %d flat items moved: debt=%v intangibles=%v", i+1, p.LongTermDebt, p.Intangibles)
		}
		if !approx(p.AccountsReceivable, a.DSO/360*is.Revenue) {
			t.Errorf("period %d AR = %v, want %v", i+1, p.AccountsReceivable, a.DSO/360*is.Revenue)
		}
		if !approx(p.Inventory, a.DIO/360*is.CostOfRevenue) {
			t.Errorf("period %d inventory = %v", i+1, p.Inventory)
		}
		if !approx(p.NetPPE, is.Revenue*a.BalanceRatios[statement.NetPPE]) {
			t.Errorf("period %d PPE = %v", i+1, p.NetPPE)
		}
		if p.Cash != 0 {
			t.Errorf("period %d cash = %v, want 0 before roll-forward", i+1, p.Cash)
		}
	}
}

func TestProjectBalance_EmptyIncome(t *testing.T) {
	if got := ProjectBalance(balancedHistory(), nil, Assumptions{}); len(got) != 0 {
		t.Errorf("expected no balance periods, got %d", len(got))
	}
}
