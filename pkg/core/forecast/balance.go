package forecast

import (
	"time"

	"statement_forecast/pkg/core/statement"
)

// BalancePeriod is one projected balance sheet. Cash stays 0 until
// RollForwardCash fills it in.
type BalancePeriod struct {
	Date time.Time

	// Working capital (days method)
	AccountsReceivable float64
	AccountsPayable    float64
	Inventory          float64

	// Sales driven
	NetPPE                     float64
	CurrentAssets              float64
	NonCurrentAssets           float64
	CurrentLiabilities         float64
	NonCurrentLiabilities      float64
	OtherCurrentAssets         float64
	OtherNonCurrentAssets      float64
	OtherCurrentLiabilities    float64
	OtherNonCurrentLiabilities float64

	// Flat carry-forward
	LongTermDebt float64
	Intangibles  float64

	Equity float64
	Cash   float64
}

// LineItems renders the period in the statement vocabulary.
func (p BalancePeriod) LineItems() statement.LineItems {
	return statement.LineItems{
		statement.AccountsReceivable:         p.AccountsReceivable,
		statement.AccountsPayable:            p.AccountsPayable,
		statement.Inventory:                  p.Inventory,
		statement.NetPPE:                     p.NetPPE,
		statement.CurrentAssets:              p.CurrentAssets,
		statement.NonCurrentAssets:           p.NonCurrentAssets,
		statement.CurrentLiabilities:         p.CurrentLiabilities,
		statement.NonCurrentLiabilities:      p.NonCurrentLiabilities,
		statement.OtherCurrentAssets:         p.OtherCurrentAssets,
		statement.OtherNonCurrentAssets:      p.OtherNonCurrentAssets,
		statement.OtherCurrentLiabilities:    p.OtherCurrentLiabilities,
		statement.OtherNonCurrentLiabilities: p.OtherNonCurrentLiabilities,
		statement.LongTermDebt:               p.LongTermDebt,
		statement.Intangibles:                p.Intangibles,
		statement.TotalEquity:                p.Equity,
		statement.Cash:                       p.Cash,
	}
}

// balanceFromItems reads a historical period into the balance shape, missing
// values as 0.
func balanceFromItems(p statement.Period) BalancePeriod {
	li := p.Items
	return BalancePeriod{
		Date:                       p.Date,
		AccountsReceivable:         li.Get(statement.AccountsReceivable),
		AccountsPayable:            li.Get(statement.AccountsPayable),
		Inventory:                  li.Get(statement.Inventory),
		NetPPE:                     li.Get(statement.NetPPE),
		CurrentAssets:              li.Get(statement.CurrentAssets),
		NonCurrentAssets:           li.Get(statement.NonCurrentAssets),
		CurrentLiabilities:         li.Get(statement.CurrentLiabilities),
		NonCurrentLiabilities:      li.Get(statement.NonCurrentLiabilities),
		OtherCurrentAssets:         li.Get(statement.OtherCurrentAssets),
		OtherNonCurrentAssets:      li.Get(statement.OtherNonCurrentAssets),
		OtherCurrentLiabilities:    li.Get(statement.OtherCurrentLiabilities),
		OtherNonCurrentLiabilities: li.Get(statement.OtherNonCurrentLiabilities),
		LongTermDebt:               li.Get(statement.LongTermDebt),
		Intangibles:                li.Get(statement.Intangibles),
		Equity:                     li.Get(statement.TotalEquity),
		Cash:                       li.Get(statement.Cash),
	}
}

// ProjectBalance projects the balance sheet for each income period. Equity
// is rolled forward by net income only; debt and intangibles are held at
// their last historical values. Cash is left for RollForwardCash.
func ProjectBalance(hist *statement.Table, income []IncomePeriod, a Assumptions) []BalancePeriod {
	if len(income) == 0 {
		return nil
	}

	ratio := a.BalanceRatios
	equity := a.OpeningEquity

	out := make([]BalancePeriod, 0, len(income))
	for _, is := range income {
		rev, cogs := is.Revenue, is.CostOfRevenue
		equity += is.NetIncome

		out = append(out, BalancePeriod{
			Date: is.Date,

			AccountsReceivable: a.DSO / daysBasis * rev,
			AccountsPayable:    a.DPO / daysBasis * cogs,
			Inventory:          a.DIO / daysBasis * cogs,

			NetPPE:                     rev * ratio[statement.NetPPE],
			CurrentAssets:              rev * ratio[statement.CurrentAssets],
			NonCurrentAssets:           rev * ratio[statement.NonCurrentAssets],
			CurrentLiabilities:         rev * ratio[statement.CurrentLiabilities],
			NonCurrentLiabilities:      rev * ratio[statement.NonCurrentLiabilities],
			OtherCurrentAssets:         rev * ratio[statement.OtherCurrentAssets],
			OtherNonCurrentAssets:      rev * ratio[statement.OtherNonCurrentAssets],
			OtherCurrentLiabilities:    rev * ratio[statement.OtherCurrentLiabilities],
			OtherNonCurrentLiabilities: rev * ratio[statement.OtherNonCurrentLiabilities],

			LongTermDebt: a.LongTermDebt,
			Intangibles:  a.Intangibles,

			Equity: equity,
		})
	}
	return out
}
