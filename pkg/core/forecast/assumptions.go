package forecast

import (
	"time"

	"statement_forecast/pkg/core/statement"
)

// daysBasis is the day count used for the days-outstanding ratios.
const daysBasis = 360.0

// Assumptions is the ratio set estimated once per company from its history.
// It is immutable for the rest of that company's forecast and is returned
// with the result so every projected number can be traced back.
type Assumptions struct {
	Ticker        string    `json:"ticker"`
	LastDate      time.Time `json:"last_date"`
	HasRevenue    bool      `json:"has_revenue"`
	LastRevenue   float64   `json:"last_revenue"`
	GrowthRate    float64   `json:"growth_rate"`
	TaxRate       float64   `json:"tax_rate"`
	TaxRateSource string    `json:"tax_rate_source"` // "reported" or "default"

	// DepreciationItem is the depreciation line name the history carries.
	DepreciationItem string             `json:"depreciation_item"`
	ExpenseRatios    map[string]float64 `json:"expense_ratios"`

	DSO float64 `json:"dso"`
	DPO float64 `json:"dpo"`
	DIO float64 `json:"dio"`

	BalanceRatios map[string]float64 `json:"balance_ratios"`

	// Held flat for the whole horizon.
	LongTermDebt float64 `json:"long_term_debt"`
	Intangibles  float64 `json:"intangibles"`

	OpeningEquity float64 `json:"opening_equity"`
	OpeningCash   float64 `json:"opening_cash"`
}

// ExpenseItems returns the income statement lines projected as a share of
// revenue, in projection order.
func (a Assumptions) ExpenseItems() []string {
	return []string{
		statement.CostOfRevenue,
		statement.OperatingExpense,
		a.DepreciationItem,
		statement.NetInterestIncome,
		statement.OtherIncomeExpense,
	}
}

// Balance sheet lines projected as a share of revenue. Sales-driven lines
// are read from the history directly; residuals are derived from sums.
var (
	salesDrivenItems = []string{
		statement.NetPPE,
		statement.CurrentAssets,
		statement.NonCurrentAssets,
		statement.CurrentLiabilities,
		statement.NonCurrentLiabilities,
	}
	residualItems = []string{
		statement.OtherCurrentAssets,
		statement.OtherNonCurrentAssets,
		statement.OtherCurrentLiabilities,
		statement.OtherNonCurrentLiabilities,
	}
)

// PooledRatio returns sum(numerator) / sum(denominator) over window, with
// missing values read as 0. A zero denominator sum yields 0.
func PooledRatio(window *statement.Table, numerator, denominator string) float64 {
	return pooled(window.Sum(numerator), window.Sum(denominator))
}

func pooled(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// daysOutstanding converts a single-period balance into days of flow.
func daysOutstanding(balance, flow float64) float64 {
	if flow == 0 {
		return 0
	}
	return balance / flow * daysBasis
}

// depreciationItem picks the depreciation line the history carries,
// preferring "Reconciled Depreciation".
func depreciationItem(hist *statement.Table) string {
	if hist.HasColumn(statement.ReconciledDepreciation) {
		return statement.ReconciledDepreciation
	}
	return statement.DepreciationAndAmortization
}

// EstimateAssumptions derives the full ratio set from hist. hist must be
// sorted ascending; an empty or revenue-less table yields HasRevenue false.
func EstimateAssumptions(hist *statement.Table, params Parameters) Assumptions {
	last := hist.Last()
	a := Assumptions{
		Ticker:           tickerOf(hist),
		LastDate:         last.Date,
		DepreciationItem: depreciationItem(hist),
		ExpenseRatios:    make(map[string]float64),
		BalanceRatios:    make(map[string]float64),
		GrowthRate:       params.DefaultGrowthRate,
		TaxRate:          params.DefaultTaxRate,
		TaxRateSource:    "default",
	}

	// -------------------------------------------------------------------------
	// Revenue and growth
	// -------------------------------------------------------------------------
	revenue := hist.Series(statement.TotalRevenue)
	if len(revenue) == 0 {
		return a
	}
	a.HasRevenue = true
	a.LastRevenue = revenue[len(revenue)-1]
	a.GrowthRate = EstimateGrowth(revenue, params.GrowthLookbackYears, params.DefaultGrowthRate)

	if rate, ok := last.Items.Lookup(statement.TaxRateForCalcs); ok {
		a.TaxRate = rate
		a.TaxRateSource = "reported"
	}

	// -------------------------------------------------------------------------
	// Pooled ratios over the trailing window
	// -------------------------------------------------------------------------
	window := hist.Tail(params.TrailingWindowYears)
	revenueSum := window.Sum(statement.TotalRevenue)

	for _, item := range a.ExpenseItems() {
		if !hist.HasColumn(item) {
			a.ExpenseRatios[item] = 0
			continue
		}
		a.ExpenseRatios[item] = pooled(window.Sum(item), revenueSum)
	}

	// The "other" residuals are taken from window sums before dividing.
	sums := make(map[string]float64, len(salesDrivenItems)+len(residualItems))
	for _, item := range salesDrivenItems {
		sums[item] = window.Sum(item)
	}
	sum := window.Sum
	sums[statement.OtherCurrentAssets] = sum(statement.CurrentAssets) - sum(statement.Cash) - sum(statement.AccountsReceivable) - sum(statement.Inventory)
	sums[statement.OtherNonCurrentAssets] = sum(statement.NonCurrentAssets) - sum(statement.NetPPE) - sum(statement.Intangibles)
	sums[statement.OtherCurrentLiabilities] = sum(statement.CurrentLiabilities) - sum(statement.AccountsPayable)
	sums[statement.OtherNonCurrentLiabilities] = sum(statement.NonCurrentLiabilities) - sum(statement.LongTermDebt)

	for item, total := range sums {
		a.BalanceRatios[item] = pooled(total, revenueSum)
	}

	// -------------------------------------------------------------------------
	// Last-period anchors
	// -------------------------------------------------------------------------
	li := last.Items
	a.DIO = daysOutstanding(li.Get(statement.Inventory), li.Get(statement.CostOfRevenue))
	a.DPO = daysOutstanding(li.Get(statement.AccountsPayable), li.Get(statement.CostOfRevenue))
	a.DSO = daysOutstanding(li.Get(statement.AccountsReceivable), li.Get(statement.TotalRevenue))

	a.LongTermDebt = li.Get(statement.LongTermDebt)
	a.Intangibles = li.Get(statement.Intangibles)
	a.OpeningEquity = li.Get(statement.TotalEquity)
	a.OpeningCash = li.Get(statement.Cash)

	return a
}

func tickerOf(t *statement.Table) string {
	if t == nil {
		return ""
	}
	return t.Ticker
}
