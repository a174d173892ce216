package forecast

import (
	"math"
	"time"

	"statement_forecast/pkg/core/statement"
)

// IncomePeriod is one projected income statement.
type IncomePeriod struct {
	Date time.Time

	Revenue            float64
	CostOfRevenue      float64
	OperatingExpense   float64
	Depreciation       float64
	NetInterestIncome  float64
	OtherIncomeExpense float64

	GrossProfit float64
	EBIT        float64
	EBITDA      float64
	EBT         float64
	Tax         float64
	NetIncome   float64
	TaxRate     float64 // applied rate, read back by the cash flow stage

	DepreciationItem string
}

// LineItems renders the period in the statement vocabulary.
func (p IncomePeriod) LineItems() statement.LineItems {
	depItem := p.DepreciationItem
	if depItem == "" {
		depItem = statement.DepreciationAndAmortization
	}
	li := statement.LineItems{
		statement.TotalRevenue:       p.Revenue,
		statement.CostOfRevenue:      p.CostOfRevenue,
		statement.OperatingExpense:   p.OperatingExpense,
		statement.NetInterestIncome:  p.NetInterestIncome,
		statement.OtherIncomeExpense: p.OtherIncomeExpense,
		statement.GrossProfit:        p.GrossProfit,
		statement.EBIT:               p.EBIT,
		statement.EBITDA:             p.EBITDA,
		statement.EBT:                p.EBT,
		statement.TaxProvision:       p.Tax,
		statement.NetIncome:          p.NetIncome,
		statement.TaxRateForCalcs:    p.TaxRate,
	}
	li[depItem] = p.Depreciation
	return li
}

// ProjectIncome projects the income statement over params.HorizonYears.
// It returns no periods when hist has no revenue observations.
func ProjectIncome(hist *statement.Table, params Parameters) ([]IncomePeriod, Assumptions) {
	a := EstimateAssumptions(hist, params)
	if !a.HasRevenue {
		return nil, a
	}
	return projectIncome(a, params.HorizonYears), a
}

func projectIncome(a Assumptions, horizon int) []IncomePeriod {
	out := make([]IncomePeriod, 0, horizon)
	for i := 1; i <= horizon; i++ {
		rev := a.LastRevenue * math.Pow(1+a.GrowthRate, float64(i))
		p := IncomePeriod{
			Date:               statement.AddYears(a.LastDate, i),
			Revenue:            rev,
			CostOfRevenue:      rev * a.ExpenseRatios[statement.CostOfRevenue],
			OperatingExpense:   rev * a.ExpenseRatios[statement.OperatingExpense],
			Depreciation:       rev * a.ExpenseRatios[a.DepreciationItem],
			NetInterestIncome:  rev * a.ExpenseRatios[statement.NetInterestIncome],
			OtherIncomeExpense: rev * a.ExpenseRatios[statement.OtherIncomeExpense],
			TaxRate:            a.TaxRate,
			DepreciationItem:   a.DepreciationItem,
		}

		p.GrossProfit = p.Revenue - p.CostOfRevenue
		p.EBIT = p.GrossProfit - p.OperatingExpense
		p.EBITDA = p.EBIT + p.Depreciation
		p.EBT = p.EBIT + p.NetInterestIncome + p.OtherIncomeExpense
		p.Tax = p.EBT * p.TaxRate
		p.NetIncome = p.EBT - p.Tax

		out = append(out, p)
	}
	return out
}
