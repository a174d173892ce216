package statement

import "sort"

// Kind tags a row of a combined table with its origin.
type Kind string

const (
	Historical Kind = "Historical"
	Forecast   Kind = "Forecast"
)

// Row is one tagged period of a combined table.
type Row struct {
	Kind   Kind
	Period Period
}

// CombinedTable is the historical table followed by its forecast, the unit
// handed to persistence.
type CombinedTable struct {
	Ticker string
	Rows   []Row
}

// Combine concatenates deep copies of hist (tagged Historical) and forecast
// (tagged Forecast). Neither input is modified.
func Combine(hist, forecast *Table) *CombinedTable {
	out := &CombinedTable{}
	if hist != nil {
		out.Ticker = hist.Ticker
	}
	if out.Ticker == "" && forecast != nil {
		out.Ticker = forecast.Ticker
	}
	out.Rows = make([]Row, 0, hist.Len()+forecast.Len())
	if hist != nil {
		for _, p := range hist.Periods {
			out.Rows = append(out.Rows, Row{Kind: Historical, Period: p.Clone()})
		}
	}
	if forecast != nil {
		for _, p := range forecast.Periods {
			out.Rows = append(out.Rows, Row{Kind: Forecast, Period: p.Clone()})
		}
	}
	return out
}

// Split separates the rows back into a historical and a forecast table.
// Split(Combine(h, f)) reproduces h and f.
func (c *CombinedTable) Split() (hist, forecast *Table) {
	hist = &Table{Ticker: c.Ticker, Periods: []Period{}}
	forecast = &Table{Ticker: c.Ticker, Periods: []Period{}}
	for _, r := range c.Rows {
		switch r.Kind {
		case Historical:
			hist.Periods = append(hist.Periods, r.Period.Clone())
		case Forecast:
			forecast.Periods = append(forecast.Periods, r.Period.Clone())
		}
	}
	return hist, forecast
}

// Columns returns the sorted union of line-item names across all rows.
func (c *CombinedTable) Columns() []string {
	seen := make(map[string]bool)
	for _, r := range c.Rows {
		for k := range r.Period.Items {
			seen[k] = true
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// Count returns the number of rows tagged k.
func (c *CombinedTable) Count(k Kind) int {
	n := 0
	for _, r := range c.Rows {
		if r.Kind == k {
			n++
		}
	}
	return n
}
