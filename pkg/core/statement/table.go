// Package statement models the normalized per-company financial time series
// consumed and produced by the forecast engine: an ordered sequence of annual
// periods, each a mapping from line-item name to value.
package statement

import (
	"sort"
	"time"
)

// LineItems maps a line-item name to its value for one period.
// Absent keys are missing values; Get reads them as 0 so formula code never
// has to branch on presence.
type LineItems map[string]float64

// Get returns the value of name, or 0 when the line item is absent.
func (li LineItems) Get(name string) float64 {
	return li[name]
}

// Lookup returns the value of name and whether it is present.
func (li LineItems) Lookup(name string) (float64, bool) {
	v, ok := li[name]
	return v, ok
}

// Has reports whether name is present.
func (li LineItems) Has(name string) bool {
	_, ok := li[name]
	return ok
}

// Clone returns an independent copy.
func (li LineItems) Clone() LineItems {
	out := make(LineItems, len(li))
	for k, v := range li {
		out[k] = v
	}
	return out
}

// Merge copies every entry of other into li, overwriting on conflict.
func (li LineItems) Merge(other LineItems) {
	for k, v := range other {
		li[k] = v
	}
}

// Period is one fiscal-period record keyed by its period-end date.
type Period struct {
	Date  time.Time `json:"date"`
	Items LineItems `json:"items"`
}

// Clone returns a deep copy of the period.
func (p Period) Clone() Period {
	return Period{Date: p.Date, Items: p.Items.Clone()}
}

// Table is an ordered sequence of annual periods for one company.
type Table struct {
	Ticker  string   `json:"ticker"`
	Periods []Period `json:"periods"`
}

// Len returns the number of periods.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Periods)
}

// Empty reports whether the table has no periods.
func (t *Table) Empty() bool {
	return t.Len() == 0
}

// Last returns the most recent period. The zero Period is returned for an
// empty table, whose accessor reads every line item as 0.
func (t *Table) Last() Period {
	if t.Empty() {
		return Period{Items: LineItems{}}
	}
	return t.Periods[len(t.Periods)-1]
}

// Tail returns the trailing window of the most recent n periods, clamped to
// the table length. The returned table shares period storage with t.
func (t *Table) Tail(n int) *Table {
	if t == nil {
		return &Table{}
	}
	if n < 0 {
		n = 0
	}
	start := len(t.Periods) - n
	if start < 0 {
		start = 0
	}
	return &Table{Ticker: t.Ticker, Periods: t.Periods[start:]}
}

// HasColumn reports whether any period carries name.
func (t *Table) HasColumn(name string) bool {
	if t == nil {
		return false
	}
	for _, p := range t.Periods {
		if p.Items.Has(name) {
			return true
		}
	}
	return false
}

// Series returns the chronological values of name with missing entries
// dropped.
func (t *Table) Series(name string) []float64 {
	if t == nil {
		return nil
	}
	out := make([]float64, 0, len(t.Periods))
	for _, p := range t.Periods {
		if v, ok := p.Items.Lookup(name); ok {
			out = append(out, v)
		}
	}
	return out
}

// Sum adds name across all periods, reading missing values as 0.
func (t *Table) Sum(name string) float64 {
	if t == nil {
		return 0
	}
	total := 0.0
	for _, p := range t.Periods {
		total += p.Items.Get(name)
	}
	return total
}

// Columns returns the sorted union of line-item names across periods.
func (t *Table) Columns() []string {
	if t == nil {
		return nil
	}
	seen := make(map[string]bool)
	for _, p := range t.Periods {
		for k := range p.Items {
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

// Sorted returns a deep copy ordered by ascending period date.
func (t *Table) Sorted() *Table {
	out := t.Clone()
	sort.SliceStable(out.Periods, func(i, j int) bool {
		return out.Periods[i].Date.Before(out.Periods[j].Date)
	})
	return out
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	if t == nil {
		return &Table{}
	}
	out := &Table{Ticker: t.Ticker, Periods: make([]Period, len(t.Periods))}
	for i, p := range t.Periods {
		out.Periods[i] = p.Clone()
	}
	return out
}

// AddYears moves t forward by n calendar years, keeping month and day and
// clamping Feb 29 to Feb 28 when the target year is not a leap year.
func AddYears(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	target := year + n
	if last := daysIn(month, target); day > last {
		day = last
	}
	return time.Date(target, month, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(month time.Month, year int) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
