package statement

import (
	"fmt"
	"math"
)

// MalformedTableError describes a historical table the engine cannot use.
type MalformedTableError struct {
	Ticker string
	Index  int // offending period, -1 when not period specific
	Reason string
}

func (e *MalformedTableError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("malformed table %q: %s", e.Ticker, e.Reason)
	}
	return fmt.Sprintf("malformed table %q: period %d: %s", e.Ticker, e.Index, e.Reason)
}

// Validate checks that period dates are set and strictly increasing and
// that every recorded value is finite. An empty table is valid.
func (t *Table) Validate() error {
	if t == nil {
		return &MalformedTableError{Index: -1, Reason: "nil table"}
	}
	for i, p := range t.Periods {
		if p.Date.IsZero() {
			return &MalformedTableError{Ticker: t.Ticker, Index: i, Reason: "missing period-end date"}
		}
		if i > 0 && !p.Date.After(t.Periods[i-1].Date) {
			return &MalformedTableError{
				Ticker: t.Ticker,
				Index:  i,
				Reason: fmt.Sprintf("date %s does not follow %s", p.Date.Format(DateLayout), t.Periods[i-1].Date.Format(DateLayout)),
			}
		}
		for name, v := range p.Items {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return &MalformedTableError{Ticker: t.Ticker, Index: i, Reason: fmt.Sprintf("non-finite value for %q", name)}
			}
		}
	}
	return nil
}

// DateLayout is the period-end date format used in persisted tables.
const DateLayout = "2006-01-02"
