package store

import (
	"strings"
	"testing"

	"statement_forecast/pkg/core/statement"
)

func TestParseHTMLTable_LineItemRows(t *testing.T) {
	html := `<html><body>
<table>
  <tr><th>Line item</th><th>2022-12-31</th><th>2023-12-31</th></tr>
  <tr><td>Total Revenue</td><td>$1,000</td><td>$1,100</td></tr>
  <tr><td>Net Interest Income</td><td>(25)</td><td>—</td></tr>
  <tr><td></td><td>ignored</td><td>row</td></tr>
</table>
</body></html>`

	tbl, err := ParseHTMLTable(strings.NewReader(html), "GOOG")
	if err != nil {
		t.Fatalf("ParseHTMLTable: %v", err)
	}
	if tbl.Len() != 2 {
		t.Fatalf("got %d periods, want 2", tbl.Len())
	}
	if got := tbl.Periods[1].Items.Get(statement.TotalRevenue); got != 1100 {
		t.Errorf("2023 revenue = %v, want 1100", got)
	}
	if got := tbl.Periods[0].Items.Get(statement.NetInterestIncome); got != -25 {
		t.Errorf("2022 NII = %v, want -25", got)
	}
	if tbl.Periods[1].Items.Has(statement.NetInterestIncome) {
		t.Error("dash placeholder should be a missing value")
	}
}

func TestParseHTMLTable_PeriodRows(t *testing.T) {
	html := `<table>
  <tr><th>date</th><th>Total Revenue</th><th>Cash</th></tr>
  <tr><td>2022-12-31</td><td>100</td><td>N/A</td></tr>
  <tr><td>2023-12-31</td><td>110</td><td>9.5</td></tr>
</table>`

	tbl, err := ParseHTMLTable(strings.NewReader(html), "GOOG")
	if err != nil {
		t.Fatalf("ParseHTMLTable: %v", err)
	}
	if got := tbl.Series(statement.TotalRevenue); len(got) != 2 || got[1] != 110 {
		t.Errorf("revenue = %v", got)
	}
	if tbl.Periods[0].Items.Has(statement.Cash) {
		t.Error("N/A should be a missing value")
	}
}

func TestParseHTMLTable_Errors(t *testing.T) {
	tests := []struct {
		name string
		html string
	}{
		{"No table", `<p>nothing here</p>`},
		{"Bad header date", `<table><tr><th>Item</th><th>FY23</th></tr></table>`},
		{"Bad row date", `<table><tr><th>date</th><th>Cash</th></tr><tr><td>later</td><td>1</td></tr></table>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseHTMLTable(strings.NewReader(tt.html), "X"); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestNormalizeNumber(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"1,234", 1234, true},
		{"(1,234)", -1234, true},
		{"$ 12.5", 12.5, true},
		{"€7", 7, true},
		{"-3", -3, true},
		{"—", 0, false},
		{"N/A", 0, false},
		{"12 months", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := normalizeNumber(tt.in)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("normalizeNumber(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
