package statement

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sampleTable() *Table {
	return &Table{
		Ticker: "TEST",
		Periods: []Period{
			{Date: date(2021, 12, 31), Items: LineItems{TotalRevenue: 100, CostOfRevenue: 50}},
			{Date: date(2022, 12, 31), Items: LineItems{TotalRevenue: 110}},
			{Date: date(2023, 12, 31), Items: LineItems{TotalRevenue: 121, CostOfRevenue: 60}},
		},
	}
}

func TestLineItems_GetDefaultsToZero(t *testing.T) {
	li := LineItems{TotalRevenue: 42}
	if got := li.Get(TotalRevenue); got != 42 {
		t.Errorf("Get(present) = %v, want 42", got)
	}
	if got := li.Get(Inventory); got != 0 {
		t.Errorf("Get(absent) = %v, want 0", got)
	}
	if _, ok := li.Lookup(Inventory); ok {
		t.Error("Lookup(absent) reported present")
	}
	var nilItems LineItems
	if got := nilItems.Get(Cash); got != 0 {
		t.Errorf("nil LineItems Get = %v, want 0", got)
	}
}

func TestTable_TailClampsToLength(t *testing.T) {
	tbl := sampleTable()

	tests := []struct {
		name string
		n    int
		want int
	}{
		{"Within length", 2, 2},
		{"Exact length", 3, 3},
		{"Beyond length", 10, 3},
		{"Zero", 0, 0},
		{"Negative", -1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tbl.Tail(tt.n).Len(); got != tt.want {
				t.Errorf("Tail(%d).Len() = %d, want %d", tt.n, got, tt.want)
			}
		})
	}

	tail := tbl.Tail(2)
	if !tail.Periods[0].Date.Equal(date(2022, 12, 31)) {
		t.Errorf("Tail(2) starts at %v, want 2022-12-31", tail.Periods[0].Date)
	}
}

func TestTable_SeriesDropsMissing(t *testing.T) {
	tbl := sampleTable()
	got := tbl.Series(CostOfRevenue)
	want := []float64{50, 60}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Series = %v, want %v", got, want)
	}
	if s := tbl.Series(Inventory); len(s) != 0 {
		t.Errorf("Series(absent) = %v, want empty", s)
	}
}

func TestTable_SumAndHasColumn(t *testing.T) {
	tbl := sampleTable()
	if got := tbl.Sum(CostOfRevenue); got != 110 {
		t.Errorf("Sum(COGS) = %v, want 110", got)
	}
	if got := tbl.Sum(Inventory); got != 0 {
		t.Errorf("Sum(absent) = %v, want 0", got)
	}
	if !tbl.HasColumn(CostOfRevenue) {
		t.Error("HasColumn(COGS) = false, want true")
	}
	if tbl.HasColumn(Inventory) {
		t.Error("HasColumn(Inventory) = true, want false")
	}
}

func TestTable_LastOnEmpty(t *testing.T) {
	var tbl *Table
	if got := tbl.Last().Items.Get(Cash); got != 0 {
		t.Errorf("Last() on nil table = %v, want 0", got)
	}
	if !tbl.Empty() {
		t.Error("nil table should be empty")
	}
}

func TestTable_SortedDoesNotMutate(t *testing.T) {
	tbl := &Table{Periods: []Period{
		{Date: date(2023, 12, 31), Items: LineItems{TotalRevenue: 3}},
		{Date: date(2021, 12, 31), Items: LineItems{TotalRevenue: 1}},
	}}
	sorted := tbl.Sorted()
	if sorted.Periods[0].Items.Get(TotalRevenue) != 1 {
		t.Errorf("Sorted()[0] revenue = %v, want 1", sorted.Periods[0].Items.Get(TotalRevenue))
	}
	if tbl.Periods[0].Items.Get(TotalRevenue) != 3 {
		t.Error("Sorted() reordered the receiver")
	}
}

func TestTable_Validate(t *testing.T) {
	tests := []struct {
		name    string
		periods []Period
		wantErr bool
	}{
		{"Empty", nil, false},
		{"Increasing", sampleTable().Periods, false},
		{"Duplicate date", []Period{
			{Date: date(2022, 12, 31), Items: LineItems{}},
			{Date: date(2022, 12, 31), Items: LineItems{}},
		}, true},
		{"Zero date", []Period{{Items: LineItems{}}}, true},
		{"NaN value", []Period{{Date: date(2022, 12, 31), Items: LineItems{TotalRevenue: math.NaN()}}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := (&Table{Ticker: "X", Periods: tt.periods}).Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var mte *MalformedTableError
				if !errors.As(err, &mte) {
					t.Errorf("error %T is not a *MalformedTableError", err)
				}
			}
		})
	}
}

func TestAddYears(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		n    int
		want time.Time
	}{
		{"Year end", date(2024, 12, 31), 1, date(2025, 12, 31)},
		{"Fiscal September", date(2024, 9, 28), 3, date(2027, 9, 28)},
		{"Leap day clamps", date(2024, 2, 29), 1, date(2025, 2, 28)},
		{"Leap day to leap year", date(2024, 2, 29), 4, date(2028, 2, 29)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AddYears(tt.in, tt.n); !got.Equal(tt.want) {
				t.Errorf("AddYears(%v, %d) = %v, want %v", tt.in, tt.n, got, tt.want)
			}
		})
	}
}
