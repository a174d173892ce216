package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	hjson "github.com/hjson/hjson-go/v4"

	"statement_forecast/pkg/core/statement"
	"statement_forecast/pkg/core/utils"
)

// =============================================================================
// WIRE SHAPES
// =============================================================================

// tableDoc is the JSON/HJSON shape of a statement table.
type tableDoc struct {
	Ticker  string      `json:"ticker"`
	Periods []periodDoc `json:"periods"`
}

type periodDoc struct {
	Date  string             `json:"date"`
	Type  string             `json:"Type,omitempty"`
	Items map[string]float64 `json:"items"`
}

// recordDoc is the JSON shape of a persisted forecast run.
type recordDoc struct {
	ForecastRecord
	Columns []string    `json:"columns"`
	Rows    []periodDoc `json:"rows"`
}

// ParseDate accepts a plain date ("2023-12-31") or an RFC 3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(statement.DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid period date %q", s)
	}
	return t, nil
}

func (d tableDoc) table(fallbackTicker string) (*statement.Table, error) {
	t := &statement.Table{Ticker: d.Ticker, Periods: make([]statement.Period, 0, len(d.Periods))}
	if t.Ticker == "" {
		t.Ticker = fallbackTicker
	}
	for i, p := range d.Periods {
		date, err := ParseDate(p.Date)
		if err != nil {
			return nil, fmt.Errorf("period %d: %w", i, err)
		}
		items := statement.LineItems(p.Items)
		if items == nil {
			items = statement.LineItems{}
		}
		t.Periods = append(t.Periods, statement.Period{Date: date, Items: items})
	}
	return t, nil
}

func docFromTable(t *statement.Table) tableDoc {
	d := tableDoc{Ticker: t.Ticker, Periods: make([]periodDoc, 0, t.Len())}
	for _, p := range t.Periods {
		d.Periods = append(d.Periods, periodDoc{Date: p.Date.Format(statement.DateLayout), Items: p.Items})
	}
	return d
}

// =============================================================================
// JSON / HJSON
// =============================================================================

// DecodeTableJSON reads a table, tolerating hand-edited JSON through the
// lenient parse ladder. The ticker is used when the document omits one.
func DecodeTableJSON(data []byte, ticker string) (*statement.Table, error) {
	var d tableDoc
	_, strategy, err := utils.SmartParse(string(data), &d)
	if err != nil {
		return nil, fmt.Errorf("decode table %s: %w", ticker, err)
	}
	if strategy != utils.StrategyStrict {
		fmt.Printf("[STORE] %s: input needed %s parsing\n", ticker, strategy)
	}
	return d.table(ticker)
}

// DecodeTableHJSON reads a table written as Hjson.
func DecodeTableHJSON(data []byte, ticker string) (*statement.Table, error) {
	var d tableDoc
	if err := hjson.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode hjson table %s: %w", ticker, err)
	}
	return d.table(ticker)
}

// EncodeTableJSON writes t in the JSON table shape.
func EncodeTableJSON(w io.Writer, t *statement.Table) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(docFromTable(t))
}

// EncodeRecordJSON writes a forecast run with its combined rows.
func EncodeRecordJSON(w io.Writer, rec *ForecastRecord) error {
	doc := recordDoc{ForecastRecord: *rec}
	if rec.Table != nil {
		doc.Columns = rec.Table.Columns()
		for _, r := range rec.Table.Rows {
			doc.Rows = append(doc.Rows, periodDoc{
				Date:  r.Period.Date.Format(statement.DateLayout),
				Type:  string(r.Kind),
				Items: r.Period.Items,
			})
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// DecodeRecordJSON reads what EncodeRecordJSON wrote.
func DecodeRecordJSON(r io.Reader) (*ForecastRecord, error) {
	var doc recordDoc
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode forecast record: %w", err)
	}
	rec := doc.ForecastRecord
	rec.Table = &statement.CombinedTable{Ticker: rec.Ticker, Rows: make([]statement.Row, 0, len(doc.Rows))}
	for i, row := range doc.Rows {
		date, err := ParseDate(row.Date)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		kind, err := parseKind(row.Type)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		items := statement.LineItems(row.Items)
		if items == nil {
			items = statement.LineItems{}
		}
		rec.Table.Rows = append(rec.Table.Rows, statement.Row{Kind: kind, Period: statement.Period{Date: date, Items: items}})
	}
	return &rec, nil
}

func parseKind(s string) (statement.Kind, error) {
	switch statement.Kind(s) {
	case statement.Historical, statement.Forecast:
		return statement.Kind(s), nil
	}
	return "", fmt.Errorf("unknown row type %q", s)
}

// =============================================================================
// CSV
// =============================================================================

// Wide CSV: one row per period, a "date" column, optionally a "Type" column,
// then one column per line item. Empty cells are missing values.

const dateColumn = "date"

// EncodeTableCSV writes t as wide CSV with columns sorted by name.
func EncodeTableCSV(w io.Writer, t *statement.Table) error {
	cols := t.Columns()
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{dateColumn}, cols...)); err != nil {
		return err
	}
	for _, p := range t.Periods {
		if err := cw.Write(csvRow(p, "", cols)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// EncodeCombinedCSV writes c as wide CSV with a Type column.
func EncodeCombinedCSV(w io.Writer, c *statement.CombinedTable) error {
	cols := c.Columns()
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{dateColumn, statement.TypeColumn}, cols...)); err != nil {
		return err
	}
	for _, r := range c.Rows {
		if err := cw.Write(csvRow(r.Period, string(r.Kind), cols)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvRow(p statement.Period, kind string, cols []string) []string {
	row := make([]string, 0, len(cols)+2)
	row = append(row, p.Date.Format(statement.DateLayout))
	if kind != "" {
		row = append(row, kind)
	}
	for _, c := range cols {
		if v, ok := p.Items.Lookup(c); ok {
			row = append(row, strconv.FormatFloat(v, 'f', -1, 64))
		} else {
			row = append(row, "")
		}
	}
	return row
}

// DecodeCombinedCSV reads wide CSV. Without a Type column every row is
// Historical, which is how plain input tables are read.
func DecodeCombinedCSV(r io.Reader, ticker string) (*statement.CombinedTable, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv %s: %w", ticker, err)
	}
	out := &statement.CombinedTable{Ticker: ticker, Rows: []statement.Row{}}
	if len(records) == 0 {
		return out, nil
	}

	header := records[0]
	dateIdx, typeIdx := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case dateColumn, "Date":
			dateIdx = i
		case statement.TypeColumn:
			typeIdx = i
		}
	}
	if dateIdx < 0 {
		return nil, fmt.Errorf("csv %s: no %q column", ticker, dateColumn)
	}

	for n, rec := range records[1:] {
		line := n + 2
		date, err := ParseDate(rec[dateIdx])
		if err != nil {
			return nil, fmt.Errorf("csv %s line %d: %w", ticker, line, err)
		}
		kind := statement.Historical
		if typeIdx >= 0 {
			if kind, err = parseKind(strings.TrimSpace(rec[typeIdx])); err != nil {
				return nil, fmt.Errorf("csv %s line %d: %w", ticker, line, err)
			}
		}
		items := statement.LineItems{}
		for i, cell := range rec {
			if i == dateIdx || i == typeIdx {
				continue
			}
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("csv %s line %d column %q: %w", ticker, line, header[i], err)
			}
			items[strings.TrimSpace(header[i])] = v
		}
		out.Rows = append(out.Rows, statement.Row{Kind: kind, Period: statement.Period{Date: date, Items: items}})
	}
	return out, nil
}

// DecodeTableCSV reads a plain historical table from wide CSV.
func DecodeTableCSV(r io.Reader, ticker string) (*statement.Table, error) {
	c, err := DecodeCombinedCSV(r, ticker)
	if err != nil {
		return nil, err
	}
	hist, _ := c.Split()
	return hist, nil
}
