package store

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"statement_forecast/pkg/core/statement"
)

// ParseHTMLTable reads the first <table> in r as a statement table.
//
// Two layouts are accepted. When the first header cell is "date" each row is
// a period and each column a line item. Otherwise each row is a line item
// and the header cells after the first are period dates, which is how
// statements are usually published.
func ParseHTMLTable(r io.Reader, ticker string) (*statement.Table, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html %s: %w", ticker, err)
	}
	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("html %s: no table found", ticker)
	}

	rows := table.Find("tr")
	if rows.Length() == 0 {
		return &statement.Table{Ticker: ticker}, nil
	}
	header := cellTexts(rows.First())
	body := rows.Slice(1, rows.Length())
	if len(header) == 0 {
		return nil, fmt.Errorf("html %s: empty header row", ticker)
	}

	if strings.EqualFold(header[0], dateColumn) {
		return parseWideHTML(body, header, ticker)
	}
	return parseLongHTML(body, header, ticker)
}

func parseWideHTML(body *goquery.Selection, header []string, ticker string) (*statement.Table, error) {
	t := &statement.Table{Ticker: ticker}
	var parseErr error
	body.EachWithBreak(func(i int, row *goquery.Selection) bool {
		cells := cellTexts(row)
		if len(cells) == 0 {
			return true
		}
		date, err := ParseDate(cells[0])
		if err != nil {
			parseErr = fmt.Errorf("html %s row %d: %w", ticker, i+1, err)
			return false
		}
		items := statement.LineItems{}
		for j := 1; j < len(cells) && j < len(header); j++ {
			if v, ok := normalizeNumber(cells[j]); ok {
				items[header[j]] = v
			}
		}
		t.Periods = append(t.Periods, statement.Period{Date: date, Items: items})
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return t, nil
}

func parseLongHTML(body *goquery.Selection, header []string, ticker string) (*statement.Table, error) {
	dates := make([]time.Time, 0, len(header)-1)
	for _, h := range header[1:] {
		date, err := ParseDate(h)
		if err != nil {
			return nil, fmt.Errorf("html %s header: %w", ticker, err)
		}
		dates = append(dates, date)
	}

	t := &statement.Table{Ticker: ticker, Periods: make([]statement.Period, len(dates))}
	for i, d := range dates {
		t.Periods[i] = statement.Period{Date: d, Items: statement.LineItems{}}
	}
	body.Each(func(_ int, row *goquery.Selection) {
		cells := cellTexts(row)
		if len(cells) < 2 || cells[0] == "" {
			return
		}
		for j := 1; j < len(cells) && j <= len(dates); j++ {
			if v, ok := normalizeNumber(cells[j]); ok {
				t.Periods[j-1].Items[cells[0]] = v
			}
		}
	})
	return t, nil
}

func cellTexts(row *goquery.Selection) []string {
	var out []string
	row.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
		out = append(out, strings.TrimSpace(cell.Text()))
	})
	return out
}

// normalizeNumber parses a published amount: "(1,234)" is -1234 and currency
// symbols are ignored. Placeholders such as "—" or "N/A" are missing values.
func normalizeNumber(text string) (float64, bool) {
	text = strings.TrimSpace(text)
	hasDigit := false
	for _, r := range text {
		if r >= '0' && r <= '9' {
			hasDigit = true
			break
		}
	}
	if !hasDigit {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(text, "(") && strings.HasSuffix(text, ")") {
		negative = true
		text = text[1 : len(text)-1]
	}
	for _, sym := range []string{"$", "€", "£", "¥", ","} {
		text = strings.ReplaceAll(text, sym, "")
	}
	text = strings.TrimSpace(text)

	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false
	}
	if negative {
		v = -v
	}
	return v, true
}
