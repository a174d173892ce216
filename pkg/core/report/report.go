// Package report renders a stored forecast run as a markdown document: the
// assumption set, a summary of the projected statements and the balance
// check diagnostics.
package report

import (
	"embed"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"statement_forecast/pkg/core/statement"
	"statement_forecast/pkg/core/store"
	"statement_forecast/pkg/core/utils"
)

//go:embed templates/*.md
var templates embed.FS

var reportTmpl = template.Must(template.ParseFS(templates, "templates/report.md"))

// placeholder is shown for a line item a period does not carry.
const placeholder = "—"

// SummaryItems are the line items shown in the forecast summary, in order.
var SummaryItems = []string{
	statement.TotalRevenue,
	statement.GrossProfit,
	statement.EBIT,
	statement.NetIncome,
	statement.Cash,
	statement.TotalEquity,
	statement.UFCF,
	statement.NetCashFlow,
}

// Options tunes report rendering.
type Options struct {
	Currency string `yaml:"currency" json:"currency"`

	// HistoryYears is how many trailing historical periods precede the
	// forecast columns in the summary.
	HistoryYears int `yaml:"history_years" json:"history_years"`
}

// DefaultOptions returns USD with one historical year.
func DefaultOptions() Options {
	return Options{Currency: DefaultCurrency, HistoryYears: 1}
}

// Row is one labelled line of a report table.
type Row struct {
	Name   string
	Value  string
	Values []string
}

// Document is the data the report template is executed with.
type Document struct {
	Ticker      string
	RunID       string
	Created     string
	Horizon     int
	Status      string
	Assumptions []Row
	Years       []string
	Summary     []Row
	Diagnostics []string
}

// Build assembles the report data for rec.
func Build(rec *store.ForecastRecord, opts Options) (*Document, error) {
	if rec == nil {
		return nil, fmt.Errorf("no forecast record")
	}
	if opts.Currency == "" {
		opts.Currency = DefaultCurrency
	}

	doc := &Document{
		Ticker:      utils.EscapeTableCell(rec.Ticker),
		RunID:       rec.RunID.String(),
		Created:     rec.CreatedAt.UTC().Format("2006-01-02 15:04 MST"),
		Horizon:     rec.Parameters.HorizonYears,
		Status:      "Balanced",
		Diagnostics: rec.Check.Lines(),
	}
	if !rec.Balanced() {
		doc.Status = fmt.Sprintf("**Unbalanced** (%d of %d periods)", len(rec.Check.Unbalanced()), len(rec.Check.Periods))
	}
	if len(doc.Diagnostics) == 0 {
		doc.Diagnostics = []string{"No forecast periods to check."}
	}

	doc.Assumptions = assumptionRows(rec, opts.Currency)
	doc.Years, doc.Summary = summaryRows(rec.Table, opts)
	return doc, nil
}

func assumptionRows(rec *store.ForecastRecord, currency string) []Row {
	a := rec.Assumptions
	rows := []Row{
		{Name: "Revenue growth (CAGR)", Value: FormatPercent(a.GrowthRate)},
		{Name: fmt.Sprintf("Tax rate (%s)", a.TaxRateSource), Value: FormatPercent(a.TaxRate)},
		{Name: "Last revenue", Value: FormatMoney(a.LastRevenue, currency)},
	}
	for _, item := range a.ExpenseItems() {
		if item == "" {
			continue
		}
		rows = append(rows, Row{Name: utils.EscapeTableCell(item) + " / revenue", Value: FormatPercent(a.ExpenseRatios[item])})
	}
	rows = append(rows,
		Row{Name: "DSO", Value: FormatDays(a.DSO)},
		Row{Name: "DIO", Value: FormatDays(a.DIO)},
		Row{Name: "DPO", Value: FormatDays(a.DPO)},
	)
	balance := make([]string, 0, len(a.BalanceRatios))
	for item := range a.BalanceRatios {
		balance = append(balance, item)
	}
	sort.Strings(balance)
	for _, item := range balance {
		rows = append(rows, Row{Name: utils.EscapeTableCell(item) + " / revenue", Value: FormatPercent(a.BalanceRatios[item])})
	}
	return append(rows,
		Row{Name: "Long-term debt (held flat)", Value: FormatMoney(a.LongTermDebt, currency)},
		Row{Name: "Intangibles (held flat)", Value: FormatMoney(a.Intangibles, currency)},
		Row{Name: "Opening equity", Value: FormatMoney(a.OpeningEquity, currency)},
		Row{Name: "Opening cash", Value: FormatMoney(a.OpeningCash, currency)},
	)
}

func summaryRows(c *statement.CombinedTable, opts Options) ([]string, []Row) {
	if c == nil {
		return nil, nil
	}
	hist, fc := c.Split()
	periods := []statement.Period{}
	var years []string
	if opts.HistoryYears > 0 {
		for _, p := range hist.Tail(opts.HistoryYears).Periods {
			periods = append(periods, p)
			years = append(years, fmt.Sprintf("%dA", p.Date.Year()))
		}
	}
	for _, p := range fc.Periods {
		periods = append(periods, p)
		years = append(years, fmt.Sprintf("%dF", p.Date.Year()))
	}

	rows := make([]Row, 0, len(SummaryItems))
	for _, item := range SummaryItems {
		row := Row{Name: item, Values: make([]string, 0, len(periods))}
		for _, p := range periods {
			if v, ok := p.Items.Lookup(item); ok {
				row.Values = append(row.Values, FormatMoney(v, opts.Currency))
			} else {
				row.Values = append(row.Values, placeholder)
			}
		}
		rows = append(rows, row)
	}
	return years, rows
}

// Markdown renders rec as a markdown report.
func Markdown(rec *store.ForecastRecord, opts Options) (string, error) {
	doc, err := Build(rec, opts)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if err := reportTmpl.Execute(&b, doc); err != nil {
		return "", fmt.Errorf("error executing report template: %w", err)
	}
	return b.String(), nil
}

// HTML renders rec as an HTML fragment.
func HTML(rec *store.ForecastRecord, opts Options) (string, error) {
	md, err := Markdown(rec, opts)
	if err != nil {
		return "", err
	}
	return utils.RenderHTML(md)
}
