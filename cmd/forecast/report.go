package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"statement_forecast/pkg/core/report"
	"statement_forecast/pkg/core/store"
)

type reportCmd struct {
	format   string
	currency string
	history  int
	output   string
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "render the report of a stored forecast" }
func (*reportCmd) Usage() string {
	return `report [-format term|markdown|html] [-currency USD] [-o file] <ticker>

  Renders the latest stored forecast of ticker. The default "term" format
  styles the markdown report for the terminal.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.format, "format", "term", "Output format: term, markdown or html")
	f.StringVar(&c.currency, "currency", "", "ISO 4217 currency for amounts (default: from config)")
	f.IntVar(&c.history, "history", 0, "Historical years shown in the summary (default: from config)")
	f.StringVar(&c.output, "o", "", "Write to this file instead of stdout")
}

func (c *reportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one ticker is required.")
		return subcommands.ExitUsageError
	}
	cfg, repo, err := openRepository(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer store.Close()

	ticker := strings.ToUpper(f.Arg(0))
	rec, err := repo.LoadForecast(ctx, ticker)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading forecast for %s: %v\n", ticker, err)
		return subcommands.ExitFailure
	}

	opts := cfg.Report
	if c.currency != "" {
		opts.Currency = strings.ToUpper(c.currency)
	}
	if c.history > 0 {
		opts.HistoryYears = c.history
	}

	var out string
	switch c.format {
	case "markdown", "md":
		out, err = report.Markdown(rec, opts)
	case "html":
		out, err = report.HTML(rec, opts)
	case "term":
		out, err = renderTerminal(rec, opts)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown format %q\n", c.format)
		return subcommands.ExitUsageError
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering report: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.output == "" {
		fmt.Print(out)
		return subcommands.ExitSuccess
	}
	if err := os.WriteFile(c.output, []byte(out), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", c.output, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("✅ Report for %s written to %s\n", ticker, c.output)
	return subcommands.ExitSuccess
}

func renderTerminal(rec *store.ForecastRecord, opts report.Options) (string, error) {
	md, err := report.Markdown(rec, opts)
	if err != nil {
		return "", err
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		return "", err
	}
	return r.Render(md)
}
