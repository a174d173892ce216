package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/subcommands"

	"statement_forecast/pkg/core/statement"
	"statement_forecast/pkg/core/store"
)

type splitCmd struct {
	in     string
	out    string
	ticker string
}

func (*splitCmd) Name() string     { return "split" }
func (*splitCmd) Synopsis() string { return "split a combined forecast file into historical and forecast CSVs" }
func (*splitCmd) Usage() string {
	return `split -in <file> [-out <dir>] [-ticker <ticker>]

  Reads a combined table (CSV with a Type column, or a saved forecast JSON)
  and writes <TICKER>_historical.csv and <TICKER>_projected.csv.
`
}

func (c *splitCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.in, "in", "", "Combined table file (required)")
	f.StringVar(&c.out, "out", ".", "Output directory")
	f.StringVar(&c.ticker, "ticker", "", "Ticker (default: from the file name)")
}

func (c *splitCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.in == "" {
		fmt.Fprintln(os.Stderr, "Error: -in is required.")
		return subcommands.ExitUsageError
	}
	ticker := c.ticker
	if ticker == "" {
		base := strings.TrimSuffix(filepath.Base(c.in), filepath.Ext(c.in))
		ticker = strings.ToUpper(strings.TrimSuffix(base, "_forecast"))
	}

	combined, err := readCombined(c.in, ticker)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", c.in, err)
		return subcommands.ExitFailure
	}
	if err := os.MkdirAll(c.out, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", c.out, err)
		return subcommands.ExitFailure
	}

	hist, proj := combined.Split()
	for suffix, t := range map[string]*statement.Table{"historical": hist, "projected": proj} {
		path := filepath.Join(c.out, fmt.Sprintf("%s_%s.csv", combined.Ticker, suffix))
		if err := writeTableCSV(path, t); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", path, err)
			return subcommands.ExitFailure
		}
		fmt.Printf("✅ Wrote %d periods to %s\n", t.Len(), path)
	}
	return subcommands.ExitSuccess
}

func readCombined(path, ticker string) (*statement.CombinedTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		rec, err := store.DecodeRecordJSON(f)
		if err != nil {
			return nil, err
		}
		return rec.Table, nil
	}
	return store.DecodeCombinedCSV(f, ticker)
}

func writeTableCSV(path string, t *statement.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := store.EncodeTableCSV(f, t); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
