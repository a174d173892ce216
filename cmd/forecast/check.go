package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"statement_forecast/pkg/core/store"
)

type checkCmd struct{}

func (*checkCmd) Name() string     { return "check" }
func (*checkCmd) Synopsis() string { return "print the balance check of stored forecasts" }
func (*checkCmd) Usage() string {
	return `check <ticker>...

  Prints the per-period balance sheet diagnostics of the latest stored
  forecast of each ticker. Exits non-zero if any forecast does not balance
  or cannot be found.
`
}

func (*checkCmd) SetFlags(*flag.FlagSet) {}

func (*checkCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	tickers := splitTickers("", f.Args())
	if len(tickers) == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one ticker is required.")
		return subcommands.ExitUsageError
	}
	_, repo, err := openRepository(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer store.Close()

	status := subcommands.ExitSuccess
	for _, ticker := range tickers {
		rec, err := repo.LoadForecast(ctx, ticker)
		if errors.Is(err, store.ErrNotFound) {
			fmt.Printf("No stored forecast for %s\n", ticker)
			status = subcommands.ExitFailure
			continue
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading forecast for %s: %v\n", ticker, err)
			status = subcommands.ExitFailure
			continue
		}
		fmt.Printf("%s (run %s, %s)\n", rec.Ticker, rec.RunID, rec.CreatedAt.Format("2006-01-02 15:04"))
		for _, line := range rec.Check.Lines() {
			fmt.Printf("  %s\n", line)
		}
		if !rec.Balanced() {
			status = subcommands.ExitFailure
		}
	}
	return status
}
