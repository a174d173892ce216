package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"statement_forecast/pkg/core/pipeline"
	"statement_forecast/pkg/core/store"
)

type runCmd struct {
	tickers     string
	concurrency int
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "forecast stored companies and save the results" }
func (*runCmd) Usage() string {
	return `run [-tickers GOOG,PYPL] [-concurrency N]

  Forecasts every company in the store, or only the listed tickers, and
  saves each combined historical and forecast table. Companies without data
  or revenue are skipped. An unbalanced forecast is saved and reported.
`
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.tickers, "tickers", "", "Comma-separated tickers (default: all stored companies)")
	f.IntVar(&c.concurrency, "concurrency", 0, "Companies forecast at once (default: from config)")
}

func (c *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, repo, err := openRepository(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer store.Close()

	concurrency := cfg.Pipeline.Concurrency
	if c.concurrency > 0 {
		concurrency = c.concurrency
	}
	o := pipeline.NewOrchestrator(repo, repo, cfg.Forecast)
	o.SetConfig(pipeline.Config{Concurrency: concurrency})

	summary, err := o.RunBatch(ctx, splitTickers(c.tickers, f.Args()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	for _, out := range summary.Outcomes {
		switch {
		case out.Status == pipeline.Saved && out.Balanced:
			fmt.Printf("✅ %-8s %d periods saved\n", out.Ticker, out.Periods)
		case out.Status == pipeline.Saved:
			fmt.Printf("⚠️ %-8s %d periods saved, balance sheet does not balance\n", out.Ticker, out.Periods)
		case out.Status == pipeline.Skipped:
			fmt.Printf("➖ %-8s skipped: %v\n", out.Ticker, out.Err)
		default:
			fmt.Printf("❌ %-8s failed: %v\n", out.Ticker, out.Err)
		}
	}
	if summary.Failed > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// splitTickers merges the -tickers flag with positional arguments.
func splitTickers(flagValue string, args []string) []string {
	var out []string
	for _, s := range append(strings.Split(flagValue, ","), args...) {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
