// Command forecast runs the three-statement forecast over stored histories
// and inspects the results.
//
//	forecast run -tickers GOOG,PYPL
//	forecast report GOOG
//	forecast check GOOG PYPL
//	forecast split -in data/gold/GOOG_forecast.csv -out data/split
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/google/subcommands"

	"statement_forecast/pkg/core/config"
	"statement_forecast/pkg/core/store"
)

var configPath = flag.String("config", "", "Path to a YAML or HJSON config file")

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	commander.Register(&runCmd{}, "forecast")
	commander.Register(&checkCmd{}, "forecast")
	commander.Register(&reportCmd{}, "output")
	commander.Register(&splitCmd{}, "output")

	flag.Parse()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	status := commander.Execute(ctx)
	stop()
	os.Exit(int(status))
}

// openRepository loads the configuration and opens the store it names.
func openRepository(ctx context.Context) (*config.Config, store.Repository, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, nil, err
	}
	repo, err := store.Open(ctx, cfg.Store.DatabaseURL, cfg.Store.InputDir, cfg.Store.OutputDir)
	if err != nil {
		return nil, nil, err
	}
	return cfg, repo, nil
}
