// Package cmd implements the CLI application to keep an equity and option
// trading ledger.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/ledger"
	"github.com/etnz/ledger/sqlstore"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(newTradeCmd(ledger.Buy), "transactions")
	c.Register(newTradeCmd(ledger.Sell), "transactions")
	c.Register(&openCmd{}, "transactions")
	c.Register(&closeCmd{}, "transactions")
	c.Register(&assignCmd{}, "transactions")
	c.Register(&rmCmd{}, "transactions")
	c.Register(&importCmd{}, "transactions")
	c.Register(&exportCmd{}, "transactions")

	c.Register(&txCmd{}, "reports")
	c.Register(&positionsCmd{}, "reports")
	c.Register(&underlierCmd{}, "reports")
	c.Register(&plCmd{}, "reports")
	c.Register(&summaryCmd{}, "reports")
	c.Register(&reportCmd{}, "reports")
	c.Register(&queryCmd{}, "reports")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", "plg.yaml", "Path to the YAML configuration file")

// flag values override the configuration when set.
var (
	ledgerFileFlag = flag.String("ledger-file", "", "Path to the ledger file (jsonl backend)")
	backendFlag    = flag.String("backend", "", "Storage backend: jsonl or sqlite")
	databaseFlag   = flag.String("database", "", "Path to the SQLite database (sqlite backend)")
	currencyFlag   = flag.String("currency", "", "ISO currency code used to format amounts")
	logLevelFlag   = flag.String("log-level", "", "Log level: debug, info, warn, error")
	logFileFlag    = flag.String("log-file", "", "Path to a rotating log file")
)

// app is what a command needs to run.
type app struct {
	cfg     Config
	log     zerolog.Logger
	store   *ledger.Store
	closers []io.Closer
}

// openApp loads the configuration, then opens the logger and the store.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := LoadConfig(*configFile)
	if err != nil {
		return nil, err
	}
	cfg = applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	a := &app{cfg: cfg}
	log, closer := newLogger(cfg.Log)
	a.log = log
	if closer != nil {
		a.closers = append(a.closers, closer)
	}

	var repo ledger.Repository
	switch cfg.Backend {
	case BackendSQLite:
		r, err := sqlstore.Open(ctx, cfg.Database)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, r)
		repo = r
	default:
		repo = ledger.JSONLFile{Path: cfg.LedgerFile}
	}
	a.log.Debug().Str("backend", cfg.Backend).Msg("opening ledger")
	a.store = ledger.OpenStore(ctx, repo, ledger.WithLogger(a.log))
	return a, nil
}

func applyFlags(cfg Config) Config {
	for flagValue, field := range map[*string]*string{
		ledgerFileFlag: &cfg.LedgerFile,
		backendFlag:    &cfg.Backend,
		databaseFlag:   &cfg.Database,
		currencyFlag:   &cfg.Currency,
		logLevelFlag:   &cfg.Log.Level,
		logFileFlag:    &cfg.Log.File,
	} {
		if *flagValue != "" {
			*field = *flagValue
		}
	}
	return cfg
}

// Close releases the store backend and the log file.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	return errors.Join(errs...)
}

// run opens the app, calls f, and converts the error into an exit status.
func run(ctx context.Context, f func(*app) error) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if err := f(a); err != nil {
		a.log.Debug().Err(err).Msg("command failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// printMarkdown renders markdown for the terminal, or prints it raw if it
// cannot be rendered.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			fmt.Print(out)
			return
		}
	}
	fmt.Print(md)
}
