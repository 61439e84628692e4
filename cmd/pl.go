package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/ledger"
	"github.com/etnz/ledger/date"
	"github.com/etnz/ledger/renderer"
	"github.com/google/subcommands"
)

type plCmd struct {
	period string
	start  string
	date   string
	symbol string
}

func (*plCmd) Name() string     { return "pl" }
func (*plCmd) Synopsis() string { return "display the realized P/L records" }
func (*plCmd) Usage() string {
	return `pl [-p <period> | -s <start_date>] [-d <end_date>] [-u <symbol>]

  Displays the realized P/L records closed in the range: one per equity lot
  consumed by a sell, one per option open, one per option lot consumed by a
  close.
`
}

func (p *plCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.period, "p", "", "Predefined period ("+strings.Join(date.PeriodNames(), ", ")+").")
	f.StringVar(&p.start, "s", "", "The start date for a custom range. Overrides -p.")
	f.StringVar(&p.date, "d", "", "The end date for the range.")
	f.StringVar(&p.symbol, "u", "", "Only records on this ticker.")
}

func (p *plCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	periodRange, err := parseRange(p.period, p.start, p.date, date.Today())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing range: %v\n", err)
		return subcommands.ExitUsageError
	}
	return run(ctx, func(a *app) error {
		out := a.store.Recompute()
		instruments := a.store.Instruments()
		records := out.RealizedPLs
		if p.symbol != "" {
			records = out.RealizedFor(ledger.NormalizeSymbol(p.symbol), instruments)
		}
		printMarkdown(renderer.RealizedMarkdown(rangeTitle(periodRange), realizedIn(records, periodRange), instruments, a.cfg.Currency))
		return nil
	})
}

// realizedIn selects the records closed in r.
func realizedIn(records []ledger.RealizedPL, r date.Range) []ledger.RealizedPL {
	var selected []ledger.RealizedPL
	for _, rec := range records {
		if r.ContainsTime(rec.CloseDate) {
			selected = append(selected, rec)
		}
	}
	return selected
}

func rangeTitle(r date.Range) string {
	if r.IsZero() {
		return ""
	}
	if r.From.IsZero() {
		return "until " + r.To.String()
	}
	switch p, ok := r.Period(); {
	case !ok:
		return fmt.Sprintf("from %s to %s", r.From, r.To)
	case p == date.Daily:
		return "on " + r.Identifier()
	default:
		return fmt.Sprintf("for the %s %s", p.Noun(), r.Identifier())
	}
}

type summaryCmd struct{}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display the P/L summary" }
func (*summaryCmd) Usage() string {
	return `summary

  Displays the realized P/L split between equities and options, and the
  sell or close quantities that found no open lot.
`
}

func (*summaryCmd) SetFlags(*flag.FlagSet) {}

func (*summaryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(a *app) error {
		printMarkdown(renderer.SummaryMarkdown(a.store.Recompute(), a.store.Instruments(), a.cfg.Currency))
		return nil
	})
}
