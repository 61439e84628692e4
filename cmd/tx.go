package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/etnz/ledger"
	"github.com/etnz/ledger/date"
	"github.com/etnz/ledger/renderer"
	"github.com/google/subcommands"
)

type txCmd struct {
	period string
	start  string
	date   string
	symbol string
	head   int
	tail   int
}

func (*txCmd) Name() string     { return "tx" }
func (*txCmd) Synopsis() string { return "list the transactions in the ledger" }
func (*txCmd) Usage() string {
	return `tx [-p <period> | -s <start_date>] [-d <end_date>] [-u <symbol>] [-head <n>] [-tail <n>]

  Lists transactions from the ledger, oldest first, with options for filtering and limiting the output.
`
}

func (p *txCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.period, "p", "", "Predefined period ("+strings.Join(date.PeriodNames(), ", ")+").")
	f.StringVar(&p.start, "s", "", "The start date for a custom range. Overrides -p.")
	f.StringVar(&p.date, "d", "", "The end date for the range.")
	f.StringVar(&p.symbol, "u", "", "Only transactions on this ticker, equity and options.")
	f.IntVar(&p.head, "head", 0, "Show only the first N transactions.")
	f.IntVar(&p.tail, "tail", 0, "Show only the last N transactions.")
}

func (p *txCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if p.head > 0 && p.tail > 0 {
		fmt.Fprintln(os.Stderr, "Error: -head and -tail flags cannot be used together.")
		return subcommands.ExitUsageError
	}
	periodRange, err := parseRange(p.period, p.start, p.date, date.Today())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing range: %v\n", err)
		return subcommands.ExitUsageError
	}

	return run(ctx, func(a *app) error {
		instruments := a.store.Instruments()
		symbol := ledger.NormalizeSymbol(p.symbol)

		var transactions []ledger.Transaction
		for _, tx := range a.store.Transactions() {
			if !periodRange.ContainsTime(tx.Timestamp) {
				continue
			}
			if inst, ok := instruments[tx.InstrumentID]; symbol != "" && (!ok || inst.Underlying() != symbol) {
				continue
			}
			transactions = append(transactions, tx)
		}
		slices.SortStableFunc(transactions, func(a, b ledger.Transaction) int { return a.Timestamp.Compare(b.Timestamp) })

		if p.head > 0 && len(transactions) > p.head {
			transactions = transactions[:p.head]
		}
		if p.tail > 0 && len(transactions) > p.tail {
			transactions = transactions[len(transactions)-p.tail:]
		}

		printMarkdown(renderer.TransactionsMarkdown(transactions, instruments, a.cfg.Currency))
		return nil
	})
}
