package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/etnz/ledger"
	"github.com/etnz/ledger/renderer"
	"github.com/google/subcommands"
)

type positionsCmd struct{}

func (*positionsCmd) Name() string     { return "positions" }
func (*positionsCmd) Synopsis() string { return "display the open positions" }
func (*positionsCmd) Usage() string {
	return `positions

  Displays the positions derived from the open lots: shares with their
  average cost, and the net number of contracts of each option.
`
}

func (*positionsCmd) SetFlags(*flag.FlagSet) {}

func (*positionsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(a *app) error {
		printMarkdown(renderer.PositionsMarkdown(a.store.Recompute(), a.store.Instruments(), a.cfg.Currency))
		return nil
	})
}

type underlierCmd struct{}

func (*underlierCmd) Name() string     { return "underlier" }
func (*underlierCmd) Synopsis() string { return "display the positions and realized P/L of a ticker" }
func (*underlierCmd) Usage() string {
	return `underlier [<symbol>]

  Displays the equity position, the option positions and the realized P/L of
  a ticker. Without symbol, lists the tickers holding a position.
`
}

func (*underlierCmd) SetFlags(*flag.FlagSet) {}

func (*underlierCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() > 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	return run(ctx, func(a *app) error {
		out := a.store.Recompute()
		if f.NArg() == 0 {
			for _, symbol := range out.Symbols() {
				fmt.Println(symbol)
			}
			return nil
		}
		symbol := ledger.NormalizeSymbol(f.Arg(0))
		u, ok := out.Underliers[symbol]
		if !ok {
			return fmt.Errorf("no position on %s, try one of: %s", symbol, strings.Join(out.Symbols(), ", "))
		}
		instruments := a.store.Instruments()
		printMarkdown(renderer.UnderlierMarkdown(u, out.RealizedFor(symbol, instruments), instruments, a.cfg.Currency))
		return nil
	})
}
