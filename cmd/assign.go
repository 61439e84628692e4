package cmd

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/etnz/ledger/renderer"
	"github.com/google/subcommands"
)

type assignCmd struct {
	when string
}

func (*assignCmd) Name() string     { return "assign" }
func (*assignCmd) Synopsis() string { return "record the assignment of a short option" }
func (*assignCmd) Usage() string {
	return `assign [-d <date>] <opening transaction id>

  Records the assignment of the contracts opened by a sell to open
  transaction. The option is closed at no cost and the underlying shares are
  bought (put) or sold (call) at the strike adjusted by the quoted premium
  divided by the multiplier: a put sold at 1.50 on a 200 strike is assigned
  at 199.985. Both transactions share a new link group. Ids can be
  abbreviated.
`
}

func (c *assignCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.when, "d", "", "Assignment date (YYYY-MM-DD) or RFC 3339 timestamp, defaults to now")
}

func (c *assignCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	return run(ctx, func(a *app) error {
		on, err := parseWhen(c.when, time.Now())
		if err != nil {
			return err
		}
		opening, err := findTransaction(a.store.Transactions(), f.Arg(0))
		if err != nil {
			return err
		}
		assignment, err := a.store.Assign(ctx, opening.ID, on)
		if err != nil {
			return err
		}
		instruments := a.store.Instruments()
		for _, tx := range assignment.Transactions() {
			fmt.Printf("%s (%s)\n", renderer.Transaction(tx, instruments, a.cfg.Currency), tx.ID)
		}
		return nil
	})
}

type rmCmd struct{}

func (*rmCmd) Name() string     { return "rm" }
func (*rmCmd) Synopsis() string { return "delete a transaction" }
func (*rmCmd) Usage() string {
	return `rm <transaction id>

  Deletes a transaction from the ledger. Ids can be abbreviated. Lots,
  positions and P/L are recomputed from the remaining transactions.
`
}

func (*rmCmd) SetFlags(*flag.FlagSet) {}

func (*rmCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	return run(ctx, func(a *app) error {
		tx, err := findTransaction(a.store.Transactions(), f.Arg(0))
		if err != nil {
			return err
		}
		if err := a.store.DeleteTransaction(ctx, tx.ID); err != nil {
			return err
		}
		fmt.Printf("Deleted: %s\n", renderer.Transaction(tx, a.store.Instruments(), a.cfg.Currency))
		return nil
	})
}
