package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/etnz/ledger"
	"github.com/etnz/ledger/renderer"
	"github.com/google/subcommands"
)

// tradeFlags are the flags shared by every trade command.
type tradeFlags struct {
	when     string
	quantity string
	price    string
	fees     string
	notes    string
	tags     string
}

func (t *tradeFlags) SetFlags(f *flag.FlagSet) {
	f.StringVar(&t.when, "d", "", "Trade date (YYYY-MM-DD) or RFC 3339 timestamp, defaults to now")
	f.StringVar(&t.quantity, "q", "", "Quantity: shares, or contracts")
	f.StringVar(&t.price, "p", "", "Price per share, or the quoted option premium")
	f.StringVar(&t.fees, "fees", "0", "Total fees")
	f.StringVar(&t.notes, "m", "", "An optional note for the transaction")
	f.StringVar(&t.tags, "tags", "", "Comma separated tags")
}

// transaction builds the transaction on instrument.
func (t *tradeFlags) transaction(instrument ledger.ID, action ledger.Action) (ledger.Transaction, error) {
	on, err := parseWhen(t.when, time.Now())
	if err != nil {
		return ledger.Transaction{}, err
	}
	quantity, err := ledger.ParseQuantity(t.quantity)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("invalid quantity %q: %w", t.quantity, err)
	}
	price, err := ledger.ParseMoney(t.price)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("invalid price %q: %w", t.price, err)
	}
	fees, err := ledger.ParseMoney(t.fees)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("invalid fees %q: %w", t.fees, err)
	}
	tx := ledger.NewTransaction(instrument, on, action, quantity, price, fees)
	tx.Notes = t.notes
	tx.Tags = parseTags(t.tags)
	return tx, nil
}

// record adds tx to the store and prints it.
func record(ctx context.Context, a *app, tx ledger.Transaction) error {
	if err := a.store.AddTransactions(ctx, tx); err != nil {
		return err
	}
	fmt.Printf("%s (%s)\n", renderer.Transaction(tx, a.store.Instruments(), a.cfg.Currency), tx.ID)
	return nil
}

// --- Buy and Sell Commands ---

type tradeCmd struct {
	tradeFlags
	action ledger.Action
	symbol string
}

func newTradeCmd(action ledger.Action) *tradeCmd { return &tradeCmd{action: action} }

func (c *tradeCmd) Name() string { return c.action.String() }
func (c *tradeCmd) Synopsis() string {
	if c.action == ledger.Buy {
		return "buy shares to open or add to a position"
	}
	return "sell shares, consuming the oldest lots first"
}
func (c *tradeCmd) Usage() string {
	return fmt.Sprintf(`%s -s <symbol> -q <quantity> -p <price> [-fees <fees>] [-d <date>] [-m <note>] [-tags <tags>]

  Records an equity trade. The equity is added to the catalog on its first trade.
`, c.action)
}

func (c *tradeCmd) SetFlags(f *flag.FlagSet) {
	c.tradeFlags.SetFlags(f)
	f.StringVar(&c.symbol, "s", "", "Equity ticker")
}

func (c *tradeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.symbol == "" || c.quantity == "" || c.price == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	return run(ctx, func(a *app) error {
		equity, err := a.store.Equity(ctx, c.symbol)
		if err != nil {
			return err
		}
		tx, err := c.transaction(equity.ID(), c.action)
		if err != nil {
			return err
		}
		if err := record(ctx, a, tx); err != nil {
			return err
		}
		if c.action == ledger.Sell {
			warnShortfalls(a, tx.ID)
		}
		return nil
	})
}

// warnShortfalls tells the user when the transaction could not be fully
// matched with open lots.
func warnShortfalls(a *app, id ledger.ID) {
	for _, sf := range a.store.Recompute().Shortfalls {
		if sf.TransactionID == id {
			fmt.Fprintf(os.Stderr, "Warning: %s found no open lot and is left out of the P/L\n", sf.Quantity)
		}
	}
}
