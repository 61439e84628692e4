package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/etnz/ledger"
	"github.com/etnz/ledger/date"
	"github.com/google/subcommands"
)

// contractFlags select an option contract, created on first use.
type contractFlags struct {
	underlying string
	expiry     string
	strike     string
	callPut    string
	multiplier int
	side       string
}

func (c *contractFlags) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.underlying, "u", "", "Underlying ticker")
	f.StringVar(&c.expiry, "e", "", "Expiration date (YYYY-MM-DD)")
	f.StringVar(&c.strike, "k", "", "Strike price")
	f.StringVar(&c.callPut, "type", "", "Option type: call or put")
	f.IntVar(&c.multiplier, "x", 100, "Contract multiplier, for new contracts")
	f.StringVar(&c.side, "side", "", "buy or sell")
}

func (c *contractFlags) missing() bool {
	return c.underlying == "" || c.expiry == "" || c.strike == "" || c.callPut == "" || c.side == ""
}

func (c *contractFlags) option(ctx context.Context, a *app) (ledger.Option, error) {
	expiry, err := date.Parse(c.expiry)
	if err != nil {
		return ledger.Option{}, err
	}
	strike, err := ledger.ParseMoney(c.strike)
	if err != nil {
		return ledger.Option{}, fmt.Errorf("invalid strike %q: %w", c.strike, err)
	}
	callPut, err := ledger.ParseCallPut(c.callPut)
	if err != nil {
		return ledger.Option{}, err
	}
	return a.store.Option(ctx, c.underlying, expiry, strike, callPut, c.multiplier)
}

// action picks the action of the side among buy and sell.
func (c *contractFlags) action(buy, sell ledger.Action) (ledger.Action, error) {
	switch strings.ToLower(c.side) {
	case "buy":
		return buy, nil
	case "sell":
		return sell, nil
	default:
		return "", fmt.Errorf("invalid side %q, want buy or sell", c.side)
	}
}

// optionTrade records a trade on the selected contract.
func optionTrade(ctx context.Context, c *contractFlags, t *tradeFlags, buy, sell ledger.Action) func(*app) error {
	return func(a *app) error {
		action, err := c.action(buy, sell)
		if err != nil {
			return err
		}
		option, err := c.option(ctx, a)
		if err != nil {
			return err
		}
		tx, err := t.transaction(option.ID(), action)
		if err != nil {
			return err
		}
		if err := record(ctx, a, tx); err != nil {
			return err
		}
		if action.IsClosing() {
			warnShortfalls(a, tx.ID)
		}
		return nil
	}
}

// --- Open Command ---

type openCmd struct {
	contractFlags
	tradeFlags
}

func (*openCmd) Name() string     { return "open" }
func (*openCmd) Synopsis() string { return "open an option position: buy to open or sell to open" }
func (*openCmd) Usage() string {
	return `open -side <buy|sell> -u <underlying> -e <expiry> -k <strike> -type <call|put> -q <contracts> -p <premium> [-x <multiplier>] [-fees <fees>] [-d <date>]

  Opens option contracts at the quoted premium. The cash amount is
  premium x contracts x multiplier (100 by default). Premiums are realized
  when opening.
`
}

func (c *openCmd) SetFlags(f *flag.FlagSet) {
	c.contractFlags.SetFlags(f)
	c.tradeFlags.SetFlags(f)
}

func (c *openCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.contractFlags.missing() || c.quantity == "" || c.price == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	return run(ctx, optionTrade(ctx, &c.contractFlags, &c.tradeFlags, ledger.BuyToOpen, ledger.SellToOpen))
}

// --- Close Command ---

type closeCmd struct {
	contractFlags
	tradeFlags
}

func (*closeCmd) Name() string     { return "close" }
func (*closeCmd) Synopsis() string { return "close an option position: buy to close or sell to close" }
func (*closeCmd) Usage() string {
	return `close -side <buy|sell> -u <underlying> -e <expiry> -k <strike> -type <call|put> -q <contracts> -p <premium> [-fees <fees>] [-d <date>]

  Closes option contracts, consuming the oldest opposite lots first: buy to
  close consumes short lots, sell to close consumes long lots.
`
}

func (c *closeCmd) SetFlags(f *flag.FlagSet) {
	c.contractFlags.SetFlags(f)
	c.tradeFlags.SetFlags(f)
}

func (c *closeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.contractFlags.missing() || c.quantity == "" || c.price == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	return run(ctx, optionTrade(ctx, &c.contractFlags, &c.tradeFlags, ledger.BuyToClose, ledger.SellToClose))
}
