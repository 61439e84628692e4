package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/ledger"
	"github.com/google/subcommands"
)

type importCmd struct {
	instruments  string
	transactions string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import instruments and transactions from CSV files" }
func (*importCmd) Usage() string {
	return `import -i <instruments.csv> -t <transactions.csv>

  Imports CSV files written by export. Rows that cannot be parsed are skipped
  and reported; transactions already in the ledger are skipped.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.instruments, "i", "instruments.csv", "Instruments CSV file")
	f.StringVar(&c.transactions, "t", "transactions.csv", "Transactions CSV file")
}

func (c *importCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(a *app) error {
		ir, err := os.Open(c.instruments)
		if err != nil {
			return err
		}
		defer ir.Close()
		tr, err := os.Open(c.transactions)
		if err != nil {
			return err
		}
		defer tr.Close()

		imp, err := ledger.ImportCSV(ir, tr)
		if err != nil {
			return err
		}
		for _, skipped := range imp.Skipped {
			a.log.Warn().Str("file", skipped.File).Int("row", skipped.Row).Err(skipped.Err).Msg("row skipped")
			fmt.Fprintf(os.Stderr, "Warning: skipped %s\n", skipped)
		}
		added, err := a.store.Import(ctx, imp.Instruments, imp.Transactions)
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d instruments and %d new transactions (%d rows skipped)\n", len(imp.Instruments), added, len(imp.Skipped))
		return nil
	})
}

type exportCmd struct {
	instruments  string
	transactions string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export instruments and transactions to CSV files" }
func (*exportCmd) Usage() string {
	return `export -i <instruments.csv> -t <transactions.csv>

  Writes the instrument catalog and the transaction log as two CSV files.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.instruments, "i", "instruments.csv", "Instruments CSV file")
	f.StringVar(&c.transactions, "t", "transactions.csv", "Transactions CSV file")
}

func (c *exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(a *app) error {
		if err := ledger.ExportCSVFiles(c.instruments, c.transactions, a.store.Instruments(), a.store.Transactions()); err != nil {
			return err
		}
		fmt.Printf("Exported to %s and %s\n", c.instruments, c.transactions)
		return nil
	})
}
