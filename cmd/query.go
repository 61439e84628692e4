package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"slices"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/ledger"
	"github.com/google/subcommands"
)

type queryCmd struct{}

func (*queryCmd) Name() string     { return "query" }
func (*queryCmd) Synopsis() string { return "evaluate a JSONPath expression over the ledger" }
func (*queryCmd) Usage() string {
	return `query <jsonpath>

  Evaluates a JSONPath expression over the JSON form of the ledger:
  {"instruments": [...], "transactions": [...], "output": {...}} where output
  holds the lots, positions, realized records, underliers and summary.

Usage Examples:
$ plg query '$.output.summary.totalRealized'
$ plg query '$.output.positions[?(@.kind=="option")].quantity'
`
}

func (*queryCmd) SetFlags(*flag.FlagSet) {}

func (*queryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	return run(ctx, func(a *app) error {
		instruments := a.store.Instruments()
		doc := queryDocument{
			Instruments:  slices.Collect(instruments.All()),
			Transactions: a.store.Transactions(),
			Output:       a.store.Recompute(),
		}
		val, err := query(doc, f.Arg(0))
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(val, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	})
}

type queryDocument struct {
	Instruments  []ledger.Instrument  `json:"instruments"`
	Transactions []ledger.Transaction `json:"transactions"`
	Output       *ledger.Output       `json:"output"`
}

// query evaluates path over the generic JSON form of doc. Numbers are kept
// as json.Number so decimals come back with their exact text.
func query(doc any, path string) (any, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("cannot encode ledger: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var jobj any
	if err := dec.Decode(&jobj); err != nil {
		return nil, fmt.Errorf("cannot decode ledger: %w", err)
	}
	val, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, fmt.Errorf("error evaluating %q: %w", path, err)
	}
	return val, nil
}
