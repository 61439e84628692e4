// Command plg keeps a profit and loss ledger of equity and option trades.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/ledger/cmd"
	"github.com/etnz/ledger/date"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	name := path.Base(os.Args[0])
	commander := subcommands.NewCommander(flag.CommandLine, name)
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	// exits when invoked by the shell to complete the command line.
	completion(commander).Complete(name)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// completion describes the commands and their flags for shell completion.
func completion(commander *subcommands.Commander) *complete.Command {
	root := &complete.Command{
		Sub:   map[string]*complete.Command{},
		Flags: flagPredictors("", flag.CommandLine),
	}
	commander.VisitCommands(func(_ *subcommands.CommandGroup, c subcommands.Command) {
		fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
		c.SetFlags(fs)
		root.Sub[c.Name()] = &complete.Command{Flags: flagPredictors(c.Name(), fs)}
	})
	return root
}

func flagPredictors(command string, fs *flag.FlagSet) map[string]complete.Predictor {
	flags := map[string]complete.Predictor{}
	fs.VisitAll(func(f *flag.Flag) {
		if f.Name == "p" && (command == "tx" || command == "pl") {
			flags[f.Name] = predict.Set(date.PeriodNames())
			return
		}
		switch f.Name {
		case "config":
			flags[f.Name] = predict.Files("*.yaml")
		case "ledger-file":
			flags[f.Name] = predict.Files("*.jsonl")
		case "database":
			flags[f.Name] = predict.Files("*.db")
		case "i", "t":
			flags[f.Name] = predict.Files("*.csv")
		case "o":
			flags[f.Name] = predict.Files("*.html")
		case "backend":
			flags[f.Name] = predict.Set{"jsonl", "sqlite"}
		case "side":
			flags[f.Name] = predict.Set{"buy", "sell"}
		case "type":
			flags[f.Name] = predict.Set{"call", "put"}
		case "log-level":
			flags[f.Name] = predict.Set{"debug", "info", "warn", "error"}
		default:
			flags[f.Name] = predict.Something
		}
	})
	return flags
}
