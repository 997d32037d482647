package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/fintrack/cmd"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// completion describes the command line for shell completion.
var completion = &complete.Command{
	Sub: map[string]*complete.Command{
		"refresh":  {},
		"watch":    {Flags: map[string]complete.Predictor{"serve": predict.Nothing}},
		"summary":  {Flags: map[string]complete.Predictor{"refresh": predict.Nothing, "raw": predict.Nothing}},
		"import":   {Args: predict.Files("*.jsonl")},
		"export":   {Flags: map[string]complete.Predictor{"o": predict.Files("*.jsonl")}},
		"currency": {Args: predict.Set{"TRY", "USD", "EUR"}},
		"rm":       {Args: predict.Something},
		"topic":    {Args: predict.Set{"*", "api", "configuration", "ledger", "sources"}},
		"help":     {},
		"commands": {},
	},
}

func main() {
	// exits when invoked by the shell to complete a command line.
	completion.Complete(path.Base(os.Args[0]))

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	for _, c := range cmd.Commands {
		commander.Register(c, "")
	}

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
