package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/fintrack"
	"github.com/google/subcommands"
)

type currencyCmd struct{}

func (*currencyCmd) Name() string     { return "currency" }
func (*currencyCmd) Synopsis() string { return "show or set the reporting currency" }
func (*currencyCmd) Usage() string {
	return `ftr currency [<code>]

  Without argument, prints the reporting currency. With an ISO 4217 code,
  for instance USD, makes it the reporting currency.
`
}

func (c *currencyCmd) SetFlags(f *flag.FlagSet) {}

func (c *currencyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "expected at most one currency code")
		return subcommands.ExitUsageError
	}
	var cur fintrack.Currency
	if f.NArg() == 1 {
		var err error
		if cur, err = fintrack.ParseCurrency(f.Arg(0)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
	}

	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	settings, err := a.session.Settings(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if cur == "" {
		fmt.Fprintln(stdout, settings.ReportingCurrency)
		return subcommands.ExitSuccess
	}

	settings.ReportingCurrency = cur
	if err := a.session.Put(ctx, settings); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := a.session.Commit(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving settings: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Reporting currency set to %s\n", cur)
	return subcommands.ExitSuccess
}
