package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"slices"

	"github.com/etnz/fintrack/refresh"
	"github.com/google/subcommands"
)

type refreshCmd struct{}

func (*refreshCmd) Name() string     { return "refresh" }
func (*refreshCmd) Synopsis() string { return "fetch the latest quotes and FX rate once" }
func (*refreshCmd) Usage() string {
	return `ftr refresh

  Fetches a quote for every asset and the FX rate, then stores them.
  An asset that cannot be priced keeps its previous quote.
`
}

func (c *refreshCmd) SetFlags(f *flag.FlagSet) {}

func (c *refreshCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "no arguments expected")
		return subcommands.ExitUsageError
	}
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	res, err := a.engine(a.sources()).RefreshOnce(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error refreshing: %v\n", err)
		return subcommands.ExitFailure
	}
	printResult(res)
	return subcommands.ExitSuccess
}

// printResult prints a one line summary of a cycle, then its failures.
func printResult(res refresh.Result) {
	fmt.Fprintf(stdout, "%d updated, %d failed", len(res.Updated), len(res.Failed))
	if res.FX != nil {
		fmt.Fprintf(stdout, ", %s %s", res.FX.Pair, res.FX.Rate)
	}
	fmt.Fprintln(stdout)

	ids := make([]string, 0, len(res.Failed))
	for id := range res.Failed {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		fmt.Fprintf(stdout, "  %s: %v\n", id, res.Failed[id])
	}
	if res.FXErr != nil {
		fmt.Fprintf(stdout, "  fx: %v\n", res.FXErr)
	}
}
