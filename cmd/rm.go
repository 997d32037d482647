package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type rmCmd struct{}

func (*rmCmd) Name() string     { return "rm" }
func (*rmCmd) Synopsis() string { return "delete an asset and all its transactions" }
func (*rmCmd) Usage() string {
	return `ftr rm <asset id or symbol>

  Deletes the asset and every transaction recorded for it.
`
}

func (c *rmCmd) SetFlags(f *flag.FlagSet) {}

func (c *rmCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "expected exactly one asset")
		return subcommands.ExitUsageError
	}
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	asset, err := findAsset(ctx, a.session, f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := a.session.DeleteAsset(ctx, asset.ID); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := a.session.Commit(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error deleting %s: %v\n", asset.Symbol, err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Deleted %s\n", asset.Label())
	return subcommands.ExitSuccess
}
