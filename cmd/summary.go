package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/fintrack"
	"github.com/etnz/fintrack/renderer"
	"github.com/google/subcommands"
)

// summaryCmd holds the flags for the 'summary' subcommand.
type summaryCmd struct {
	refresh bool
	raw     bool
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display the portfolio dashboard" }
func (*summaryCmd) Usage() string {
	return `ftr summary [-refresh] [-raw]

  Displays the portfolio valued in the reporting currency, with one row per
  held asset and subtotals per kind.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.refresh, "refresh", false, "Refresh quotes and the FX rate first.")
	f.BoolVar(&c.raw, "raw", false, "Print markdown instead of rendering it for the terminal.")
}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if c.refresh {
		if _, err := a.engine(a.sources()).RefreshOnce(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error refreshing: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	report, err := fintrack.NewReport(ctx, a.session, a.cfg.FXPair)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building the dashboard: %v\n", err)
		return subcommands.ExitFailure
	}
	md := renderer.RenderDashboard(report)
	if c.raw {
		fmt.Fprint(stdout, md)
	} else {
		printMarkdown(md)
	}
	return subcommands.ExitSuccess
}
