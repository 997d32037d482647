package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/etnz/fintrack/api"
	"github.com/google/subcommands"
)

type watchCmd struct {
	serve bool
}

func (*watchCmd) Name() string     { return "watch" }
func (*watchCmd) Synopsis() string { return "refresh periodically until interrupted" }
func (*watchCmd) Usage() string {
	return `ftr watch [-serve]

  Refreshes right away, then every FINTRACK_REFRESH_INTERVAL, until
  interrupted. With -serve, the HTTP API listens on FINTRACK_PORT meanwhile.
`
}

func (c *watchCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.serve, "serve", false, "Serve the HTTP API while watching.")
}

func (c *watchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "no arguments expected")
		return subcommands.ExitUsageError
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	engine := a.engine(a.sources())
	engine.Start(ctx)
	defer engine.Stop()

	var server *api.Server
	errc := make(chan error, 1)
	if c.serve {
		h := api.NewHandlers(a.session, engine, a.cfg.FXPair, a.log)
		server = api.NewServer(api.Config{Port: a.cfg.Port, Log: a.log, Handlers: h})
		go func() { errc <- server.Start() }()
	}

	status := subcommands.ExitSuccess
	select {
	case <-ctx.Done():
		a.log.Info().Msg("interrupted, stopping")
	case err := <-errc:
		a.log.Error().Err(err).Msg("HTTP server failed")
		status = subcommands.ExitFailure
	}

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			a.log.Warn().Err(err).Msg("HTTP server shutdown")
		}
	}
	return status
}
