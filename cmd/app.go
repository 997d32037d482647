// Package cmd implements the ftr subcommands.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/fintrack"
	"github.com/etnz/fintrack/coingecko"
	"github.com/etnz/fintrack/config"
	"github.com/etnz/fintrack/fetch"
	"github.com/etnz/fintrack/frankfurter"
	"github.com/etnz/fintrack/gfinance"
	"github.com/etnz/fintrack/logger"
	"github.com/etnz/fintrack/refresh"
	"github.com/etnz/fintrack/store"
	"github.com/etnz/fintrack/tefas"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// Commands are the ftr subcommands, in help order.
var Commands = []subcommands.Command{
	&refreshCmd{},
	&watchCmd{},
	&summaryCmd{},
	&importCmd{},
	&exportCmd{},
	&currencyCmd{},
	&rmCmd{},
	&topicCmd{},
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

// stdout receives command output. Logs go to stderr.
var stdout io.Writer = os.Stdout

// app is what every command needs: configuration, logger and an open store.
type app struct {
	cfg     *config.Config
	log     zerolog.Logger
	db      *store.SQLite
	session *store.Session
}

// openApp loads the configuration and opens the database. Close it when done.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	logger.SetGlobalLogger(log)

	db, err := store.OpenSQLite(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("db", cfg.DatabasePath).Msg("database opened")
	return &app{cfg: cfg, log: log, db: db, session: db.Session()}, nil
}

func (a *app) Close() error { return a.db.Close() }

// sources wires every provider to a single HTTP client.
func (a *app) sources() refresh.Sources {
	client := fetch.New(a.log)
	return refresh.Sources{
		Equity:       gfinance.New(client, gfinance.WithTimeout(a.cfg.HTTPTimeout)),
		Fund:         tefas.New(client, tefas.WithTimeout(a.cfg.FundTimeout), tefas.WithLogger(a.log)),
		Crypto:       coingecko.New(client, coingecko.WithTimeout(a.cfg.HTTPTimeout)),
		FixedDeposit: fintrack.FixedDeposit{},
		FX:           frankfurter.New(client, frankfurter.WithPair(a.cfg.FXPair), frankfurter.WithTimeout(a.cfg.HTTPTimeout)),
	}
}

func (a *app) engine(sources refresh.Sources) *refresh.Engine {
	return refresh.New(a.session, sources,
		refresh.WithInterval(a.cfg.RefreshInterval),
		refresh.WithLogger(a.log))
}

// printMarkdown renders md for the terminal, or prints it as is if it cannot.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	fmt.Fprint(stdout, out)
}

// findAsset finds an asset by id, or else by symbol ignoring case.
func findAsset(ctx context.Context, l fintrack.Ledger, ref string) (fintrack.Asset, error) {
	assets, err := l.ListAssets(ctx)
	if err != nil {
		return fintrack.Asset{}, err
	}
	for _, a := range assets {
		if a.ID == ref {
			return a, nil
		}
	}
	var found []fintrack.Asset
	for _, a := range assets {
		if strings.EqualFold(a.Symbol, ref) {
			found = append(found, a)
		}
	}
	switch len(found) {
	case 0:
		return fintrack.Asset{}, fmt.Errorf("%w: no asset %q", fintrack.ErrNotFound, ref)
	case 1:
		return found[0], nil
	}
	return fintrack.Asset{}, fmt.Errorf("%w: %d assets have symbol %q, use an id", fintrack.ErrInvalid, len(found), ref)
}
