// Package refresh keeps cached quotes and the FX rate up to date.
//
// An Engine runs refresh cycles, periodically between Start and Stop and on
// demand with RefreshOnce. A cycle fetches every asset then the FX rate,
// isolating failures, and commits all successful results at once.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/etnz/fintrack"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// DefaultInterval is the time between two periodic cycles.
const DefaultInterval = 15 * time.Second

// Result is the outcome of a committed cycle.
type Result struct {
	// Updated lists the ids of the assets with a new quote.
	Updated []string
	// Failed maps asset ids to their fetch error.
	Failed map[string]error
	// FX is the stored rate, nil if the FX fetch failed.
	FX          *fintrack.FXRate
	FXErr       error
	CompletedAt time.Time
}

// Engine runs refresh cycles against a store.
type Engine struct {
	store    fintrack.Store
	sources  Sources
	interval time.Duration
	log      zerolog.Logger

	// cycle serializes refresh cycles.
	cycle sync.Mutex

	mu            sync.Mutex
	cron          *cron.Cron
	cancel        context.CancelFunc
	lastRefreshAt time.Time
}

type Option func(*Engine)

func WithInterval(d time.Duration) Option { return func(e *Engine) { e.interval = d } }

func WithLogger(l zerolog.Logger) Option { return func(e *Engine) { e.log = l } }

func New(store fintrack.Store, sources Sources, opts ...Option) *Engine {
	e := &Engine{store: store, sources: sources, interval: DefaultInterval, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.With().Str("component", "refresh").Logger()
	return e
}

// Start begins periodic refreshing: a cycle right away then one every
// interval. Fires that overlap a running cycle are dropped. Refreshing stops
// on Stop or when ctx is done. Starting a running engine restarts it.
func (e *Engine) Start(ctx context.Context) {
	e.Stop()

	runCtx, cancel := context.WithCancel(ctx)
	cronLog := e.log.With().Str("component", "cron").Logger()
	c := cron.New(
		cron.WithLogger(cron.PrintfLogger(&cronLog)),
		cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(&cronLog))),
	)
	c.Schedule(&immediately{every: cron.Every(e.interval)}, cron.FuncJob(func() { e.scheduled(runCtx) }))

	e.mu.Lock()
	e.cron, e.cancel = c, cancel
	e.mu.Unlock()
	c.Start()
	e.log.Info().Dur("interval", e.interval).Msg("refresh started")

	go func() {
		<-runCtx.Done()
		<-c.Stop().Done()
		e.mu.Lock()
		if e.cron == c {
			e.cron, e.cancel = nil, nil
			e.log.Info().Msg("refresh stopped")
		}
		e.mu.Unlock()
	}()
}

// Stop ends periodic refreshing. It waits for an in-flight cycle, which
// either commits or is abandoned.
func (e *Engine) Stop() {
	e.mu.Lock()
	c, cancel := e.cron, e.cancel
	e.cron, e.cancel = nil, nil
	e.mu.Unlock()
	if c == nil {
		return
	}
	cancel()
	<-c.Stop().Done()
	e.log.Info().Msg("refresh stopped")
}

// Running reports whether periodic refreshing is on.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cron != nil
}

// LastRefreshAt is the completion time of the last committed cycle, zero if none.
func (e *Engine) LastRefreshAt() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastRefreshAt
}

// RefreshOnce runs a single cycle now, waiting for any running one to finish first.
func (e *Engine) RefreshOnce(ctx context.Context) (Result, error) {
	return e.run(ctx)
}

func (e *Engine) scheduled(ctx context.Context) {
	res, err := e.run(ctx)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		e.log.Debug().Msg("refresh cycle abandoned")
	case err != nil:
		e.log.Error().Err(err).Msg("refresh cycle failed")
	default:
		e.log.Info().
			Int("updated", len(res.Updated)).
			Int("failed", len(res.Failed)).
			Bool("fx", res.FX != nil).
			Msg("refresh cycle committed")
	}
}

// run is one cycle. Nothing is written if ctx is done before the commit.
func (e *Engine) run(ctx context.Context) (Result, error) {
	e.cycle.Lock()
	defer e.cycle.Unlock()

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	assets, err := e.store.ListAssets(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("%w: cannot list assets: %w", fintrack.ErrStorage, err)
	}

	res := Result{Failed: make(map[string]error)}
	var writes []fintrack.Entity
	for _, asset := range assets {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		q, err := e.fetchQuote(ctx, asset)
		if err != nil {
			res.Failed[asset.ID] = err
			e.logFailure(err).
				Str("asset", asset.ID).
				Str("symbol", asset.Symbol).
				Str("kind", string(asset.Kind)).
				Msg("cannot refresh quote, keeping cached one")
			continue
		}
		writes = append(writes, fintrack.PriceUpdate{AssetID: asset.ID, Quote: q})
		res.Updated = append(res.Updated, asset.ID)
	}

	if rate, err := e.fetchRate(ctx); err != nil {
		res.FXErr = err
		e.logFailure(err).Msg("cannot refresh fx rate, keeping stored one")
	} else {
		writes = append(writes, rate)
		res.FX = &rate
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	// from here on the cycle completes even if ctx gets cancelled
	commitCtx := context.WithoutCancel(ctx)
	for _, w := range writes {
		if err := e.store.Put(commitCtx, w); err != nil {
			e.log.Warn().Err(err).Msgf("cannot stage %T", w)
			res.unstaged(w, err)
		}
	}
	if err := e.store.Commit(commitCtx); err != nil {
		// the next cycle fetches fresh quotes, stale ones must not pile up
		e.store.Rollback()
		return res, fmt.Errorf("%w: cannot commit refresh: %w", fintrack.ErrStorage, err)
	}

	res.CompletedAt = time.Now()
	e.mu.Lock()
	e.lastRefreshAt = res.CompletedAt
	e.mu.Unlock()
	return res, nil
}

// unstaged records that w was fetched but could not be staged.
func (r *Result) unstaged(w fintrack.Entity, err error) {
	switch w := w.(type) {
	case fintrack.PriceUpdate:
		r.Updated = slices.DeleteFunc(r.Updated, func(id string) bool { return id == w.AssetID })
		r.Failed[w.AssetID] = err
	case fintrack.FXRate:
		r.FX, r.FXErr = nil, err
	}
}

func (e *Engine) fetchQuote(ctx context.Context, asset fintrack.Asset) (fintrack.Quote, error) {
	src, err := e.sources.For(asset.Kind)
	if err != nil {
		return fintrack.Quote{}, err
	}
	return src.FetchQuote(ctx, asset)
}

// fetchRate fetches the rate and gives it the id of the stored record of its
// pair, or a new one.
func (e *Engine) fetchRate(ctx context.Context) (fintrack.FXRate, error) {
	if e.sources.FX == nil {
		return fintrack.FXRate{}, fmt.Errorf("%w: no fx source", fintrack.ErrUnsupported)
	}
	rate, err := e.sources.FX.FetchRate(ctx)
	if err != nil {
		return fintrack.FXRate{}, err
	}
	if !rate.Rate.IsPositive() {
		return fintrack.FXRate{}, fmt.Errorf("%w: %s rate %s is not positive", fintrack.ErrParseFailure, rate.Pair, rate.Rate)
	}
	existing, ok, err := e.store.FindFXRate(ctx, rate.Pair)
	if err != nil {
		return fintrack.FXRate{}, fmt.Errorf("%w: cannot find %s rate: %w", fintrack.ErrStorage, rate.Pair, err)
	}
	if ok {
		rate.ID = existing.ID
	} else {
		rate.ID = uuid.NewString()
	}
	return rate, nil
}

func (e *Engine) logFailure(err error) *zerolog.Event {
	if errors.Is(err, fintrack.ErrUnsupported) {
		return e.log.Debug().Err(err)
	}
	return e.log.Warn().Err(err)
}

// immediately fires once right away, then follows every.
type immediately struct {
	every   cron.ConstantDelaySchedule
	started bool
}

func (s *immediately) Next(t time.Time) time.Time {
	if !s.started {
		s.started = true
		return t
	}
	return s.every.Next(t)
}
