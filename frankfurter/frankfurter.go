// Package frankfurter fetches cross-rates from the Frankfurter API.
package frankfurter

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/etnz/fintrack"
	"github.com/etnz/fintrack/fetch"
	"github.com/shopspring/decimal"
)

const DefaultBaseURL = "https://api.frankfurter.app/"

// Source is a fintrack.RateSource for a single pair, USD/TRY by default.
type Source struct {
	client  *fetch.Client
	baseURL string
	timeout time.Duration
	pair    fintrack.Pair
}

type Option func(*Source)

func WithBaseURL(u string) Option { return func(s *Source) { s.baseURL = u } }

func WithTimeout(d time.Duration) Option { return func(s *Source) { s.timeout = d } }

func WithPair(p fintrack.Pair) Option { return func(s *Source) { s.pair = p } }

func New(client *fetch.Client, opts ...Option) *Source {
	s := &Source{client: client, baseURL: DefaultBaseURL, timeout: fetch.DefaultTimeout, pair: fintrack.DefaultPair}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Pair returns the pair this source fetches.
func (s *Source) Pair() fintrack.Pair { return s.pair }

// latest is the body of the latest endpoint:
//
//	{"amount":1.0,"base":"USD","date":"2025-03-14","rates":{"TRY":36.61}}
type latest struct {
	Amount decimal.Decimal            `json:"amount"`
	Base   string                     `json:"base"`
	Date   string                     `json:"date"`
	Rates  map[string]decimal.Decimal `json:"rates"`
}

// FetchRate fetches the latest rate of the pair.
func (s *Source) FetchRate(ctx context.Context) (fintrack.FXRate, error) {
	q := url.Values{}
	q.Set("from", string(s.pair.Base))
	q.Set("to", string(s.pair.Quote))
	addr := s.baseURL + "latest?" + q.Encode()

	var resp latest
	if err := s.client.JSON(ctx, addr, s.timeout, &resp); err != nil {
		return fintrack.FXRate{}, fmt.Errorf("cannot fetch %s rate: %w", s.pair, err)
	}
	rate, ok := resp.Rates[string(s.pair.Quote)]
	if !ok {
		return fintrack.FXRate{}, fmt.Errorf("%w: no %s rate in response", fintrack.ErrParseFailure, s.pair)
	}
	// rates are given for amount units of base
	if resp.Amount.IsPositive() && !resp.Amount.Equal(decimal.NewFromInt(1)) {
		rate = rate.Div(resp.Amount)
	}
	return fintrack.FXRate{Pair: s.pair, Rate: rate, UpdatedAt: time.Now()}, nil
}
