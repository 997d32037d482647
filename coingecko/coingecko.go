// Package coingecko prices cryptocurrencies in US dollars from the CoinGecko
// simple price API.
package coingecko

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/fintrack"
	"github.com/etnz/fintrack/fetch"
	"github.com/shopspring/decimal"
)

const DefaultBaseURL = "https://api.coingecko.com/api/v3/"

// Source is a fintrack.PriceSource for crypto assets.
type Source struct {
	client  *fetch.Client
	baseURL string
	timeout time.Duration
	coins   map[string]string
}

type Option func(*Source)

func WithBaseURL(u string) Option { return func(s *Source) { s.baseURL = u } }

func WithTimeout(d time.Duration) Option { return func(s *Source) { s.timeout = d } }

// WithCoin maps a ticker to its CoinGecko id, for instance "SOL" to "solana".
func WithCoin(symbol, id string) Option {
	return func(s *Source) { s.coins[strings.ToUpper(symbol)] = id }
}

func New(client *fetch.Client, opts ...Option) *Source {
	s := &Source{
		client:  client,
		baseURL: DefaultBaseURL,
		timeout: fetch.DefaultTimeout,
		coins: map[string]string{
			"BTC": "bitcoin",
			"ETH": "ethereum",
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CoinID returns the CoinGecko id of a ticker.
func (s *Source) CoinID(symbol string) (string, bool) {
	id, ok := s.coins[strings.ToUpper(strings.TrimSpace(symbol))]
	return id, ok
}

/*
	{
	    "bitcoin": {
	        "usd": 67187.33,
	        "last_updated_at": 1711356300
	    }
	}
*/
func (s *Source) FetchQuote(ctx context.Context, asset fintrack.Asset) (fintrack.Quote, error) {
	if asset.Kind != fintrack.KindCrypto {
		return fintrack.Quote{}, fmt.Errorf("%w: coingecko does not quote %s assets", fintrack.ErrUnsupported, asset.Kind)
	}
	symbol := asset.SourceSymbol()
	id, ok := s.CoinID(symbol)
	if !ok {
		return fintrack.Quote{}, fmt.Errorf("%w: no coingecko id for %q", fintrack.ErrUnsupported, symbol)
	}

	addr := fmt.Sprintf("%ssimple/price?ids=%s&vs_currencies=usd&include_last_updated_at=true", s.baseURL, url.QueryEscape(id))
	var jobj map[string]any
	if err := s.client.JSON(ctx, addr, s.timeout, &jobj); err != nil {
		return fintrack.Quote{}, fmt.Errorf("cannot fetch %s price: %w", id, err)
	}

	price, err := lookup(jobj, fmt.Sprintf("$[%q].usd", id))
	if err != nil {
		return fintrack.Quote{}, fmt.Errorf("%w: %s: %w", fintrack.ErrParseFailure, id, err)
	}
	updatedAt := time.Now()
	if ts, err := lookup(jobj, fmt.Sprintf("$[%q].last_updated_at", id)); err == nil && ts.IsPositive() {
		updatedAt = time.Unix(ts.IntPart(), 0)
	}
	return fintrack.Quote{Symbol: symbol, Price: price, Currency: fintrack.USD, UpdatedAt: updatedAt}, nil
}

// lookup reads a number at path.
func lookup(jobj any, path string) (decimal.Decimal, error) {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", path, err)
	}
	// because jsonpath is never clear about whether it returns a list of 1 answer, or a single answer:
	// by this call I keep the first one if any
	if jlist, ok := jval.([]any); ok {
		if len(jlist) == 0 {
			return decimal.Zero, fmt.Errorf("%s: no value", path)
		}
		jval = jlist[0]
	}
	switch v := jval.(type) {
	case json.Number:
		return decimal.NewFromString(v.String())
	case float64:
		return decimal.NewFromFloat(v), nil
	case nil:
		return decimal.Zero, errors.New(path + " is null")
	default:
		return decimal.Zero, fmt.Errorf("%s is not a number: %v", path, jval)
	}
}
