// Package gfinance prices equities and precious metals from Google Finance
// quote pages.
package gfinance

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/etnz/fintrack"
	"github.com/etnz/fintrack/fetch"
	"github.com/etnz/fintrack/number"
	"github.com/shopspring/decimal"
)

const DefaultBaseURL = "https://www.google.com/finance/quote/"

// Default exchanges per kind. An asset's ProviderHint overrides them.
const (
	IndexExchange   = "IST"
	ForeignExchange = "NASDAQ"
	MetalExchange   = "COMEX"
)

// priceDiv captures the text of the styled div holding the last price.
var priceDiv = regexp.MustCompile(`(?i)<div[^>]*class="YMlKec fxKbKc"[^>]*>([^<]+)</div>`)

// Source is a fintrack.PriceSource for index equities, foreign equities and
// precious metals.
type Source struct {
	client  *fetch.Client
	baseURL string
	timeout time.Duration
}

type Option func(*Source)

func WithBaseURL(u string) Option { return func(s *Source) { s.baseURL = u } }

func WithTimeout(d time.Duration) Option { return func(s *Source) { s.timeout = d } }

func New(client *fetch.Client, opts ...Option) *Source {
	s := &Source{client: client, baseURL: DefaultBaseURL, timeout: fetch.DefaultTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchQuote fetches the quote page of asset and reads its last price.
func (s *Source) FetchQuote(ctx context.Context, asset fintrack.Asset) (fintrack.Quote, error) {
	symbol := asset.SourceSymbol()
	var key string
	var cur fintrack.Currency
	switch asset.Kind {
	case fintrack.KindIndexEquity:
		key, cur = symbol+":"+exchange(asset, IndexExchange), fintrack.TRY
	case fintrack.KindForeignEquity:
		key, cur = symbol+":"+exchange(asset, ForeignExchange), fintrack.USD
	case fintrack.KindPreciousMetal:
		key, cur = symbol, fintrack.USD
		if !strings.Contains(symbol, ":") {
			key += ":" + exchange(asset, MetalExchange)
		}
	default:
		return fintrack.Quote{}, fmt.Errorf("%w: google finance does not quote %s assets", fintrack.ErrUnsupported, asset.Kind)
	}

	html, err := s.client.Text(ctx, s.baseURL+key, s.timeout)
	if err != nil {
		return fintrack.Quote{}, fmt.Errorf("cannot fetch %s: %w", key, err)
	}
	price, ok := ExtractPrice(html)
	if !ok {
		return fintrack.Quote{}, fmt.Errorf("%w: no price in %s page", fintrack.ErrParseFailure, key)
	}
	return fintrack.Quote{Symbol: symbol, Price: price, Currency: cur, UpdatedAt: time.Now()}, nil
}

// ExtractPrice reads the price container of a quote page.
func ExtractPrice(html string) (decimal.Decimal, bool) {
	m := priceDiv.FindStringSubmatch(html)
	if m == nil {
		return decimal.Zero, false
	}
	return number.Extract(m[1])
}

func exchange(asset fintrack.Asset, def string) string {
	if h := strings.TrimSpace(asset.ProviderHint); h != "" {
		return strings.ToUpper(h)
	}
	return def
}
