// Package tefas prices Turkish mutual funds from the TEFAS fund pages.
//
// The pages are scraped. A price is looked for with three strategies in
// order: the headline indicator list, a text label followed by a number, and
// finally the first number of the page.
package tefas

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/etnz/fintrack"
	"github.com/etnz/fintrack/fetch"
	"github.com/etnz/fintrack/number"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	DefaultBaseURL = "https://www.tefas.gov.tr/"
	// DefaultTimeout is longer than fetch.DefaultTimeout, fund pages are slow.
	DefaultTimeout = 30 * time.Second

	analysisPage   = "FonAnaliz.aspx"
	comparisonPage = "FonKarsilastirma.aspx"
)

// Labels introduce the price on fund pages.
var Labels = []string{"Son Fiyat", "Birim Fiyat", "Güncel"}

var (
	mainIndicators = regexp.MustCompile(`(?i)main-indicators[\s\S]*?<ul[^>]*class="top-list"[\s\S]*?<li[\s\S]*?<span[^>]*>([^<]+)</span>`)
	labelled       []*regexp.Regexp
)

func init() {
	for _, l := range Labels {
		labelled = append(labelled, regexp.MustCompile(`(?i)`+regexp.QuoteMeta(l)+`.{0,120}`))
	}
}

// Source is a fintrack.PriceSource for funds.
type Source struct {
	client  *fetch.Client
	baseURL string
	timeout time.Duration
	log     zerolog.Logger
}

type Option func(*Source)

func WithBaseURL(u string) Option { return func(s *Source) { s.baseURL = u } }

func WithTimeout(d time.Duration) Option { return func(s *Source) { s.timeout = d } }

func WithLogger(l zerolog.Logger) Option {
	return func(s *Source) { s.log = l.With().Str("component", "tefas").Logger() }
}

func New(client *fetch.Client, opts ...Option) *Source {
	s := &Source{client: client, baseURL: DefaultBaseURL, timeout: DefaultTimeout, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchQuote reads the fund's analysis page, then its comparison page if the
// first one failed or had no price.
func (s *Source) FetchQuote(ctx context.Context, asset fintrack.Asset) (fintrack.Quote, error) {
	if asset.Kind != fintrack.KindFund {
		return fintrack.Quote{}, fmt.Errorf("%w: tefas does not quote %s assets", fintrack.ErrUnsupported, asset.Kind)
	}
	code := strings.ToUpper(asset.SourceSymbol())

	html, err := s.client.Text(ctx, s.pageURL(analysisPage, code), s.timeout)
	if err == nil {
		if price, ok := ExtractPrice(html); ok {
			return quote(code, price), nil
		}
		s.log.Debug().Str("fund", code).Msg("no price on analysis page, trying comparison page")
	} else {
		s.log.Debug().Err(err).Str("fund", code).Msg("analysis page failed, trying comparison page")
	}

	html, err = s.client.Text(ctx, s.pageURL(comparisonPage, code), s.timeout)
	if err != nil {
		return fintrack.Quote{}, fmt.Errorf("cannot fetch fund %s: %w", code, err)
	}
	price, ok := ExtractPrice(html)
	if !ok {
		return fintrack.Quote{}, fmt.Errorf("%w: no price for fund %s", fintrack.ErrParseFailure, code)
	}
	return quote(code, price), nil
}

func (s *Source) pageURL(page, code string) string {
	return s.baseURL + page + "?FonKod=" + url.QueryEscape(code)
}

func quote(code string, price decimal.Decimal) fintrack.Quote {
	return fintrack.Quote{Symbol: code, Price: price, Currency: fintrack.TRY, UpdatedAt: time.Now()}
}

// ExtractPrice runs the strategy cascade on a fund page.
func ExtractPrice(html string) (decimal.Decimal, bool) {
	if m := mainIndicators.FindStringSubmatch(html); m != nil {
		if p, ok := number.Extract(m[1]); ok {
			return p, true
		}
	}
	for _, re := range labelled {
		if m := re.FindString(html); m != "" {
			if p, ok := number.Extract(m); ok {
				return p, true
			}
		}
	}
	return number.Extract(html)
}
