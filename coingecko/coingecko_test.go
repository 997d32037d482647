package coingecko

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/etnz/fintrack"
	"github.com/etnz/fintrack/fetch"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSource(t *testing.T, body string, opts ...Option) (*Source, *[]string) {
	t.Helper()
	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.Path+"?"+r.URL.RawQuery)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	opts = append([]Option{WithBaseURL(srv.URL + "/api/v3/")}, opts...)
	return New(fetch.New(zerolog.Nop()), opts...), &queries
}

func TestFetchQuote(t *testing.T) {
	src, queries := newSource(t, `{"bitcoin":{"usd":67187.33,"last_updated_at":1711356300}}`)

	q, err := src.FetchQuote(context.Background(), fintrack.Asset{Symbol: "btc", Kind: fintrack.KindCrypto})
	require.NoError(t, err)
	assert.Equal(t, "67187.33", q.Price.String())
	assert.Equal(t, fintrack.USD, q.Currency)
	assert.Equal(t, "btc", q.Symbol)
	assert.True(t, time.Unix(1711356300, 0).Equal(q.UpdatedAt))
	assert.Equal(t, []string{"/api/v3/simple/price?ids=bitcoin&vs_currencies=usd&include_last_updated_at=true"}, *queries)
}

func TestFetchQuoteWithoutUpdateTime(t *testing.T) {
	src, _ := newSource(t, `{"ethereum":{"usd":3120.5}}`)
	before := time.Now()
	q, err := src.FetchQuote(context.Background(), fintrack.Asset{Symbol: "ETH", Kind: fintrack.KindCrypto})
	require.NoError(t, err)
	assert.Equal(t, "3120.5", q.Price.String())
	assert.False(t, q.UpdatedAt.Before(before))
}

func TestWithCoin(t *testing.T) {
	src, queries := newSource(t, `{"solana":{"usd":142.1}}`, WithCoin("sol", "solana"))
	q, err := src.FetchQuote(context.Background(), fintrack.Asset{Symbol: "SOL", Kind: fintrack.KindCrypto})
	require.NoError(t, err)
	assert.Equal(t, "142.1", q.Price.String())
	assert.Contains(t, (*queries)[0], "ids=solana")
}

func TestFetchQuoteFailures(t *testing.T) {
	testCases := []struct {
		name  string
		body  string
		asset fintrack.Asset
		want  error
	}{
		{"missing id", `{}`, fintrack.Asset{Symbol: "BTC", Kind: fintrack.KindCrypto}, fintrack.ErrParseFailure},
		{"missing price", `{"bitcoin":{"eur":1}}`, fintrack.Asset{Symbol: "BTC", Kind: fintrack.KindCrypto}, fintrack.ErrParseFailure},
		{"null price", `{"bitcoin":{"usd":null}}`, fintrack.Asset{Symbol: "BTC", Kind: fintrack.KindCrypto}, fintrack.ErrParseFailure},
		{"not json", `<html>`, fintrack.Asset{Symbol: "BTC", Kind: fintrack.KindCrypto}, fintrack.ErrDecode},
		{"unmapped symbol", `{}`, fintrack.Asset{Symbol: "DOGE", Kind: fintrack.KindCrypto}, fintrack.ErrUnsupported},
		{"not crypto", `{}`, fintrack.Asset{Symbol: "BTC", Kind: fintrack.KindFund}, fintrack.ErrUnsupported},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			src, _ := newSource(t, tc.body)
			_, err := src.FetchQuote(context.Background(), tc.asset)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "%v is not %v", err, tc.want)
		})
	}
}
