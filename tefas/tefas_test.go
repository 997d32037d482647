package tefas

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/etnz/fintrack"
	"github.com/etnz/fintrack/fetch"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const indicatorsPage = `<html><body>
<div class="main-indicators">
  <ul class="top-list">
    <li>Son Fiyat (TL)<span>1,234567</span></li>
    <li>Günlük Getiri (%)<span>%0,12</span></li>
  </ul>
</div>
</body></html>`

const labelPage = `<html><body><table><tr><td>Fon Kodu</td><td>TTE</td></tr>
<tr><td>Birim Fiyat</td><td>  2,5</td></tr></table></body></html>`

func TestExtractPrice(t *testing.T) {
	testCases := []struct {
		name   string
		html   string
		want   string
		wantOK bool
	}{
		{"main indicators", indicatorsPage, "1.234567", true},
		{"label", labelPage, "2.5", true},
		{"label is case insensitive", "<p>SON FIYAT: 3,75 TL</p>", "3.75", true},
		{"label too far from number", "<p>Güncel" + string(make([]byte, 200)) + "9,99</p>", "9.99", true},
		{"first number anywhere", "<p>Fon 7,5 TL</p>", "7.5", true},
		{"nothing", "<p>Fon bulunamadı</p>", "", false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ExtractPrice(tc.html)
			assert.Equal(t, tc.wantOK, ok)
			if tc.wantOK {
				assert.True(t, fintrack.MustD(tc.want).Equal(got), "want %s got %s", tc.want, got)
			}
		})
	}
}

type fundServer struct {
	analysis, comparison string // page bodies, "" for a 500
	hits                 []string
}

func (f *fundServer) start(t *testing.T) *Source {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.hits = append(f.hits, r.URL.Path+"?"+r.URL.RawQuery)
		var body string
		switch r.URL.Path {
		case "/FonAnaliz.aspx":
			body = f.analysis
		case "/FonKarsilastirma.aspx":
			body = f.comparison
		}
		if body == "" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return New(fetch.New(zerolog.Nop()), WithBaseURL(srv.URL+"/"))
}

func TestFetchQuote(t *testing.T) {
	fund := fintrack.Asset{Symbol: "tte", Kind: fintrack.KindFund, Currency: fintrack.TRY}
	ctx := context.Background()

	t.Run("primary page", func(t *testing.T) {
		f := &fundServer{analysis: indicatorsPage}
		q, err := f.start(t).FetchQuote(ctx, fund)
		require.NoError(t, err)
		assert.Equal(t, "TTE", q.Symbol)
		assert.Equal(t, fintrack.TRY, q.Currency)
		assert.Equal(t, "1.234567", q.Price.String())
		assert.Equal(t, []string{"/FonAnaliz.aspx?FonKod=TTE"}, f.hits)
	})

	t.Run("fallback after primary failure", func(t *testing.T) {
		f := &fundServer{comparison: labelPage}
		q, err := f.start(t).FetchQuote(ctx, fund)
		require.NoError(t, err)
		assert.Equal(t, "2.5", q.Price.String())
		assert.Equal(t, []string{"/FonAnaliz.aspx?FonKod=TTE", "/FonKarsilastirma.aspx?FonKod=TTE"}, f.hits)
	})

	t.Run("fallback after primary miss", func(t *testing.T) {
		f := &fundServer{analysis: "<p>bakım</p>", comparison: labelPage}
		q, err := f.start(t).FetchQuote(ctx, fund)
		require.NoError(t, err)
		assert.Equal(t, "2.5", q.Price.String())
		assert.Len(t, f.hits, 2)
	})

	t.Run("fallback network failure", func(t *testing.T) {
		f := &fundServer{analysis: "<p>bakım</p>"}
		_, err := f.start(t).FetchQuote(ctx, fund)
		assert.True(t, errors.Is(err, fintrack.ErrNetwork), "%v", err)
	})

	t.Run("fallback miss", func(t *testing.T) {
		f := &fundServer{analysis: "<p>bakım</p>", comparison: "<p>yok</p>"}
		_, err := f.start(t).FetchQuote(ctx, fund)
		assert.True(t, errors.Is(err, fintrack.ErrParseFailure), "%v", err)
	})

	t.Run("provider symbol", func(t *testing.T) {
		f := &fundServer{analysis: indicatorsPage}
		_, err := f.start(t).FetchQuote(ctx, fintrack.Asset{Symbol: "My fund", ProviderSymbol: "afa", Kind: fintrack.KindFund})
		require.NoError(t, err)
		assert.Equal(t, []string{"/FonAnaliz.aspx?FonKod=AFA"}, f.hits)
	})

	t.Run("not a fund", func(t *testing.T) {
		f := &fundServer{analysis: indicatorsPage}
		_, err := f.start(t).FetchQuote(ctx, fintrack.Asset{Symbol: "BTC", Kind: fintrack.KindCrypto})
		assert.True(t, errors.Is(err, fintrack.ErrUnsupported), "%v", err)
		assert.Empty(t, f.hits)
	})
}
