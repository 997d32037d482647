package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/etnz/fintrack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type opener func(t *testing.T) *Session

func backends() map[string]opener {
	return map[string]opener{
		"memory": func(t *testing.T) *Session { return NewMemory().Session() },
		"sqlite": func(t *testing.T) *Session {
			db, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "fintrack.db"))
			require.NoError(t, err)
			t.Cleanup(func() { db.Close() })
			return db.Session()
		},
	}
}

func forEachBackend(t *testing.T, test func(t *testing.T, s *Session)) {
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) { test(t, open(t)) })
	}
}

var when = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

func fund() fintrack.Asset {
	return fintrack.Asset{ID: "fund-1", Symbol: "TTE", Name: "Tech", Kind: fintrack.KindFund, Currency: fintrack.TRY}
}

func TestPutIsInvisibleUntilCommit(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Session) {
		ctx := context.Background()
		require.NoError(t, s.Put(ctx, fund()))
		assets, err := s.ListAssets(ctx)
		require.NoError(t, err)
		assert.Empty(t, assets)
		assert.Equal(t, 1, s.Pending())

		require.NoError(t, s.Commit(ctx))
		assert.Equal(t, 0, s.Pending())
		assets, err = s.ListAssets(ctx)
		require.NoError(t, err)
		require.Len(t, assets, 1)
		assert.Equal(t, fund(), assets[0])
	})
}

func TestPutValidates(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Session) {
		ctx := context.Background()
		bad := fund()
		bad.Kind = ""
		assert.ErrorIs(t, s.Put(ctx, bad), fintrack.ErrInvalid)
		assert.ErrorIs(t, s.Put(ctx, fintrack.FXRate{Pair: fintrack.DefaultPair}), fintrack.ErrInvalid)
		assert.ErrorIs(t, s.Put(ctx, fintrack.PriceUpdate{}), fintrack.ErrInvalid)
		assert.Equal(t, 0, s.Pending())
	})
}

func TestPriceUpdateOnlyTouchesTheQuote(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Session) {
		ctx := context.Background()
		require.NoError(t, s.Put(ctx, fund()))
		require.NoError(t, s.Commit(ctx))

		// a metadata edit and a refresh land in the same batch
		edited := fund()
		edited.Name = "Renamed"
		require.NoError(t, s.Put(ctx, edited))
		require.NoError(t, s.Put(ctx, fintrack.PriceUpdate{AssetID: "fund-1", Quote: fintrack.Quote{
			Symbol: "TTE", Price: fintrack.MustD("12.5"), Currency: fintrack.TRY, UpdatedAt: when,
		}}))
		require.NoError(t, s.Put(ctx, fintrack.PriceUpdate{AssetID: "gone", Quote: fintrack.Quote{Price: fintrack.D(1)}}))
		require.NoError(t, s.Commit(ctx))

		assets, err := s.ListAssets(ctx)
		require.NoError(t, err)
		require.Len(t, assets, 1)
		assert.Equal(t, "Renamed", assets[0].Name)
		require.NotNil(t, assets[0].LastQuote)
		assert.Equal(t, "12.5", assets[0].LastQuote.Price.String())
		assert.Equal(t, fintrack.TRY, assets[0].LastQuote.Currency)
		assert.True(t, when.Equal(assets[0].LastQuote.UpdatedAt))
	})
}

func TestFXRateUpsertByPair(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Session) {
		ctx := context.Background()
		_, ok, err := s.FindFXRate(ctx, fintrack.DefaultPair)
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, s.Put(ctx, fintrack.FXRate{ID: "first", Pair: fintrack.DefaultPair, Rate: fintrack.MustD("36.1"), UpdatedAt: when}))
		require.NoError(t, s.Commit(ctx))
		require.NoError(t, s.Put(ctx, fintrack.FXRate{ID: "second", Pair: fintrack.DefaultPair, Rate: fintrack.MustD("36.7"), UpdatedAt: when.Add(time.Minute)}))
		require.NoError(t, s.Commit(ctx))

		rate, ok, err := s.FindFXRate(ctx, fintrack.DefaultPair)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "first", rate.ID, "one record per pair")
		assert.Equal(t, "36.7", rate.Rate.String())
		assert.True(t, when.Add(time.Minute).Equal(rate.UpdatedAt))

		_, ok, err = s.FindFXRate(ctx, fintrack.Pair{Base: fintrack.TRY, Quote: fintrack.USD})
		require.NoError(t, err)
		assert.False(t, ok, "pairs are ordered")
	})
}

func TestDeleteAssetCascades(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Session) {
		ctx := context.Background()
		other := fintrack.Asset{ID: "btc", Symbol: "BTC", Kind: fintrack.KindCrypto, Currency: fintrack.USD}
		require.NoError(t, s.Put(ctx, fund()))
		require.NoError(t, s.Put(ctx, other))
		require.NoError(t, s.Put(ctx, fintrack.Transaction{ID: "t1", AssetID: "fund-1", Kind: fintrack.Buy, Quantity: fintrack.D(100), Price: fintrack.D(10), Fees: fintrack.D(5), Time: when}))
		require.NoError(t, s.Put(ctx, fintrack.Transaction{ID: "t2", AssetID: "fund-1", Kind: fintrack.Sell, Quantity: fintrack.D(10), Price: fintrack.D(11), Time: when.Add(time.Hour)}))
		require.NoError(t, s.Put(ctx, fintrack.Transaction{ID: "t3", AssetID: "btc", Kind: fintrack.Buy, Quantity: fintrack.MustD("0.1"), Price: fintrack.D(60000), Time: when}))
		require.NoError(t, s.Commit(ctx))

		txs, err := s.ListTransactions(ctx)
		require.NoError(t, err)
		require.Len(t, txs, 3)
		assert.Equal(t, "5", txs[0].Fees.String())

		require.NoError(t, s.DeleteAsset(ctx, "fund-1"))
		require.NoError(t, s.Commit(ctx))

		assets, err := s.ListAssets(ctx)
		require.NoError(t, err)
		require.Len(t, assets, 1)
		assert.Equal(t, "btc", assets[0].ID)
		txs, err = s.ListTransactions(ctx)
		require.NoError(t, err)
		require.Len(t, txs, 1)
		assert.Equal(t, "t3", txs[0].ID)
	})
}

func TestCommitIsAtomic(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Session) {
		ctx := context.Background()
		require.NoError(t, s.Put(ctx, fund()))
		// references an asset that does not exist
		require.NoError(t, s.Put(ctx, fintrack.Transaction{ID: "t1", AssetID: "nope", Kind: fintrack.Buy, Quantity: fintrack.D(1), Price: fintrack.D(1), Time: when}))

		err := s.Commit(ctx)
		require.Error(t, err)
		assert.True(t, errors.Is(err, fintrack.ErrStorage), "%v", err)
		assert.Equal(t, 2, s.Pending(), "a failed commit keeps its writes staged")

		assets, err := s.ListAssets(ctx)
		require.NoError(t, err)
		assert.Empty(t, assets, "nothing of the failed batch is visible")

		s.Rollback()
		assert.Equal(t, 0, s.Pending())
	})
}

func TestSettingsDefault(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Session) {
		ctx := context.Background()
		st, err := s.Settings(ctx)
		require.NoError(t, err)
		assert.Equal(t, fintrack.TRY, st.ReportingCurrency)

		require.NoError(t, s.Put(ctx, fintrack.Settings{ReportingCurrency: fintrack.USD}))
		require.NoError(t, s.Commit(ctx))
		st, err = s.Settings(ctx)
		require.NoError(t, err)
		assert.Equal(t, fintrack.USD, st.ReportingCurrency)
		assert.Equal(t, fintrack.SettingsID, st.ID)
	})
}

func TestMemorySettingsAreShared(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	_, ok, err := m.settings(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "no settings before first access")

	writer := m.Session()
	require.NoError(t, writer.Put(ctx, fintrack.Settings{ReportingCurrency: fintrack.USD}))
	require.NoError(t, writer.Commit(ctx))

	st, err := m.Session().Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, fintrack.USD, st.ReportingCurrency)
}

func TestSQLiteReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "fintrack.db")
	db, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	s := db.Session()
	require.NoError(t, s.Put(ctx, fund()))
	require.NoError(t, s.Commit(ctx))
	require.NoError(t, db.Close())

	db, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer db.Close()
	assets, err := db.Session().ListAssets(ctx)
	require.NoError(t, err)
	assert.Len(t, assets, 1)
}
