package store

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/etnz/fintrack"
	"github.com/google/uuid"
)

// Memory is a backend kept in memory. It is safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	assets  map[string]fintrack.Asset
	txs     map[string]fintrack.Transaction
	rates   map[fintrack.Pair]fintrack.FXRate
	current *fintrack.Settings
}

func NewMemory() *Memory {
	return &Memory{
		assets: make(map[string]fintrack.Asset),
		txs:    make(map[string]fintrack.Transaction),
		rates:  make(map[fintrack.Pair]fintrack.FXRate),
	}
}

// Session opens a unit of work on m.
func (m *Memory) Session() *Session { return &Session{b: m} }

func (m *Memory) listAssets(context.Context) ([]fintrack.Asset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	assets := make([]fintrack.Asset, 0, len(m.assets))
	for _, a := range m.assets {
		if a.LastQuote != nil {
			q := *a.LastQuote
			a.LastQuote = &q
		}
		assets = append(assets, a)
	}
	slices.SortFunc(assets, func(a, b fintrack.Asset) int {
		return cmp.Or(cmp.Compare(a.Symbol, b.Symbol), cmp.Compare(a.ID, b.ID))
	})
	return assets, nil
}

func (m *Memory) listTransactions(context.Context) ([]fintrack.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	txs := slices.Collect(maps.Values(m.txs))
	slices.SortFunc(txs, func(a, b fintrack.Transaction) int {
		return cmp.Or(a.Time.Compare(b.Time), cmp.Compare(a.ID, b.ID))
	})
	return txs, nil
}

func (m *Memory) findFXRate(_ context.Context, pair fintrack.Pair) (fintrack.FXRate, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rates[pair]
	return r, ok, nil
}

func (m *Memory) settings(context.Context) (fintrack.Settings, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return fintrack.Settings{}, false, nil
	}
	return *m.current, true, nil
}

// apply works on copies and swaps them in only if every op succeeded.
func (m *Memory) apply(ctx context.Context, ops []op) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	assets := maps.Clone(m.assets)
	txs := maps.Clone(m.txs)
	rates := maps.Clone(m.rates)
	settings := m.current

	for _, o := range ops {
		if o.deleteAsset != "" {
			delete(assets, o.deleteAsset)
			for id, tx := range txs {
				if tx.AssetID == o.deleteAsset {
					delete(txs, id)
				}
			}
			continue
		}
		switch e := o.entity.(type) {
		case fintrack.Asset:
			assets[e.ID] = e
		case fintrack.PriceUpdate:
			a, ok := assets[e.AssetID]
			if !ok {
				continue // deleted meanwhile
			}
			q := e.Quote
			a.LastQuote = &q
			assets[e.AssetID] = a
		case fintrack.Transaction:
			if _, ok := assets[e.AssetID]; !ok {
				return fmt.Errorf("%w: asset %q of transaction %q", fintrack.ErrNotFound, e.AssetID, e.ID)
			}
			txs[e.ID] = e
		case fintrack.FXRate:
			if old, ok := rates[e.Pair]; ok {
				e.ID = old.ID
			} else if e.ID == "" {
				e.ID = uuid.NewString()
			}
			rates[e.Pair] = e
		case fintrack.Settings:
			e.ID = fintrack.SettingsID
			settings = &e
		default:
			return fmt.Errorf("%w: unsupported entity %T", fintrack.ErrInvalid, o.entity)
		}
	}
	m.assets, m.txs, m.rates, m.current = assets, txs, rates, settings
	return nil
}
