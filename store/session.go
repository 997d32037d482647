// Package store persists the ledger. A Session stages writes and applies them
// to a backend atomically on Commit. Two backends exist: Memory and SQLite.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/etnz/fintrack"
)

// op is a staged write: an entity to insert or update, or an asset to delete.
type op struct {
	entity      fintrack.Entity
	deleteAsset string
}

// backend is the committed state of a store.
type backend interface {
	listAssets(ctx context.Context) ([]fintrack.Asset, error)
	listTransactions(ctx context.Context) ([]fintrack.Transaction, error)
	findFXRate(ctx context.Context, pair fintrack.Pair) (fintrack.FXRate, bool, error)
	settings(ctx context.Context) (fintrack.Settings, bool, error)
	// apply performs all ops or none.
	apply(ctx context.Context, ops []op) error
}

// Session is a unit of work over a backend. Reads see committed state only.
// It implements fintrack.Store and fintrack.Ledger.
type Session struct {
	b       backend
	mu      sync.Mutex
	pending []op
}

var (
	_ fintrack.Store  = (*Session)(nil)
	_ fintrack.Ledger = (*Session)(nil)
)

func (s *Session) ListAssets(ctx context.Context) ([]fintrack.Asset, error) {
	assets, err := s.b.listAssets(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", fintrack.ErrStorage, err)
	}
	return assets, nil
}

func (s *Session) ListTransactions(ctx context.Context) ([]fintrack.Transaction, error) {
	txs, err := s.b.listTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", fintrack.ErrStorage, err)
	}
	return txs, nil
}

func (s *Session) FindFXRate(ctx context.Context, pair fintrack.Pair) (fintrack.FXRate, bool, error) {
	rate, ok, err := s.b.findFXRate(ctx, pair)
	if err != nil {
		return fintrack.FXRate{}, false, fmt.Errorf("%w: %w", fintrack.ErrStorage, err)
	}
	return rate, ok, nil
}

// Settings returns the settings, storing the defaults on first access.
func (s *Session) Settings(ctx context.Context) (fintrack.Settings, error) {
	st, ok, err := s.b.settings(ctx)
	if err != nil {
		return fintrack.Settings{}, fmt.Errorf("%w: %w", fintrack.ErrStorage, err)
	}
	if ok {
		return st, nil
	}
	st = fintrack.DefaultSettings()
	if err := s.b.apply(ctx, []op{{entity: st}}); err != nil {
		return fintrack.Settings{}, fmt.Errorf("%w: cannot create settings: %w", fintrack.ErrStorage, err)
	}
	return st, nil
}

// Put validates e and stages its insert or update.
func (s *Session) Put(_ context.Context, e fintrack.Entity) error {
	if err := fintrack.Validate(e); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, op{entity: e})
	return nil
}

// DeleteAsset stages the removal of an asset and all its transactions.
func (s *Session) DeleteAsset(_ context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: missing asset id", fintrack.ErrInvalid)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, op{deleteAsset: id})
	return nil
}

// Commit applies the staged writes atomically. On failure they stay staged.
func (s *Session) Commit(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return nil
	}
	if err := s.b.apply(ctx, s.pending); err != nil {
		return fmt.Errorf("%w: commit: %w", fintrack.ErrStorage, err)
	}
	s.pending = nil
	return nil
}

// Rollback drops the staged writes.
func (s *Session) Rollback() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
}

// Pending is the number of staged writes.
func (s *Session) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
