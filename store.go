package fintrack

import "context"

// Entity is a record a Store can insert or update.
type Entity interface {
	entity()
}

func (Asset) entity()       {}
func (Transaction) entity() {}
func (FXRate) entity()      {}
func (Settings) entity()    {}
func (PriceUpdate) entity() {}

// PriceUpdate replaces the cached quote of an asset and nothing else, so that
// a refresh never overwrites metadata edited in the meantime.
type PriceUpdate struct {
	AssetID string
	Quote   Quote
}

// Store is the persistence collaborator of the refresh loop. Writes are
// staged by Put and become visible atomically on Commit.
type Store interface {
	ListAssets(ctx context.Context) ([]Asset, error)
	// FindFXRate returns the record for pair and whether it exists.
	FindFXRate(ctx context.Context, pair Pair) (FXRate, bool, error)
	Put(ctx context.Context, e Entity) error
	Commit(ctx context.Context) error
	// Rollback drops the writes staged since the last commit.
	Rollback()
}

// Ledger is the read side used to build reports.
type Ledger interface {
	ListAssets(ctx context.Context) ([]Asset, error)
	ListTransactions(ctx context.Context) ([]Transaction, error)
	FindFXRate(ctx context.Context, pair Pair) (FXRate, bool, error)
	// Settings returns the singleton, creating the default on first access.
	Settings(ctx context.Context) (Settings, error)
}
