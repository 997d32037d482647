package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/etnz/fintrack"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS assets (
		id TEXT PRIMARY KEY,
		symbol TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		kind TEXT NOT NULL,
		currency TEXT NOT NULL,
		provider_symbol TEXT NOT NULL DEFAULT '',
		provider_hint TEXT NOT NULL DEFAULT '',
		quote_symbol TEXT,
		quote_price TEXT,
		quote_currency TEXT,
		quote_updated_at INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		asset_id TEXT NOT NULL REFERENCES assets(id) ON DELETE CASCADE,
		kind TEXT NOT NULL,
		quantity TEXT NOT NULL,
		price TEXT NOT NULL,
		fees TEXT NOT NULL DEFAULT '0',
		time INTEGER NOT NULL,
		note TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_asset ON transactions(asset_id, time)`,
	`CREATE TABLE IF NOT EXISTS fx_rates (
		id TEXT PRIMARY KEY,
		base TEXT NOT NULL,
		quote TEXT NOT NULL,
		rate TEXT NOT NULL,
		updated_at INTEGER NOT NULL,
		UNIQUE(base, quote)
	)`,
	`CREATE TABLE IF NOT EXISTS settings (
		id TEXT PRIMARY KEY,
		reporting_currency TEXT NOT NULL
	)`,
}

// SQLite is a backend in a SQLite database file. Decimals are stored as TEXT
// to keep them exact, times as unix nanoseconds.
type SQLite struct {
	db         *sql.DB
	sqlBuilder sq.StatementBuilderType
}

// OpenSQLite opens (creating if needed) the database at path and migrates its schema.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	connStr := path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	// a single writer avoids SQLITE_BUSY between our own connections
	db.SetMaxOpenConns(1)
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to migrate %s: %w", path, err)
		}
	}
	return &SQLite{db: db, sqlBuilder: sq.StatementBuilder.PlaceholderFormat(sq.Question)}, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

// Session opens a unit of work on s.
func (s *SQLite) Session() *Session { return &Session{b: s} }

func (s *SQLite) listAssets(ctx context.Context) ([]fintrack.Asset, error) {
	query, args, err := s.sqlBuilder.
		Select("id", "symbol", "name", "kind", "currency", "provider_symbol", "provider_hint",
			"quote_symbol", "quote_price", "quote_currency", "quote_updated_at").
		From("assets").
		OrderBy("symbol", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build listAssets query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("exec listAssets query: %w", err)
	}
	defer rows.Close()

	var assets []fintrack.Asset
	for rows.Next() {
		var (
			a                  fintrack.Asset
			qSymbol, qCurrency sql.NullString
			qPrice             decimal.NullDecimal
			qUpdatedAt         sql.NullInt64
		)
		if err := rows.Scan(&a.ID, &a.Symbol, &a.Name, &a.Kind, &a.Currency, &a.ProviderSymbol, &a.ProviderHint,
			&qSymbol, &qPrice, &qCurrency, &qUpdatedAt); err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		if qPrice.Valid {
			a.LastQuote = &fintrack.Quote{
				Symbol:    qSymbol.String,
				Price:     qPrice.Decimal,
				Currency:  fintrack.Currency(qCurrency.String),
				UpdatedAt: time.Unix(0, qUpdatedAt.Int64),
			}
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

func (s *SQLite) listTransactions(ctx context.Context) ([]fintrack.Transaction, error) {
	query, args, err := s.sqlBuilder.
		Select("id", "asset_id", "kind", "quantity", "price", "fees", "time", "note").
		From("transactions").
		OrderBy("time", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build listTransactions query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("exec listTransactions query: %w", err)
	}
	defer rows.Close()

	var txs []fintrack.Transaction
	for rows.Next() {
		var (
			tx fintrack.Transaction
			at int64
		)
		if err := rows.Scan(&tx.ID, &tx.AssetID, &tx.Kind, &tx.Quantity, &tx.Price, &tx.Fees, &at, &tx.Note); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Time = time.Unix(0, at)
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func (s *SQLite) findFXRate(ctx context.Context, pair fintrack.Pair) (fintrack.FXRate, bool, error) {
	query, args, err := s.sqlBuilder.
		Select("id", "rate", "updated_at").
		From("fx_rates").
		Where(sq.Eq{"base": string(pair.Base), "quote": string(pair.Quote)}).
		Limit(1).
		ToSql()
	if err != nil {
		return fintrack.FXRate{}, false, fmt.Errorf("build findFXRate query: %w", err)
	}
	r := fintrack.FXRate{Pair: pair}
	var at int64
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&r.ID, &r.Rate, &at)
	if errors.Is(err, sql.ErrNoRows) {
		return fintrack.FXRate{}, false, nil
	}
	if err != nil {
		return fintrack.FXRate{}, false, fmt.Errorf("exec findFXRate query: %w", err)
	}
	r.UpdatedAt = time.Unix(0, at)
	return r, true, nil
}

func (s *SQLite) settings(ctx context.Context) (fintrack.Settings, bool, error) {
	query, args, err := s.sqlBuilder.
		Select("id", "reporting_currency").
		From("settings").
		Where(sq.Eq{"id": fintrack.SettingsID}).
		ToSql()
	if err != nil {
		return fintrack.Settings{}, false, fmt.Errorf("build settings query: %w", err)
	}
	var st fintrack.Settings
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&st.ID, &st.ReportingCurrency)
	if errors.Is(err, sql.ErrNoRows) {
		return fintrack.Settings{}, false, nil
	}
	if err != nil {
		return fintrack.Settings{}, false, fmt.Errorf("exec settings query: %w", err)
	}
	return st, true, nil
}

// apply runs ops in a single SQL transaction.
func (s *SQLite) apply(ctx context.Context, ops []op) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, o := range ops {
		var builder sq.Sqlizer
		var extra sq.Sqlizer
		if o.deleteAsset != "" {
			// the foreign key cascades, deleting explicitly keeps it working
			// on connections opened without foreign_keys
			builder = s.sqlBuilder.Delete("transactions").Where(sq.Eq{"asset_id": o.deleteAsset})
			extra = s.sqlBuilder.Delete("assets").Where(sq.Eq{"id": o.deleteAsset})
		} else {
			builder, err = s.upsert(o.entity)
			if err != nil {
				return err
			}
		}
		for _, b := range []sq.Sqlizer{builder, extra} {
			if b == nil {
				continue
			}
			query, args, err := b.ToSql()
			if err != nil {
				return fmt.Errorf("build query: %w", err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("exec %T: %w", o.entity, err)
			}
		}
	}
	return tx.Commit()
}

func (s *SQLite) upsert(e fintrack.Entity) (sq.Sqlizer, error) {
	switch v := e.(type) {
	case fintrack.Asset:
		var qSymbol, qCurrency sql.NullString
		var qPrice decimal.NullDecimal
		var qUpdatedAt sql.NullInt64
		if q := v.LastQuote; q != nil {
			qSymbol = sql.NullString{String: q.Symbol, Valid: true}
			qPrice = decimal.NullDecimal{Decimal: q.Price, Valid: true}
			qCurrency = sql.NullString{String: string(q.Currency), Valid: true}
			qUpdatedAt = sql.NullInt64{Int64: q.UpdatedAt.UnixNano(), Valid: true}
		}
		return s.sqlBuilder.
			Insert("assets").
			Columns("id", "symbol", "name", "kind", "currency", "provider_symbol", "provider_hint",
				"quote_symbol", "quote_price", "quote_currency", "quote_updated_at").
			Values(v.ID, v.Symbol, v.Name, string(v.Kind), string(v.Currency), v.ProviderSymbol, v.ProviderHint,
				qSymbol, qPrice, qCurrency, qUpdatedAt).
			Suffix(`ON CONFLICT(id) DO UPDATE SET
				symbol = excluded.symbol, name = excluded.name, kind = excluded.kind,
				currency = excluded.currency, provider_symbol = excluded.provider_symbol,
				provider_hint = excluded.provider_hint, quote_symbol = excluded.quote_symbol,
				quote_price = excluded.quote_price, quote_currency = excluded.quote_currency,
				quote_updated_at = excluded.quote_updated_at`), nil
	case fintrack.PriceUpdate:
		return s.sqlBuilder.
			Update("assets").
			Set("quote_symbol", v.Quote.Symbol).
			Set("quote_price", v.Quote.Price).
			Set("quote_currency", string(v.Quote.Currency)).
			Set("quote_updated_at", v.Quote.UpdatedAt.UnixNano()).
			Where(sq.Eq{"id": v.AssetID}), nil
	case fintrack.Transaction:
		return s.sqlBuilder.
			Insert("transactions").
			Columns("id", "asset_id", "kind", "quantity", "price", "fees", "time", "note").
			Values(v.ID, v.AssetID, string(v.Kind), v.Quantity, v.Price, v.Fees, v.Time.UnixNano(), v.Note).
			Suffix(`ON CONFLICT(id) DO UPDATE SET
				asset_id = excluded.asset_id, kind = excluded.kind, quantity = excluded.quantity,
				price = excluded.price, fees = excluded.fees, time = excluded.time, note = excluded.note`), nil
	case fintrack.FXRate:
		id := v.ID
		if id == "" {
			id = uuid.NewString()
		}
		return s.sqlBuilder.
			Insert("fx_rates").
			Columns("id", "base", "quote", "rate", "updated_at").
			Values(id, string(v.Pair.Base), string(v.Pair.Quote), v.Rate, v.UpdatedAt.UnixNano()).
			Suffix(`ON CONFLICT(base, quote) DO UPDATE SET rate = excluded.rate, updated_at = excluded.updated_at`), nil
	case fintrack.Settings:
		return s.sqlBuilder.
			Insert("settings").
			Columns("id", "reporting_currency").
			Values(fintrack.SettingsID, string(v.ReportingCurrency)).
			Suffix(`ON CONFLICT(id) DO UPDATE SET reporting_currency = excluded.reporting_currency`), nil
	}
	return nil, fmt.Errorf("%w: unsupported entity %T", fintrack.ErrInvalid, e)
}
