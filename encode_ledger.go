package fintrack

import (
	"bufio"
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// CommandType identifies the record held by a ledger line.
type CommandType string

const (
	CmdAsset CommandType = "asset"
	CmdTx    CommandType = "tx"
)

type assetCmd struct {
	Command CommandType `json:"command"`
	Asset
}

type txCmd struct {
	Command CommandType `json:"command"`
	Transaction
}

// EncodeLedger writes assets then transactions as JSONL, one record per line.
// Assets are sorted by symbol and transactions by time.
func EncodeLedger(w io.Writer, assets []Asset, txs []Transaction) error {
	assets = slices.Clone(assets)
	slices.SortStableFunc(assets, func(a, b Asset) int { return cmp.Compare(a.Symbol, b.Symbol) })
	txs = slices.Clone(txs)
	slices.SortStableFunc(txs, func(a, b Transaction) int { return a.Time.Compare(b.Time) })

	enc := json.NewEncoder(w)
	for _, a := range assets {
		if err := enc.Encode(assetCmd{Command: CmdAsset, Asset: a}); err != nil {
			return fmt.Errorf("cannot encode asset %q: %w", a.Symbol, err)
		}
	}
	for _, tx := range txs {
		if err := enc.Encode(txCmd{Command: CmdTx, Transaction: tx}); err != nil {
			return fmt.Errorf("cannot encode transaction %q: %w", tx.ID, err)
		}
	}
	return nil
}

// DecodeLedger reads a JSONL ledger written by EncodeLedger, or by hand.
//
// Missing ids are generated, a missing asset currency defaults to its kind's,
// and a transaction may reference its asset by id or by symbol. Every invalid
// record is reported in the returned error.
func DecodeLedger(r io.Reader) ([]Asset, []Transaction, error) {
	var (
		assets []Asset
		txs    []Transaction
		errs   []error
	)
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue // Skip empty lines
		}

		var identifier struct {
			Command CommandType `json:"command"`
		}
		if err := json.Unmarshal(lineBytes, &identifier); err != nil {
			return nil, nil, fmt.Errorf("line %d: could not identify command: %w", line, err)
		}

		switch identifier.Command {
		case CmdAsset:
			var cmd assetCmd
			if err := json.Unmarshal(lineBytes, &cmd); err != nil {
				return nil, nil, fmt.Errorf("line %d: %w", line, err)
			}
			a := cmd.Asset
			if a.ID == "" {
				a.ID = uuid.NewString()
			}
			if a.Currency == "" {
				a.Currency = a.Kind.DefaultCurrency()
			}
			if err := a.Validate(); err != nil {
				errs = append(errs, fmt.Errorf("line %d: %w", line, err))
				continue
			}
			assets = append(assets, a)
		case CmdTx:
			var cmd txCmd
			if err := json.Unmarshal(lineBytes, &cmd); err != nil {
				return nil, nil, fmt.Errorf("line %d: %w", line, err)
			}
			tx := cmd.Transaction
			if tx.ID == "" {
				tx.ID = uuid.NewString()
			}
			txs = append(txs, tx)
		default:
			return nil, nil, fmt.Errorf("line %d: unknown ledger command: %q", line, identifier.Command)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("error reading from input: %w", err)
	}

	byID := make(map[string]string, len(assets))
	bySymbol := make(map[string]string, len(assets))
	for _, a := range assets {
		byID[a.ID] = a.ID
		bySymbol[a.Symbol] = a.ID
	}
	valid := txs[:0]
	for _, tx := range txs {
		if id, ok := byID[tx.AssetID]; ok {
			tx.AssetID = id
		} else if id, ok := bySymbol[tx.AssetID]; ok {
			tx.AssetID = id
		} else {
			errs = append(errs, fmt.Errorf("%w: transaction %q references unknown asset %q", ErrNotFound, tx.ID, tx.AssetID))
			continue
		}
		if err := tx.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		valid = append(valid, tx)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, nil, err
	}
	return assets, valid, nil
}
