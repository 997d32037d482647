// Package fintrack tracks a personal portfolio of heterogeneous instruments
// priced in Turkish lira and US dollars.
//
// The package holds the domain model and the stateless engines built on it:
//   - Assets, transactions, FX rates and settings, the records a Store
//     persists.
//   - Quotes and the PriceSource / RateSource contracts implemented by the
//     provider packages (gfinance, tefas, coingecko, frankfurter) and by
//     FixedDeposit.
//   - The position engine, folding a time-ordered list of transactions into
//     quantity, cost basis and average cost.
//   - The valuation aggregator, converting every holding into a single
//     reporting currency and summing value, cost and profit.
//   - Ledger import and export as JSONL, one record per line.
//
// Amounts are shopspring decimals end to end. This package serves as the
// foundational logic for the `ftr` command-line tool and its HTTP API.
package fintrack
