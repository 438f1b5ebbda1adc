// Package marketdata implements the data loader (component C): answering
// "last price at time T" and "k-line window ending at T" queries against
// on-disk, table-per-symbol OHLCV storage. Storage is read-only during a
// simulation.
package marketdata

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bar is one OHLCV candle. Timestamp is the bar's close time, UTC, aligned
// to the loader's bar frequency.
type Bar struct {
	Timestamp time.Time
	Open      decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Close     decimal.Decimal
	Volume    decimal.Decimal
	Turnover  decimal.Decimal
}

// Loader answers the two queries the simulated exchange needs from
// historical market data.
type Loader interface {
	// GetLastPrice returns the close of the most recent bar strictly
	// preceding at for symbol, or zero if none exists (before listing or
	// after the data's end) — callers treat zero as "no market".
	GetLastPrice(symbol string, at time.Time) decimal.Decimal

	// GetKline returns up to count bars for symbol whose close is <= endingAt,
	// in chronological order.
	GetKline(symbol string, count int, endingAt time.Time) []Bar
}
