// Package instrument implements the contract metadata registry (component B):
// typed, read-only instrument records classified into perpetual, fixed-expiry
// future, and upside/downside exotic variants, loaded once from a static
// snapshot.
package instrument

import (
	"time"

	"github.com/shopspring/decimal"
)

// Variant classifies an instrument by payoff shape.
type Variant string

const (
	Perpetual Variant = "perpetual"
	Future    Variant = "future"
	Upside    Variant = "upside"
	Downside  Variant = "downside"
)

// LastPriceSource resolves the current last price for an instrument. The
// exchange implements this; instruments hold a non-owning back-reference to
// it so derived values like Instrument.LastPrice can be read without the
// registry owning the exchange.
type LastPriceSource interface {
	GetLastPrice(symbol string) decimal.Decimal
}

// Instrument is immutable contract metadata. It is created once when the
// registry loads and thereafter only read; positions, orders and trades
// reference it, they never own or mutate it.
type Instrument struct {
	Symbol          string
	Variant         Variant
	Underlying      string
	QuoteCurrency   string
	SettleCurrency  string
	LotSize         decimal.Decimal
	TickSize        decimal.Decimal
	MakerFee        decimal.Decimal
	TakerFee        decimal.Decimal
	InitMarginRate  decimal.Decimal
	MaintMarginRate decimal.Decimal
	SettlementFee   decimal.Decimal
	ReferenceSymbol string
	Deleverage      bool

	// Absent (zero time) for perpetuals.
	Listing time.Time
	Front   time.Time
	Expiry  time.Time
	Settle  time.Time

	exchange LastPriceSource
}

// BindExchange attaches the exchange used to resolve LastPrice. Called once
// by the registry/exchange wiring at simulation setup.
func (i *Instrument) BindExchange(ex LastPriceSource) {
	i.exchange = ex
}

// LastPrice returns the most recently observed price for this instrument,
// or zero if the exchange has none yet (e.g. before the first tick).
func (i *Instrument) LastPrice() decimal.Decimal {
	if i.exchange == nil {
		return decimal.Zero
	}
	return i.exchange.GetLastPrice(i.Symbol)
}

// HasExpiry reports whether this variant carries a fixed expiry/settlement
// schedule (Future, Upside, Downside) as opposed to Perpetual.
func (i *Instrument) HasExpiry() bool {
	return i.Variant != Perpetual
}
