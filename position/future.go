package position

import (
	"github.com/shopspring/decimal"

	"github.com/monkbacktest/engine/decimalx"
	"github.com/monkbacktest/engine/instrument"
)

var two = decimal.NewFromInt(2)

// FutureBasePosition adds the derived quantities common to every futures
// margin mode on top of BasePosition: market/open value, unrealised P&L,
// and the initial/maintenance margin figures at both the open and last
// price. None of these need an account reference — only the margin-mode
// types (CrossPosition, IsolatedPosition, FutureCrossIsolatePosition) do.
type FutureBasePosition struct {
	BasePosition
}

// NewFutureBasePosition returns a flat futures position on inst.
func NewFutureBasePosition(inst *instrument.Instrument) *FutureBasePosition {
	return &FutureBasePosition{BasePosition: BasePosition{Instrument: inst}}
}

// LastPrice is the instrument's most recently observed price.
func (p *FutureBasePosition) LastPrice() decimal.Decimal {
	return p.Instrument.LastPrice()
}

// MarketValue is |quantity| × last price.
func (p *FutureBasePosition) MarketValue() decimal.Decimal {
	return decimalx.Abs(p.Quantity).Mul(p.LastPrice())
}

// OpenValue is |quantity| × open price.
func (p *FutureBasePosition) OpenValue() decimal.Decimal {
	return decimalx.Abs(p.Quantity).Mul(p.OpenPrice)
}

// UnrealisedPnL is quantity × (last − open), less taker fees charged on
// both the position's entry and its hypothetical exit at the last price.
// The formula is sign-symmetric: it needs no long/short branch, since a
// short quantity is negative and (last − open) flips sign with it.
func (p *FutureBasePosition) UnrealisedPnL() decimal.Decimal {
	pnl := p.Quantity.Mul(p.LastPrice().Sub(p.OpenPrice))
	fees := two.Mul(p.Instrument.TakerFee).Mul(p.MarketValue())
	return pnl.Sub(fees)
}

// OpenInitMargin is the initial margin required at the position's open
// price and quantity.
func (p *FutureBasePosition) OpenInitMargin() decimal.Decimal {
	return p.Instrument.InitMarginRate.Mul(p.OpenValue())
}

// LastInitMargin is the initial margin required at the current market
// value.
func (p *FutureBasePosition) LastInitMargin() decimal.Decimal {
	return p.Instrument.InitMarginRate.Mul(p.MarketValue())
}

// MinOpenMaintMargin is the minimum maintenance margin at the open value.
func (p *FutureBasePosition) MinOpenMaintMargin() decimal.Decimal {
	return p.Instrument.MaintMarginRate.Mul(p.OpenValue())
}

// MinLastMaintMargin is the minimum maintenance margin at the current
// market value — the threshold a position's actual maintenance margin must
// stay above to avoid liquidation.
func (p *FutureBasePosition) MinLastMaintMargin() decimal.Decimal {
	return p.Instrument.MaintMarginRate.Mul(p.MarketValue())
}
