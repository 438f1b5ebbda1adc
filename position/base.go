// Package position implements the per-(account, instrument) position model
// (component E): plain and futures base positions, cross and isolated
// margin modes, and the manager that lazily owns one position per
// instrument.
package position

import (
	"github.com/shopspring/decimal"

	"github.com/monkbacktest/engine/decimalx"
	"github.com/monkbacktest/engine/instrument"
	"github.com/monkbacktest/engine/order"
)

// AccountView is the slice of Account a position needs to compute its own
// margin: how much free equity backs it. Positions hold this as a
// non-owning back-reference rather than importing the account package
// directly, which would create an import cycle (account owns positions).
type AccountView interface {
	AvailableBalance() decimal.Decimal
}

// BasePosition is the plain position model for non-derivative instruments:
// it tracks only signed quantity and average open price, updated by the
// open-price rule in ApplyTrade.
type BasePosition struct {
	Instrument *instrument.Instrument
	Quantity   decimal.Decimal
	OpenPrice  decimal.Decimal
}

// NewBasePosition returns a flat (zero quantity) position on inst.
func NewBasePosition(inst *instrument.Instrument) *BasePosition {
	return &BasePosition{Instrument: inst}
}

// Direction reports Long if Quantity > 0, Short otherwise. A flat position
// reports Long by convention (DirectionOf treats zero as non-negative).
func (p *BasePosition) Direction() order.Direction {
	return order.DirectionOf(p.Quantity)
}

// PositionEffect reports the Effect applying a trade of tradeQty would have,
// without mutating the position.
func (p *BasePosition) PositionEffect(tradeQty decimal.Decimal) Effect {
	return Classify(p.Quantity, tradeQty)
}

// ApplyTrade updates Quantity and OpenPrice per the trade's Effect and
// returns which Effect applied. tradePrice is ignored for Close.
func (p *BasePosition) ApplyTrade(tradeQty, tradePrice decimal.Decimal) Effect {
	effect := Classify(p.Quantity, tradeQty)
	switch effect {
	case Open, GetMore:
		p.OpenPrice = decimalx.WeightedAverage(p.Quantity, p.OpenPrice, tradeQty, tradePrice)
		p.Quantity = p.Quantity.Add(tradeQty)
	case ClosePart:
		p.Quantity = p.Quantity.Add(tradeQty)
	case Close:
		p.Quantity = decimal.Zero
		p.OpenPrice = decimal.Zero
	case CloseAndOpen:
		p.Quantity = p.Quantity.Add(tradeQty)
		p.OpenPrice = tradePrice
	}
	return effect
}
