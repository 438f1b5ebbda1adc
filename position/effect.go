package position

import "github.com/shopspring/decimal"

// Effect classifies the impact a trade has on a position's quantity.
type Effect string

const (
	Open         Effect = "open"
	GetMore      Effect = "get_more"
	ClosePart    Effect = "close_part"
	Close        Effect = "close"
	CloseAndOpen Effect = "close_and_open"
)

// Classify determines the Effect a trade of tradeQty would have on a
// position currently holding quantity, from the signs and relative
// magnitudes alone. It does not mutate anything — callers use it both to
// report position_effect ahead of applying a trade and internally from
// ApplyTrade.
func Classify(quantity, tradeQty decimal.Decimal) Effect {
	if quantity.IsZero() {
		return Open
	}
	sameSide := quantity.Sign() == tradeQty.Sign()
	if sameSide {
		return GetMore
	}
	newQty := quantity.Add(tradeQty)
	switch {
	case newQty.IsZero():
		return Close
	case newQty.Sign() == quantity.Sign():
		return ClosePart
	default:
		return CloseAndOpen
	}
}
