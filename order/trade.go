package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade is an immutable execution fact. ExecQuantity's sign matches the
// originating order's side, so accounting can add it directly to a
// position's signed quantity.
type Trade struct {
	TradeID      string
	Order        *Order
	ExecPrice    decimal.Decimal
	ExecQuantity decimal.Decimal // signed
	Commission   decimal.Decimal
	Timestamp    time.Time
}

// NewTrade builds a Trade and immediately applies it to the order's fill
// state.
func NewTrade(id string, o *Order, execPrice, execQuantity, commission decimal.Decimal, at time.Time) *Trade {
	t := &Trade{
		TradeID:      id,
		Order:        o,
		ExecPrice:    execPrice,
		ExecQuantity: execQuantity,
		Commission:   commission,
		Timestamp:    at,
	}
	o.ApplyFill(execQuantity)
	return t
}

// AvgPrice returns the trade's execution price — a trade is a single fill,
// so its average price is just ExecPrice; the name matches the concept
// used when aggregating across a position's trade history.
func (t *Trade) AvgPrice() decimal.Decimal {
	return t.ExecPrice
}
