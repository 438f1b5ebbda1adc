// Package order implements the order and trade records (component D):
// immutable trade facts and the mutable order state machine.
package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/monkbacktest/engine/decimalx"
	"github.com/monkbacktest/engine/instrument"
	"github.com/monkbacktest/engine/simerrors"
)

// Side is the order's buy/sell side. It must agree with the sign of
// Quantity (Buy implies positive, Sell implies negative) — the two are
// kept as separate fields because the wire format the exchange speaks to
// (and the source this was distilled from) carries both explicitly.
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// Direction is long if a signed quantity is positive, short otherwise.
type Direction string

const (
	Long  Direction = "long"
	Short Direction = "short"
)

// DirectionOf derives a Direction from a signed quantity.
func DirectionOf(qty decimal.Decimal) Direction {
	if qty.IsNegative() {
		return Short
	}
	return Long
}

// Type is the order's execution style.
type Type string

const (
	Market     Type = "market"
	Limit      Type = "limit"
	StopMarket Type = "stop-market"
	StopLimit  Type = "stop-limit"
)

// Status is the order lifecycle state (spec.md §4.D):
//
//	NEW → (optional) TRIGGERED → PARTIAL → FILLED
//	NEW → CANCELLED
//	NEW → REJECTED
type Status string

const (
	StatusNew       Status = "new"
	StatusTriggered Status = "triggered"
	StatusPartial   Status = "partial"
	StatusFilled    Status = "filled"
	StatusCancelled Status = "cancelled"
	StatusRejected  Status = "rejected"
)

// terminal reports whether a status accepts no further transitions.
func (s Status) terminal() bool {
	return s == StatusFilled || s == StatusCancelled || s == StatusRejected
}

// Order is a mutable record tracking one order's lifecycle. OrderID is
// unique within a simulation run.
type Order struct {
	OrderID    string
	Instrument *instrument.Instrument
	Side       Side
	Type       Type
	Quantity   decimal.Decimal // signed: positive = buy, negative = sell
	Price      decimal.Decimal // zero/unset for market orders
	StopPrice  decimal.Decimal // trigger price for stop orders, zero otherwise
	CreatedAt  time.Time
	Status     Status

	filled decimal.Decimal // signed, same sign convention as Quantity
}

// New constructs an order in StatusNew. Side is derived from the sign of
// qty if not explicitly distinguishable (callers normally pass a qty whose
// sign already matches the intended side).
func New(id string, inst *instrument.Instrument, typ Type, qty, price, stopPrice decimal.Decimal, createdAt time.Time) *Order {
	side := Buy
	if qty.IsNegative() {
		side = Sell
	}
	return &Order{
		OrderID:    id,
		Instrument: inst,
		Side:       side,
		Type:       typ,
		Quantity:   qty,
		Price:      price,
		StopPrice:  stopPrice,
		CreatedAt:  createdAt,
		Status:     StatusNew,
	}
}

// Direction reports Long if Quantity > 0, Short otherwise.
func (o *Order) Direction() Direction {
	return DirectionOf(o.Quantity)
}

// RemainQuantity is Quantity minus what has already filled, signed.
func (o *Order) RemainQuantity() decimal.Decimal {
	return o.Quantity.Sub(o.filled)
}

// RemainValue is |RemainQuantity| × Price, the open notional still resting.
// Zero for market orders (no fixed price to value the remainder at).
func (o *Order) RemainValue() decimal.Decimal {
	return decimalx.Abs(o.RemainQuantity()).Mul(o.Price)
}

// IsStop reports whether this order type requires a trigger before it can
// be matched as a market/limit order.
func (o *Order) IsStop() bool {
	return o.Type == StopMarket || o.Type == StopLimit
}

// Trigger transitions a resting stop order to TRIGGERED once the reference
// price crosses StopPrice.
func (o *Order) Trigger() error {
	if o.Status != StatusNew {
		return simerrors.Newf(simerrors.SettingError, "order %s: cannot trigger from status %s", o.OrderID, o.Status)
	}
	o.Status = StatusTriggered
	return nil
}

// Reject transitions NEW (or TRIGGERED, for a stop-market that failed to
// match) to REJECTED — used when a market order finds no price to fill
// against.
func (o *Order) Reject() {
	o.Status = StatusRejected
}

// ApplyFill records a fill of the given signed quantity (same sign as
// Quantity) and transitions to PARTIAL or FILLED.
func (o *Order) ApplyFill(qty decimal.Decimal) {
	o.filled = o.filled.Add(qty)
	if o.RemainQuantity().IsZero() {
		o.Status = StatusFilled
	} else {
		o.Status = StatusPartial
	}
}

// Cancel transitions NEW or PARTIAL to CANCELLED. Terminal statuses (FILLED,
// REJECTED, CANCELLED) cannot be cancelled.
func (o *Order) Cancel() error {
	if o.Status.terminal() {
		return simerrors.Newf(simerrors.OrderNotCancellable, "order %s is in terminal status %s", o.OrderID, o.Status)
	}
	o.Status = StatusCancelled
	return nil
}

// Open reports whether the order still rests in the book (NEW, TRIGGERED or
// PARTIAL).
func (o *Order) Open() bool {
	return o.Status == StatusNew || o.Status == StatusTriggered || o.Status == StatusPartial
}
