// Package account implements the account model (component F): the
// aggregate that owns wallet balance and a position manager, enforces the
// wallet/margin invariants, and applies trades to realise P&L.
package account

import (
	"github.com/shopspring/decimal"

	"github.com/monkbacktest/engine/instrument"
	"github.com/monkbacktest/engine/order"
	"github.com/monkbacktest/engine/position"
)

// OrderSource is the slice of the exchange an account needs to compute
// order_margin: every currently-open order, regardless of which instrument
// it targets. The spec runs exactly one account per simulated exchange, so
// every open order on the exchange belongs to this account.
type OrderSource interface {
	OpenOrders() []*order.Order
}

// Account aggregates positions for one exchange. WalletBalance is realised
// cash; everything else (position_margin, order_margin, unrealised_pnl,
// margin_balance, available_balance) is derived on read, never cached,
// since they all depend on the live last price and open-order book.
type Account struct {
	WalletBalance decimal.Decimal

	Positions *position.Manager[*position.FutureCrossIsolatePosition]
	exchange  OrderSource
}

// New returns an account with the given starting wallet balance, wired to
// exchange for open-order lookups. Positions are created lazily, flat and
// cross-margined, the first time an instrument is referenced.
func New(startingBalance decimal.Decimal, exchange OrderSource) *Account {
	a := &Account{WalletBalance: startingBalance, exchange: exchange}
	a.Positions = position.NewManager(func(inst *instrument.Instrument) *position.FutureCrossIsolatePosition {
		return position.NewFutureCrossIsolatePosition(inst, a)
	})
	return a
}

// AvailableBalance satisfies position.AccountView: positions read this to
// compute cross maintenance margin and to bound isolated margin requests.
// It is also the account's own headline invariant:
//
//	available_balance = margin_balance − position_margin − order_margin
func (a *Account) AvailableBalance() decimal.Decimal {
	return a.MarginBalance().Sub(a.PositionMargin()).Sub(a.OrderMargin())
}

// UnrealisedPnL sums every known position's unrealised P&L.
func (a *Account) UnrealisedPnL() decimal.Decimal {
	total := decimal.Zero
	for _, p := range a.Positions.All() {
		total = total.Add(p.UnrealisedPnL())
	}
	return total
}

// MarginBalance is realised wallet balance plus unrealised P&L.
func (a *Account) MarginBalance() decimal.Decimal {
	return a.WalletBalance.Add(a.UnrealisedPnL())
}

// PositionMargin sums every known position's margin contribution (the
// cross formula's market_value-scaled reservation, or the isolated fixed
// allocation).
func (a *Account) PositionMargin() decimal.Decimal {
	total := decimal.Zero
	for _, p := range a.Positions.All() {
		total = total.Add(p.PositionMargin())
	}
	return total
}
