// Package strategy implements the strategy adapter (component I): the
// four-callback interface user programs implement, and the Context each
// callback observes a consistent snapshot of "now" and account state
// through.
package strategy

import (
	"time"

	"github.com/monkbacktest/engine/account"
	"github.com/monkbacktest/engine/exchange"
	"github.com/monkbacktest/engine/order"
	"github.com/monkbacktest/engine/position"
)

// Context is handed to every callback. It is mutated in place by the
// engine between ticks rather than reconstructed, but a callback only ever
// observes it mid-call, never concurrently with the engine advancing it —
// the single-threaded contract spec.md §4.I requires.
type Context struct {
	Now      time.Time
	Exchange *exchange.SimExchange
}

// Account is a convenience accessor for the exchange's one account.
func (c *Context) Account() *account.Account {
	return c.Exchange.GetAccount()
}

// Strategy is the interface a user-provided trading program implements.
// The engine invokes these callbacks in a single logical thread, in the
// order spec.md §5 describes, and never reenters a callback while another
// is in progress.
type Strategy interface {
	// Setup runs once before the first tick.
	Setup(ctx *Context) error
	// Tick runs once per time-driver instant, after trades for that
	// instant have been applied and on_trade has fired for each.
	Tick(ctx *Context) error
	// OnTrade runs once per fill against one of this strategy's orders,
	// in emission order. Fills of resting orders fire it before Tick runs
	// for that same instant; a market order placed from inside a callback
	// fires it before PlaceMarketOrder returns.
	OnTrade(ctx *Context, trade *order.Trade, effect position.Effect) error
	// HandleBar runs at each new bar boundary.
	HandleBar(ctx *Context) error
}
