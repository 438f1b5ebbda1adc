// Package exchange implements the simulated exchange (component G): order
// placement and cancellation, last-price-driven matching against recorded
// market data, and the per-tick loop that drives trades into the account.
package exchange

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/monkbacktest/engine/account"
	"github.com/monkbacktest/engine/instrument"
	"github.com/monkbacktest/engine/marketdata"
	"github.com/monkbacktest/engine/order"
	"github.com/monkbacktest/engine/position"
	"github.com/monkbacktest/engine/simerrors"
)

// TickType selects how the exchange reads market data for matching: a
// single last-price observation, or the full intra-bar open/low/high/close
// sequence with the adversarial ordering spec.md §4.D requires.
type TickType string

const (
	TickTypeTick TickType = "tick"
	TickTypeBar  TickType = "bar"
)

// TradeListener is notified of every trade the exchange emits, in emission
// order, before the next trade is processed — this is how the strategy
// engine's on_trade callback gets wired without the exchange importing the
// strategy package.
type TradeListener func(trade *order.Trade, effect position.Effect)

// LiquidationListener is notified whenever a position is force-closed.
type LiquidationListener func(symbol string, liquidationPrice decimal.Decimal)

// SimExchange is the simulated exchange. One instance serves exactly one
// account, matching spec.md §3's "exactly one account per simulated
// exchange" invariant.
type SimExchange struct {
	mu sync.Mutex

	registry *instrument.Registry
	loader   marketdata.Loader
	account  *account.Account
	tickType TickType

	now time.Time

	orders    map[string]*order.Order
	lastPrice map[string]decimal.Decimal

	nextID atomic.Int64

	onTrade       TradeListener
	onLiquidation LiquidationListener
}

// New returns an exchange over registry/loader, with a fresh account
// funded at startingBalance. Call Setup before the first Tick.
func New(registry *instrument.Registry, loader marketdata.Loader, startingBalance decimal.Decimal) *SimExchange {
	ex := &SimExchange{
		registry:  registry,
		loader:    loader,
		orders:    make(map[string]*order.Order),
		lastPrice: make(map[string]decimal.Decimal),
		tickType:  TickTypeTick,
	}
	ex.account = account.New(startingBalance, ex)
	for _, inst := range registry.All() {
		inst.BindExchange(ex)
	}
	return ex
}

// Setup configures the matching mode and callbacks. Called once before the
// simulation starts driving ticks.
func (e *SimExchange) Setup(tickType TickType, onTrade TradeListener, onLiquidation LiquidationListener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickType = tickType
	e.onTrade = onTrade
	e.onLiquidation = onLiquidation
}

// GetAccount returns the exchange's account.
func (e *SimExchange) GetAccount() *account.Account {
	return e.account
}

// AvailableInstruments returns every instrument this exchange knows about.
func (e *SimExchange) AvailableInstruments() []*instrument.Instrument {
	return e.registry.All()
}

// GetLastPrice implements instrument.LastPriceSource and
// account.OrderSource's companion lookup: the most recent price this
// exchange has observed for symbol, or zero before the first tick that
// touched it.
func (e *SimExchange) GetLastPrice(symbol string) decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastPrice[symbol]
}

// OpenOrders implements account.OrderSource.
func (e *SimExchange) OpenOrders() []*order.Order {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*order.Order, 0, len(e.orders))
	for _, o := range e.orders {
		if o.Open() {
			out = append(out, o)
		}
	}
	return out
}

func (e *SimExchange) nextOrderID() string {
	return fmt.Sprintf("ORD-%d", e.nextID.Add(1))
}

func (e *SimExchange) nextTradeID() string {
	return fmt.Sprintf("TRD-%d", e.nextID.Add(1))
}

// PlaceLimitOrder places a resting limit order. qty is signed (positive
// buy, negative sell).
func (e *SimExchange) PlaceLimitOrder(symbol string, qty, price decimal.Decimal) (*order.Order, error) {
	return e.place(symbol, order.Limit, qty, price, decimal.Zero)
}

// PlaceMarketOrder places a market order and attempts to match it
// immediately at the current last price; on success it is FILLED, on
// failure (no market yet) it is REJECTED.
func (e *SimExchange) PlaceMarketOrder(symbol string, qty decimal.Decimal) (*order.Order, error) {
	o, err := e.place(symbol, order.Market, qty, decimal.Zero, decimal.Zero)
	if err != nil {
		return nil, err
	}
	last := e.loader.GetLastPrice(symbol, e.now)
	if !last.IsZero() {
		e.mu.Lock()
		e.lastPrice[symbol] = last
		e.mu.Unlock()
	}
	e.matchMarket(o, last)
	return o, nil
}

// PlaceStopLimitOrder places a stop order that, once triggered, behaves as
// a limit order at price.
func (e *SimExchange) PlaceStopLimitOrder(symbol string, qty, price, stopPrice decimal.Decimal) (*order.Order, error) {
	return e.place(symbol, order.StopLimit, qty, price, stopPrice)
}

// PlaceStopMarketOrder places a stop order that, once triggered, behaves as
// a market order.
func (e *SimExchange) PlaceStopMarketOrder(symbol string, qty, stopPrice decimal.Decimal) (*order.Order, error) {
	return e.place(symbol, order.StopMarket, qty, decimal.Zero, stopPrice)
}

func (e *SimExchange) place(symbol string, typ order.Type, qty, price, stopPrice decimal.Decimal) (*order.Order, error) {
	inst := e.registry.Get(symbol)
	if inst == nil {
		return nil, simerrors.Newf(simerrors.SettingError, "unknown instrument %q", symbol)
	}
	o := order.New(e.nextOrderID(), inst, typ, qty, price, stopPrice, e.now)
	e.mu.Lock()
	e.orders[o.OrderID] = o
	e.mu.Unlock()
	return o, nil
}

// CancelOrder transitions orderID to CANCELLED, releasing its order_margin
// contribution at the next recomputation. Fails with
// order-not-cancellable if the order is already terminal.
func (e *SimExchange) CancelOrder(orderID string) error {
	e.mu.Lock()
	o, ok := e.orders[orderID]
	e.mu.Unlock()
	if !ok {
		return simerrors.Newf(simerrors.OrderNotCancellable, "unknown order %q", orderID)
	}
	return o.Cancel()
}

// Tick advances the exchange's notion of now, polls the data loader for
// every instrument with open orders or a non-flat position, matches the
// open orders, applies trades to the account, and runs the liquidation
// check — steps 2 through 4 of spec.md §5's per-tick ordering. Step 1
// (advancing context.now) and step 5 (invoking the strategy) are the
// caller's responsibility.
func (e *SimExchange) Tick(now time.Time) {
	e.mu.Lock()
	e.now = now
	symbols := e.openOrderSymbolsLocked()
	e.mu.Unlock()

	seen := make(map[string]bool, len(symbols))
	for _, symbol := range symbols {
		seen[symbol] = true
	}
	for _, p := range e.account.Positions.All() {
		if !p.Quantity.IsZero() && !seen[p.Instrument.Symbol] {
			seen[p.Instrument.Symbol] = true
			symbols = append(symbols, p.Instrument.Symbol)
		}
	}

	for _, symbol := range symbols {
		e.tickSymbol(symbol, now)
	}
	e.checkLiquidations()
}

func (e *SimExchange) openOrderSymbolsLocked() []string {
	seen := make(map[string]bool)
	var out []string
	for _, o := range e.orders {
		if !o.Open() {
			continue
		}
		if !seen[o.Instrument.Symbol] {
			seen[o.Instrument.Symbol] = true
			out = append(out, o.Instrument.Symbol)
		}
	}
	return out
}

func (e *SimExchange) ordersForSymbolLocked(symbol string) []*order.Order {
	var out []*order.Order
	for _, o := range e.orders {
		if o.Open() && o.Instrument.Symbol == symbol {
			out = append(out, o)
		}
	}
	return out
}

func (e *SimExchange) tickSymbol(symbol string, now time.Time) {
	switch e.tickType {
	case TickTypeBar:
		bars := e.loader.GetKline(symbol, 1, now)
		if len(bars) == 0 {
			return
		}
		bar := bars[len(bars)-1]
		e.mu.Lock()
		e.lastPrice[symbol] = bar.Close
		orders := e.ordersForSymbolLocked(symbol)
		e.mu.Unlock()
		for _, path := range intraBarPath(bar) {
			for _, o := range orders {
				if !o.Open() {
					continue
				}
				e.matchAtPrice(o, path)
			}
		}
	default:
		last := e.loader.GetLastPrice(symbol, now)
		if last.IsZero() {
			return
		}
		e.mu.Lock()
		e.lastPrice[symbol] = last
		orders := e.ordersForSymbolLocked(symbol)
		e.mu.Unlock()
		for _, o := range orders {
			if o.Open() {
				e.matchAtPrice(o, last)
			}
		}
	}
}

// intraBarPath returns the prices a bar exposes to matching, in the
// adversarial order spec.md §4.D mandates: open, low, high, close. Since
// the exchange matches every resting order type against each observed
// price in turn, a long stop and a short stop both see the worst-case
// price before the best-case one regardless of which literal ordering
// (low-then-high or high-then-low) would have favoured them individually.
func intraBarPath(bar marketdata.Bar) []decimal.Decimal {
	return []decimal.Decimal{bar.Open, bar.Low, bar.High, bar.Close}
}

func (e *SimExchange) emit(o *order.Order, execPrice, execQty, commission decimal.Decimal) {
	trade := order.NewTrade(e.nextTradeID(), o, execPrice, execQty, commission, e.now)
	effect := e.account.Positions.Get(o.Instrument).PositionEffect(execQty)
	e.account.ApplyTrade(trade)
	log.Debug().Str("order", o.OrderID).Str("symbol", o.Instrument.Symbol).
		Str("price", execPrice.String()).Str("qty", execQty.String()).Msg("trade emitted")
	if e.onTrade != nil {
		e.onTrade(trade, effect)
	}
}
