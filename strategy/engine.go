package strategy

import (
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/monkbacktest/engine/exchange"
	"github.com/monkbacktest/engine/notify"
	"github.com/monkbacktest/engine/order"
	"github.com/monkbacktest/engine/position"
	"github.com/monkbacktest/engine/timedriver"
)

// Engine drives a Strategy through a Driver's instant sequence against one
// SimExchange, enforcing spec.md §5's per-tick ordering: advance now,
// exchange matches and applies trades (on_trade fires per trade in
// emission order), liquidation check, then the strategy's own tick/bar
// callbacks.
type Engine struct {
	driver   *timedriver.Driver
	exchange *exchange.SimExchange
	strategy Strategy
	tickType exchange.TickType
	notifier notify.TradeNotifier

	ctx        *Context
	pendingErr error
	tradeCount int
}

// NewEngine wires a driver, exchange and strategy together. notifier may
// be nil — a disabled *notify.Telegram is the common case, and a nil
// interface value is handled the same as "nothing to notify".
func NewEngine(driver *timedriver.Driver, ex *exchange.SimExchange, strat Strategy, tickType exchange.TickType, notifier notify.TradeNotifier) *Engine {
	return &Engine{
		driver:   driver,
		exchange: ex,
		strategy: strat,
		tickType: tickType,
		notifier: notifier,
		ctx:      &Context{Exchange: ex},
	}
}

// Run drives the simulation to completion: every instant the driver
// produces, in order, until the driver is exhausted or the strategy or a
// callback returns an error. Once the driver is exhausted, every order
// still open is cancelled and a run summary is sent to the notifier. When
// a callback returns an error, Run returns it at once and leaves open
// orders and the account state as they were, for inspection.
func (e *Engine) Run() error {
	e.exchange.Setup(e.tickType, e.handleTrade, e.handleLiquidation)

	if err := e.strategy.Setup(e.ctx); err != nil {
		return err
	}

	for {
		now, ok := e.driver.Next()
		if !ok {
			break
		}
		e.ctx.Now = now

		e.exchange.Tick(now)
		if e.pendingErr != nil {
			return e.pendingErr
		}

		if err := e.strategy.Tick(e.ctx); err != nil {
			return err
		}
		if err := e.strategy.HandleBar(e.ctx); err != nil {
			return err
		}
	}

	e.closeOpenOrders()

	acct := e.exchange.GetAccount()
	if e.notifier != nil {
		e.notifier.NotifyRunSummary(acct.WalletBalance, acct.UnrealisedPnL(), e.tradeCount)
	}
	return nil
}

func (e *Engine) handleTrade(trade *order.Trade, effect position.Effect) {
	if e.pendingErr != nil {
		return
	}
	e.tradeCount++
	if err := e.strategy.OnTrade(e.ctx, trade, effect); err != nil {
		e.pendingErr = err
		return
	}
	if e.notifier != nil {
		e.notifier.NotifyFill(trade, effect)
	}
}

func (e *Engine) handleLiquidation(symbol string, price decimal.Decimal) {
	log.Warn().Str("symbol", symbol).Str("price", price.String()).Msg("position liquidated")
	if e.notifier != nil {
		e.notifier.NotifyLiquidation(symbol, price)
	}
}

func (e *Engine) closeOpenOrders() {
	for _, o := range e.exchange.OpenOrders() {
		if err := e.exchange.CancelOrder(o.OrderID); err != nil {
			log.Warn().Str("order", o.OrderID).Err(err).Msg("failed to cancel open order at simulation end")
		}
	}
}
