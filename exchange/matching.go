package exchange

import (
	"github.com/shopspring/decimal"

	"github.com/monkbacktest/engine/decimalx"
	"github.com/monkbacktest/engine/order"
)

// matchMarket resolves a freshly placed market order against the current
// last price: FILLED on success, REJECTED if there is no market yet.
func (e *SimExchange) matchMarket(o *order.Order, lastPrice decimal.Decimal) {
	if lastPrice.IsZero() {
		o.Reject()
		return
	}
	e.fillTaker(o, lastPrice, o.RemainQuantity())
}

// matchAtPrice applies one observed price to a resting order: triggering
// stops, then matching limits (including a stop-limit already triggered on
// an earlier price within the same bar). price is either a tick's last
// price or one point of a bar's open/low/high/close path.
func (e *SimExchange) matchAtPrice(o *order.Order, price decimal.Decimal) {
	if o.IsStop() && o.Status == order.StatusNew {
		if !stopTriggered(o, price) {
			return
		}
		if err := o.Trigger(); err != nil {
			return
		}
		if o.Type == order.StopMarket {
			e.fillTaker(o, price, o.RemainQuantity())
			return
		}
		// Stop-limit: falls through to the limit check below against this
		// same price, matching §4.D's "processed as ... limit according to
		// type" immediately on trigger.
	}

	if !limitMatchable(o, price) {
		return
	}
	e.fillMaker(o, o.Price, o.RemainQuantity())
}

// stopTriggered reports whether price crosses o's trigger per §4.D: buy
// stop triggers when price >= trigger, sell stop when price <= trigger.
func stopTriggered(o *order.Order, price decimal.Decimal) bool {
	if o.Direction() == order.Long {
		return price.GreaterThanOrEqual(o.StopPrice)
	}
	return price.LessThanOrEqual(o.StopPrice)
}

// limitMatchable reports whether o (a resting limit, or a stop-limit that
// has just triggered) crosses at price: buy limit fills when price <= P,
// sell limit when price >= P.
func limitMatchable(o *order.Order, price decimal.Decimal) bool {
	if o.Type != order.Limit && !(o.Type == order.StopLimit && o.Status == order.StatusTriggered) {
		return false
	}
	if o.Direction() == order.Long {
		return price.LessThanOrEqual(o.Price)
	}
	return price.GreaterThanOrEqual(o.Price)
}

// fillMaker fully fills o at execPrice, charging the maker fee: a limit
// order fills at its own stated price, never at the crossing price, since
// it sat passively in the book.
func (e *SimExchange) fillMaker(o *order.Order, execPrice, execQty decimal.Decimal) {
	commission := decimalx.Abs(execPrice.Mul(execQty).Mul(o.Instrument.MakerFee))
	e.emit(o, execPrice, execQty, commission)
}

// fillTaker fully fills o at execPrice, charging the taker fee: market
// orders and just-triggered stop-market orders cross the book actively.
func (e *SimExchange) fillTaker(o *order.Order, execPrice, execQty decimal.Decimal) {
	commission := decimalx.Abs(execPrice.Mul(execQty).Mul(o.Instrument.TakerFee))
	e.emit(o, execPrice, execQty, commission)
}
