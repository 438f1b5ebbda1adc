package exchange

import (
	"github.com/shopspring/decimal"

	"github.com/monkbacktest/engine/decimalx"
	"github.com/monkbacktest/engine/instrument"
	"github.com/monkbacktest/engine/order"
)

// checkLiquidations runs step 4 of spec.md §5's per-tick ordering: any
// position whose maintenance margin has fallen below its minimum is
// force-closed at its liquidation price in this same tick, at taker fee —
// spec.md §4.E reserves the precise timing as an implementer choice; this
// exchange resolves it to "same tick as the triggering price update"
// rather than deferring to the next one.
func (e *SimExchange) checkLiquidations() {
	for _, p := range e.account.Positions.All() {
		if p.Quantity.IsZero() {
			continue
		}
		if p.MaintMargin().GreaterThanOrEqual(p.MinLastMaintMargin()) {
			continue
		}
		e.forceClose(p.Instrument, p.LiquidationPrice(), p.Quantity.Neg())
	}
}

func (e *SimExchange) forceClose(inst *instrument.Instrument, liquidationPrice, closingQty decimal.Decimal) {
	o := order.New(e.nextOrderID(), inst, order.Market, closingQty, decimal.Zero, decimal.Zero, e.now)
	e.mu.Lock()
	e.orders[o.OrderID] = o
	e.mu.Unlock()

	commission := decimalx.Abs(liquidationPrice.Mul(closingQty).Mul(inst.TakerFee))
	e.emit(o, liquidationPrice, closingQty, commission)

	if e.onLiquidation != nil {
		e.onLiquidation(inst.Symbol, liquidationPrice)
	}
}
