package account

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/monkbacktest/engine/instrument"
	"github.com/monkbacktest/engine/order"
)

// OrderMargin sums the per-instrument reservation (§4.F) over every
// instrument with a resting limit order. It is debited from
// available_balance but never from wallet_balance: it is a hold, not a
// spend.
func (a *Account) OrderMargin() decimal.Decimal {
	byInstrument := make(map[*instrument.Instrument][]*order.Order)
	for _, o := range a.exchange.OpenOrders() {
		if o.Type != order.Limit || !o.Open() {
			continue
		}
		byInstrument[o.Instrument] = append(byInstrument[o.Instrument], o)
	}

	total := decimal.Zero
	for inst, orders := range byInstrument {
		total = total.Add(a.instrumentOrderMargin(inst, orders))
	}
	return total
}

// instrumentOrderMargin implements §4.F for a single instrument's resting
// limit orders: sum buy/sell notional, let opposite-direction orders
// (sorted ascending by price) offset the existing position up to its
// size, then reserve the larger remaining side at (init rate + 2× taker
// fee).
func (a *Account) instrumentOrderMargin(inst *instrument.Instrument, orders []*order.Order) decimal.Decimal {
	pos := a.Positions.Get(inst)

	initRate := inst.InitMarginRate
	if pos.IsIsolated() {
		if lev, err := pos.Leverage(); err == nil && lev.IsPositive() {
			initRate = decimal.NewFromInt(1).Div(lev)
		}
	}

	longValue := decimal.Zero
	shortValue := decimal.Zero
	var opposite []*order.Order
	for _, o := range orders {
		if o.Side == order.Buy {
			longValue = longValue.Add(o.RemainValue())
		} else {
			shortValue = shortValue.Add(o.RemainValue())
		}
		if o.Direction() != pos.Direction() {
			opposite = append(opposite, o)
		}
	}

	sort.Slice(opposite, func(i, j int) bool { return opposite[i].Price.LessThan(opposite[j].Price) })

	processed := decimal.Zero
	offset := decimal.Zero
	for _, o := range opposite {
		remain := o.RemainQuantity()
		if pos.Direction() == order.Long {
			if processed.Sub(remain).LessThan(pos.Quantity) {
				offset = offset.Add(o.RemainValue())
				processed = processed.Sub(remain)
			} else {
				validQty := pos.Quantity.Sub(processed)
				offset = offset.Add(validQty.Mul(o.Price))
				break
			}
		} else {
			if processed.Sub(remain).GreaterThan(pos.Quantity) {
				offset = offset.Add(o.RemainValue())
				processed = processed.Sub(remain)
			} else {
				validQty := processed.Sub(pos.Quantity)
				offset = offset.Add(validQty.Mul(o.Price))
				break
			}
		}
	}

	if pos.Direction() == order.Long {
		shortValue = shortValue.Sub(offset)
	} else {
		longValue = longValue.Sub(offset)
	}

	validValue := longValue
	if shortValue.GreaterThan(validValue) {
		validValue = shortValue
	}

	rate := initRate.Add(two.Mul(inst.TakerFee))
	return validValue.Mul(rate)
}

var two = decimal.NewFromInt(2)
