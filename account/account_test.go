package account

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/monkbacktest/engine/decimalx"
	"github.com/monkbacktest/engine/instrument"
	"github.com/monkbacktest/engine/order"
)

func d(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

type fakeExchange struct {
	price decimal.Decimal
	open  []*order.Order
}

func (f *fakeExchange) GetLastPrice(string) decimal.Decimal { return f.price }
func (f *fakeExchange) OpenOrders() []*order.Order           { return f.open }

func testInstrument(initRate, maintRate, takerFee float64) (*instrument.Instrument, *fakeExchange) {
	inst := &instrument.Instrument{
		Symbol:          "XBTUSD",
		Variant:         instrument.Perpetual,
		InitMarginRate:  d(initRate),
		MaintMarginRate: d(maintRate),
		TakerFee:        d(takerFee),
	}
	ex := &fakeExchange{price: decimal.Zero}
	inst.BindExchange(ex)
	return inst, ex
}

func mkOrder(id string, inst *instrument.Instrument, qty, price float64) *order.Order {
	return order.New(id, inst, order.Limit, d(qty), d(price), decimal.Zero, time.Now().UTC())
}

// TestOrderMarginS6 reproduces the pinned order_margin scenario: a LONG 100
// position with two resting sell limits (40 @ 11, 70 @ 12). The first 100
// units of opposite-side value offset the position; only the remaining 10
// contribute to the reservation.
func TestOrderMarginS6(t *testing.T) {
	inst, ex := testInstrument(0.01, 0.005, 0.00075)
	acct := New(d(100000), ex)

	buy := mkOrder("open", inst, 100, 10)
	acct.ApplyTrade(order.NewTrade("t1", buy, d(10), d(100), decimal.Zero, time.Now().UTC()))
	if !acct.Positions.Get(inst).Quantity.Equal(d(100)) {
		t.Fatalf("setup: position quantity = %s, want 100", acct.Positions.Get(inst).Quantity)
	}

	sell1 := mkOrder("s1", inst, -40, 11)
	sell2 := mkOrder("s2", inst, -70, 12)
	ex.open = []*order.Order{sell1, sell2}

	got := acct.OrderMargin()
	want := d(10 * 12 * (0.01 + 2*0.00075))
	if !decimalx.ApproxEqual(got, want, d(1e-9)) {
		t.Errorf("OrderMargin = %s, want %s", got, want)
	}
}

// TestAvailableBalanceInvariant checks the headline identity holds by
// construction across a scenario with an open position and a resting order.
func TestAvailableBalanceInvariant(t *testing.T) {
	inst, ex := testInstrument(0.05, 0.025, 0.00125)
	acct := New(d(50000), ex)
	ex.price = d(100)

	buy := mkOrder("open", inst, 10, 90)
	acct.ApplyTrade(order.NewTrade("t1", buy, d(90), d(10), decimal.Zero, time.Now().UTC()))

	resting := mkOrder("resting", inst, -5, 95)
	ex.open = []*order.Order{resting}

	got := acct.AvailableBalance()
	want := acct.MarginBalance().Sub(acct.PositionMargin()).Sub(acct.OrderMargin())
	if !got.Equal(want) {
		t.Errorf("AvailableBalance = %s, want %s (recomputed identity)", got, want)
	}
}

// TestApplyTradeRealizesPnLOnClose walks open → close and checks the wallet
// balance realizes exactly (exit − entry) × quantity, less both
// commissions, matching the source's deal() commission-and-P&L order.
func TestApplyTradeRealizesPnLOnClose(t *testing.T) {
	inst, ex := testInstrument(0.05, 0.025, 0.00125)
	acct := New(d(1000), ex)

	openOrder := mkOrder("open", inst, 10, 100)
	acct.ApplyTrade(order.NewTrade("t1", openOrder, d(100), d(10), d(1), time.Now().UTC()))
	if !acct.WalletBalance.Equal(d(999)) {
		t.Fatalf("after open: wallet = %s, want 999 (only commission debited)", acct.WalletBalance)
	}

	closeOrder := mkOrder("close", inst, -10, 110)
	acct.ApplyTrade(order.NewTrade("t2", closeOrder, d(110), d(-10), d(1.1), time.Now().UTC()))

	// realized pnl = (110-100)*10 = 100; wallet = 999 + 100 - 1.1 = 1097.9
	want := d(1097.9)
	if !decimalx.ApproxEqual(acct.WalletBalance, want, d(1e-9)) {
		t.Errorf("after close: wallet = %s, want %s", acct.WalletBalance, want)
	}

	pos := acct.Positions.Get(inst)
	if !pos.Quantity.IsZero() || !pos.OpenPrice.IsZero() {
		t.Errorf("expected flat position after exact close, got qty=%s open=%s", pos.Quantity, pos.OpenPrice)
	}
}
