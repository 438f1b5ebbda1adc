package exchange

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/monkbacktest/engine/decimalx"
	"github.com/monkbacktest/engine/instrument"
	"github.com/monkbacktest/engine/marketdata"
	"github.com/monkbacktest/engine/order"
)

func d(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func setup(t *testing.T) (*SimExchange, *marketdata.MemoryLoader) {
	t.Helper()
	reg := instrument.NewRegistry()
	registerTestInstrument(reg)
	loader := marketdata.NewMemoryLoader()
	ex := New(reg, loader, d(100000))
	ex.Setup(TickTypeTick, nil, nil)
	return ex, loader
}

func registerTestInstrument(reg *instrument.Registry) {
	snapshot := `[{
		"symbol": "XBTUSD", "typ": "perpetual", "reference": ".BXBT",
		"underlying": "XBT", "quoteCurrency": "USD", "settlCurrency": "XBT",
		"lotSize": "1", "tickSize": "0.5", "makerFee": "-0.00025", "takerFee": "0.00075",
		"initMargin": "0.01", "maintMargin": "0.005", "settlementFee": "0",
		"referenceSymbol": ".BXBT", "deleverage": true
	}]`
	if err := reg.LoadSnapshot([]byte(snapshot)); err != nil {
		panic(err)
	}
}

func utc(s string) time.Time {
	tm, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return tm.UTC()
}

func TestMarketOrderFillsAtLastPrice(t *testing.T) {
	ex, loader := setup(t)
	loader.Load("XBTUSD", []marketdata.Bar{
		{Timestamp: utc("2018-01-01T00:00:00Z"), Close: d(100)},
	})
	ex.Tick(utc("2018-01-01T00:01:00Z"))

	o, err := ex.PlaceMarketOrder("XBTUSD", d(10))
	if err != nil {
		t.Fatalf("PlaceMarketOrder: %v", err)
	}
	if o.Status != order.StatusFilled {
		t.Fatalf("status = %s, want filled", o.Status)
	}

	pos := ex.GetAccount().Positions.Get(ex.registry.Get("XBTUSD"))
	if !pos.Quantity.Equal(d(10)) {
		t.Errorf("position quantity = %s, want 10", pos.Quantity)
	}
}

func TestMarketOrderRejectedWithNoMarket(t *testing.T) {
	ex, _ := setup(t)
	o, err := ex.PlaceMarketOrder("XBTUSD", d(10))
	if err != nil {
		t.Fatalf("PlaceMarketOrder: %v", err)
	}
	if o.Status != order.StatusRejected {
		t.Errorf("status = %s, want rejected", o.Status)
	}
}

// TestBuyLimitFillsWhenLastCrossesDown reproduces the §4.D rule that a buy
// limit at P fills once the observed last price falls to or below P, at
// the limit's own price (maker fee).
func TestBuyLimitFillsWhenLastCrossesDown(t *testing.T) {
	ex, loader := setup(t)
	o, err := ex.PlaceLimitOrder("XBTUSD", d(10), d(95))
	if err != nil {
		t.Fatalf("PlaceLimitOrder: %v", err)
	}

	loader.Load("XBTUSD", []marketdata.Bar{{Timestamp: utc("2018-01-01T00:00:00Z"), Close: d(100)}})
	ex.Tick(utc("2018-01-01T00:01:00Z"))
	if o.Status != order.StatusNew {
		t.Fatalf("status after 100 = %s, want new (100 > 95)", o.Status)
	}

	loader.Load("XBTUSD", []marketdata.Bar{
		{Timestamp: utc("2018-01-01T00:00:00Z"), Close: d(100)},
		{Timestamp: utc("2018-01-01T00:01:00Z"), Close: d(94)},
	})
	ex.Tick(utc("2018-01-01T00:02:00Z"))
	if o.Status != order.StatusFilled {
		t.Fatalf("status after 94 = %s, want filled", o.Status)
	}
}

func TestBuyStopTriggersAndFillsAsMarket(t *testing.T) {
	ex, loader := setup(t)
	o, err := ex.PlaceStopMarketOrder("XBTUSD", d(5), d(110))
	if err != nil {
		t.Fatalf("PlaceStopMarketOrder: %v", err)
	}

	loader.Load("XBTUSD", []marketdata.Bar{{Timestamp: utc("2018-01-01T00:00:00Z"), Close: d(109)}})
	ex.Tick(utc("2018-01-01T00:01:00Z"))
	if o.Status != order.StatusNew {
		t.Fatalf("status at 109 = %s, want new", o.Status)
	}

	loader.Load("XBTUSD", []marketdata.Bar{
		{Timestamp: utc("2018-01-01T00:00:00Z"), Close: d(109)},
		{Timestamp: utc("2018-01-01T00:01:00Z"), Close: d(111)},
	})
	ex.Tick(utc("2018-01-01T00:02:00Z"))
	if o.Status != order.StatusFilled {
		t.Fatalf("status at 111 = %s, want filled", o.Status)
	}
}

func TestCancelOrderTerminalFails(t *testing.T) {
	ex, loader := setup(t)
	o, _ := ex.PlaceLimitOrder("XBTUSD", d(1), d(100))
	loader.Load("XBTUSD", []marketdata.Bar{{Timestamp: utc("2018-01-01T00:00:00Z"), Close: d(100)}})
	ex.Tick(utc("2018-01-01T00:01:00Z"))
	if o.Status != order.StatusFilled {
		t.Fatalf("setup: status = %s, want filled", o.Status)
	}
	if err := ex.CancelOrder(o.OrderID); err == nil {
		t.Error("expected order-not-cancellable for a filled order")
	}
}

func TestLiquidationClosesPositionAtLiquidationPrice(t *testing.T) {
	ex, loader := setup(t)
	loader.Load("XBTUSD", []marketdata.Bar{{Timestamp: utc("2018-01-01T00:00:00Z"), Close: d(100)}})
	ex.Tick(utc("2018-01-01T00:01:00Z"))

	if _, err := ex.PlaceMarketOrder("XBTUSD", d(5000)); err != nil {
		t.Fatalf("PlaceMarketOrder: %v", err)
	}

	var liquidated bool
	ex.Setup(TickTypeTick, nil, func(symbol string, price decimal.Decimal) { liquidated = true })

	loader.Load("XBTUSD", []marketdata.Bar{
		{Timestamp: utc("2018-01-01T00:00:00Z"), Close: d(100)},
		{Timestamp: utc("2018-01-01T00:01:00Z"), Close: d(50)},
	})
	ex.Tick(utc("2018-01-01T00:02:00Z"))

	pos := ex.GetAccount().Positions.Get(ex.registry.Get("XBTUSD"))
	if !liquidated {
		t.Fatal("expected liquidation to fire with heavy leverage and a 50% adverse move")
	}
	if !decimalx.Abs(pos.Quantity).IsZero() {
		t.Errorf("position quantity after liquidation = %s, want 0", pos.Quantity)
	}
}
