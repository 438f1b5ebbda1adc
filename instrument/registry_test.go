package instrument

import "testing"

const snapshotJSON = `[
	{
		"symbol": "XBTUSD",
		"typ": "FFWCSX",
		"reference": ".BXBT",
		"underlying": "XBT",
		"quoteCurrency": "USD",
		"settlCurrency": "XBt",
		"lotSize": "1",
		"tickSize": "0.5",
		"makerFee": "-0.00025",
		"takerFee": "0.00075",
		"initMargin": "0.01",
		"maintMargin": "0.005"
	},
	{
		"symbol": "XBTZ18",
		"typ": "FFCCSX",
		"reference": ".BXBT",
		"underlying": "XBT",
		"quoteCurrency": "USD",
		"settlCurrency": "XBt",
		"lotSize": "1",
		"tickSize": "0.5",
		"makerFee": "-0.00025",
		"takerFee": "0.00075",
		"initMargin": "0.05",
		"maintMargin": "0.025",
		"listing": "2018-09-28T12:00:00.000Z",
		"expiry": "2018-12-28T12:00:00.000Z",
		"settle": "2018-12-28T12:00:00.000Z"
	},
	{
		"symbol": "XBTUSDU18",
		"typ": "FFDCSX",
		"reference": "U",
		"underlying": "XBT",
		"expiry": "2018-09-28T12:00:00.000Z"
	}
]`

func TestLoadSnapshotClassifies(t *testing.T) {
	reg := NewRegistry()
	if err := reg.LoadSnapshot([]byte(snapshotJSON)); err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}

	cases := []struct {
		symbol string
		want   Variant
	}{
		{"XBTUSD", Perpetual},
		{"XBTZ18", Future},
		{"XBTUSDU18", Upside},
	}
	for _, tc := range cases {
		inst := reg.Get(tc.symbol)
		if inst == nil {
			t.Fatalf("symbol %s not found", tc.symbol)
		}
		if inst.Variant != tc.want {
			t.Errorf("%s: variant = %s, want %s", tc.symbol, inst.Variant, tc.want)
		}
	}

	if reg.Get("NOPE") != nil {
		t.Error("expected unknown symbol to be nil")
	}

	future := reg.Get("XBTZ18")
	if !future.HasExpiry() {
		t.Error("future instrument should report HasExpiry")
	}
	if future.Expiry.IsZero() {
		t.Error("expected parsed expiry timestamp")
	}
}

func TestLoadSnapshotBadDecimal(t *testing.T) {
	reg := NewRegistry()
	err := reg.LoadSnapshot([]byte(`[{"symbol":"X","lotSize":"not-a-number"}]`))
	if err == nil {
		t.Fatal("expected error for malformed decimal")
	}
}
