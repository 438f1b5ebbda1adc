package marketdata

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func mustBar(ts string, close float64) Bar {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		panic(err)
	}
	return Bar{Timestamp: t, Close: decimal.NewFromFloat(close)}
}

func TestMemoryLoaderLastPrice(t *testing.T) {
	m := NewMemoryLoader()
	m.Load("XBTUSD", []Bar{
		mustBar("2018-01-01T00:01:00Z", 100),
		mustBar("2018-01-01T00:02:00Z", 101),
		mustBar("2018-01-01T00:03:00Z", 102),
	})

	at, _ := time.Parse(time.RFC3339, "2018-01-01T00:02:30Z")
	got := m.GetLastPrice("XBTUSD", at)
	if !got.Equal(decimal.NewFromFloat(101)) {
		t.Errorf("GetLastPrice = %s, want 101", got)
	}

	before, _ := time.Parse(time.RFC3339, "2017-12-31T23:00:00Z")
	if got := m.GetLastPrice("XBTUSD", before); !got.IsZero() {
		t.Errorf("GetLastPrice before listing = %s, want 0", got)
	}

	// Exactly-equal timestamps are not "strictly before".
	exact, _ := time.Parse(time.RFC3339, "2018-01-01T00:02:00Z")
	got = m.GetLastPrice("XBTUSD", exact)
	if !got.Equal(decimal.NewFromFloat(100)) {
		t.Errorf("GetLastPrice at exact bar time = %s, want 100 (strictly preceding)", got)
	}
}

func TestMemoryLoaderKline(t *testing.T) {
	m := NewMemoryLoader()
	m.Load("XBTUSD", []Bar{
		mustBar("2018-01-01T00:01:00Z", 100),
		mustBar("2018-01-01T00:02:00Z", 101),
		mustBar("2018-01-01T00:03:00Z", 102),
	})

	endingAt, _ := time.Parse(time.RFC3339, "2018-01-01T00:02:00Z")
	bars := m.GetKline("XBTUSD", 10, endingAt)
	if len(bars) != 2 {
		t.Fatalf("len(bars) = %d, want 2", len(bars))
	}
	if !bars[0].Timestamp.Before(bars[1].Timestamp) {
		t.Error("expected chronological order")
	}

	bars = m.GetKline("XBTUSD", 1, endingAt)
	if len(bars) != 1 || !bars[0].Close.Equal(decimal.NewFromFloat(101)) {
		t.Errorf("unexpected truncated window: %+v", bars)
	}

	empty := m.GetKline("UNKNOWN", 5, endingAt)
	if len(empty) != 0 {
		t.Errorf("expected no bars for unknown symbol, got %d", len(empty))
	}
}
