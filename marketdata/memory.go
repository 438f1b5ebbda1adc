package marketdata

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// MemoryLoader is an in-memory Loader backed by per-symbol sorted bar
// slices. It is what the storage-backed loader hydrates into at simulation
// setup (k-line tables are small enough, per symbol per run, to hold
// entirely in memory) and what tests use directly without a database.
type MemoryLoader struct {
	bars map[string][]Bar // sorted ascending by Timestamp
}

// NewMemoryLoader builds an empty loader; use Load to populate a symbol's
// table.
func NewMemoryLoader() *MemoryLoader {
	return &MemoryLoader{bars: make(map[string][]Bar)}
}

// Load replaces the bar table for symbol. Bars are sorted by Timestamp;
// the loader tolerates gaps and uneven end points between symbols.
func (m *MemoryLoader) Load(symbol string, bars []Bar) {
	sorted := make([]Bar, len(bars))
	copy(sorted, bars)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Timestamp.Before(sorted[j].Timestamp) })
	m.bars[symbol] = sorted
}

// GetLastPrice implements Loader.
func (m *MemoryLoader) GetLastPrice(symbol string, at time.Time) decimal.Decimal {
	bars := m.bars[symbol]
	// Find the last bar whose Timestamp is strictly before at.
	idx := sort.Search(len(bars), func(i int) bool { return !bars[i].Timestamp.Before(at) })
	if idx == 0 {
		return decimal.Zero
	}
	return bars[idx-1].Close
}

// GetKline implements Loader.
func (m *MemoryLoader) GetKline(symbol string, count int, endingAt time.Time) []Bar {
	bars := m.bars[symbol]
	idx := sort.Search(len(bars), func(i int) bool { return bars[i].Timestamp.After(endingAt) })
	start := idx - count
	if start < 0 {
		start = 0
	}
	out := make([]Bar, idx-start)
	copy(out, bars[start:idx])
	return out
}
