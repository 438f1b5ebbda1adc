package instrument

import (
	"strings"
	"time"

	"github.com/segmentio/encoding/json"
	"github.com/shopspring/decimal"

	"github.com/monkbacktest/engine/decimalx"
	"github.com/monkbacktest/engine/simerrors"
)

// snapshotRecord is the wire shape of one entry in the instrument snapshot
// file (spec.md §6): an array of these, UTF-8 JSON, ISO-8601 timestamps.
type snapshotRecord struct {
	Symbol          string `json:"symbol"`
	Typ             string `json:"typ"`
	Reference       string `json:"reference"`
	Underlying      string `json:"underlying"`
	QuoteCurrency   string `json:"quoteCurrency"`
	SettlCurrency   string `json:"settlCurrency"`
	LotSize         string `json:"lotSize"`
	TickSize        string `json:"tickSize"`
	MakerFee        string `json:"makerFee"`
	TakerFee        string `json:"takerFee"`
	InitMargin      string `json:"initMargin"`
	MaintMargin     string `json:"maintMargin"`
	SettlementFee   string `json:"settlementFee"`
	ReferenceSymbol string `json:"referenceSymbol"`
	Deleverage      bool   `json:"deleverage"`
	Listing         string `json:"listing"`
	Front           string `json:"front"`
	Expiry          string `json:"expiry"`
	Settle          string `json:"settle"`
}

// Registry is the read-only, load-once instrument store (component B).
type Registry struct {
	bySymbol map[string]*Instrument
}

// NewRegistry builds an empty registry; use LoadSnapshot to populate it.
func NewRegistry() *Registry {
	return &Registry{bySymbol: make(map[string]*Instrument)}
}

// Get returns the instrument for symbol, or nil if unknown.
func (r *Registry) Get(symbol string) *Instrument {
	return r.bySymbol[symbol]
}

// All returns every registered instrument, in no particular order.
func (r *Registry) All() []*Instrument {
	out := make([]*Instrument, 0, len(r.bySymbol))
	for _, inst := range r.bySymbol {
		out = append(out, inst)
	}
	return out
}

// LoadSnapshot parses a UTF-8 JSON array of instrument records and
// classifies each into a Variant, replacing the registry's contents.
func (r *Registry) LoadSnapshot(data []byte) error {
	var records []snapshotRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return simerrors.Newf(simerrors.SettingError, "parse instrument snapshot: %v", err)
	}

	parsed := make(map[string]*Instrument, len(records))
	for _, rec := range records {
		inst, err := rec.toInstrument()
		if err != nil {
			return err
		}
		parsed[inst.Symbol] = inst
	}
	r.bySymbol = parsed
	return nil
}

func (rec snapshotRecord) toInstrument() (*Instrument, error) {
	dec := func(s string) (decimal.Decimal, error) {
		if s == "" {
			return decimal.Zero, nil
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, simerrors.Newf(simerrors.SettingError, "instrument %s: bad decimal %q: %v", rec.Symbol, s, err)
		}
		return d, nil
	}

	lotSize, err := dec(rec.LotSize)
	if err != nil {
		return nil, err
	}
	tickSize, err := dec(rec.TickSize)
	if err != nil {
		return nil, err
	}
	makerFee, err := dec(rec.MakerFee)
	if err != nil {
		return nil, err
	}
	takerFee, err := dec(rec.TakerFee)
	if err != nil {
		return nil, err
	}
	initMargin, err := dec(rec.InitMargin)
	if err != nil {
		return nil, err
	}
	maintMargin, err := dec(rec.MaintMargin)
	if err != nil {
		return nil, err
	}
	settlementFee, err := dec(rec.SettlementFee)
	if err != nil {
		return nil, err
	}

	parseTime := func(s string) (time.Time, error) {
		if s == "" {
			return time.Time{}, nil
		}
		t, err := decimalx.ParseISO8601(s)
		if err != nil {
			return time.Time{}, simerrors.Newf(simerrors.SettingError, "instrument %s: bad timestamp %q: %v", rec.Symbol, s, err)
		}
		return t, nil
	}

	listing, err := parseTime(rec.Listing)
	if err != nil {
		return nil, err
	}
	front, err := parseTime(rec.Front)
	if err != nil {
		return nil, err
	}
	expiry, err := parseTime(rec.Expiry)
	if err != nil {
		return nil, err
	}
	settle, err := parseTime(rec.Settle)
	if err != nil {
		return nil, err
	}

	inst := &Instrument{
		Symbol:          rec.Symbol,
		Variant:         classify(rec),
		Underlying:      rec.Underlying,
		QuoteCurrency:   rec.QuoteCurrency,
		SettleCurrency:  rec.SettlCurrency,
		LotSize:         lotSize,
		TickSize:        tickSize,
		MakerFee:        makerFee,
		TakerFee:        takerFee,
		InitMarginRate:  initMargin,
		MaintMarginRate: maintMargin,
		SettlementFee:   settlementFee,
		ReferenceSymbol: rec.ReferenceSymbol,
		Deleverage:      rec.Deleverage,
		Listing:         listing,
		Front:           front,
		Expiry:          expiry,
		Settle:          settle,
	}
	return inst, nil
}

// classify derives the instrument Variant from the snapshot's "typ" field
// and the reference-symbol/expiry pattern, per spec.md §4.B. "typ" is
// authoritative when present; it falls back to inferring from the presence
// of an expiry and the shape of the reference symbol (a leading "U"/"D" on
// the "reference" field marks upside/downside legs, matching BitMEX-style
// naming for these exotic payoffs).
func classify(rec snapshotRecord) Variant {
	switch strings.ToUpper(rec.Typ) {
	case "FFWCSX", "PERPETUAL":
		return Perpetual
	case "FFCCSX", "FUTURE":
		return Future
	case "FFDCSX", "UPSIDE":
		return Upside
	case "MRBXXX", "DOWNSIDE":
		return Downside
	}

	ref := strings.ToUpper(rec.Reference)
	switch {
	case strings.HasPrefix(ref, "U") && rec.Expiry != "":
		return Upside
	case strings.HasPrefix(ref, "D") && rec.Expiry != "":
		return Downside
	case rec.Expiry != "":
		return Future
	default:
		return Perpetual
	}
}

// Validate reports a setting-error if a symbol is referenced but unknown.
func (r *Registry) Validate(symbol string) error {
	if r.Get(symbol) == nil {
		return simerrors.Newf(simerrors.SettingError, "unknown instrument %q", symbol)
	}
	return nil
}
