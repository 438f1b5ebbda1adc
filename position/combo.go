package position

import (
	"github.com/shopspring/decimal"

	"github.com/monkbacktest/engine/instrument"
	"github.com/monkbacktest/engine/simerrors"
)

// FutureCrossIsolatePosition starts in cross mode and can transition to
// isolated via SetLeverage, and back via SetCross. It holds both a cross
// and an isolated representation's worth of state (just the one extra
// field, isolatedMaintMargin) and switches behavior on the isolated flag
// rather than being replaced by a different concrete type, so a strategy
// holding a *FutureCrossIsolatePosition never has it invalidated by a mode
// change.
type FutureCrossIsolatePosition struct {
	FutureBasePosition
	Account AccountView

	isolated            bool
	isolatedMaintMargin decimal.Decimal
}

// NewFutureCrossIsolatePosition returns a flat, cross-mode position on
// inst.
func NewFutureCrossIsolatePosition(inst *instrument.Instrument, account AccountView) *FutureCrossIsolatePosition {
	return &FutureCrossIsolatePosition{
		FutureBasePosition: *NewFutureBasePosition(inst),
		Account:            account,
	}
}

// IsIsolated reports the current margin mode.
func (p *FutureCrossIsolatePosition) IsIsolated() bool {
	return p.isolated
}

// MaintMargin follows the cross formula while in cross mode, and the fixed
// isolated allocation once switched.
func (p *FutureCrossIsolatePosition) MaintMargin() decimal.Decimal {
	if p.isolated {
		return p.isolatedMaintMargin
	}
	return p.Account.AvailableBalance().Add(p.OpenInitMargin())
}

// PositionMargin is this position's contribution to the account's
// position_margin aggregate, under whichever mode is active.
func (p *FutureCrossIsolatePosition) PositionMargin() decimal.Decimal {
	if p.isolated {
		return p.isolatedMaintMargin
	}
	rate := p.Instrument.InitMarginRate.Add(two.Mul(p.Instrument.TakerFee))
	return p.MarketValue().Mul(rate)
}

// Leverage is undefined in cross mode, and market_value / isolatedMaintMargin
// once isolated.
func (p *FutureCrossIsolatePosition) Leverage() (decimal.Decimal, error) {
	if !p.isolated {
		return decimal.Zero, simerrors.New(simerrors.MarginUndefined, "leverage is undefined while a position is cross-margined")
	}
	if p.isolatedMaintMargin.IsZero() {
		return decimal.Zero, nil
	}
	return p.MarketValue().Div(p.isolatedMaintMargin), nil
}

// SetLeverage attempts to switch to isolated mode at the given leverage.
// The required margin (market_value / leverage) must clear the same bounds
// as a standalone IsolatedPosition; on failure the position remains in
// cross mode untouched.
func (p *FutureCrossIsolatePosition) SetLeverage(leverage decimal.Decimal) error {
	if !leverage.IsPositive() {
		return simerrors.Newf(simerrors.SettingError, "leverage must be positive, got %s", leverage)
	}
	required := p.MarketValue().Div(leverage)
	min := p.MinLastMaintMargin()
	if required.LessThan(min) {
		return simerrors.Newf(simerrors.MarginNotEnough, "required maint_margin %s is less than minimum maintenance margin %s", required, min)
	}
	available := p.Account.AvailableBalance()
	if required.GreaterThan(available) {
		return simerrors.Newf(simerrors.MarginNotEnough, "required maint_margin %s exceeds available balance %s", required, available)
	}
	p.isolated = true
	p.isolatedMaintMargin = required
	return nil
}

// SetCross restores cross-margin mode; liq/bankruptcy prices and
// maint_margin recompute from the cross formula on the next read.
func (p *FutureCrossIsolatePosition) SetCross() {
	p.isolated = false
	p.isolatedMaintMargin = decimal.Zero
}

// LiquidationPrice is the price at which the active mode's maintenance
// margin falls to the minimum required at that price.
func (p *FutureCrossIsolatePosition) LiquidationPrice() decimal.Decimal {
	return liquidationPrice(p.Quantity, p.OpenPrice, p.MaintMargin(), p.Instrument.MaintMarginRate, p.Instrument.TakerFee)
}

// BankruptcyPrice is the price at which the position's own equity reaches
// zero under the active mode.
func (p *FutureCrossIsolatePosition) BankruptcyPrice() decimal.Decimal {
	return bankruptcyPrice(p.Quantity, p.OpenPrice, p.MaintMargin(), p.Instrument.TakerFee)
}
