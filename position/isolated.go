package position

import (
	"github.com/shopspring/decimal"

	"github.com/monkbacktest/engine/instrument"
	"github.com/monkbacktest/engine/simerrors"
)

// IsolatedPosition backs its margin with a fixed amount the user sets,
// independent of the rest of the account's equity.
type IsolatedPosition struct {
	FutureBasePosition
	Account     AccountView
	maintMargin decimal.Decimal
}

// NewIsolatedPosition returns a flat isolated position on inst with zero
// maintenance margin; callers must SetMaintMargin or SetLeverage before it
// can safely carry a nonzero quantity.
func NewIsolatedPosition(inst *instrument.Instrument, account AccountView) *IsolatedPosition {
	return &IsolatedPosition{
		FutureBasePosition: *NewFutureBasePosition(inst),
		Account:            account,
	}
}

// MaintMargin is the user-set fixed margin.
func (p *IsolatedPosition) MaintMargin() decimal.Decimal {
	return p.maintMargin
}

// PositionMargin equals MaintMargin for an isolated position: the fixed
// allocation is exactly what it contributes to the account aggregate.
func (p *IsolatedPosition) PositionMargin() decimal.Decimal {
	return p.maintMargin
}

// Leverage is market value divided by the maintenance margin backing it.
func (p *IsolatedPosition) Leverage() decimal.Decimal {
	if p.maintMargin.IsZero() {
		return decimal.Zero
	}
	return p.MarketValue().Div(p.maintMargin)
}

// SetMaintMargin sets the fixed margin directly. It must cover at least the
// minimum maintenance margin at the current market value, and must not
// exceed the account's available balance (margin the account does not
// presently have free cannot be pledged to this position).
func (p *IsolatedPosition) SetMaintMargin(m decimal.Decimal) error {
	min := p.MinLastMaintMargin()
	if m.LessThan(min) {
		return simerrors.Newf(simerrors.MarginNotEnough, "maint_margin %s is less than minimum maintenance margin %s", m, min)
	}
	available := p.Account.AvailableBalance()
	if m.GreaterThan(available) {
		return simerrors.Newf(simerrors.MarginNotEnough, "maint_margin %s exceeds available balance %s", m, available)
	}
	p.maintMargin = m
	return nil
}

// SetLeverage sets the fixed margin to market_value / leverage, subject to
// the same bounds as SetMaintMargin.
func (p *IsolatedPosition) SetLeverage(leverage decimal.Decimal) error {
	if !leverage.IsPositive() {
		return simerrors.Newf(simerrors.SettingError, "leverage must be positive, got %s", leverage)
	}
	return p.SetMaintMargin(p.MarketValue().Div(leverage))
}

// LiquidationPrice is the price at which this position's fixed maintenance
// margin falls to the minimum required at that price.
func (p *IsolatedPosition) LiquidationPrice() decimal.Decimal {
	return liquidationPrice(p.Quantity, p.OpenPrice, p.maintMargin, p.Instrument.MaintMarginRate, p.Instrument.TakerFee)
}

// BankruptcyPrice is the price at which this position's own equity reaches
// zero.
func (p *IsolatedPosition) BankruptcyPrice() decimal.Decimal {
	return bankruptcyPrice(p.Quantity, p.OpenPrice, p.maintMargin, p.Instrument.TakerFee)
}
