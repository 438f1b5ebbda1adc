package position

import (
	"github.com/shopspring/decimal"

	"github.com/monkbacktest/engine/instrument"
	"github.com/monkbacktest/engine/simerrors"
)

// CrossPosition backs its margin with the account's entire free equity.
// Its maintenance margin is not an independent quantity: it is whatever
// the account currently has available, plus what the position already
// committed at open. This makes maint_margin a function of account state
// rather than something the position stores, so MaintMargin recomputes it
// on every read instead of caching a field.
type CrossPosition struct {
	FutureBasePosition
	Account AccountView
}

// NewCrossPosition returns a flat cross-margined position on inst.
func NewCrossPosition(inst *instrument.Instrument, account AccountView) *CrossPosition {
	return &CrossPosition{
		FutureBasePosition: *NewFutureBasePosition(inst),
		Account:            account,
	}
}

// MaintMargin is all the account's free equity plus the margin already
// committed at the position's open price.
func (p *CrossPosition) MaintMargin() decimal.Decimal {
	return p.Account.AvailableBalance().Add(p.OpenInitMargin())
}

// PositionMargin is the contribution this position makes to the account's
// position_margin aggregate: market value scaled by (init rate + 2×taker
// fee), mirroring the order_margin reservation's fee treatment.
func (p *CrossPosition) PositionMargin() decimal.Decimal {
	rate := p.Instrument.InitMarginRate.Add(two.Mul(p.Instrument.TakerFee))
	return p.MarketValue().Mul(rate)
}

// Leverage is undefined for a cross position: all free equity backs it, so
// there is no fixed ratio to report.
func (p *CrossPosition) Leverage() (decimal.Decimal, error) {
	return decimal.Zero, simerrors.New(simerrors.MarginUndefined, "leverage is undefined on a cross position")
}

// SetMaintMargin always fails: a cross position's maintenance margin is
// derived from account state, not settable directly.
func (p *CrossPosition) SetMaintMargin(decimal.Decimal) error {
	return simerrors.New(simerrors.MarginUndefined, "cannot set maint_margin directly on a cross position")
}

// LiquidationPrice is the price at which this position's maintenance
// margin falls to its minimum.
func (p *CrossPosition) LiquidationPrice() decimal.Decimal {
	return liquidationPrice(p.Quantity, p.OpenPrice, p.MaintMargin(), p.Instrument.MaintMarginRate, p.Instrument.TakerFee)
}

// BankruptcyPrice is the price at which this position's own equity reaches
// zero.
func (p *CrossPosition) BankruptcyPrice() decimal.Decimal {
	return bankruptcyPrice(p.Quantity, p.OpenPrice, p.MaintMargin(), p.Instrument.TakerFee)
}
