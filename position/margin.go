package position

import (
	"github.com/shopspring/decimal"

	"github.com/monkbacktest/engine/decimalx"
)

// liquidationPrice solves maint_margin + Q·(L − O) − 2f·|Q|·L = maintMarginRate·|Q|·L
// for L, collecting terms: L = (Q·O − M) / (Q − (2f + mr)·|Q|). The same
// closed form holds for cross and isolated positions and for either side —
// Q's sign carries long/short, so there is no separate short-side formula.
func liquidationPrice(q, o, maintMargin, maintMarginRate, takerFee decimal.Decimal) decimal.Decimal {
	absQ := decimalx.Abs(q)
	denom := q.Sub(maintMarginRate.Add(two.Mul(takerFee)).Mul(absQ))
	if denom.IsZero() {
		return decimal.Zero
	}
	return q.Mul(o).Sub(maintMargin).Div(denom)
}

// bankruptcyPrice is liquidationPrice with the maintenance-margin-rate term
// dropped: the price at which the position's own equity, net of exit fees,
// reaches zero.
func bankruptcyPrice(q, o, maintMargin, takerFee decimal.Decimal) decimal.Decimal {
	absQ := decimalx.Abs(q)
	denom := q.Sub(two.Mul(takerFee).Mul(absQ))
	if denom.IsZero() {
		return decimal.Zero
	}
	return q.Mul(o).Sub(maintMargin).Div(denom)
}
