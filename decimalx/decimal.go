// Package decimalx holds the numeric and time primitives shared by the
// accounting model: decimal helpers and UTC-aware instant parsing. All
// money, price and quantity arithmetic in this module goes through
// shopspring/decimal — never float64 — so the pinned test vectors round-trip
// exactly.
package decimalx

import "github.com/shopspring/decimal"

// Zero is the canonical zero decimal, re-exported for readability at call
// sites that already import decimalx for other helpers.
var Zero = decimal.Zero

// Abs returns the absolute value of d.
func Abs(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return d.Neg()
	}
	return d
}

// Sign returns -1, 0 or 1 matching d's sign.
func Sign(d decimal.Decimal) int {
	switch {
	case d.IsPositive():
		return 1
	case d.IsNegative():
		return -1
	default:
		return 0
	}
}

// SameSign reports whether a and b are both positive, both negative, or
// both zero (zero is considered same-sign as anything, matching the "flat
// position" classification rule where a flat position has no side).
func SameSign(a, b decimal.Decimal) bool {
	return Sign(a) == Sign(b) || a.IsZero() || b.IsZero()
}

// WeightedAverage returns (aQty*aPrice + bQty*bPrice) / (aQty+bQty), the
// open-price update rule used when a trade opens or adds to a position on
// the same side.
func WeightedAverage(aQty, aPrice, bQty, bPrice decimal.Decimal) decimal.Decimal {
	totalQty := aQty.Add(bQty)
	if totalQty.IsZero() {
		return decimal.Zero
	}
	num := aQty.Mul(aPrice).Add(bQty.Mul(bPrice))
	return num.Div(totalQty)
}

// ApproxEqual reports whether got and want differ by no more than eps,
// mirroring pytest.approx for the pinned liquidation/bankruptcy price
// vectors in the spec's testable properties.
func ApproxEqual(got, want, eps decimal.Decimal) bool {
	return Abs(got.Sub(want)).LessThanOrEqual(eps)
}
