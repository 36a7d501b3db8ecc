// Package money centralizes the decimal arithmetic used by the pricing
// resolver, the compliance checker, and quote aggregation. Every margin or
// discount computation in the platform goes through these helpers so the
// different call sites cannot drift apart.
package money

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// ApplyMargin returns cost * (1 + marginPercent/100).
func ApplyMargin(cost, marginPercent decimal.Decimal) decimal.Decimal {
	return cost.Mul(decimal.NewFromInt(1).Add(marginPercent.Div(hundred)))
}

// ApplyDiscount returns price * (1 - discountPercent/100).
func ApplyDiscount(price, discountPercent decimal.Decimal) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(1).Sub(discountPercent.Div(hundred)))
}

// MarginPercent returns (sell - cost) / cost * 100, or zero when cost is not
// positive. Cost prices are validated to be positive on write, so the zero
// branch is a guard against legacy rows.
func MarginPercent(sell, cost decimal.Decimal) decimal.Decimal {
	if !cost.IsPositive() {
		return decimal.Zero
	}
	return sell.Sub(cost).Div(cost).Mul(hundred)
}

// Min returns the smaller of a and b.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThanOrEqual(b) {
		return a
	}
	return b
}

// Round2 rounds half-up to two decimal places, the storage precision for
// all monetary columns.
func Round2(v decimal.Decimal) decimal.Decimal {
	return v.Round(2)
}
