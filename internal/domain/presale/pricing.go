package presale

import (
	"github.com/shopspring/decimal"
)

// Pricing derivation for pre-sale lots. All functions are pure; mutators on the
// lot aggregate call them after every change to a field that feeds a derived
// value, never one total without the others.

var oneHundred = decimal.NewFromInt(100)

// FinalPrice derives the sale price from a unit cost and a markup percentage:
// base * (1 + markup/100).
func FinalPrice(base, markupPct decimal.Decimal) decimal.Decimal {
	return base.Mul(decimal.NewFromInt(1).Add(markupPct.Div(oneHundred)))
}

// MarkupFromFinal back-solves the markup percentage implied by an explicit
// final price: (final - base) / base * 100. A zero base yields zero markup.
func MarkupFromFinal(base, final decimal.Decimal) decimal.Decimal {
	if base.IsZero() {
		return decimal.Zero
	}
	return final.Sub(base).Div(base).Mul(oneHundred)
}

// EffectivePrice applies the price precedence for a lot: the pre-sale price
// wins while the lot is still active, then the normal price, then the
// markup-derived price. Prices must be positive to take precedence.
func EffectivePrice(status LotStatus, preSalePrice, normalPrice, markupDerived decimal.Decimal) decimal.Decimal {
	if status == LotStatusActive && preSalePrice.IsPositive() {
		return preSalePrice
	}
	if normalPrice.IsPositive() {
		return normalPrice
	}
	return markupDerived
}

// Totals holds the three derived lot totals. They are always computed
// together; callers never update one without the others.
type Totals struct {
	SaleAmount decimal.Decimal
	CostAmount decimal.Decimal
	Profit     decimal.Decimal
}

// ComputeTotals derives the lot totals from the effective unit prices and the
// total quantity.
func ComputeTotals(finalPrice, basePrice decimal.Decimal, quantity int64) Totals {
	qty := decimal.NewFromInt(quantity)
	sale := finalPrice.Mul(qty)
	cost := basePrice.Mul(qty)
	return Totals{
		SaleAmount: sale,
		CostAmount: cost,
		Profit:     sale.Sub(cost),
	}
}
