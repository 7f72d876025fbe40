package pricing

import "github.com/shopspring/decimal"

// Scale is the number of decimal places money is rounded to.
const Scale = 2

var hundred = decimal.NewFromInt(100)

// ValidDiscount reports whether d is a usable discount percentage in (0, 100].
func ValidDiscount(d decimal.NullDecimal) bool {
	return d.Valid && d.Decimal.IsPositive() && d.Decimal.LessThanOrEqual(hundred)
}

// EffectivePrice applies a percentage discount to base. A missing, non-positive
// or over-100 discount leaves base unchanged. Callers that must reject such
// discounts check ValidDiscount themselves.
func EffectivePrice(base decimal.Decimal, discount decimal.NullDecimal) decimal.Decimal {
	if !ValidDiscount(discount) {
		return base.Round(Scale)
	}
	off := base.Mul(discount.Decimal).Div(hundred)
	price := base.Sub(off).Round(Scale)
	if price.IsNegative() {
		return decimal.Zero
	}
	return price
}

// LineTotal multiplies a unit price by quantity.
func LineTotal(unit decimal.Decimal, qty int32) decimal.Decimal {
	if qty <= 0 {
		return decimal.Zero
	}
	return unit.Mul(decimal.NewFromInt32(qty)).Round(Scale)
}

// Line is one priced cart or order row.
type Line struct {
	Qty       int32
	UnitPrice decimal.Decimal
}

// Summary aggregates computed pricing components. No tax or shipping is modeled,
// so Total always equals Subtotal.
type Summary struct {
	Subtotal decimal.Decimal
	Total    decimal.Decimal
}

// Compute sums the line totals.
func Compute(lines []Line) Summary {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(LineTotal(line.UnitPrice, line.Qty))
	}
	return Summary{Subtotal: subtotal, Total: subtotal}
}

// MinorUnits expresses amount in the smallest unit for the given scale factor
// (for example amount*100). The result is truncated toward zero.
func MinorUnits(amount decimal.Decimal, factor int64) int64 {
	return amount.Mul(decimal.NewFromInt(factor)).IntPart()
}

// FromMinorUnits converts a minor-unit amount back by dividing by factor.
func FromMinorUnits(minor int64, factor int64) decimal.Decimal {
	if factor == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(minor).Div(decimal.NewFromInt(factor))
}
