// Package money holds the fixed-point arithmetic used for prices, discounts
// and subtotals. Monetary values are shopspring decimals with two fraction
// digits; binary floats are never used for money.
package money

import "github.com/shopspring/decimal"

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// Subtotal returns quantity * unitPrice * (1 - discountPercent/100) rounded to
// 2 decimal places. Out-of-domain input (negative quantity or price, discount
// outside [0,100]) degrades to zero instead of returning an error: header and
// line validation is the orchestrator's job, this is only the last-resort safe
// value for a malformed line.
func Subtotal(quantity int, unitPrice, discountPercent decimal.Decimal) decimal.Decimal {
	if quantity < 0 || unitPrice.IsNegative() {
		return decimal.Zero
	}
	if discountPercent.IsNegative() || discountPercent.GreaterThan(hundred) {
		return decimal.Zero
	}
	base := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	factor := one.Sub(discountPercent.Div(hundred))
	return base.Mul(factor).Round(2)
}

// SubtotalStrings is Subtotal for raw form input. Absent or non-numeric price
// or discount degrades the result to zero.
func SubtotalStrings(quantity int, unitPrice, discountPercent string) decimal.Decimal {
	price, err := decimal.NewFromString(unitPrice)
	if err != nil {
		return decimal.Zero
	}
	disc, err := decimal.NewFromString(discountPercent)
	if err != nil {
		return decimal.Zero
	}
	return Subtotal(quantity, price, disc)
}

// ParseAmount parses a submitted monetary or percentage value, tolerating the
// empty string as zero. Other malformed input returns zero and ok=false so the
// caller can decide whether to degrade or reject.
func ParseAmount(s string) (decimal.Decimal, bool) {
	if s == "" {
		return decimal.Zero, true
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Sum adds decimals; the zero-length sum is decimal zero.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
