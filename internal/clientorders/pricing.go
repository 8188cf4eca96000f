package clientorders

import (
	"github.com/shopspring/decimal"

	"github.com/shohaib1996/better-edible-backend/pkg/enums"
)

var hundred = decimal.NewFromInt(100)

// discountScale matches the discount column. Percentages like 12.345 keep
// their precision; money fields are rounded to cents.
const discountScale = 4

// Totals is the money summary of an order. Money fields are rounded to cents.
type Totals struct {
	Subtotal       decimal.Decimal
	Discount       decimal.Decimal
	DiscountType   enums.DiscountType
	DiscountAmount decimal.Decimal
	Total          decimal.Decimal
}

// LineTotal is quantity times unit price, rounded to cents.
func LineTotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}

// ComputeTotals runs the pricing pipeline over already rounded line totals.
// A percentage discount applies to the subtotal; a flat discount is taken as
// is. The total never goes below zero.
func ComputeTotals(lineTotals []decimal.Decimal, discount decimal.Decimal, discountType enums.DiscountType) (Totals, error) {
	if discountType == "" {
		discountType = enums.DiscountFlat
	}
	if !discountType.IsValid() {
		return Totals{}, ErrInvalidDiscount
	}
	if discount.IsNegative() {
		return Totals{}, ErrInvalidDiscount
	}
	if discountType == enums.DiscountPercentage && discount.GreaterThan(hundred) {
		return Totals{}, ErrInvalidDiscount
	}

	subtotal := decimal.Zero
	for _, line := range lineTotals {
		subtotal = subtotal.Add(line)
	}
	subtotal = subtotal.Round(2)

	amount := discount.Round(2)
	if discountType == enums.DiscountPercentage {
		amount = subtotal.Mul(discount).Div(hundred).Round(2)
	}
	total := subtotal.Sub(amount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	return Totals{
		Subtotal:       subtotal,
		Discount:       discount.Round(discountScale),
		DiscountType:   discountType,
		DiscountAmount: amount,
		Total:          total.Round(2),
	}, nil
}
