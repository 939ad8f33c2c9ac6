package contract

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// CalculateFinalValue derives the amount actually charged for a payment.
//
// PERCENTAGE charges total * (1 - value/100), FIXED charges total - value,
// and both are floored at zero. Without a discount type or value the total
// is returned unchanged. No rounding is applied.
func CalculateFinalValue(total decimal.Decimal, discountType DiscountType, discountValue *decimal.Decimal) decimal.Decimal {
	if discountValue == nil {
		return total
	}

	var final decimal.Decimal
	switch discountType {
	case DiscountTypePercentage:
		final = total.Mul(hundred.Sub(*discountValue)).Div(hundred)
	case DiscountTypeFixed:
		final = total.Sub(*discountValue)
	default:
		return total
	}

	if final.IsNegative() {
		return decimal.Zero
	}
	return final
}
