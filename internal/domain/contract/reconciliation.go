package contract

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rental/backend/internal/domain/shared/valueobject"
)

// ReconciliationPolicy is the accepted band for the payments total,
// expressed as ratios of the items total.
type ReconciliationPolicy struct {
	LowerRatio decimal.Decimal
	UpperRatio decimal.Decimal
}

// DefaultReconciliationPolicy accepts discounts up to 50% and surcharges
// up to 10%.
func DefaultReconciliationPolicy() ReconciliationPolicy {
	return ReconciliationPolicy{
		LowerRatio: decimal.NewFromFloat(0.5),
		UpperRatio: decimal.NewFromFloat(1.1),
	}
}

// Bounds returns the inclusive payments-total band for itemsTotal
func (p ReconciliationPolicy) Bounds(itemsTotal decimal.Decimal) (lower, upper decimal.Decimal) {
	return itemsTotal.Mul(p.LowerRatio), itemsTotal.Mul(p.UpperRatio)
}

// ReconciliationValidator checks every payment and the payments total
// against the items total.
type ReconciliationValidator struct {
	policy ReconciliationPolicy
}

// NewReconciliationValidator creates a validator for policy
func NewReconciliationValidator(policy ReconciliationPolicy) *ReconciliationValidator {
	return &ReconciliationValidator{policy: policy}
}

// Policy returns the band in use
func (v *ReconciliationValidator) Policy() ReconciliationPolicy {
	return v.policy
}

// Validate returns the per-payment field errors, and the aggregate
// "paymentTotal" error when every payment is individually valid but the
// totals do not reconcile.
func (v *ReconciliationValidator) Validate(items *ItemsLedger, payments *PaymentsLedger) ValidationErrors {
	errs := make(ValidationErrors)

	if payments.Len() == 0 {
		errs.Add("payments", "Add at least one payment")
		return errs
	}

	for i, p := range payments.payments {
		validatePayment(errs, i, p)
	}
	if !errs.IsEmpty() {
		return errs
	}

	itemsTotal := items.Total()
	paymentsTotal := payments.Total()
	lower, upper := v.policy.Bounds(itemsTotal)

	switch {
	case paymentsTotal.GreaterThan(upper):
		errs.Add("paymentTotal", fmt.Sprintf("Payments total (%s) is much higher than the items total (%s)",
			valueobject.NewMoneyBRL(paymentsTotal), valueobject.NewMoneyBRL(itemsTotal)))
	case paymentsTotal.LessThan(lower):
		errs.Add("paymentTotal", fmt.Sprintf("Payments total (%s) is much lower than the items total (%s)",
			valueobject.NewMoneyBRL(paymentsTotal), valueobject.NewMoneyBRL(itemsTotal)))
	}
	return errs
}

func validatePayment(errs ValidationErrors, index int, p PaymentDraft) {
	if !p.Method.IsValid() {
		errs.Add(PaymentKey(index, PaymentFieldMethod), "Select a payment method")
	}
	if !p.TotalValue.IsPositive() {
		errs.Add(PaymentKey(index, PaymentFieldTotalValue), "Total value must be greater than zero")
	}
	if !p.FinalValue.IsPositive() {
		errs.Add(PaymentKey(index, PaymentFieldFinalValue), "Final value must be greater than zero")
	}

	hasType := p.DiscountType != DiscountTypeNone
	hasValue := p.DiscountValue != nil
	switch {
	case hasType && !p.DiscountType.IsValid():
		errs.Add(PaymentKey(index, PaymentFieldDiscountType), "Invalid discount type")
	case hasType && !hasValue:
		errs.Add(PaymentKey(index, PaymentFieldDiscountValue), "Enter the discount value")
	case !hasType && hasValue:
		errs.Add(PaymentKey(index, PaymentFieldDiscountType), "Select the discount type")
	case hasType && hasValue:
		value := *p.DiscountValue
		switch p.DiscountType {
		case DiscountTypePercentage:
			if value.IsNegative() || value.GreaterThan(hundred) {
				errs.Add(PaymentKey(index, PaymentFieldDiscountValue), "Percentage must be between 0 and 100")
			}
		case DiscountTypeFixed:
			if value.IsNegative() {
				errs.Add(PaymentKey(index, PaymentFieldDiscountValue), "Discount cannot be negative")
			} else if value.GreaterThan(p.TotalValue) {
				errs.Add(PaymentKey(index, PaymentFieldDiscountValue), "Discount cannot exceed the total value")
			}
		}
	}
}
