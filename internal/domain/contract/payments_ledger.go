package contract

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rental/backend/internal/domain/shared"
)

// PaymentField names an editable field of a payment row
type PaymentField string

const (
	PaymentFieldMethod        PaymentField = "method"
	PaymentFieldTotalValue    PaymentField = "totalValue"
	PaymentFieldDiscountType  PaymentField = "discountType"
	PaymentFieldDiscountValue PaymentField = "discountValue"
	PaymentFieldFinalValue    PaymentField = "finalValue"
	PaymentFieldNotes         PaymentField = "notes"
)

// PaymentDraft is an editable payment entry.
// DiscountType and DiscountValue are expected to be set together.
type PaymentDraft struct {
	Method        PaymentMethod    `json:"method"`
	TotalValue    decimal.Decimal  `json:"totalValue"`
	DiscountType  DiscountType     `json:"discountType,omitempty"`
	DiscountValue *decimal.Decimal `json:"discountValue,omitempty"`
	FinalValue    decimal.Decimal  `json:"finalValue"`
	Notes         string           `json:"notes,omitempty"`
}

// HasDiscount reports whether a complete discount is configured
func (p PaymentDraft) HasDiscount() bool {
	return p.DiscountType != DiscountTypeNone && p.DiscountValue != nil
}

func (p *PaymentDraft) recompute() {
	p.FinalValue = CalculateFinalValue(p.TotalValue, p.DiscountType, p.DiscountValue)
}

// PaymentsLedger is the ordered list of payments of a draft
type PaymentsLedger struct {
	payments []PaymentDraft
}

// NewPaymentsLedger creates an empty ledger
func NewPaymentsLedger() *PaymentsLedger {
	return &PaymentsLedger{}
}

// Len returns the number of payments
func (l *PaymentsLedger) Len() int {
	return len(l.payments)
}

// Payments returns a copy of the payments in order
func (l *PaymentsLedger) Payments() []PaymentDraft {
	out := make([]PaymentDraft, len(l.payments))
	copy(out, l.payments)
	return out
}

// Payment returns the payment at index
func (l *PaymentsLedger) Payment(index int) PaymentDraft {
	l.mustIndex(index)
	return l.payments[index]
}

// AddPayment appends a PIX payment whose total and final value are seeded
// with itemsTotal, and returns its index.
func (l *PaymentsLedger) AddPayment(itemsTotal decimal.Decimal) int {
	l.payments = append(l.payments, PaymentDraft{
		Method:     PaymentMethodPix,
		TotalValue: itemsTotal,
		FinalValue: itemsTotal,
	})
	return len(l.payments) - 1
}

// SetMethod assigns the payment method
func (l *PaymentsLedger) SetMethod(index int, method PaymentMethod) {
	l.mustIndex(index)
	l.payments[index].Method = method
}

// SetTotalValue assigns the gross amount and re-derives the final value
func (l *PaymentsLedger) SetTotalValue(index int, total decimal.Decimal) {
	l.mustIndex(index)
	p := &l.payments[index]
	p.TotalValue = total
	p.recompute()
}

// SetDiscountType assigns the discount type. Clearing it also clears the
// discount value. The final value is re-derived either way.
func (l *PaymentsLedger) SetDiscountType(index int, discountType DiscountType) {
	l.mustIndex(index)
	p := &l.payments[index]
	p.DiscountType = discountType
	if discountType == DiscountTypeNone {
		p.DiscountValue = nil
	}
	p.recompute()
}

// SetDiscountValue assigns the discount value (nil clears it) and
// re-derives the final value.
func (l *PaymentsLedger) SetDiscountValue(index int, value *decimal.Decimal) {
	l.mustIndex(index)
	p := &l.payments[index]
	if value != nil {
		v := *value
		value = &v
	}
	p.DiscountValue = value
	p.recompute()
}

// SetFinalValue overrides the derived final value
func (l *PaymentsLedger) SetFinalValue(index int, value decimal.Decimal) {
	l.mustIndex(index)
	l.payments[index].FinalValue = value
}

// SetNotes assigns the free-text notes
func (l *PaymentsLedger) SetNotes(index int, notes string) {
	l.mustIndex(index)
	l.payments[index].Notes = notes
}

// SetPayment assigns a field from its textual form value
func (l *PaymentsLedger) SetPayment(index int, field PaymentField, raw string) error {
	l.mustIndex(index)
	trimmed := strings.TrimSpace(raw)

	switch field {
	case PaymentFieldMethod:
		l.SetMethod(index, PaymentMethod(trimmed))
	case PaymentFieldDiscountType:
		l.SetDiscountType(index, DiscountType(trimmed))
	case PaymentFieldNotes:
		l.SetNotes(index, raw)
	case PaymentFieldDiscountValue:
		if trimmed == "" {
			l.SetDiscountValue(index, nil)
			return nil
		}
		v, err := parseAmount(field, trimmed)
		if err != nil {
			return err
		}
		l.SetDiscountValue(index, &v)
	case PaymentFieldTotalValue:
		v, err := parseAmount(field, trimmed)
		if err != nil {
			return err
		}
		l.SetTotalValue(index, v)
	case PaymentFieldFinalValue:
		v, err := parseAmount(field, trimmed)
		if err != nil {
			return err
		}
		l.SetFinalValue(index, v)
	default:
		return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("unknown payment field %q", field))
	}
	return nil
}

// RemovePayment deletes the payment at index, shifting later payments down
func (l *PaymentsLedger) RemovePayment(index int) {
	l.mustIndex(index)
	l.payments = append(l.payments[:index], l.payments[index+1:]...)
}

// Total returns the sum of final values over all payments
func (l *PaymentsLedger) Total() decimal.Decimal {
	total := decimal.Zero
	for _, p := range l.payments {
		total = total.Add(p.FinalValue)
	}
	return total
}

func (l *PaymentsLedger) restore(payments []PaymentDraft) {
	l.payments = payments
}

func (l *PaymentsLedger) mustIndex(index int) {
	if index < 0 || index >= len(l.payments) {
		panic(fmt.Sprintf("contract: payment index %d out of range [0,%d)", index, len(l.payments)))
	}
}

func parseAmount(field PaymentField, raw string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("invalid %s %q", field, raw))
	}
	return v, nil
}
