package contract

import (
	"github.com/google/uuid"
	"github.com/rental/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ReviewSummary is a read-only rendition of a draft for the review step
type ReviewSummary struct {
	ClientName      string
	EventName       string
	LocationName    string
	Status          Status
	StatusLabel     string
	FittingDate     string
	PickupDate      string
	ReturnDate      string
	NeedsAdjustment bool
	Observations    string
	Items           []ReviewItem
	Payments        []ReviewPayment
	ItemsTotal      decimal.Decimal
	PaymentsTotal   decimal.Decimal
	// Difference is PaymentsTotal minus ItemsTotal; negative when discounted
	Difference decimal.Decimal
}

// ReviewItem is an item line of the review summary
type ReviewItem struct {
	ProductID   uuid.UUID
	ProductCode string
	ProductName string
	Quantity    int
	UnitValue   decimal.Decimal
	Subtotal    decimal.Decimal
}

// ReviewPayment is a payment line of the review summary
type ReviewPayment struct {
	Method        PaymentMethod
	MethodLabel   string
	TotalValue    decimal.Decimal
	DiscountType  DiscountType
	DiscountValue *decimal.Decimal
	// DiscountLabel renders the discount, e.g. "10%" or "R$ 15.00"
	DiscountLabel string
	FinalValue    decimal.Decimal
	Notes         string
}

// Review builds the summary of d, resolving names through refs when given
func Review(d *Draft, refs *ReferenceData) ReviewSummary {
	h := d.header
	summary := ReviewSummary{
		Status:          h.Status,
		StatusLabel:     h.Status.Label(),
		NeedsAdjustment: h.NeedsAdjustment,
		Observations:    h.Observations,
		ItemsTotal:      d.items.Total(),
		PaymentsTotal:   d.payments.Total(),
	}
	summary.Difference = summary.PaymentsTotal.Sub(summary.ItemsTotal)
	if !h.PickupDate.IsZero() {
		summary.PickupDate = FormatDate(h.PickupDate)
	}
	if !h.ReturnDate.IsZero() {
		summary.ReturnDate = FormatDate(h.ReturnDate)
	}
	if h.FittingDate != nil {
		summary.FittingDate = FormatDate(*h.FittingDate)
	}

	if refs != nil {
		if c, ok := refs.FindClient(h.ClientID); ok {
			summary.ClientName = c.Name
		}
		if h.EventID != nil {
			if e, ok := refs.FindEvent(*h.EventID); ok {
				summary.EventName = e.Name
			}
		}
		if h.LocationID != nil {
			if l, ok := refs.FindLocation(*h.LocationID); ok {
				summary.LocationName = l.Name
			}
		}
	}

	summary.Items = make([]ReviewItem, 0, d.items.Len())
	for _, item := range d.items.items {
		line := ReviewItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitValue: item.UnitValue,
			Subtotal:  item.Subtotal(),
		}
		if refs != nil {
			if p, ok := refs.FindProduct(item.ProductID); ok {
				line.ProductCode = p.Code
				line.ProductName = p.Name
			}
		}
		summary.Items = append(summary.Items, line)
	}

	summary.Payments = make([]ReviewPayment, 0, d.payments.Len())
	for _, p := range d.payments.payments {
		summary.Payments = append(summary.Payments, ReviewPayment{
			Method:        p.Method,
			MethodLabel:   p.Method.Label(),
			TotalValue:    p.TotalValue,
			DiscountType:  p.DiscountType,
			DiscountValue: copyDecimal(p.DiscountValue),
			DiscountLabel: DiscountLabel(p.DiscountType, p.DiscountValue),
			FinalValue:    p.FinalValue,
			Notes:         p.Notes,
		})
	}
	return summary
}

// DiscountLabel renders a discount for display, "12.5%" or "R$ 15.00".
// It returns an empty string when no discount is set.
func DiscountLabel(t DiscountType, v *decimal.Decimal) string {
	if v == nil {
		return ""
	}
	switch t {
	case DiscountTypePercentage:
		return v.String() + "%"
	case DiscountTypeFixed:
		return valueobject.NewMoneyBRL(*v).Format()
	}
	return ""
}
