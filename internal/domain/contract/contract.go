package contract

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Contract is a persisted rental contract as returned by the contract store
type Contract struct {
	ID              uuid.UUID
	ClientID        uuid.UUID
	EventID         *uuid.UUID
	LocationID      *uuid.UUID
	Status          Status
	FittingDate     *time.Time
	PickupDate      time.Time
	ReturnDate      time.Time
	NeedsAdjustment bool
	Observations    string
	Items           []ContractItem
	Payments        []Payment
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ContractItem is a persisted line item
type ContractItem struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	Quantity  int
	UnitValue decimal.Decimal
}

// Subtotal returns quantity times unit value
func (i ContractItem) Subtotal() decimal.Decimal {
	return i.UnitValue.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Payment is a persisted payment entry
type Payment struct {
	ID            uuid.UUID
	Method        PaymentMethod
	TotalValue    decimal.Decimal
	DiscountType  DiscountType
	DiscountValue *decimal.Decimal
	FinalValue    decimal.Decimal
	Notes         string
}

// Total returns the sum of all payment final values
func (c *Contract) Total() decimal.Decimal {
	total := decimal.Zero
	for _, p := range c.Payments {
		total = total.Add(p.FinalValue)
	}
	return total
}

// ItemsTotal returns the sum of all item subtotals
func (c *Contract) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// ProductIDs returns the distinct products attached to the contract
func (c *Contract) ProductIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(c.Items))
	ids := make([]uuid.UUID, 0, len(c.Items))
	for _, item := range c.Items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}
