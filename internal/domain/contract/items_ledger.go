package contract

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rental/backend/internal/domain/shared"
)

// ItemField names an editable field of an item row
type ItemField string

const (
	ItemFieldProductID ItemField = "productId"
	ItemFieldQuantity  ItemField = "quantity"
	ItemFieldUnitValue ItemField = "unitValue"
)

// ItemDraft is an editable line item. A uuid.Nil ProductID means no
// product has been chosen yet.
type ItemDraft struct {
	ProductID uuid.UUID       `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitValue decimal.Decimal `json:"unitValue"`
}

// Subtotal returns quantity times unit value
func (i ItemDraft) Subtotal() decimal.Decimal {
	return i.UnitValue.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ItemsLedger is the ordered list of line items of a draft
type ItemsLedger struct {
	items   []ItemDraft
	catalog ProductCatalog
}

// NewItemsLedger creates an empty ledger that prices products from catalog
func NewItemsLedger(catalog ProductCatalog) *ItemsLedger {
	return &ItemsLedger{catalog: catalog}
}

// Len returns the number of items
func (l *ItemsLedger) Len() int {
	return len(l.items)
}

// Items returns a copy of the items in order
func (l *ItemsLedger) Items() []ItemDraft {
	out := make([]ItemDraft, len(l.items))
	copy(out, l.items)
	return out
}

// Item returns the item at index
func (l *ItemsLedger) Item(index int) ItemDraft {
	l.mustIndex(index)
	return l.items[index]
}

// AddItem appends a blank item (no product, quantity 1, unit value 0)
// and returns its index.
func (l *ItemsLedger) AddItem() int {
	l.items = append(l.items, ItemDraft{Quantity: 1, UnitValue: decimal.Zero})
	return len(l.items) - 1
}

// SetProduct assigns a product and overwrites the unit value with the
// product's current rental value, or zero when the product is unknown.
func (l *ItemsLedger) SetProduct(index int, productID uuid.UUID) {
	l.mustIndex(index)
	price := decimal.Zero
	if l.catalog != nil {
		if v, ok := l.catalog.RentalValue(productID); ok {
			price = v
		}
	}
	l.items[index].ProductID = productID
	l.items[index].UnitValue = price
}

// SetQuantity assigns the quantity of the item at index
func (l *ItemsLedger) SetQuantity(index int, quantity int) {
	l.mustIndex(index)
	l.items[index].Quantity = quantity
}

// SetUnitValue overrides the unit value of the item at index
func (l *ItemsLedger) SetUnitValue(index int, value decimal.Decimal) {
	l.mustIndex(index)
	l.items[index].UnitValue = value
}

// SetItem assigns a field from its textual form value
func (l *ItemsLedger) SetItem(index int, field ItemField, raw string) error {
	l.mustIndex(index)
	raw = strings.TrimSpace(raw)

	switch field {
	case ItemFieldProductID:
		if raw == "" {
			l.SetProduct(index, uuid.Nil)
			return nil
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("invalid product id %q", raw))
		}
		l.SetProduct(index, id)
	case ItemFieldQuantity:
		qty, err := strconv.Atoi(raw)
		if err != nil {
			return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("invalid quantity %q", raw))
		}
		l.SetQuantity(index, qty)
	case ItemFieldUnitValue:
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("invalid unit value %q", raw))
		}
		l.SetUnitValue(index, v)
	default:
		return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("unknown item field %q", field))
	}
	return nil
}

// RemoveItem deletes the item at index, shifting later items down
func (l *ItemsLedger) RemoveItem(index int) {
	l.mustIndex(index)
	l.items = append(l.items[:index], l.items[index+1:]...)
}

// Total returns the sum of quantity * unitValue over all items
func (l *ItemsLedger) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range l.items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// restore replaces the items wholesale, used when hydrating from a contract
func (l *ItemsLedger) restore(items []ItemDraft) {
	l.items = items
}

func (l *ItemsLedger) mustIndex(index int) {
	if index < 0 || index >= len(l.items) {
		panic(fmt.Sprintf("contract: item index %d out of range [0,%d)", index, len(l.items)))
	}
}
