package contract

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rental/backend/internal/domain/shared"
)

// DefaultRentalDays is the default distance between pickup and return
const DefaultRentalDays = 7

// HeaderField names an editable header field
type HeaderField string

const (
	HeaderFieldClientID        HeaderField = "clientId"
	HeaderFieldEventID         HeaderField = "eventId"
	HeaderFieldLocationID      HeaderField = "locationId"
	HeaderFieldStatus          HeaderField = "status"
	HeaderFieldFittingDate     HeaderField = "fittingDate"
	HeaderFieldPickupDate      HeaderField = "pickupDate"
	HeaderFieldReturnDate      HeaderField = "returnDate"
	HeaderFieldNeedsAdjustment HeaderField = "needsAdjustment"
	HeaderFieldObservations    HeaderField = "observations"
)

// Header holds the contract-level fields of a draft.
// A zero PickupDate or ReturnDate means the date is missing.
type Header struct {
	ClientID        uuid.UUID  `json:"clientId"`
	EventID         *uuid.UUID `json:"eventId,omitempty"`
	LocationID      *uuid.UUID `json:"locationId,omitempty"`
	Status          Status     `json:"status"`
	FittingDate     *time.Time `json:"fittingDate,omitempty"`
	PickupDate      time.Time  `json:"pickupDate"`
	ReturnDate      time.Time  `json:"returnDate"`
	NeedsAdjustment bool       `json:"needsAdjustment"`
	Observations    string     `json:"observations,omitempty"`
}

// Draft is the in-progress, not yet persisted contract being composed.
// It keeps the surfaced validation errors in lockstep with its item and
// payment rows.
type Draft struct {
	contractID *uuid.UUID
	header     Header
	items      *ItemsLedger
	payments   *PaymentsLedger
	errors     ValidationErrors
}

// NewDraft creates a draft for a new contract: status ACTIVE, pickup on
// today, return rentalDays later, no items and no payments.
func NewDraft(today time.Time, rentalDays int, catalog ProductCatalog) *Draft {
	if rentalDays <= 0 {
		rentalDays = DefaultRentalDays
	}
	pickup := DateOnly(today)
	return &Draft{
		header: Header{
			Status:     StatusActive,
			PickupDate: pickup,
			ReturnDate: pickup.AddDate(0, 0, rentalDays),
		},
		items:    NewItemsLedger(catalog),
		payments: NewPaymentsLedger(),
		errors:   make(ValidationErrors),
	}
}

// HydrateDraft creates a draft that edits an existing contract. Stored
// final values are kept as they are, not re-derived.
func HydrateDraft(c *Contract, catalog ProductCatalog) *Draft {
	id := c.ID
	d := &Draft{
		contractID: &id,
		header: Header{
			ClientID:        c.ClientID,
			EventID:         copyUUID(c.EventID),
			LocationID:      copyUUID(c.LocationID),
			Status:          c.Status,
			FittingDate:     copyTime(c.FittingDate),
			PickupDate:      DateOnly(c.PickupDate),
			ReturnDate:      DateOnly(c.ReturnDate),
			NeedsAdjustment: c.NeedsAdjustment,
			Observations:    c.Observations,
		},
		items:    NewItemsLedger(catalog),
		payments: NewPaymentsLedger(),
		errors:   make(ValidationErrors),
	}
	if d.header.FittingDate != nil {
		fitting := DateOnly(*d.header.FittingDate)
		d.header.FittingDate = &fitting
	}

	items := make([]ItemDraft, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, ItemDraft{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitValue: item.UnitValue,
		})
	}
	d.items.restore(items)

	payments := make([]PaymentDraft, 0, len(c.Payments))
	for _, p := range c.Payments {
		payments = append(payments, PaymentDraft{
			Method:        p.Method,
			TotalValue:    p.TotalValue,
			DiscountType:  p.DiscountType,
			DiscountValue: copyDecimal(p.DiscountValue),
			FinalValue:    p.FinalValue,
			Notes:         p.Notes,
		})
	}
	d.payments.restore(payments)
	return d
}

// ContractID returns the ID of the contract being edited
func (d *Draft) ContractID() (uuid.UUID, bool) {
	if d.contractID == nil {
		return uuid.Nil, false
	}
	return *d.contractID, true
}

// IsEdit reports whether the draft edits an existing contract
func (d *Draft) IsEdit() bool {
	return d.contractID != nil
}

// Header returns a copy of the header fields
func (d *Draft) Header() Header {
	h := d.header
	h.EventID = copyUUID(h.EventID)
	h.LocationID = copyUUID(h.LocationID)
	h.FittingDate = copyTime(h.FittingDate)
	return h
}

// Items returns the items ledger
func (d *Draft) Items() *ItemsLedger {
	return d.items
}

// Payments returns the payments ledger
func (d *Draft) Payments() *PaymentsLedger {
	return d.payments
}

// Errors returns a copy of the currently surfaced validation errors
func (d *Draft) Errors() ValidationErrors {
	return d.errors.Clone()
}

// SetErrors replaces the surfaced validation errors
func (d *Draft) SetErrors(errs ValidationErrors) {
	if errs == nil {
		errs = make(ValidationErrors)
	}
	d.errors = errs.Clone()
}

// SetFormError surfaces a form-level error such as a failed save
func (d *Draft) SetFormError(message string) {
	d.errors["form"] = message
}

// SetClient assigns the client
func (d *Draft) SetClient(id uuid.UUID) {
	d.header.ClientID = id
	d.clear(string(HeaderFieldClientID))
}

// SetEvent assigns or clears the event
func (d *Draft) SetEvent(id *uuid.UUID) {
	d.header.EventID = copyUUID(id)
	d.clear(string(HeaderFieldEventID))
}

// SetLocation assigns or clears the location
func (d *Draft) SetLocation(id *uuid.UUID) {
	d.header.LocationID = copyUUID(id)
	d.clear(string(HeaderFieldLocationID))
}

// SetStatus assigns the contract status
func (d *Draft) SetStatus(status Status) {
	d.header.Status = status
	d.clear(string(HeaderFieldStatus))
}

// SetFittingDate assigns or clears the fitting date
func (d *Draft) SetFittingDate(date *time.Time) {
	if date != nil {
		day := DateOnly(*date)
		date = &day
	}
	d.header.FittingDate = date
	d.clear(string(HeaderFieldFittingDate))
}

// SetPickupDate assigns the pickup date; the zero time clears it
func (d *Draft) SetPickupDate(date time.Time) {
	if !date.IsZero() {
		date = DateOnly(date)
	}
	d.header.PickupDate = date
	d.clear(string(HeaderFieldPickupDate))
}

// SetReturnDate assigns the return date; the zero time clears it
func (d *Draft) SetReturnDate(date time.Time) {
	if !date.IsZero() {
		date = DateOnly(date)
	}
	d.header.ReturnDate = date
	d.clear(string(HeaderFieldReturnDate))
}

// SetNeedsAdjustment assigns the adjustment flag
func (d *Draft) SetNeedsAdjustment(v bool) {
	d.header.NeedsAdjustment = v
	d.clear(string(HeaderFieldNeedsAdjustment))
}

// SetObservations assigns the free-text observations
func (d *Draft) SetObservations(v string) {
	d.header.Observations = v
	d.clear(string(HeaderFieldObservations))
}

// SetHeader assigns a header field from its textual form value.
// Empty values clear optional fields.
func (d *Draft) SetHeader(field HeaderField, raw string) error {
	trimmed := strings.TrimSpace(raw)

	switch field {
	case HeaderFieldClientID:
		id, err := parseOptionalUUID(field, trimmed)
		if err != nil {
			return err
		}
		if id == nil {
			d.SetClient(uuid.Nil)
		} else {
			d.SetClient(*id)
		}
	case HeaderFieldEventID:
		id, err := parseOptionalUUID(field, trimmed)
		if err != nil {
			return err
		}
		d.SetEvent(id)
	case HeaderFieldLocationID:
		id, err := parseOptionalUUID(field, trimmed)
		if err != nil {
			return err
		}
		d.SetLocation(id)
	case HeaderFieldStatus:
		status := Status(trimmed)
		if !status.IsValid() {
			return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("invalid status %q", trimmed))
		}
		d.SetStatus(status)
	case HeaderFieldFittingDate:
		date, err := parseOptionalDate(field, trimmed)
		if err != nil {
			return err
		}
		d.SetFittingDate(date)
	case HeaderFieldPickupDate:
		date, err := parseOptionalDate(field, trimmed)
		if err != nil {
			return err
		}
		d.SetPickupDate(derefTime(date))
	case HeaderFieldReturnDate:
		date, err := parseOptionalDate(field, trimmed)
		if err != nil {
			return err
		}
		d.SetReturnDate(derefTime(date))
	case HeaderFieldNeedsAdjustment:
		v, err := strconv.ParseBool(trimmed)
		if err != nil {
			return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("invalid needsAdjustment %q", trimmed))
		}
		d.SetNeedsAdjustment(v)
	case HeaderFieldObservations:
		d.SetObservations(raw)
	default:
		return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("unknown header field %q", field))
	}
	return nil
}

// AddItem appends a blank item and returns its index
func (d *Draft) AddItem() int {
	d.clear("items")
	return d.items.AddItem()
}

// SetItem assigns an item field from its textual form value
func (d *Draft) SetItem(index int, field ItemField, raw string) error {
	if err := d.items.SetItem(index, field, raw); err != nil {
		return err
	}
	d.clear(ItemKey(index, field))
	if field == ItemFieldProductID {
		d.clear(ItemKey(index, ItemFieldUnitValue))
	}
	return nil
}

// RemoveItem deletes the item at index together with its errors
func (d *Draft) RemoveItem(index int) {
	d.items.RemoveItem(index)
	d.errors.removeIndex("items", index)
}

// AddPayment appends a payment seeded with the current items total
func (d *Draft) AddPayment() int {
	d.clear("payments")
	return d.payments.AddPayment(d.items.Total())
}

// SetPayment assigns a payment field from its textual form value
func (d *Draft) SetPayment(index int, field PaymentField, raw string) error {
	if err := d.payments.SetPayment(index, field, raw); err != nil {
		return err
	}
	d.clear(PaymentKey(index, field))
	if field == PaymentFieldDiscountType {
		d.clear(PaymentKey(index, PaymentFieldDiscountValue))
	}
	return nil
}

// RemovePayment deletes the payment at index together with its errors
func (d *Draft) RemovePayment(index int) {
	d.payments.RemovePayment(index)
	d.errors.removeIndex("payments", index)
}

// AttachedProducts returns the products referenced by the draft items
func (d *Draft) AttachedProducts() []uuid.UUID {
	ids := make([]uuid.UUID, 0, d.items.Len())
	for _, item := range d.items.items {
		if item.ProductID != uuid.Nil {
			ids = append(ids, item.ProductID)
		}
	}
	return ids
}

func (d *Draft) clear(key string) {
	delete(d.errors, key)
}

func parseOptionalUUID(field HeaderField, raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("invalid %s %q", field, raw))
	}
	return &id, nil
}

func parseOptionalDate(field HeaderField, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	date, err := ParseDate(raw)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("invalid %s %q, expected YYYY-MM-DD", field, raw))
	}
	return &date, nil
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func copyUUID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func copyDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}
