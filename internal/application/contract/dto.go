package contract

import (
	"time"

	"github.com/google/uuid"
	"github.com/rental/backend/internal/domain/contract"
	"github.com/shopspring/decimal"
)

// ============================================================================
// Outbound payloads
// ============================================================================

// ContractItemPayload is an item as sent to the contract store
type ContractItemPayload struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	UnitValue float64 `json:"unitValue"`
}

// PaymentPayload is a payment as sent to the contract store.
// Absent discounts are omitted, never sent as null or empty strings.
type PaymentPayload struct {
	Method        string   `json:"method"`
	TotalValue    float64  `json:"totalValue"`
	FinalValue    float64  `json:"finalValue"`
	DiscountType  *string  `json:"discountType,omitempty"`
	DiscountValue *float64 `json:"discountValue,omitempty"`
	Notes         *string  `json:"notes,omitempty"`
}

// CreateContractRequest is the payload that creates a contract
type CreateContractRequest struct {
	ClientID        string                `json:"clientId"`
	EventID         *string               `json:"eventId,omitempty"`
	LocationID      *string               `json:"locationId,omitempty"`
	Status          *string               `json:"status,omitempty"`
	FittingDate     *string               `json:"fittingDate,omitempty"`
	PickupDate      string                `json:"pickupDate"`
	ReturnDate      string                `json:"returnDate"`
	NeedsAdjustment *bool                 `json:"needsAdjustment,omitempty"`
	Observations    *string               `json:"observations,omitempty"`
	Items           []ContractItemPayload `json:"items"`
	Payments        []PaymentPayload      `json:"payments"`
}

// UpdateContractRequest is the payload that updates a contract.
// Every field is optional; nil fields are left unchanged. An empty string
// clears an optional id, the fitting date or the observations.
type UpdateContractRequest struct {
	ClientID        *string               `json:"clientId,omitempty"`
	EventID         *string               `json:"eventId,omitempty"`
	LocationID      *string               `json:"locationId,omitempty"`
	Status          *string               `json:"status,omitempty"`
	FittingDate     *string               `json:"fittingDate,omitempty"`
	PickupDate      *string               `json:"pickupDate,omitempty"`
	ReturnDate      *string               `json:"returnDate,omitempty"`
	NeedsAdjustment *bool                 `json:"needsAdjustment,omitempty"`
	Observations    *string               `json:"observations,omitempty"`
	Items           []ContractItemPayload `json:"items,omitempty"`
	Payments        []PaymentPayload      `json:"payments,omitempty"`
}

// ============================================================================
// Session views
// ============================================================================

// ItemResponse is an item row of a draft
type ItemResponse struct {
	Index     int             `json:"index"`
	ProductID *uuid.UUID      `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitValue decimal.Decimal `json:"unitValue"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// PaymentResponse is a payment row of a draft
type PaymentResponse struct {
	Index         int              `json:"index"`
	Method        string           `json:"method"`
	MethodLabel   string           `json:"methodLabel"`
	TotalValue    decimal.Decimal  `json:"totalValue"`
	DiscountType  *string          `json:"discountType,omitempty"`
	DiscountValue *decimal.Decimal `json:"discountValue,omitempty"`
	FinalValue    decimal.Decimal  `json:"finalValue"`
	Notes         string           `json:"notes,omitempty"`
}

// HeaderResponse is the header of a draft
type HeaderResponse struct {
	ClientID        *uuid.UUID `json:"clientId"`
	EventID         *uuid.UUID `json:"eventId,omitempty"`
	LocationID      *uuid.UUID `json:"locationId,omitempty"`
	Status          string     `json:"status"`
	StatusLabel     string     `json:"statusLabel"`
	FittingDate     string     `json:"fittingDate,omitempty"`
	PickupDate      string     `json:"pickupDate,omitempty"`
	ReturnDate      string     `json:"returnDate,omitempty"`
	NeedsAdjustment bool       `json:"needsAdjustment"`
	Observations    string     `json:"observations,omitempty"`
}

// SessionResponse is the full state of a composition session
type SessionResponse struct {
	ID            uuid.UUID         `json:"id"`
	Mode          string            `json:"mode"`
	ContractID    *uuid.UUID        `json:"contractId,omitempty"`
	Step          int               `json:"step"`
	StepName      string            `json:"stepName"`
	Header        HeaderResponse    `json:"header"`
	Items         []ItemResponse    `json:"items"`
	Payments      []PaymentResponse `json:"payments"`
	ItemsTotal    decimal.Decimal   `json:"itemsTotal"`
	PaymentsTotal decimal.Decimal   `json:"paymentsTotal"`
	Errors        map[string]string `json:"errors"`
}

// ContractResponse is a persisted contract
type ContractResponse struct {
	ID              uuid.UUID                 `json:"id"`
	ClientID        uuid.UUID                 `json:"clientId"`
	EventID         *uuid.UUID                `json:"eventId,omitempty"`
	LocationID      *uuid.UUID                `json:"locationId,omitempty"`
	Status          string                    `json:"status"`
	FittingDate     string                    `json:"fittingDate,omitempty"`
	PickupDate      string                    `json:"pickupDate"`
	ReturnDate      string                    `json:"returnDate"`
	NeedsAdjustment bool                      `json:"needsAdjustment"`
	Observations    string                    `json:"observations,omitempty"`
	Items           []ContractItemResponse    `json:"items"`
	Payments        []ContractPaymentResponse `json:"payments"`
	Total           decimal.Decimal           `json:"total"`
	CreatedAt       time.Time                 `json:"createdAt"`
	UpdatedAt       time.Time                 `json:"updatedAt"`
}

// ContractItemResponse is a persisted item
type ContractItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitValue decimal.Decimal `json:"unitValue"`
}

// ContractPaymentResponse is a persisted payment
type ContractPaymentResponse struct {
	ID            uuid.UUID        `json:"id"`
	Method        string           `json:"method"`
	TotalValue    decimal.Decimal  `json:"totalValue"`
	DiscountType  string           `json:"discountType,omitempty"`
	DiscountValue *decimal.Decimal `json:"discountValue,omitempty"`
	DiscountLabel string           `json:"discountLabel,omitempty"`
	FinalValue    decimal.Decimal  `json:"finalValue"`
	Notes         string           `json:"notes,omitempty"`
}

// ToContractResponse converts a domain contract to its response
func ToContractResponse(c *contract.Contract) ContractResponse {
	resp := ContractResponse{
		ID:              c.ID,
		ClientID:        c.ClientID,
		EventID:         c.EventID,
		LocationID:      c.LocationID,
		Status:          string(c.Status),
		PickupDate:      contract.FormatDate(c.PickupDate),
		ReturnDate:      contract.FormatDate(c.ReturnDate),
		NeedsAdjustment: c.NeedsAdjustment,
		Observations:    c.Observations,
		Items:           make([]ContractItemResponse, 0, len(c.Items)),
		Payments:        make([]ContractPaymentResponse, 0, len(c.Payments)),
		Total:           c.Total(),
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
	if c.FittingDate != nil {
		resp.FittingDate = contract.FormatDate(*c.FittingDate)
	}
	for _, item := range c.Items {
		resp.Items = append(resp.Items, ContractItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitValue: item.UnitValue,
		})
	}
	for _, p := range c.Payments {
		resp.Payments = append(resp.Payments, ContractPaymentResponse{
			ID:            p.ID,
			Method:        string(p.Method),
			TotalValue:    p.TotalValue,
			DiscountType:  string(p.DiscountType),
			DiscountValue: p.DiscountValue,
			DiscountLabel: contract.DiscountLabel(p.DiscountType, p.DiscountValue),
			FinalValue:    p.FinalValue,
			Notes:         p.Notes,
		})
	}
	return resp
}

// ReviewResponse is the summary shown at the review step
type ReviewResponse struct {
	ClientName      string                  `json:"clientName"`
	EventName       string                  `json:"eventName,omitempty"`
	LocationName    string                  `json:"locationName,omitempty"`
	Status          string                  `json:"status"`
	StatusLabel     string                  `json:"statusLabel"`
	FittingDate     string                  `json:"fittingDate,omitempty"`
	PickupDate      string                  `json:"pickupDate"`
	ReturnDate      string                  `json:"returnDate"`
	NeedsAdjustment bool                    `json:"needsAdjustment"`
	Observations    string                  `json:"observations,omitempty"`
	Items           []ReviewItemResponse    `json:"items"`
	Payments        []ReviewPaymentResponse `json:"payments"`
	ItemsTotal      decimal.Decimal         `json:"itemsTotal"`
	PaymentsTotal   decimal.Decimal         `json:"paymentsTotal"`
	Difference      decimal.Decimal         `json:"difference"`
}

// ReviewItemResponse is an item line of the review
type ReviewItemResponse struct {
	ProductID   uuid.UUID       `json:"productId"`
	ProductCode string          `json:"productCode,omitempty"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitValue   decimal.Decimal `json:"unitValue"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// ReviewPaymentResponse is a payment line of the review
type ReviewPaymentResponse struct {
	Method        string           `json:"method"`
	MethodLabel   string           `json:"methodLabel"`
	TotalValue    decimal.Decimal  `json:"totalValue"`
	DiscountType  string           `json:"discountType,omitempty"`
	DiscountValue *decimal.Decimal `json:"discountValue,omitempty"`
	DiscountLabel string           `json:"discountLabel,omitempty"`
	FinalValue    decimal.Decimal  `json:"finalValue"`
	Notes         string           `json:"notes,omitempty"`
}

// ToReviewResponse converts a review summary to its response
func ToReviewResponse(r contract.ReviewSummary) ReviewResponse {
	resp := ReviewResponse{
		ClientName:      r.ClientName,
		EventName:       r.EventName,
		LocationName:    r.LocationName,
		Status:          string(r.Status),
		StatusLabel:     r.StatusLabel,
		FittingDate:     r.FittingDate,
		PickupDate:      r.PickupDate,
		ReturnDate:      r.ReturnDate,
		NeedsAdjustment: r.NeedsAdjustment,
		Observations:    r.Observations,
		Items:           make([]ReviewItemResponse, 0, len(r.Items)),
		Payments:        make([]ReviewPaymentResponse, 0, len(r.Payments)),
		ItemsTotal:      r.ItemsTotal,
		PaymentsTotal:   r.PaymentsTotal,
		Difference:      r.Difference,
	}
	for _, item := range r.Items {
		resp.Items = append(resp.Items, ReviewItemResponse(item))
	}
	for _, p := range r.Payments {
		resp.Payments = append(resp.Payments, ReviewPaymentResponse{
			Method:        string(p.Method),
			MethodLabel:   p.MethodLabel,
			TotalValue:    p.TotalValue,
			DiscountType:  string(p.DiscountType),
			DiscountValue: p.DiscountValue,
			DiscountLabel: p.DiscountLabel,
			FinalValue:    p.FinalValue,
			Notes:         p.Notes,
		})
	}
	return resp
}
