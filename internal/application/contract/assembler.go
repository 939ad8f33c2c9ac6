package contract

import (
	"github.com/google/uuid"
	"github.com/rental/backend/internal/domain/contract"
)

// Assembler turns a fully validated draft into the payload handed to the
// contract store.
type Assembler struct{}

// NewAssembler creates a new Assembler
func NewAssembler() *Assembler {
	return &Assembler{}
}

// AssembleCreate validates every wizard step and emits a create payload.
// Validation failures are returned as *contract.ValidationFailedError.
func (a *Assembler) AssembleCreate(w *contract.Wizard) (*CreateContractRequest, error) {
	if err := w.ValidateForSubmit(); err != nil {
		return nil, err
	}
	return a.buildCreate(w.Draft()), nil
}

// AssembleUpdate validates every wizard step and emits an update payload
// carrying every field of the draft. Cleared optional fields are sent as
// empty strings so the store drops the stored value.
func (a *Assembler) AssembleUpdate(w *contract.Wizard) (*UpdateContractRequest, error) {
	if err := w.ValidateForSubmit(); err != nil {
		return nil, err
	}
	req := a.buildCreate(w.Draft())
	return &UpdateContractRequest{
		ClientID:        &req.ClientID,
		EventID:         clearable(req.EventID),
		LocationID:      clearable(req.LocationID),
		Status:          req.Status,
		FittingDate:     clearable(req.FittingDate),
		PickupDate:      &req.PickupDate,
		ReturnDate:      &req.ReturnDate,
		NeedsAdjustment: req.NeedsAdjustment,
		Observations:    clearable(req.Observations),
		Items:           req.Items,
		Payments:        req.Payments,
	}, nil
}

func (a *Assembler) buildCreate(d *contract.Draft) *CreateContractRequest {
	h := d.Header()
	status := h.Status.String()
	needsAdjustment := h.NeedsAdjustment

	req := &CreateContractRequest{
		ClientID:        h.ClientID.String(),
		EventID:         optionalID(h.EventID),
		LocationID:      optionalID(h.LocationID),
		Status:          &status,
		PickupDate:      contract.FormatDate(h.PickupDate),
		ReturnDate:      contract.FormatDate(h.ReturnDate),
		NeedsAdjustment: &needsAdjustment,
		Observations:    optionalString(h.Observations),
		Items:           make([]ContractItemPayload, 0, d.Items().Len()),
		Payments:        make([]PaymentPayload, 0, d.Payments().Len()),
	}
	if h.FittingDate != nil {
		fitting := contract.FormatDate(*h.FittingDate)
		req.FittingDate = &fitting
	}

	for _, item := range d.Items().Items() {
		req.Items = append(req.Items, ContractItemPayload{
			ProductID: item.ProductID.String(),
			Quantity:  item.Quantity,
			UnitValue: item.UnitValue.InexactFloat64(),
		})
	}

	for _, p := range d.Payments().Payments() {
		payload := PaymentPayload{
			Method:     p.Method.String(),
			TotalValue: p.TotalValue.InexactFloat64(),
			FinalValue: p.FinalValue.InexactFloat64(),
			Notes:      optionalString(p.Notes),
		}
		if p.HasDiscount() {
			discountType := p.DiscountType.String()
			discountValue := p.DiscountValue.InexactFloat64()
			payload.DiscountType = &discountType
			payload.DiscountValue = &discountValue
		}
		req.Payments = append(req.Payments, payload)
	}
	return req
}

func optionalID(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func clearable(s *string) *string {
	if s == nil {
		empty := ""
		return &empty
	}
	return s
}
