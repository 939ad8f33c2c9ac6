package persistence

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	appcontract "github.com/rental/backend/internal/application/contract"
	"github.com/rental/backend/internal/domain/contract"
	"github.com/rental/backend/internal/domain/shared"
	"github.com/rental/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
)

func invalidField(field, format string, args ...any) error {
	return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("%s: %s", field, fmt.Sprintf(format, args...)))
}

func parseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, invalidField(field, "invalid id %q", raw)
	}
	return id, nil
}

func parseOptionalID(field string, raw *string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := parseID(field, *raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func parseDate(field, raw string) (time.Time, error) {
	d, err := contract.ParseDate(raw)
	if err != nil {
		return time.Time{}, invalidField(field, "invalid date %q", raw)
	}
	return d, nil
}

func parseOptionalDate(field string, raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	d, err := parseDate(field, *raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func parseStatus(raw string) (contract.Status, error) {
	status := contract.Status(raw)
	if !status.IsValid() {
		return "", invalidField("status", "unknown status %q", raw)
	}
	return status, nil
}

// newContractModel converts a create payload into a persistence model
func newContractModel(req *appcontract.CreateContractRequest) (*models.ContractModel, error) {
	m := &models.ContractModel{Status: contract.StatusActive}
	m.ID = uuid.New()

	var err error
	if m.ClientID, err = parseID("clientId", req.ClientID); err != nil {
		return nil, err
	}
	if m.EventID, err = parseOptionalID("eventId", req.EventID); err != nil {
		return nil, err
	}
	if m.LocationID, err = parseOptionalID("locationId", req.LocationID); err != nil {
		return nil, err
	}
	if req.Status != nil {
		if m.Status, err = parseStatus(*req.Status); err != nil {
			return nil, err
		}
	}
	if m.FittingDate, err = parseOptionalDate("fittingDate", req.FittingDate); err != nil {
		return nil, err
	}
	if m.PickupDate, err = parseDate("pickupDate", req.PickupDate); err != nil {
		return nil, err
	}
	if m.ReturnDate, err = parseDate("returnDate", req.ReturnDate); err != nil {
		return nil, err
	}
	if req.NeedsAdjustment != nil {
		m.NeedsAdjustment = *req.NeedsAdjustment
	}
	if req.Observations != nil {
		m.Observations = *req.Observations
	}

	items, err := itemModels(req.Items)
	if err != nil {
		return nil, err
	}
	payments, err := paymentModels(req.Payments)
	if err != nil {
		return nil, err
	}
	m.SetItems(items)
	m.SetPayments(payments)

	return m, checkDates(m)
}

// applyUpdate copies the non-nil fields of an update payload onto m. An
// empty optional id, fitting date or observation clears the stored value.
// Item and payment lists are handled by the caller.
func applyUpdate(m *models.ContractModel, req *appcontract.UpdateContractRequest) error {
	var err error
	if req.ClientID != nil {
		if m.ClientID, err = parseID("clientId", *req.ClientID); err != nil {
			return err
		}
	}
	if req.EventID != nil {
		if m.EventID, err = parseOptionalID("eventId", req.EventID); err != nil {
			return err
		}
	}
	if req.LocationID != nil {
		if m.LocationID, err = parseOptionalID("locationId", req.LocationID); err != nil {
			return err
		}
	}
	if req.Status != nil {
		if m.Status, err = parseStatus(*req.Status); err != nil {
			return err
		}
	}
	if req.FittingDate != nil {
		if m.FittingDate, err = parseOptionalDate("fittingDate", req.FittingDate); err != nil {
			return err
		}
	}
	if req.PickupDate != nil {
		if m.PickupDate, err = parseDate("pickupDate", *req.PickupDate); err != nil {
			return err
		}
	}
	if req.ReturnDate != nil {
		if m.ReturnDate, err = parseDate("returnDate", *req.ReturnDate); err != nil {
			return err
		}
	}
	if req.NeedsAdjustment != nil {
		m.NeedsAdjustment = *req.NeedsAdjustment
	}
	if req.Observations != nil {
		m.Observations = *req.Observations
	}
	return checkDates(m)
}

func checkDates(m *models.ContractModel) error {
	if !m.ReturnDate.After(m.PickupDate) {
		return invalidField("returnDate", "must be after the pickup date")
	}
	return nil
}

func itemModels(payload []appcontract.ContractItemPayload) ([]models.ContractItemModel, error) {
	if len(payload) == 0 {
		return nil, invalidField("items", "at least one item is required")
	}
	items := make([]models.ContractItemModel, len(payload))
	for i, p := range payload {
		field := fmt.Sprintf("items[%d]", i)
		productID, err := parseID(field+".productId", p.ProductID)
		if err != nil {
			return nil, err
		}
		if p.Quantity < 1 {
			return nil, invalidField(field+".quantity", "must be at least 1")
		}
		items[i] = models.ContractItemModel{
			ProductID: productID,
			Quantity:  p.Quantity,
			UnitValue: decimal.NewFromFloat(p.UnitValue),
		}
	}
	return items, nil
}

func paymentModels(payload []appcontract.PaymentPayload) ([]models.ContractPaymentModel, error) {
	if len(payload) == 0 {
		return nil, invalidField("payments", "at least one payment is required")
	}
	payments := make([]models.ContractPaymentModel, len(payload))
	for i, p := range payload {
		field := fmt.Sprintf("payments[%d]", i)
		method := contract.PaymentMethod(p.Method)
		if !method.IsValid() {
			return nil, invalidField(field+".method", "unknown method %q", p.Method)
		}
		m := models.ContractPaymentModel{
			Method:     method,
			TotalValue: decimal.NewFromFloat(p.TotalValue),
			FinalValue: decimal.NewFromFloat(p.FinalValue),
		}
		if p.DiscountType != nil {
			if !contract.DiscountType(*p.DiscountType).IsValid() {
				return nil, invalidField(field+".discountType", "unknown discount type %q", *p.DiscountType)
			}
			m.DiscountType = p.DiscountType
		}
		if p.DiscountValue != nil {
			v := decimal.NewFromFloat(*p.DiscountValue)
			m.DiscountValue = &v
		}
		if p.Notes != nil {
			m.Notes = *p.Notes
		}
		payments[i] = m
	}
	return payments, nil
}
