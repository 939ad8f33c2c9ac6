package restapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	appcontract "github.com/rental/backend/internal/application/contract"
	"github.com/rental/backend/internal/domain/contract"
	"github.com/shopspring/decimal"
)

type clientDTO struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Phone   string    `json:"phone"`
	CpfCnpj string    `json:"cpfCnpj"`
}

type productDTO struct {
	ID          uuid.UUID       `json:"id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Status      string          `json:"status"`
	RentalValue decimal.Decimal `json:"rentalValue"`
}

type eventDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Date *string   `json:"date"`
}

type addressDTO struct {
	Street struct {
		Name string `json:"name"`
	} `json:"street"`
	Number     string `json:"number"`
	Complement string `json:"complement"`
	City       struct {
		Name  string `json:"name"`
		State struct {
			UF string `json:"uf"`
		} `json:"state"`
	} `json:"city"`
}

// String renders the address on one line, e.g. "Rua A, 12 - Recife/PE"
func (a *addressDTO) String() string {
	if a == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(a.Street.Name)
	if a.Number != "" {
		b.WriteString(", " + a.Number)
	}
	if a.Complement != "" {
		b.WriteString(" " + a.Complement)
	}
	if a.City.Name != "" {
		b.WriteString(" - " + a.City.Name)
		if a.City.State.UF != "" {
			b.WriteString("/" + a.City.State.UF)
		}
	}
	return strings.TrimSpace(b.String())
}

type locationDTO struct {
	ID      uuid.UUID   `json:"id"`
	Name    string      `json:"name"`
	Address *addressDTO `json:"address"`
}

type contractItemDTO struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitValue decimal.Decimal `json:"unitValue"`
}

type paymentDTO struct {
	ID            uuid.UUID        `json:"id"`
	Method        string           `json:"method"`
	TotalValue    decimal.Decimal  `json:"totalValue"`
	DiscountType  *string          `json:"discountType"`
	DiscountValue *decimal.Decimal `json:"discountValue"`
	FinalValue    decimal.Decimal  `json:"finalValue"`
	Notes         *string          `json:"notes"`
}

type contractDTO struct {
	ID              uuid.UUID         `json:"id"`
	ClientID        uuid.UUID         `json:"clientId"`
	EventID         *uuid.UUID        `json:"eventId"`
	LocationID      *uuid.UUID        `json:"locationId"`
	Status          string            `json:"status"`
	FittingDate     *string           `json:"fittingDate"`
	PickupDate      string            `json:"pickupDate"`
	ReturnDate      string            `json:"returnDate"`
	NeedsAdjustment bool              `json:"needsAdjustment"`
	Observations    *string           `json:"observations"`
	Items           []contractItemDTO `json:"items"`
	Payments        []paymentDTO      `json:"payments"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// parseAPIDate accepts a plain date or an ISO timestamp and keeps the day
func parseAPIDate(field, raw string) (time.Time, error) {
	if len(raw) >= len(contract.DateLayout) {
		raw = raw[:len(contract.DateLayout)]
	}
	t, err := contract.ParseDate(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("contract API returned invalid %s %q", field, raw)
	}
	return t, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (d *contractDTO) toDomain() (*contract.Contract, error) {
	pickup, err := parseAPIDate("pickupDate", d.PickupDate)
	if err != nil {
		return nil, err
	}
	ret, err := parseAPIDate("returnDate", d.ReturnDate)
	if err != nil {
		return nil, err
	}

	c := &contract.Contract{
		ID:              d.ID,
		ClientID:        d.ClientID,
		EventID:         d.EventID,
		LocationID:      d.LocationID,
		Status:          contract.Status(d.Status),
		PickupDate:      pickup,
		ReturnDate:      ret,
		NeedsAdjustment: d.NeedsAdjustment,
		Observations:    deref(d.Observations),
		Items:           make([]contract.ContractItem, 0, len(d.Items)),
		Payments:        make([]contract.Payment, 0, len(d.Payments)),
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
	if d.FittingDate != nil && *d.FittingDate != "" {
		fitting, err := parseAPIDate("fittingDate", *d.FittingDate)
		if err != nil {
			return nil, err
		}
		c.FittingDate = &fitting
	}
	for _, item := range d.Items {
		c.Items = append(c.Items, contract.ContractItem(item))
	}
	for _, p := range d.Payments {
		c.Payments = append(c.Payments, contract.Payment{
			ID:            p.ID,
			Method:        contract.PaymentMethod(p.Method),
			TotalValue:    p.TotalValue,
			DiscountType:  contract.DiscountType(deref(p.DiscountType)),
			DiscountValue: p.DiscountValue,
			FinalValue:    p.FinalValue,
			Notes:         deref(p.Notes),
		})
	}
	return c, nil
}

// ListClients implements contract.ReferenceDirectory
func (c *Client) ListClients(ctx context.Context) ([]contract.Client, error) {
	var dtos []clientDTO
	if err := c.do(ctx, http.MethodGet, "/clients", nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]contract.Client, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, contract.Client{
			ID:       d.ID,
			Name:     d.Name,
			Email:    d.Email,
			Phone:    d.Phone,
			Document: d.CpfCnpj,
		})
	}
	return out, nil
}

// ListProducts implements contract.ReferenceDirectory
func (c *Client) ListProducts(ctx context.Context) ([]contract.Product, error) {
	var dtos []productDTO
	if err := c.do(ctx, http.MethodGet, "/products", nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]contract.Product, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, contract.Product{
			ID:          d.ID,
			Code:        d.Code,
			Name:        d.Name,
			Status:      contract.ProductStatus(d.Status),
			RentalValue: d.RentalValue,
		})
	}
	return out, nil
}

// ListEvents implements contract.ReferenceDirectory. Events with an
// unreadable date are kept without one.
func (c *Client) ListEvents(ctx context.Context) ([]contract.Event, error) {
	var dtos []eventDTO
	if err := c.do(ctx, http.MethodGet, "/events", nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]contract.Event, 0, len(dtos))
	for _, d := range dtos {
		e := contract.Event{ID: d.ID, Name: d.Name}
		if d.Date != nil {
			if date, err := parseAPIDate("date", *d.Date); err == nil {
				e.Date = &date
			}
		}
		out = append(out, e)
	}
	return out, nil
}

// ListLocations implements contract.ReferenceDirectory
func (c *Client) ListLocations(ctx context.Context) ([]contract.Location, error) {
	var dtos []locationDTO
	if err := c.do(ctx, http.MethodGet, "/locations", nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]contract.Location, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, contract.Location{ID: d.ID, Name: d.Name, Address: d.Address.String()})
	}
	return out, nil
}

// FindByID implements contract.ContractReader
func (c *Client) FindByID(ctx context.Context, id uuid.UUID) (*contract.Contract, error) {
	var dto contractDTO
	if err := c.do(ctx, http.MethodGet, "/contracts/"+id.String(), nil, &dto); err != nil {
		return nil, err
	}
	return dto.toDomain()
}

// CreateContract implements appcontract.ContractWriter
func (c *Client) CreateContract(ctx context.Context, req *appcontract.CreateContractRequest) (*contract.Contract, error) {
	var dto contractDTO
	if err := c.do(ctx, http.MethodPost, "/contracts", req, &dto); err != nil {
		return nil, err
	}
	return dto.toDomain()
}

// UpdateContract implements appcontract.ContractWriter
func (c *Client) UpdateContract(ctx context.Context, id uuid.UUID, req *appcontract.UpdateContractRequest) (*contract.Contract, error) {
	var dto contractDTO
	if err := c.do(ctx, http.MethodPut, "/contracts/"+id.String(), req, &dto); err != nil {
		return nil, err
	}
	return dto.toDomain()
}

var (
	_ contract.ReferenceDirectory = (*Client)(nil)
	_ contract.ContractReader     = (*Client)(nil)
	_ appcontract.ContractWriter  = (*Client)(nil)
)
