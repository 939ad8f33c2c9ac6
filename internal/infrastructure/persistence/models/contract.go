package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/rental/backend/internal/domain/contract"
	"github.com/shopspring/decimal"
)

// ContractModel is the persistence model for rental contracts.
type ContractModel struct {
	BaseModel
	ClientID        uuid.UUID              `gorm:"type:uuid;not null;index"`
	EventID         *uuid.UUID             `gorm:"type:uuid;index"`
	LocationID      *uuid.UUID             `gorm:"type:uuid"`
	Status          contract.Status        `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
	FittingDate     *time.Time             `gorm:"type:date"`
	PickupDate      time.Time              `gorm:"type:date;not null"`
	ReturnDate      time.Time              `gorm:"type:date;not null"`
	NeedsAdjustment bool                   `gorm:"not null;default:false"`
	Observations    string                 `gorm:"type:text"`
	Items           []ContractItemModel    `gorm:"foreignKey:ContractID;constraint:OnDelete:CASCADE"`
	Payments        []ContractPaymentModel `gorm:"foreignKey:ContractID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (ContractModel) TableName() string {
	return "contracts"
}

// ContractItemModel is a contract line item. Position keeps entry order.
type ContractItemModel struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key"`
	ContractID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position   int             `gorm:"not null"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity   int             `gorm:"not null"`
	UnitValue  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

// TableName returns the table name for GORM
func (ContractItemModel) TableName() string {
	return "contract_items"
}

// ContractPaymentModel is a contract payment entry. Position keeps entry order.
type ContractPaymentModel struct {
	ID            uuid.UUID              `gorm:"type:uuid;primary_key"`
	ContractID    uuid.UUID              `gorm:"type:uuid;not null;index"`
	Position      int                    `gorm:"not null"`
	Method        contract.PaymentMethod `gorm:"type:varchar(20);not null"`
	TotalValue    decimal.Decimal        `gorm:"type:decimal(12,2);not null"`
	DiscountType  *string                `gorm:"type:varchar(20)"`
	DiscountValue *decimal.Decimal       `gorm:"type:decimal(12,2)"`
	FinalValue    decimal.Decimal        `gorm:"type:decimal(12,2);not null"`
	Notes         string                 `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ContractPaymentModel) TableName() string {
	return "contract_payments"
}

// ToDomain converts the model and its loaded children to a domain Contract
func (m *ContractModel) ToDomain() *contract.Contract {
	c := &contract.Contract{
		ID:              m.ID,
		ClientID:        m.ClientID,
		EventID:         m.EventID,
		LocationID:      m.LocationID,
		Status:          m.Status,
		FittingDate:     m.FittingDate,
		PickupDate:      m.PickupDate,
		ReturnDate:      m.ReturnDate,
		NeedsAdjustment: m.NeedsAdjustment,
		Observations:    m.Observations,
		Items:           make([]contract.ContractItem, len(m.Items)),
		Payments:        make([]contract.Payment, len(m.Payments)),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	for i, item := range m.Items {
		c.Items[i] = contract.ContractItem{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitValue: item.UnitValue,
		}
	}
	for i, p := range m.Payments {
		payment := contract.Payment{
			ID:            p.ID,
			Method:        p.Method,
			TotalValue:    p.TotalValue,
			DiscountValue: p.DiscountValue,
			FinalValue:    p.FinalValue,
			Notes:         p.Notes,
		}
		if p.DiscountType != nil {
			payment.DiscountType = contract.DiscountType(*p.DiscountType)
		}
		c.Payments[i] = payment
	}
	return c
}

// SetItems replaces the item rows, numbering them in order
func (m *ContractModel) SetItems(items []ContractItemModel) {
	m.Items = items
	for i := range m.Items {
		m.Items[i].Position = i
		m.Items[i].ContractID = m.ID
		if m.Items[i].ID == uuid.Nil {
			m.Items[i].ID = uuid.New()
		}
	}
}

// SetPayments replaces the payment rows, numbering them in order
func (m *ContractModel) SetPayments(payments []ContractPaymentModel) {
	m.Payments = payments
	for i := range m.Payments {
		m.Payments[i].Position = i
		m.Payments[i].ContractID = m.ID
		if m.Payments[i].ID == uuid.Nil {
			m.Payments[i].ID = uuid.New()
		}
	}
}
