package models

import (
	"time"

	"github.com/rental/backend/internal/domain/contract"
	"github.com/shopspring/decimal"
)

// ClientModel is the persistence model for clients.
type ClientModel struct {
	BaseModel
	Name     string `gorm:"type:varchar(200);not null"`
	Email    string `gorm:"type:varchar(200)"`
	Phone    string `gorm:"type:varchar(50)"`
	Document string `gorm:"type:varchar(30)"`
}

// TableName returns the table name for GORM
func (ClientModel) TableName() string {
	return "clients"
}

// ToDomain converts the model to a domain Client
func (m *ClientModel) ToDomain() contract.Client {
	return contract.Client{
		ID:       m.ID,
		Name:     m.Name,
		Email:    m.Email,
		Phone:    m.Phone,
		Document: m.Document,
	}
}

// ProductModel is the persistence model for rentable products.
type ProductModel struct {
	BaseModel
	Code        string                 `gorm:"type:varchar(50);uniqueIndex"`
	Name        string                 `gorm:"type:varchar(200);not null"`
	Status      contract.ProductStatus `gorm:"type:varchar(20);not null;default:'AVAILABLE';index"`
	RentalValue decimal.Decimal        `gorm:"type:decimal(12,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the model to a domain Product
func (m *ProductModel) ToDomain() contract.Product {
	return contract.Product{
		ID:          m.ID,
		Code:        m.Code,
		Name:        m.Name,
		Status:      m.Status,
		RentalValue: m.RentalValue,
	}
}

// EventModel is the persistence model for events.
type EventModel struct {
	BaseModel
	Name string     `gorm:"type:varchar(200);not null"`
	Date *time.Time `gorm:"type:date"`
}

// TableName returns the table name for GORM
func (EventModel) TableName() string {
	return "events"
}

// ToDomain converts the model to a domain Event
func (m *EventModel) ToDomain() contract.Event {
	return contract.Event{ID: m.ID, Name: m.Name, Date: m.Date}
}

// LocationModel is the persistence model for locations.
type LocationModel struct {
	BaseModel
	Name    string `gorm:"type:varchar(200);not null"`
	Address string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (LocationModel) TableName() string {
	return "locations"
}

// ToDomain converts the model to a domain Location
func (m *LocationModel) ToDomain() contract.Location {
	return contract.Location{ID: m.ID, Name: m.Name, Address: m.Address}
}
