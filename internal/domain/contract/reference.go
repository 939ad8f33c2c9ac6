package contract

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductStatus represents the availability of a rental product
type ProductStatus string

const (
	ProductStatusAvailable   ProductStatus = "AVAILABLE"
	ProductStatusRented      ProductStatus = "RENTED"
	ProductStatusMaintenance ProductStatus = "MAINTENANCE"
	ProductStatusDisabled    ProductStatus = "DISABLED"
)

// IsValid checks if the status is a valid ProductStatus
func (s ProductStatus) IsValid() bool {
	switch s {
	case ProductStatusAvailable, ProductStatusRented, ProductStatusMaintenance, ProductStatusDisabled:
		return true
	}
	return false
}

// Client is a customer who can sign a contract
type Client struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email,omitempty"`
	Phone    string    `json:"phone,omitempty"`
	Document string    `json:"document,omitempty"`
}

// Product is a rentable item from the catalog
type Product struct {
	ID          uuid.UUID       `json:"id"`
	Code        string          `json:"code,omitempty"`
	Name        string          `json:"name"`
	Status      ProductStatus   `json:"status"`
	RentalValue decimal.Decimal `json:"rentalValue"`
}

// Event is an occasion a contract may be tied to
type Event struct {
	ID   uuid.UUID  `json:"id"`
	Name string     `json:"name"`
	Date *time.Time `json:"date,omitempty"`
}

// Location is a place where pickup or fitting happens
type Location struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Address string    `json:"address,omitempty"`
}

// ProductCatalog resolves the current rental value of a product
type ProductCatalog interface {
	RentalValue(productID uuid.UUID) (decimal.Decimal, bool)
}

// ProductOptions is the set of products offered while composing a contract
type ProductOptions []Product

// RentalValue returns the rental value of the product if it is an option
func (p ProductOptions) RentalValue(productID uuid.UUID) (decimal.Decimal, bool) {
	for _, product := range p {
		if product.ID == productID {
			return product.RentalValue, true
		}
	}
	return decimal.Zero, false
}

// Contains reports whether the product is an option
func (p ProductOptions) Contains(productID uuid.UUID) bool {
	_, ok := p.RentalValue(productID)
	return ok
}

// ReferenceData holds the directories loaded for a composition session
type ReferenceData struct {
	Clients   []Client
	Products  []Product
	Events    []Event
	Locations []Location
}

// ProductOptions returns AVAILABLE products plus any product already
// attached to the contract being edited, in catalog order.
func (r *ReferenceData) ProductOptions(attached []uuid.UUID) ProductOptions {
	keep := make(map[uuid.UUID]struct{}, len(attached))
	for _, id := range attached {
		keep[id] = struct{}{}
	}

	options := make(ProductOptions, 0, len(r.Products))
	for _, product := range r.Products {
		if _, ok := keep[product.ID]; ok || product.Status == ProductStatusAvailable {
			options = append(options, product)
		}
	}
	return options
}

// FindClient returns the client with the given ID
func (r *ReferenceData) FindClient(id uuid.UUID) (Client, bool) {
	for _, c := range r.Clients {
		if c.ID == id {
			return c, true
		}
	}
	return Client{}, false
}

// FindProduct returns the product with the given ID
func (r *ReferenceData) FindProduct(id uuid.UUID) (Product, bool) {
	for _, p := range r.Products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// FindEvent returns the event with the given ID
func (r *ReferenceData) FindEvent(id uuid.UUID) (Event, bool) {
	for _, e := range r.Events {
		if e.ID == id {
			return e, true
		}
	}
	return Event{}, false
}

// FindLocation returns the location with the given ID
func (r *ReferenceData) FindLocation(id uuid.UUID) (Location, bool) {
	for _, l := range r.Locations {
		if l.ID == id {
			return l, true
		}
	}
	return Location{}, false
}
