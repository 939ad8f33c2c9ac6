package persistence

import (
	"context"

	"github.com/rental/backend/internal/domain/contract"
	"github.com/rental/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormReferenceDirectory lists clients, products, events and locations
type GormReferenceDirectory struct {
	db *gorm.DB
}

// NewGormReferenceDirectory creates a new GormReferenceDirectory
func NewGormReferenceDirectory(db *gorm.DB) *GormReferenceDirectory {
	return &GormReferenceDirectory{db: db}
}

// listAll loads every row of M ordered by order and converts each one
func listAll[M any, T any](ctx context.Context, db *gorm.DB, order string, convert func(*M) T) ([]T, error) {
	var rows []M
	if err := db.WithContext(ctx).Order(order).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]T, len(rows))
	for i := range rows {
		out[i] = convert(&rows[i])
	}
	return out, nil
}

// ListClients returns all clients ordered by name
func (r *GormReferenceDirectory) ListClients(ctx context.Context) ([]contract.Client, error) {
	return listAll(ctx, r.db, "name", (*models.ClientModel).ToDomain)
}

// ListProducts returns the whole catalog, whatever its status, ordered by name
func (r *GormReferenceDirectory) ListProducts(ctx context.Context) ([]contract.Product, error) {
	return listAll(ctx, r.db, "name", (*models.ProductModel).ToDomain)
}

// ListEvents returns all events ordered by name
func (r *GormReferenceDirectory) ListEvents(ctx context.Context) ([]contract.Event, error) {
	return listAll(ctx, r.db, "name", (*models.EventModel).ToDomain)
}

// ListLocations returns all locations ordered by name
func (r *GormReferenceDirectory) ListLocations(ctx context.Context) ([]contract.Location, error) {
	return listAll(ctx, r.db, "name", (*models.LocationModel).ToDomain)
}
