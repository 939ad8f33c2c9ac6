package contract

import (
	"context"

	"github.com/google/uuid"
)

// ContractReader loads persisted contracts for edit mode
type ContractReader interface {
	// FindByID returns shared.ErrNotFound when the contract does not exist
	FindByID(ctx context.Context, id uuid.UUID) (*Contract, error)
}

// ReferenceDirectory lists the reference data offered while composing a
// contract. Each listing is independent and may be fetched concurrently.
type ReferenceDirectory interface {
	ListClients(ctx context.Context) ([]Client, error)
	ListProducts(ctx context.Context) ([]Product, error)
	ListEvents(ctx context.Context) ([]Event, error)
	ListLocations(ctx context.Context) ([]Location, error)
}
