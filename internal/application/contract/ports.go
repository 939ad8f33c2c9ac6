package contract

import (
	"context"

	"github.com/google/uuid"
	"github.com/rental/backend/internal/domain/contract"
)

// ContractWriter persists assembled contracts
type ContractWriter interface {
	CreateContract(ctx context.Context, req *CreateContractRequest) (*contract.Contract, error)
	// UpdateContract returns shared.ErrNotFound when the contract does not exist
	UpdateContract(ctx context.Context, id uuid.UUID, req *UpdateContractRequest) (*contract.Contract, error)
}
