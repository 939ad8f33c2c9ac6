package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	appcontract "github.com/rental/backend/internal/application/contract"
	"github.com/rental/backend/internal/domain/contract"
	"github.com/rental/backend/internal/domain/shared"
	"github.com/rental/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormContractRepository stores contracts with their items and payments
type GormContractRepository struct {
	db *gorm.DB
}

// NewGormContractRepository creates a new GormContractRepository
func NewGormContractRepository(db *gorm.DB) *GormContractRepository {
	return &GormContractRepository{db: db}
}

func byPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position")
}

func (r *GormContractRepository) load(tx *gorm.DB, id uuid.UUID) (*models.ContractModel, error) {
	var model models.ContractModel
	if err := tx.
		Preload("Items", byPosition).
		Preload("Payments", byPosition).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &model, nil
}

// FindByID loads a contract with its items and payments in entry order
func (r *GormContractRepository) FindByID(ctx context.Context, id uuid.UUID) (*contract.Contract, error) {
	model, err := r.load(r.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// CreateContract inserts a contract and its children in one transaction
func (r *GormContractRepository) CreateContract(ctx context.Context, req *appcontract.CreateContractRequest) (*contract.Contract, error) {
	model, err := newContractModel(req)
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkReferences(tx, model); err != nil {
			return err
		}
		return tx.Create(model).Error
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, model.ID)
}

// UpdateContract applies the payload to an existing contract. Present item
// and payment lists replace the stored ones wholesale.
func (r *GormContractRepository) UpdateContract(ctx context.Context, id uuid.UUID, req *appcontract.UpdateContractRequest) (*contract.Contract, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model, err := r.load(tx, id)
		if err != nil {
			return err
		}
		if err := applyUpdate(model, req); err != nil {
			return err
		}
		if req.Items != nil {
			items, err := itemModels(req.Items)
			if err != nil {
				return err
			}
			model.SetItems(items)
		}
		if req.Payments != nil {
			payments, err := paymentModels(req.Payments)
			if err != nil {
				return err
			}
			model.SetPayments(payments)
		}
		if err := checkReferences(tx, model); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Save(model).Error; err != nil {
			return err
		}

		if req.Items != nil {
			if err := tx.Where("contract_id = ?", id).Delete(&models.ContractItemModel{}).Error; err != nil {
				return err
			}
			if err := tx.Create(&model.Items).Error; err != nil {
				return err
			}
		}
		if req.Payments != nil {
			if err := tx.Where("contract_id = ?", id).Delete(&models.ContractPaymentModel{}).Error; err != nil {
				return err
			}
			if err := tx.Create(&model.Payments).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// checkReferences rejects contracts pointing at unknown clients, events,
// locations or products.
func checkReferences(tx *gorm.DB, m *models.ContractModel) error {
	if err := requireRow(tx, &models.ClientModel{}, m.ClientID, "clientId"); err != nil {
		return err
	}
	if m.EventID != nil {
		if err := requireRow(tx, &models.EventModel{}, *m.EventID, "eventId"); err != nil {
			return err
		}
	}
	if m.LocationID != nil {
		if err := requireRow(tx, &models.LocationModel{}, *m.LocationID, "locationId"); err != nil {
			return err
		}
	}

	productIDs := make([]uuid.UUID, 0, len(m.Items))
	seen := make(map[uuid.UUID]struct{}, len(m.Items))
	for _, item := range m.Items {
		if _, ok := seen[item.ProductID]; !ok {
			seen[item.ProductID] = struct{}{}
			productIDs = append(productIDs, item.ProductID)
		}
	}
	if len(productIDs) == 0 {
		return nil
	}
	var count int64
	if err := tx.Model(&models.ProductModel{}).Where("id IN ?", productIDs).Count(&count).Error; err != nil {
		return err
	}
	if int(count) != len(productIDs) {
		return invalidField("items", "references an unknown product")
	}
	return nil
}

func requireRow(tx *gorm.DB, model any, id uuid.UUID, field string) error {
	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return invalidField(field, "%s does not exist", id)
	}
	return nil
}
