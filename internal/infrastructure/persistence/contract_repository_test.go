package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	appcontract "github.com/rental/backend/internal/application/contract"
	"github.com/rental/backend/internal/domain/contract"
	"github.com/rental/backend/internal/domain/shared"
	"github.com/rental/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	client   models.ClientModel
	dress    models.ProductModel
	tuxedo   models.ProductModel
	event    models.EventModel
	location models.LocationModel
}

func seed(t *testing.T, db *Database) fixture {
	t.Helper()
	f := fixture{
		client:   models.ClientModel{Name: "Ana Souza", Email: "ana@example.com"},
		dress:    models.ProductModel{Code: "D-01", Name: "Evening dress", Status: contract.ProductStatusAvailable, RentalValue: decimal.NewFromInt(50)},
		tuxedo:   models.ProductModel{Code: "T-01", Name: "Tuxedo", Status: contract.ProductStatusRented, RentalValue: decimal.RequireFromString("120.50")},
		event:    models.EventModel{Name: "Wedding"},
		location: models.LocationModel{Name: "Downtown store", Address: "Main St 10"},
	}
	require.NoError(t, db.DB.Create(&f.client).Error)
	require.NoError(t, db.DB.Create(&f.dress).Error)
	require.NoError(t, db.DB.Create(&f.tuxedo).Error)
	require.NoError(t, db.DB.Create(&f.event).Error)
	require.NoError(t, db.DB.Create(&f.location).Error)
	return f
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func createRequest(f fixture) *appcontract.CreateContractRequest {
	return &appcontract.CreateContractRequest{
		ClientID:     f.client.ID.String(),
		EventID:      strPtr(f.event.ID.String()),
		LocationID:   strPtr(f.location.ID.String()),
		Status:       strPtr("ACTIVE"),
		FittingDate:  strPtr("2025-03-08"),
		PickupDate:   "2025-03-10",
		ReturnDate:   "2025-03-17",
		Observations: strPtr("hem the dress"),
		Items: []appcontract.ContractItemPayload{
			{ProductID: f.dress.ID.String(), Quantity: 2, UnitValue: 50},
			{ProductID: f.tuxedo.ID.String(), Quantity: 1, UnitValue: 120.5},
		},
		Payments: []appcontract.PaymentPayload{
			{Method: "PIX", TotalValue: 150, FinalValue: 135, DiscountType: strPtr("PERCENTAGE"), DiscountValue: floatPtr(10)},
			{Method: "CASH", TotalValue: 70.5, FinalValue: 70.5, Notes: strPtr("on pickup")},
		},
	}
}

func TestGormContractRepository_CreateAndFind(t *testing.T) {
	db := newTestDatabase(t)
	f := seed(t, db)
	repo := NewGormContractRepository(db.DB)
	ctx := context.Background()

	created, err := repo.CreateContract(ctx, createRequest(f))
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, f.client.ID, found.ClientID)
	assert.Equal(t, f.event.ID, *found.EventID)
	assert.Equal(t, contract.StatusActive, found.Status)
	assert.Equal(t, "2025-03-08", contract.FormatDate(*found.FittingDate))
	assert.Equal(t, "2025-03-10", contract.FormatDate(found.PickupDate))
	assert.Equal(t, "2025-03-17", contract.FormatDate(found.ReturnDate))
	assert.Equal(t, "hem the dress", found.Observations)

	require.Len(t, found.Items, 2)
	assert.Equal(t, f.dress.ID, found.Items[0].ProductID)
	assert.Equal(t, 2, found.Items[0].Quantity)
	assert.True(t, decimal.RequireFromString("120.5").Equal(found.Items[1].UnitValue))
	assert.True(t, decimal.RequireFromString("220.5").Equal(found.ItemsTotal()))

	require.Len(t, found.Payments, 2)
	assert.Equal(t, contract.PaymentMethodPix, found.Payments[0].Method)
	assert.Equal(t, contract.DiscountTypePercentage, found.Payments[0].DiscountType)
	require.NotNil(t, found.Payments[0].DiscountValue)
	assert.True(t, decimal.NewFromInt(10).Equal(*found.Payments[0].DiscountValue))
	assert.Equal(t, contract.DiscountTypeNone, found.Payments[1].DiscountType)
	assert.Nil(t, found.Payments[1].DiscountValue)
	assert.Equal(t, "on pickup", found.Payments[1].Notes)
	assert.True(t, decimal.RequireFromString("205.5").Equal(found.Total()))
}

func TestGormContractRepository_CreateRejects(t *testing.T) {
	db := newTestDatabase(t)
	f := seed(t, db)
	repo := NewGormContractRepository(db.DB)

	tests := []struct {
		name   string
		mutate func(*appcontract.CreateContractRequest)
		field  string
	}{
		{"unknown client", func(r *appcontract.CreateContractRequest) { r.ClientID = uuid.NewString() }, "clientId"},
		{"malformed client", func(r *appcontract.CreateContractRequest) { r.ClientID = "nope" }, "clientId"},
		{"unknown event", func(r *appcontract.CreateContractRequest) { r.EventID = strPtr(uuid.NewString()) }, "eventId"},
		{"unknown product", func(r *appcontract.CreateContractRequest) { r.Items[0].ProductID = uuid.NewString() }, "items"},
		{"zero quantity", func(r *appcontract.CreateContractRequest) { r.Items[1].Quantity = 0 }, "items[1].quantity"},
		{"no payments", func(r *appcontract.CreateContractRequest) { r.Payments = nil }, "payments"},
		{"bad method", func(r *appcontract.CreateContractRequest) { r.Payments[0].Method = "BOLETO" }, "payments[0].method"},
		{"bad status", func(r *appcontract.CreateContractRequest) { r.Status = strPtr("LOST") }, "status"},
		{"return before pickup", func(r *appcontract.CreateContractRequest) { r.ReturnDate = "2025-03-09" }, "returnDate"},
		{"bad date", func(r *appcontract.CreateContractRequest) { r.PickupDate = "10/03/2025" }, "pickupDate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := createRequest(f)
			tt.mutate(req)

			_, err := repo.CreateContract(context.Background(), req)

			require.Error(t, err)
			assert.ErrorIs(t, err, shared.ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.field)
		})
	}

	var count int64
	require.NoError(t, db.DB.Model(&models.ContractModel{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestGormContractRepository_Update(t *testing.T) {
	db := newTestDatabase(t)
	f := seed(t, db)
	repo := NewGormContractRepository(db.DB)
	ctx := context.Background()

	created, err := repo.CreateContract(ctx, createRequest(f))
	require.NoError(t, err)

	t.Run("replaces lists and keeps omitted fields", func(t *testing.T) {
		updated, err := repo.UpdateContract(ctx, created.ID, &appcontract.UpdateContractRequest{
			Status:     strPtr("IN_PROGRESS"),
			ReturnDate: strPtr("2025-03-20"),
			Items: []appcontract.ContractItemPayload{
				{ProductID: f.tuxedo.ID.String(), Quantity: 1, UnitValue: 100},
			},
			Payments: []appcontract.PaymentPayload{
				{Method: "DEBIT_CARD", TotalValue: 100, FinalValue: 90, DiscountType: strPtr("FIXED"), DiscountValue: floatPtr(10)},
			},
		})
		require.NoError(t, err)

		assert.Equal(t, contract.StatusInProgress, updated.Status)
		assert.Equal(t, "2025-03-20", contract.FormatDate(updated.ReturnDate))
		assert.Equal(t, "2025-03-10", contract.FormatDate(updated.PickupDate))
		assert.Equal(t, "hem the dress", updated.Observations)
		require.Len(t, updated.Items, 1)
		assert.Equal(t, f.tuxedo.ID, updated.Items[0].ProductID)
		require.Len(t, updated.Payments, 1)
		assert.Equal(t, contract.DiscountTypeFixed, updated.Payments[0].DiscountType)

		var items int64
		require.NoError(t, db.DB.Model(&models.ContractItemModel{}).Where("contract_id = ?", created.ID).Count(&items).Error)
		assert.Equal(t, int64(1), items)
	})

	t.Run("missing contract", func(t *testing.T) {
		_, err := repo.UpdateContract(ctx, uuid.New(), &appcontract.UpdateContractRequest{Observations: strPtr("x")})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("invalid update rolls back", func(t *testing.T) {
		_, err := repo.UpdateContract(ctx, created.ID, &appcontract.UpdateContractRequest{
			Observations: strPtr("changed"),
			Items:        []appcontract.ContractItemPayload{{ProductID: uuid.NewString(), Quantity: 1, UnitValue: 10}},
		})
		require.ErrorIs(t, err, shared.ErrInvalidInput)

		found, err := repo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "hem the dress", found.Observations)
	})

	t.Run("empty optional fields clear stored values", func(t *testing.T) {
		require.NotNil(t, created.EventID)
		require.NotNil(t, created.FittingDate)

		updated, err := repo.UpdateContract(ctx, created.ID, &appcontract.UpdateContractRequest{
			EventID:      strPtr(""),
			LocationID:   strPtr(""),
			FittingDate:  strPtr(""),
			Observations: strPtr(""),
		})
		require.NoError(t, err)

		assert.Nil(t, updated.EventID)
		assert.Nil(t, updated.LocationID)
		assert.Nil(t, updated.FittingDate)
		assert.Empty(t, updated.Observations)

		found, err := repo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Nil(t, found.EventID)
		assert.Nil(t, found.LocationID)
		assert.Nil(t, found.FittingDate)
		assert.Empty(t, found.Observations)
		assert.Equal(t, f.client.ID, found.ClientID)
	})
}

func TestGormContractRepository_FindByID_Mock(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()
		repo := NewGormContractRepository(db.DB)
		id := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "contracts" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(id, 1).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.FindByID(context.Background(), id)

		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query failure", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()
		repo := NewGormContractRepository(db.DB)
		id := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "contracts"`).
			WillReturnError(assert.AnError)

		_, err := repo.FindByID(context.Background(), id)

		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestGormReferenceDirectory(t *testing.T) {
	db := newTestDatabase(t)
	f := seed(t, db)
	require.NoError(t, db.DB.Create(&models.ClientModel{Name: "Bruno Lima"}).Error)
	dir := NewGormReferenceDirectory(db.DB)
	ctx := context.Background()

	clients, err := dir.ListClients(ctx)
	require.NoError(t, err)
	require.Len(t, clients, 2)
	assert.Equal(t, "Ana Souza", clients[0].Name)
	assert.Equal(t, "ana@example.com", clients[0].Email)

	products, err := dir.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, f.dress.ID, products[0].ID)
	assert.Equal(t, contract.ProductStatusRented, products[1].Status)
	assert.True(t, decimal.RequireFromString("120.5").Equal(products[1].RentalValue))

	events, err := dir.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Wedding", events[0].Name)

	locations, err := dir.ListLocations(ctx)
	require.NoError(t, err)
	require.Len(t, locations, 1)
	assert.Equal(t, "Main St 10", locations[0].Address)
}

func updateWithUnknownProduct() *appcontract.UpdateContractRequest {
	return &appcontract.UpdateContractRequest{
		Items: []appcontract.ContractItemPayload{{ProductID: uuid.NewString(), Quantity: 1, UnitValue: 10}},
	}
}
