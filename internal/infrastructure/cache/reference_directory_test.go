package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rental/backend/internal/domain/contract"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockDirectory struct {
	mock.Mock
}

func (m *mockDirectory) ListClients(ctx context.Context) ([]contract.Client, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]contract.Client), args.Error(1)
}

func (m *mockDirectory) ListProducts(ctx context.Context) ([]contract.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]contract.Product), args.Error(1)
}

func (m *mockDirectory) ListEvents(ctx context.Context) ([]contract.Event, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]contract.Event), args.Error(1)
}

func (m *mockDirectory) ListLocations(ctx context.Context) ([]contract.Location, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]contract.Location), args.Error(1)
}

// failingStore errors on every call
type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("store down")
}
func (failingStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("store down")
}
func (failingStore) Delete(context.Context, ...string) error { return errors.New("store down") }
func (failingStore) Close() error                           { return nil }

func newCachedDirectory(t *testing.T, store Store) (*CachedDirectory, *mockDirectory) {
	t.Helper()
	inner := new(mockDirectory)
	return NewCachedDirectory(inner, store, time.Minute, zap.NewNop()), inner
}

func TestCachedDirectory_ServesSecondCallFromCache(t *testing.T) {
	store := NewInMemoryStore()
	defer store.Close()
	dir, inner := newCachedDirectory(t, store)
	ctx := context.Background()

	products := []contract.Product{{
		ID:          uuid.New(),
		Code:        "DR-01",
		Name:        "Evening dress",
		Status:      contract.ProductStatusAvailable,
		RentalValue: decimal.RequireFromString("150.50"),
	}}
	inner.On("ListProducts", ctx).Return(products, nil).Once()

	first, err := dir.ListProducts(ctx)
	require.NoError(t, err)
	second, err := dir.ListProducts(ctx)
	require.NoError(t, err)

	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.True(t, second[0].RentalValue.Equal(decimal.RequireFromString("150.5")))
	assert.Equal(t, contract.ProductStatusAvailable, second[0].Status)
	inner.AssertExpectations(t)
}

func TestCachedDirectory_DoesNotCacheErrors(t *testing.T) {
	store := NewInMemoryStore()
	defer store.Close()
	dir, inner := newCachedDirectory(t, store)
	ctx := context.Background()

	clients := []contract.Client{{ID: uuid.New(), Name: "Ana Souza"}}
	inner.On("ListClients", ctx).Return(nil, errors.New("boom")).Once()
	inner.On("ListClients", ctx).Return(clients, nil).Once()

	_, err := dir.ListClients(ctx)
	require.Error(t, err)

	got, err := dir.ListClients(ctx)
	require.NoError(t, err)
	assert.Equal(t, clients, got)
	inner.AssertNumberOfCalls(t, "ListClients", 2)
}

func TestCachedDirectory_Invalidate(t *testing.T) {
	store := NewInMemoryStore()
	defer store.Close()
	dir, inner := newCachedDirectory(t, store)
	ctx := context.Background()

	events := []contract.Event{{ID: uuid.New(), Name: "Wedding"}}
	locations := []contract.Location{{ID: uuid.New(), Name: "Downtown store"}}
	inner.On("ListEvents", ctx).Return(events, nil).Twice()
	inner.On("ListLocations", ctx).Return(locations, nil).Twice()

	_, _ = dir.ListEvents(ctx)
	_, _ = dir.ListLocations(ctx)
	require.NoError(t, dir.Invalidate(ctx))
	_, _ = dir.ListEvents(ctx)
	_, _ = dir.ListLocations(ctx)

	inner.AssertExpectations(t)
}

func TestCachedDirectory_InvalidateProducts(t *testing.T) {
	store := NewInMemoryStore()
	defer store.Close()
	dir, inner := newCachedDirectory(t, store)
	ctx := context.Background()

	inner.On("ListProducts", ctx).Return([]contract.Product{}, nil).Twice()
	inner.On("ListClients", ctx).Return([]contract.Client{}, nil).Once()

	_, _ = dir.ListProducts(ctx)
	_, _ = dir.ListClients(ctx)
	require.NoError(t, dir.InvalidateProducts(ctx))
	_, _ = dir.ListProducts(ctx)
	_, _ = dir.ListClients(ctx)

	inner.AssertExpectations(t)
}

func TestCachedDirectory_StoreFailureFallsThrough(t *testing.T) {
	dir, inner := newCachedDirectory(t, failingStore{})
	ctx := context.Background()

	clients := []contract.Client{{ID: uuid.New(), Name: "Ana Souza"}}
	inner.On("ListClients", ctx).Return(clients, nil).Twice()

	for i := 0; i < 2; i++ {
		got, err := dir.ListClients(ctx)
		require.NoError(t, err)
		assert.Equal(t, clients, got)
	}
	inner.AssertExpectations(t)
}

func TestCachedDirectory_CorruptedEntryReloads(t *testing.T) {
	store := NewInMemoryStore()
	defer store.Close()
	dir, inner := newCachedDirectory(t, store)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, clientsKey, []byte("{not json"), 0))
	inner.On("ListClients", ctx).Return([]contract.Client{{ID: uuid.New(), Name: "Bruno"}}, nil).Once()

	got, err := dir.ListClients(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Bruno", got[0].Name)
}
