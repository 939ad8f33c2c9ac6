package contract

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rental/backend/internal/domain/contract"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockReferenceDirectory is a mock implementation of contract.ReferenceDirectory
type MockReferenceDirectory struct {
	mock.Mock
}

func (m *MockReferenceDirectory) ListClients(ctx context.Context) ([]contract.Client, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]contract.Client), args.Error(1)
}

func (m *MockReferenceDirectory) ListProducts(ctx context.Context) ([]contract.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]contract.Product), args.Error(1)
}

func (m *MockReferenceDirectory) ListEvents(ctx context.Context) ([]contract.Event, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]contract.Event), args.Error(1)
}

func (m *MockReferenceDirectory) ListLocations(ctx context.Context) ([]contract.Location, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]contract.Location), args.Error(1)
}

// MockContractReader is a mock implementation of contract.ContractReader
type MockContractReader struct {
	mock.Mock
}

func (m *MockContractReader) FindByID(ctx context.Context, id uuid.UUID) (*contract.Contract, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contract.Contract), args.Error(1)
}

// MockContractWriter is a mock implementation of ContractWriter
type MockContractWriter struct {
	mock.Mock
}

func (m *MockContractWriter) CreateContract(ctx context.Context, req *CreateContractRequest) (*contract.Contract, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contract.Contract), args.Error(1)
}

func (m *MockContractWriter) UpdateContract(ctx context.Context, id uuid.UUID, req *UpdateContractRequest) (*contract.Contract, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contract.Contract), args.Error(1)
}

type recordingMetrics struct {
	mu         sync.Mutex
	started    []string
	failures   []contract.Step
	submitted  []decimal.Decimal
	submitErrs int
}

func (r *recordingMetrics) SessionStarted(_ context.Context, mode string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, mode)
}

func (r *recordingMetrics) ValidationFailed(_ context.Context, step contract.Step) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, step)
}

func (r *recordingMetrics) ContractSubmitted(_ context.Context, _ string, total decimal.Decimal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submitted = append(r.submitted, total)
}

func (r *recordingMetrics) SubmitFailed(context.Context, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submitErrs++
}

// fixture is a shop with one client, two available products and one
// rented product.
type fixture struct {
	client   contract.Client
	dress    contract.Product
	tuxedo   contract.Product
	veil     contract.Product
	event    contract.Event
	location contract.Location
}

func newFixture() fixture {
	return fixture{
		client:   contract.Client{ID: uuid.New(), Name: "Maria Souza"},
		dress:    contract.Product{ID: uuid.New(), Name: "Wedding dress", Status: contract.ProductStatusAvailable, RentalValue: decimal.NewFromInt(50)},
		tuxedo:   contract.Product{ID: uuid.New(), Name: "Tuxedo", Status: contract.ProductStatusAvailable, RentalValue: decimal.NewFromInt(120)},
		veil:     contract.Product{ID: uuid.New(), Name: "Veil", Status: contract.ProductStatusRented, RentalValue: decimal.NewFromInt(30)},
		event:    contract.Event{ID: uuid.New(), Name: "Spring gala"},
		location: contract.Location{ID: uuid.New(), Name: "Downtown store"},
	}
}

func (f fixture) directory() *MockReferenceDirectory {
	dir := new(MockReferenceDirectory)
	dir.On("ListClients", mock.Anything).Return([]contract.Client{f.client}, nil)
	dir.On("ListProducts", mock.Anything).Return([]contract.Product{f.dress, f.tuxedo, f.veil}, nil)
	dir.On("ListEvents", mock.Anything).Return([]contract.Event{f.event}, nil)
	dir.On("ListLocations", mock.Anything).Return([]contract.Location{f.location}, nil)
	return dir
}

func fixedClock() time.Time {
	return time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
}
