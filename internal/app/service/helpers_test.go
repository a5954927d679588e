package service_test

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/stretchr/testify/mock"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/mrops-br/sales-ingestion-api/internal/app/service"
	"github.com/mrops-br/sales-ingestion-api/internal/domain"
	"github.com/mrops-br/sales-ingestion-api/internal/infrastructure/repository/memory"
)

var (
	testTracer = noop.NewTracerProvider().Tracer("test")
	testMeter  = metricnoop.NewMeterProvider().Meter("test")
	testLogger = slog.New(slog.DiscardHandler)
	fixedNow   = time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
)

func fixedClock() time.Time { return fixedNow }

func datLine(productID, productName, customerID, customerName, qty, price, date string) string {
	return fmt.Sprintf("%-4s%-54s%-4s%-51s%2s%10s%-10s",
		productID, productName, customerID, customerName, qty, price, date)
}

type stores struct {
	products  *memory.ProductRepository
	customers *memory.CustomerRepository
	sales     *memory.SaleRepository
}

func newStores() stores {
	return stores{
		products:  memory.NewProductRepository(testTracer, testLogger),
		customers: memory.NewCustomerRepository(testTracer, testLogger),
		sales:     memory.NewSaleRepository(testTracer, testLogger),
	}
}

func newRunner(products domain.ProductRepository, customers domain.CustomerRepository, sales domain.SaleRepository) *service.BatchRunner {
	resolver := service.NewEntityResolver(products, customers, testTracer, testMeter, testLogger)
	materializer := service.NewMaterializer(fixedClock, testLogger)
	return service.NewBatchRunner(resolver, materializer, sales, testTracer, testMeter, testLogger)
}

// MockProductRepository is a mock implementation of domain.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepository) GetOrCreate(ctx context.Context, product *domain.Product) (*domain.Product, bool, error) {
	args := m.Called(ctx, product)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.Product), args.Bool(1), args.Error(2)
}

// MockCustomerRepository is a mock implementation of domain.CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id string) (*domain.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerRepository) GetOrCreate(ctx context.Context, customer *domain.Customer) (*domain.Customer, bool, error) {
	args := m.Called(ctx, customer)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.Customer), args.Bool(1), args.Error(2)
}

// MockSaleRepository is a mock implementation of domain.SaleRepository
type MockSaleRepository struct {
	mock.Mock
}

func (m *MockSaleRepository) Create(ctx context.Context, sale *domain.Sale) error {
	args := m.Called(ctx, sale)
	return args.Error(0)
}

func (m *MockSaleRepository) FindAll(ctx context.Context) ([]*domain.Sale, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Sale), args.Error(1)
}

// MockLock is a mock implementation of service.IngestionLock
type MockLock struct {
	mock.Mock
}

func (m *MockLock) Lock(ctx context.Context) (func(), error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(func()), args.Error(1)
}
