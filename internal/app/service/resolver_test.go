package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mrops-br/sales-ingestion-api/internal/app/service"
	"github.com/mrops-br/sales-ingestion-api/internal/domain"
)

func TestResolveProductHitIgnoresArguments(t *testing.T) {
	ctx := context.Background()
	stored := &domain.Product{ID: "0001", Name: "Widget", UnitPrice: decimal.RequireFromString("10.50")}

	products := new(MockProductRepository)
	products.On("FindByID", mock.Anything, "0001").Return(stored, nil)

	resolver := service.NewEntityResolver(products, new(MockCustomerRepository), testTracer, testMeter, testLogger)

	got, err := resolver.ResolveProduct(ctx, "0001", "Other name", decimal.NewFromInt(99))
	require.NoError(t, err)
	assert.Same(t, stored, got)
	products.AssertNotCalled(t, "GetOrCreate", mock.Anything, mock.Anything)
}

func TestResolveProductMissCreates(t *testing.T) {
	ctx := context.Background()

	products := new(MockProductRepository)
	products.On("FindByID", mock.Anything, "0002").Return(nil, domain.ErrProductNotFound)
	products.On("GetOrCreate", mock.Anything, mock.MatchedBy(func(p *domain.Product) bool {
		return p.ID == "0002" && p.Name == "Gadget" && p.UnitPrice.Equal(decimal.RequireFromString("3.25"))
	})).Return(&domain.Product{ID: "0002", Name: "Gadget"}, true, nil).Once()

	resolver := service.NewEntityResolver(products, new(MockCustomerRepository), testTracer, testMeter, testLogger)

	got, err := resolver.ResolveProduct(ctx, "0002", "Gadget", decimal.RequireFromString("3.25"))
	require.NoError(t, err)
	assert.Equal(t, "0002", got.ID)
	products.AssertExpectations(t)
}

func TestResolveProductLosingRaceReturnsWinner(t *testing.T) {
	ctx := context.Background()
	winner := &domain.Product{ID: "0003", Name: "First"}

	products := new(MockProductRepository)
	products.On("FindByID", mock.Anything, "0003").Return(nil, domain.ErrProductNotFound)
	products.On("GetOrCreate", mock.Anything, mock.Anything).Return(winner, false, nil)

	resolver := service.NewEntityResolver(products, new(MockCustomerRepository), testTracer, testMeter, testLogger)

	got, err := resolver.ResolveProduct(ctx, "0003", "Second", decimal.NewFromInt(1))
	require.NoError(t, err)
	assert.Same(t, winner, got)
}

func TestResolveProductStoreFailure(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("connection refused")

	products := new(MockProductRepository)
	products.On("FindByID", mock.Anything, "0004").Return(nil, boom)

	resolver := service.NewEntityResolver(products, new(MockCustomerRepository), testTracer, testMeter, testLogger)

	_, err := resolver.ResolveProduct(ctx, "0004", "X", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "resolve product 0004")
	products.AssertNotCalled(t, "GetOrCreate", mock.Anything, mock.Anything)
}

func TestResolveProductRejectsEmptyID(t *testing.T) {
	ctx := context.Background()

	products := new(MockProductRepository)
	products.On("FindByID", mock.Anything, "").Return(nil, domain.ErrProductNotFound)

	resolver := service.NewEntityResolver(products, new(MockCustomerRepository), testTracer, testMeter, testLogger)

	_, err := resolver.ResolveProduct(ctx, "", "X", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, domain.ErrInvalidProductID)
	products.AssertNotCalled(t, "GetOrCreate", mock.Anything, mock.Anything)
}

func TestResolveCustomer(t *testing.T) {
	ctx := context.Background()
	s := newStores()
	resolver := service.NewEntityResolver(s.products, s.customers, testTracer, testMeter, testLogger)

	first, err := resolver.ResolveCustomer(ctx, "0001", "Alice")
	require.NoError(t, err)

	second, err := resolver.ResolveCustomer(ctx, "0001", "Alice Renamed")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, "Alice", second.Name)
	assert.Equal(t, 1, s.customers.Count())
}

func TestResolveCustomerStoreFailure(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("timeout")

	customers := new(MockCustomerRepository)
	customers.On("FindByID", mock.Anything, "0009").Return(nil, domain.ErrCustomerNotFound)
	customers.On("GetOrCreate", mock.Anything, mock.Anything).Return(nil, false, boom)

	resolver := service.NewEntityResolver(new(MockProductRepository), customers, testTracer, testMeter, testLogger)

	_, err := resolver.ResolveCustomer(ctx, "0009", "Zed")
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "resolve customer 0009")
}
