package memory_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/mrops-br/sales-ingestion-api/internal/domain"
	"github.com/mrops-br/sales-ingestion-api/internal/infrastructure/repository/memory"
)

var (
	tracer = noop.NewTracerProvider().Tracer("test")
	logger = slog.New(slog.DiscardHandler)
)

func TestProductGetOrCreateFirstWriteWins(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewProductRepository(tracer, logger)

	_, err := repo.FindByID(ctx, "0001")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	first := &domain.Product{ID: "0001", Name: "Widget", UnitPrice: decimal.RequireFromString("10.50")}
	stored, created, err := repo.GetOrCreate(ctx, first)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Same(t, first, stored)

	second := &domain.Product{ID: "0001", Name: "Renamed", UnitPrice: decimal.RequireFromString("99")}
	stored, created, err = repo.GetOrCreate(ctx, second)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Same(t, first, stored)
	assert.Equal(t, "Widget", stored.Name)

	found, err := repo.FindByID(ctx, "0001")
	require.NoError(t, err)
	assert.Same(t, first, found)
	assert.Equal(t, 1, repo.Count())
}

func TestProductGetOrCreateConcurrent(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewProductRepository(tracer, logger)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		winners = make(map[*domain.Product]struct{})
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, ok, err := repo.GetOrCreate(ctx, &domain.Product{ID: "0001", Name: "Widget"})
			if err != nil {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if ok {
				created++
			}
			winners[p] = struct{}{}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Len(t, winners, 1)
	assert.Equal(t, 1, repo.Count())
}

func TestCustomerGetOrCreate(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewCustomerRepository(tracer, logger)

	_, err := repo.FindByID(ctx, "0001")
	assert.ErrorIs(t, err, domain.ErrCustomerNotFound)

	alice := &domain.Customer{ID: "0001", Name: "Alice"}
	_, created, err := repo.GetOrCreate(ctx, alice)
	require.NoError(t, err)
	assert.True(t, created)

	stored, created, err := repo.GetOrCreate(ctx, &domain.Customer{ID: "0001", Name: "Someone else"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Same(t, alice, stored)
	assert.Equal(t, 1, repo.Count())
}

func TestSaleRepositoryAssignsSequentialIDs(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSaleRepository(tracer, logger)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &domain.Sale{Quantity: i}))
	}

	sales, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, sales, 3)
	for i, s := range sales {
		assert.Equal(t, int64(i+1), s.ID)
		assert.Equal(t, i, s.Quantity)
	}

	// FindAll hands out a copy of the slice
	sales[0] = nil
	again, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, again[0])
}
