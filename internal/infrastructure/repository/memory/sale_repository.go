package memory

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mrops-br/sales-ingestion-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SaleRepository is an in-memory implementation of domain.SaleRepository.
// Sales are kept in insertion order and numbered from 1.
type SaleRepository struct {
	mu     sync.RWMutex
	sales  []*domain.Sale
	nextID int64
	tracer trace.Tracer
	logger *slog.Logger
}

// NewSaleRepository creates a new in-memory sale repository
func NewSaleRepository(tracer trace.Tracer, logger *slog.Logger) *SaleRepository {
	return &SaleRepository{
		nextID: 1,
		tracer: tracer,
		logger: logger,
	}
}

// Create stores a new sale and assigns its ID
func (r *SaleRepository) Create(ctx context.Context, sale *domain.Sale) error {
	ctx, span := r.tracer.Start(ctx, "SaleRepository.Create")
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	sale.ID = r.nextID
	r.nextID++
	r.sales = append(r.sales, sale)

	span.SetAttributes(attribute.Int64("sale.id", sale.ID))

	r.logger.DebugContext(ctx, "Sale created in repository",
		slog.Int64("sale_id", sale.ID),
		slog.String("total_value", sale.TotalValue.String()),
	)

	span.SetStatus(codes.Ok, "Sale created successfully")
	return nil
}

// FindAll retrieves all sales in insertion order
func (r *SaleRepository) FindAll(ctx context.Context) ([]*domain.Sale, error) {
	ctx, span := r.tracer.Start(ctx, "SaleRepository.FindAll")
	defer span.End()

	r.mu.RLock()
	defer r.mu.RUnlock()

	sales := make([]*domain.Sale, len(r.sales))
	copy(sales, r.sales)

	span.SetAttributes(attribute.Int("sale.count", len(sales)))

	r.logger.InfoContext(ctx, "Sales retrieved from repository",
		slog.Int("count", len(sales)),
	)

	span.SetStatus(codes.Ok, "Sales retrieved successfully")
	return sales, nil
}
