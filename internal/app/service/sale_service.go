package service

import (
	"context"
	"log/slog"

	"github.com/mrops-br/sales-ingestion-api/internal/app/dto"
	"github.com/mrops-br/sales-ingestion-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SaleQueryService handles read-only sale use cases
type SaleQueryService struct {
	repo   domain.SaleRepository
	tracer trace.Tracer
	logger *slog.Logger
}

// NewSaleQueryService creates a new sale query service
func NewSaleQueryService(repo domain.SaleRepository, tracer trace.Tracer, logger *slog.Logger) *SaleQueryService {
	return &SaleQueryService{repo: repo, tracer: tracer, logger: logger}
}

// ListSales retrieves all sales
func (s *SaleQueryService) ListSales(ctx context.Context) ([]*dto.SaleResponse, error) {
	ctx, span := s.tracer.Start(ctx, "SaleQueryService.ListSales")
	defer span.End()

	sales, err := s.repo.FindAll(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to retrieve sales")
		s.logger.ErrorContext(ctx, "Failed to list sales",
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	span.SetAttributes(attribute.Int("sale.count", len(sales)))
	span.SetStatus(codes.Ok, "Sales listed successfully")
	return dto.ToSaleResponseList(sales), nil
}
