package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mrops-br/sales-ingestion-api/internal/domain"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// EntityResolver implements get-or-create resolution of products and customers.
// Once an id is stored, later sightings never change its name or price.
type EntityResolver struct {
	products        domain.ProductRepository
	customers       domain.CustomerRepository
	tracer          trace.Tracer
	logger          *slog.Logger
	entitiesCreated metric.Int64Counter
}

// NewEntityResolver creates a new entity resolver
func NewEntityResolver(
	products domain.ProductRepository,
	customers domain.CustomerRepository,
	tracer trace.Tracer,
	meter metric.Meter,
	logger *slog.Logger,
) *EntityResolver {
	entitiesCreated, _ := meter.Int64Counter(
		"ingestion.entities.created",
		metric.WithDescription("Total number of products and customers created by ingestion"),
	)

	return &EntityResolver{
		products:        products,
		customers:       customers,
		tracer:          tracer,
		logger:          logger,
		entitiesCreated: entitiesCreated,
	}
}

// ResolveProduct returns the stored product with the given id, creating it
// from name and unitPrice when it does not exist yet.
func (r *EntityResolver) ResolveProduct(ctx context.Context, id, name string, unitPrice decimal.Decimal) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "EntityResolver.ResolveProduct")
	defer span.End()

	span.SetAttributes(attribute.String("product.id", id))

	existing, err := r.products.FindByID(ctx, id)
	if err == nil {
		span.SetAttributes(attribute.Bool("entity.created", false))
		span.SetStatus(codes.Ok, "Product found")
		return existing, nil
	}
	if !errors.Is(err, domain.ErrProductNotFound) {
		return nil, r.fail(span, fmt.Errorf("resolve product %s: %w", id, err))
	}

	candidate, err := domain.NewProduct(id, name, unitPrice)
	if err != nil {
		return nil, r.fail(span, fmt.Errorf("resolve product %q: %w", id, err))
	}

	stored, created, err := r.products.GetOrCreate(ctx, candidate)
	if err != nil {
		return nil, r.fail(span, fmt.Errorf("resolve product %s: %w", id, err))
	}

	if created {
		r.entitiesCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("entity", "product")))
		r.logger.DebugContext(ctx, "Product created by ingestion",
			slog.String("product_id", stored.ID),
			slog.String("product_name", stored.Name),
		)
	}

	span.SetAttributes(attribute.Bool("entity.created", created))
	span.SetStatus(codes.Ok, "Product resolved")
	return stored, nil
}

// ResolveCustomer returns the stored customer with the given id, creating it
// from name when it does not exist yet.
func (r *EntityResolver) ResolveCustomer(ctx context.Context, id, name string) (*domain.Customer, error) {
	ctx, span := r.tracer.Start(ctx, "EntityResolver.ResolveCustomer")
	defer span.End()

	span.SetAttributes(attribute.String("customer.id", id))

	existing, err := r.customers.FindByID(ctx, id)
	if err == nil {
		span.SetAttributes(attribute.Bool("entity.created", false))
		span.SetStatus(codes.Ok, "Customer found")
		return existing, nil
	}
	if !errors.Is(err, domain.ErrCustomerNotFound) {
		return nil, r.fail(span, fmt.Errorf("resolve customer %s: %w", id, err))
	}

	candidate, err := domain.NewCustomer(id, name)
	if err != nil {
		return nil, r.fail(span, fmt.Errorf("resolve customer %q: %w", id, err))
	}

	stored, created, err := r.customers.GetOrCreate(ctx, candidate)
	if err != nil {
		return nil, r.fail(span, fmt.Errorf("resolve customer %s: %w", id, err))
	}

	if created {
		r.entitiesCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("entity", "customer")))
		r.logger.DebugContext(ctx, "Customer created by ingestion",
			slog.String("customer_id", stored.ID),
			slog.String("customer_name", stored.Name),
		)
	}

	span.SetAttributes(attribute.Bool("entity.created", created))
	span.SetStatus(codes.Ok, "Customer resolved")
	return stored, nil
}

func (r *EntityResolver) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
