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

// CustomerRepository is an in-memory implementation of domain.CustomerRepository
type CustomerRepository struct {
	mu        sync.RWMutex
	customers map[string]*domain.Customer
	tracer    trace.Tracer
	logger    *slog.Logger
}

// NewCustomerRepository creates a new in-memory customer repository
func NewCustomerRepository(tracer trace.Tracer, logger *slog.Logger) *CustomerRepository {
	return &CustomerRepository{
		customers: make(map[string]*domain.Customer),
		tracer:    tracer,
		logger:    logger,
	}
}

// GetOrCreate stores customer unless its id is already present
func (r *CustomerRepository) GetOrCreate(ctx context.Context, customer *domain.Customer) (*domain.Customer, bool, error) {
	ctx, span := r.tracer.Start(ctx, "CustomerRepository.GetOrCreate")
	defer span.End()

	span.SetAttributes(attribute.String("customer.id", customer.ID))

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.customers[customer.ID]; ok {
		span.SetStatus(codes.Ok, "Customer already stored")
		return existing, false, nil
	}

	r.customers[customer.ID] = customer

	r.logger.InfoContext(ctx, "Customer created in repository",
		slog.String("customer_id", customer.ID),
		slog.String("customer_name", customer.Name),
	)

	span.SetStatus(codes.Ok, "Customer created successfully")
	return customer, true, nil
}

// FindByID retrieves a customer by ID
func (r *CustomerRepository) FindByID(ctx context.Context, id string) (*domain.Customer, error) {
	_, span := r.tracer.Start(ctx, "CustomerRepository.FindByID")
	defer span.End()

	span.SetAttributes(attribute.String("customer.id", id))

	r.mu.RLock()
	defer r.mu.RUnlock()

	customer, exists := r.customers[id]
	if !exists {
		span.SetStatus(codes.Ok, "Customer not found")
		return nil, domain.ErrCustomerNotFound
	}

	span.SetStatus(codes.Ok, "Customer found")
	return customer, nil
}

// Count returns the number of stored customers
func (r *CustomerRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.customers)
}
