package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mrops-br/sales-ingestion-api/internal/domain"
)

// CustomerRepository handles customer persistence operations
type CustomerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository creates a new PostgreSQL customer repository
func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

// FindByID retrieves a customer by its external id
func (r *CustomerRepository) FindByID(ctx context.Context, id string) (*domain.Customer, error) {
	query := `
		SELECT id, name, created_at
		FROM customers
		WHERE id = $1
	`

	var c domain.Customer
	err := r.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	return &c, nil
}

// GetOrCreate atomically inserts a customer or returns the existing one
func (r *CustomerRepository) GetOrCreate(ctx context.Context, customer *domain.Customer) (*domain.Customer, bool, error) {
	insertQuery := `
		INSERT INTO customers (id, name, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`

	tag, err := r.pool.Exec(ctx, insertQuery, customer.ID, customer.Name, customer.CreatedAt)
	if err != nil {
		return nil, false, fmt.Errorf("failed to insert customer: %w", err)
	}

	stored, err := r.FindByID(ctx, customer.ID)
	if err != nil {
		return nil, false, err
	}

	return stored, tag.RowsAffected() == 1, nil
}
