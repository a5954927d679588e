package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mrops-br/sales-ingestion-api/internal/domain"
	"github.com/shopspring/decimal"
)

// ProductRepository handles product persistence operations
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository creates a new PostgreSQL product repository
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// FindByID retrieves a product by its external id
func (r *ProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `
		SELECT id, name, unit_price::text, created_at
		FROM products
		WHERE id = $1
	`

	var (
		p     domain.Product
		price string
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &price, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if p.UnitPrice, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("failed to parse product price %q: %w", price, err)
	}

	return &p, nil
}

// GetOrCreate atomically inserts a product or returns the existing one.
// Uses INSERT...ON CONFLICT (id) DO NOTHING to avoid race conditions.
func (r *ProductRepository) GetOrCreate(ctx context.Context, product *domain.Product) (*domain.Product, bool, error) {
	insertQuery := `
		INSERT INTO products (id, name, unit_price, created_at)
		VALUES ($1, $2, $3::numeric, $4)
		ON CONFLICT (id) DO NOTHING
	`

	tag, err := r.pool.Exec(ctx, insertQuery,
		product.ID,
		product.Name,
		product.UnitPrice.String(),
		product.CreatedAt,
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to insert product: %w", err)
	}

	// Always SELECT to get the canonical row (ours or existing)
	stored, err := r.FindByID(ctx, product.ID)
	if err != nil {
		return nil, false, err
	}

	return stored, tag.RowsAffected() == 1, nil
}
