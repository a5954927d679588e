package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mrops-br/sales-ingestion-api/internal/domain"
	"github.com/shopspring/decimal"
)

// SaleRepository handles sale persistence operations
type SaleRepository struct {
	pool *pgxpool.Pool
}

// NewSaleRepository creates a new PostgreSQL sale repository
func NewSaleRepository(pool *pgxpool.Pool) *SaleRepository {
	return &SaleRepository{pool: pool}
}

// Create inserts a sale and sets its generated ID
func (r *SaleRepository) Create(ctx context.Context, sale *domain.Sale) error {
	query := `
		INSERT INTO sales (sale_date, quantity, unit_value, total_value, product_id, customer_id, created_at)
		VALUES ($1, $2, $3::numeric, $4::numeric, $5, $6, $7)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		sale.SaleDate,
		sale.Quantity,
		sale.UnitValue.String(),
		sale.TotalValue.String(),
		sale.Product.ID,
		sale.Customer.ID,
		sale.CreatedAt,
	).Scan(&sale.ID)
	if err != nil {
		return fmt.Errorf("failed to create sale: %w", err)
	}

	return nil
}

// FindAll retrieves all sales ordered by ID, with their product and customer
func (r *SaleRepository) FindAll(ctx context.Context) ([]*domain.Sale, error) {
	query := `
		SELECT s.id, s.sale_date, s.quantity, s.unit_value::text, s.total_value::text, s.created_at,
		       p.id, p.name, p.unit_price::text, p.created_at,
		       c.id, c.name, c.created_at
		FROM sales s
		JOIN products p ON p.id = s.product_id
		JOIN customers c ON c.id = s.customer_id
		ORDER BY s.id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	defer rows.Close()

	var sales []*domain.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sales: %w", err)
	}

	return sales, nil
}

func scanSale(rows pgx.Rows) (*domain.Sale, error) {
	var (
		s                       domain.Sale
		p                       domain.Product
		c                       domain.Customer
		unitValue, total, price string
	)

	err := rows.Scan(
		&s.ID, &s.SaleDate, &s.Quantity, &unitValue, &total, &s.CreatedAt,
		&p.ID, &p.Name, &price, &p.CreatedAt,
		&c.ID, &c.Name, &c.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan sale: %w", err)
	}

	for _, f := range []struct {
		dst *decimal.Decimal
		src string
	}{
		{&s.UnitValue, unitValue},
		{&s.TotalValue, total},
		{&p.UnitPrice, price},
	} {
		if *f.dst, err = decimal.NewFromString(f.src); err != nil {
			return nil, fmt.Errorf("failed to parse amount %q: %w", f.src, err)
		}
	}

	s.Product = &p
	s.Customer = &c
	return &s, nil
}
