package domain

import (
	"context"
	"errors"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCustomerNotFound = errors.New("customer not found")
)

// ProductRepository defines the contract for product storage.
// GetOrCreate must be atomic per id: it stores product only when the id is
// absent and otherwise returns the stored product. The bool reports whether
// a new row was written.
type ProductRepository interface {
	FindByID(ctx context.Context, id string) (*Product, error)
	GetOrCreate(ctx context.Context, product *Product) (*Product, bool, error)
}

// CustomerRepository defines the contract for customer storage
type CustomerRepository interface {
	FindByID(ctx context.Context, id string) (*Customer, error)
	GetOrCreate(ctx context.Context, customer *Customer) (*Customer, bool, error)
}

// SaleRepository defines the contract for sale storage.
// Create assigns a sequential ID to the sale.
type SaleRepository interface {
	Create(ctx context.Context, sale *Sale) error
	FindAll(ctx context.Context) ([]*Sale, error)
}
