package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidProductID    = errors.New("product id is required")
	ErrInvalidProductPrice = errors.New("product price must not be negative")
)

// Product is identified by the external product code found in the source data.
// The first sighting of an id is authoritative for name and price.
type Product struct {
	ID        string
	Name      string
	UnitPrice decimal.Decimal
	CreatedAt time.Time
}

// NewProduct creates a new product with validation
func NewProduct(id, name string, unitPrice decimal.Decimal) (*Product, error) {
	product := &Product{
		ID:        id,
		Name:      name,
		UnitPrice: unitPrice,
		CreatedAt: time.Now().UTC(),
	}

	if err := product.Validate(); err != nil {
		return nil, err
	}

	return product, nil
}

// Validate performs business validation on the product
func (p *Product) Validate() error {
	if p.ID == "" {
		return ErrInvalidProductID
	}
	if p.UnitPrice.IsNegative() {
		return ErrInvalidProductPrice
	}
	return nil
}
