package domain

import (
	"errors"
	"time"
)

var ErrInvalidCustomerID = errors.New("customer id is required")

// Customer is identified by the external customer code found in the source data.
type Customer struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// NewCustomer creates a new customer with validation
func NewCustomer(id, name string) (*Customer, error) {
	customer := &Customer{
		ID:        id,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	if customer.ID == "" {
		return nil, ErrInvalidCustomerID
	}

	return customer, nil
}
