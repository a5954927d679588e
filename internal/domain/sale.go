package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is one line of retail activity. ID is assigned by the SaleRepository.
// Product and Customer are shared references; a Sale never owns them.
type Sale struct {
	ID         int64
	SaleDate   time.Time
	Quantity   int
	UnitValue  decimal.Decimal
	TotalValue decimal.Decimal
	Product    *Product
	Customer   *Customer
	CreatedAt  time.Time
}

// NewSale builds a sale and derives its total value from quantity and unit value.
func NewSale(product *Product, customer *Customer, quantity int, unitValue decimal.Decimal, saleDate time.Time) *Sale {
	return &Sale{
		SaleDate:   saleDate,
		Quantity:   quantity,
		UnitValue:  unitValue,
		TotalValue: unitValue.Mul(decimal.NewFromInt(int64(quantity))),
		Product:    product,
		Customer:   customer,
		CreatedAt:  time.Now().UTC(),
	}
}
