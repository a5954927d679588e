package ingest

import (
	"context"
	"fmt"
	"io"

	"github.com/mrops-br/sales-ingestion-api/internal/app/dto"
	"github.com/mrops-br/sales-ingestion-api/internal/domain"
	"github.com/shopspring/decimal"
)

// RequestSource yields the items of a batch submission in order
type RequestSource struct {
	items []dto.SaleItemRequest
	pos   int
}

// NewRequestSource creates a source over already structured batch items
func NewRequestSource(items []dto.SaleItemRequest) *RequestSource {
	return &RequestSource{items: items}
}

func (s *RequestSource) Kind() domain.BatchSource { return domain.BatchSourceRequest }

func (s *RequestSource) Next(ctx context.Context) (*Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.pos >= len(s.items) {
		return nil, io.EOF
	}
	req := s.items[s.pos]
	s.pos++

	item := &Item{
		Ref:        fmt.Sprintf("item %d", s.pos),
		ProductID:  req.Product.ID.String(),
		CustomerID: req.Customer.ID.String(),
	}

	qty, err := req.Quantity.Int()
	if err != nil {
		item.Err = err
		return item, nil
	}

	productPrice := decimal.NewFromFloat(req.Product.UnitPrice)
	unitValue := productPrice
	if req.UnitValue != nil {
		unitValue = decimal.NewFromFloat(*req.UnitValue)
	}

	item.Record = &SaleRecord{
		ProductID:    item.ProductID,
		ProductName:  req.Product.Name,
		ProductPrice: productPrice,
		CustomerID:   item.CustomerID,
		CustomerName: req.Customer.Name,
		Quantity:     qty,
		UnitValue:    unitValue,
		RawDate:      req.SaleDate,
	}
	return item, nil
}
