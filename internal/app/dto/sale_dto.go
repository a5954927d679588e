package dto

import (
	"time"

	"github.com/mrops-br/sales-ingestion-api/internal/domain"
	"github.com/shopspring/decimal"
)

// ProductRequest is the product part of a batch item
type ProductRequest struct {
	ID        FlexString `json:"id"`
	Name      string     `json:"nome_produto"`
	UnitPrice float64    `json:"valor_unit"`
}

// CustomerRequest is the customer part of a batch item
type CustomerRequest struct {
	ID   FlexString `json:"id_cliente"`
	Name string     `json:"nome_cliente"`
}

// SaleItemRequest represents one item of a batch submission.
// UnitValue overrides Product.UnitPrice for this sale when present.
type SaleItemRequest struct {
	Product   ProductRequest  `json:"produto"`
	Customer  CustomerRequest `json:"cliente"`
	Quantity  Quantity        `json:"qtd_vendida"`
	UnitValue *float64        `json:"valor_unit,omitempty"`
	SaleDate  string          `json:"data_venda"`
}

// ProductResponse represents a product inside a sale response
type ProductResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CustomerResponse represents a customer inside a sale response
type CustomerResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SaleResponse represents the sale response
type SaleResponse struct {
	ID         int64            `json:"id"`
	SaleDate   string           `json:"sale_date"`
	Quantity   int              `json:"quantity"`
	UnitValue  decimal.Decimal  `json:"unit_value"`
	TotalValue decimal.Decimal  `json:"total_value"`
	Product    ProductResponse  `json:"product"`
	Customer   CustomerResponse `json:"customer"`
}

// BatchResultResponse is the payload returned by every ingestion run
type BatchResultResponse struct {
	RunID          string          `json:"run_id"`
	Source         string          `json:"source"`
	Message        string          `json:"message"`
	TotalProcessed int             `json:"totalProcessed"`
	TotalSuccess   int             `json:"totalSuccess"`
	TotalErrors    int             `json:"totalErrors"`
	Errors         []string        `json:"errors"`
	Sales          []*SaleResponse `json:"sales,omitempty"`
}

// ToSaleResponse converts a domain Sale to SaleResponse
func ToSaleResponse(s *domain.Sale) *SaleResponse {
	resp := &SaleResponse{
		ID:         s.ID,
		SaleDate:   s.SaleDate.Format(time.DateOnly),
		Quantity:   s.Quantity,
		UnitValue:  s.UnitValue,
		TotalValue: s.TotalValue,
	}
	if s.Product != nil {
		resp.Product = ProductResponse{ID: s.Product.ID, Name: s.Product.Name, UnitPrice: s.Product.UnitPrice}
	}
	if s.Customer != nil {
		resp.Customer = CustomerResponse{ID: s.Customer.ID, Name: s.Customer.Name}
	}
	return resp
}

// ToSaleResponseList converts a list of domain Sales to SaleResponse list
func ToSaleResponseList(sales []*domain.Sale) []*SaleResponse {
	responses := make([]*SaleResponse, len(sales))
	for i, s := range sales {
		responses[i] = ToSaleResponse(s)
	}
	return responses
}

// ToBatchResultResponse converts a BatchResult. Created sales are included
// only when withSales is set.
func ToBatchResultResponse(r *domain.BatchResult, withSales bool) *BatchResultResponse {
	resp := &BatchResultResponse{
		RunID:          r.RunID.String(),
		Source:         string(r.Source),
		Message:        r.Message,
		TotalProcessed: r.TotalProcessed,
		TotalSuccess:   r.TotalSuccess,
		TotalErrors:    r.TotalErrors,
		Errors:         r.Errors,
	}
	if withSales {
		resp.Sales = ToSaleResponseList(r.CreatedSales())
	}
	return resp
}
