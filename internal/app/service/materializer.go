package service

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/mrops-br/sales-ingestion-api/internal/app/ingest"
	"github.com/mrops-br/sales-ingestion-api/internal/domain"
)

// RequestDateLayout is the date format of batch submissions (DD/MM/YYYY)
const RequestDateLayout = "02/01/2006"

// Clock returns the current time
type Clock func() time.Time

// Materializer builds sales from decoded records and resolved entities
type Materializer struct {
	now    Clock
	logger *slog.Logger
}

// NewMaterializer creates a new materializer. A nil clock means time.Now.
func NewMaterializer(clock Clock, logger *slog.Logger) *Materializer {
	if clock == nil {
		clock = time.Now
	}
	return &Materializer{now: clock, logger: logger}
}

// Materialize builds a sale. The record's own unit value prices the sale,
// regardless of the price stored on the product.
func (m *Materializer) Materialize(ctx context.Context, rec *ingest.SaleRecord, product *domain.Product, customer *domain.Customer) *domain.Sale {
	saleDate := rec.SaleDate
	if saleDate.IsZero() {
		saleDate = m.requestDate(ctx, rec)
	}
	return domain.NewSale(product, customer, rec.Quantity, rec.UnitValue, saleDate)
}

// requestDate parses a batch submission date and falls back to today when it
// does not match RequestDateLayout.
func (m *Materializer) requestDate(ctx context.Context, rec *ingest.SaleRecord) time.Time {
	if parsed, ok := parseRequestDate(rec.RawDate); ok {
		return parsed
	}

	today := m.today()
	m.logger.WarnContext(ctx, "Invalid sale date, using current date",
		slog.String("raw_date", rec.RawDate),
		slog.String("product_id", rec.ProductID),
		slog.String("customer_id", rec.CustomerID),
		slog.String("fallback_date", today.Format(time.DateOnly)),
	)
	return today
}

func (m *Materializer) today() time.Time {
	y, mo, d := m.now().Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

// parseRequestDate reads DD/MM/YYYY. A day past the end of its month
// (31/02/2024) is clamped to the month's last day rather than rejected.
func parseRequestDate(raw string) (time.Time, bool) {
	if len(raw) != len(RequestDateLayout) || raw[2] != '/' || raw[5] != '/' {
		return time.Time{}, false
	}
	day, ok := atoiDigits(raw[0:2])
	if !ok {
		return time.Time{}, false
	}
	month, ok := atoiDigits(raw[3:5])
	if !ok {
		return time.Time{}, false
	}
	year, ok := atoiDigits(raw[6:10])
	if !ok {
		return time.Time{}, false
	}
	if day < 1 || day > 31 || month < 1 || month > 12 {
		return time.Time{}, false
	}

	// day 0 of the next month is the last day of this one
	lastDay := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	day = min(day, lastDay)
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}

func atoiDigits(s string) (int, bool) {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}
