// Package ingest turns raw sales input into SaleRecords: fixed-width lines from
// a .dat file or items of a JSON batch submission.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mrops-br/sales-ingestion-api/internal/domain"
	"github.com/shopspring/decimal"
)

var ErrShortLine = errors.New("line shorter than record width")

// SaleRecord is a decoded but not yet reconciled sale.
// SaleDate is set when the source carries a strictly parsed date; otherwise
// RawDate holds the date text for the materializer to interpret.
type SaleRecord struct {
	ProductID    string
	ProductName  string
	ProductPrice decimal.Decimal
	CustomerID   string
	CustomerName string
	Quantity     int
	UnitValue    decimal.Decimal
	SaleDate     time.Time
	RawDate      string
}

// DecodeError reports a malformed field of a fixed-width line
type DecodeError struct {
	Field string
	Value string
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("decode %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("decode %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Item is one unit of work produced by a Source. Exactly one of Record and
// Err is set. ProductID and CustomerID are filled whenever they are known,
// including for failed items, so failures can be reported against them.
type Item struct {
	Ref        string
	ProductID  string
	CustomerID string
	Record     *SaleRecord
	Err        error
}

// Source yields items in source order. Next returns io.EOF when the source is
// exhausted; any other error means the source itself failed.
type Source interface {
	Kind() domain.BatchSource
	Next(ctx context.Context) (*Item, error)
}
