package ingest

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Column layout of a .dat record, byte offsets with exclusive ends.
const (
	productIDStart  = 0
	productIDEnd    = 4
	productNameEnd  = 58
	customerIDEnd   = 62
	customerNameEnd = 113
	quantityEnd     = 115
	unitPriceEnd    = 125
	saleDateEnd     = 135
	RecordWidth     = saleDateEnd
	FileDateLayout  = time.DateOnly
)

var (
	errNotDigits    = errors.New("must contain only digits")
	errInvalidPrice = errors.New("must be digits with an optional decimal point")
)

// DecodeLine parses one fixed-width line. Blank lines are the caller's
// concern; DecodeLine treats them as short.
func DecodeLine(line string) (*SaleRecord, error) {
	if len(line) < RecordWidth {
		return nil, &DecodeError{
			Field: "line",
			Err:   fmt.Errorf("%w: got %d, want %d", ErrShortLine, len(line), RecordWidth),
		}
	}

	rec := &SaleRecord{
		ProductID:    field(line, productIDStart, productIDEnd),
		ProductName:  field(line, productIDEnd, productNameEnd),
		CustomerID:   field(line, productNameEnd, customerIDEnd),
		CustomerName: field(line, customerIDEnd, customerNameEnd),
	}

	rawQty := field(line, customerNameEnd, quantityEnd)
	qty, err := parseQuantity(rawQty)
	if err != nil {
		return nil, &DecodeError{Field: "quantity", Value: rawQty, Err: err}
	}
	rec.Quantity = qty

	rawPrice := field(line, quantityEnd, unitPriceEnd)
	price, err := parsePrice(rawPrice)
	if err != nil {
		return nil, &DecodeError{Field: "unit price", Value: rawPrice, Err: err}
	}
	rec.UnitValue = price
	rec.ProductPrice = price

	rawDate := field(line, unitPriceEnd, saleDateEnd)
	date, err := time.Parse(FileDateLayout, rawDate)
	if err != nil {
		return nil, &DecodeError{Field: "sale date", Value: rawDate, Err: err}
	}
	rec.SaleDate = date

	return rec, nil
}

// peekIDs extracts whatever product and customer ids a possibly malformed
// line still carries.
func peekIDs(line string) (productID, customerID string) {
	if len(line) >= productIDEnd {
		productID = field(line, productIDStart, productIDEnd)
	}
	if len(line) >= customerIDEnd {
		customerID = field(line, productNameEnd, customerIDEnd)
	}
	return productID, customerID
}

func field(line string, start, end int) string {
	return strings.TrimSpace(line[start:end])
}

func parseQuantity(s string) (int, error) {
	if s == "" || !isDigits(s) {
		return 0, errNotDigits
	}
	return strconv.Atoi(s)
}

func parsePrice(s string) (decimal.Decimal, error) {
	intPart, fracPart, hasPoint := strings.Cut(s, ".")
	if intPart == "" || (hasPoint && fracPart == "") {
		return decimal.Zero, errInvalidPrice
	}
	if !isDigits(intPart) || !isDigits(fracPart) {
		return decimal.Zero, errInvalidPrice
	}
	return decimal.NewFromString(s)
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
