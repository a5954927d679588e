package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// FlexString accepts either a JSON string or a JSON number.
// Upstream systems send product and customer codes both ways.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string { return string(f) }

// Quantity keeps the raw JSON token of a quantity field. Decoding never fails
// so that a bad quantity only rejects its own item, not the whole batch.
type Quantity struct {
	raw string
	set bool
}

// NewQuantity builds a quantity from an integer
func NewQuantity(n int) Quantity {
	return Quantity{raw: strconv.Itoa(n), set: true}
}

func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*q = Quantity{}
		return nil
	}
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			raw = s
		}
	}
	*q = Quantity{raw: raw, set: true}
	return nil
}

func (q Quantity) MarshalJSON() ([]byte, error) {
	if !q.set {
		return []byte("null"), nil
	}
	if _, err := strconv.Atoi(q.raw); err == nil {
		return []byte(q.raw), nil
	}
	return json.Marshal(q.raw)
}

// Int parses the quantity as a non-negative integer
func (q Quantity) Int() (int, error) {
	if !q.set {
		return 0, fmt.Errorf("quantity is required")
	}
	raw := strings.TrimSpace(q.raw)
	n, err := strconv.Atoi(raw)
	if err != nil {
		// whole-valued numbers such as 10.0 or 1e1 still count
		d, derr := decimal.NewFromString(raw)
		if derr != nil || !d.IsInteger() || !d.BigInt().IsInt64() {
			return 0, fmt.Errorf("invalid quantity %q", q.raw)
		}
		n = int(d.IntPart())
	}
	if n < 0 {
		return 0, fmt.Errorf("quantity must not be negative, got %d", n)
	}
	return n, nil
}
