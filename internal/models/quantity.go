package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// MaxQuantity is the largest quantity accepted on input. Larger values
// are treated as unset.
const MaxQuantity = 1_000_000_000

// Quantity is an optional non-negative count. The zero value is unset.
//
// On the wire an unset quantity is null. Blank strings and numeric strings
// are accepted on input so that documents written by older clients load.
type Quantity struct {
	n   int
	set bool
}

// Qty returns a set quantity, clamped to [0, MaxQuantity].
func Qty(n int) Quantity {
	if n < 0 {
		n = 0
	}
	if n > MaxQuantity {
		n = MaxQuantity
	}
	return Quantity{n: n, set: true}
}

// quantityFromFloat truncates f. NaN, infinities and values above
// MaxQuantity are unset; negative values clamp to zero.
func quantityFromFloat(f float64) Quantity {
	if math.IsNaN(f) || math.IsInf(f, 0) || f > MaxQuantity {
		return Quantity{}
	}
	if f < 0 {
		return Qty(0)
	}
	return Qty(int(f))
}

// Get returns the value and whether it is set.
func (q Quantity) Get() (int, bool) { return q.n, q.set }

// IsSet reports whether a value is present.
func (q Quantity) IsSet() bool { return q.set }

// Value returns the value, or 0 when unset.
func (q Quantity) Value() int { return q.n }

// String renders the value, or "" when unset.
func (q Quantity) String() string {
	if !q.set {
		return ""
	}
	return strconv.Itoa(q.n)
}

// ParseQuantity parses user input. Blank or non-numeric input is unset.
func ParseQuantity(s string) Quantity {
	s = strings.TrimSpace(s)
	if s == "" {
		return Quantity{}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Quantity{}
	}
	return quantityFromFloat(f)
}

// MarshalJSON implements json.Marshaler.
func (q Quantity) MarshalJSON() ([]byte, error) {
	if !q.set {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(q.n)), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*q = Quantity{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*q = ParseQuantity(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		*q = Quantity{}
		return nil
	}
	*q = quantityFromFloat(f)
	return nil
}
