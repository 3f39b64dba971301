package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// CategoryField is the canonical name given to the first column of every
// source sheet once it has been loaded.
const CategoryField = "Category"

// NullFloat is a number that may be explicitly missing. The zero value is
// missing, so a failed parse never masquerades as 0.
type NullFloat struct {
	Float float64
	Valid bool
}

// Float returns a present value.
func Float(v float64) NullFloat {
	return NullFloat{Float: v, Valid: true}
}

// Missing returns the explicit missing marker.
func Missing() NullFloat {
	return NullFloat{}
}

// OrZero returns the value, or 0 when missing.
func (n NullFloat) OrZero() float64 {
	if !n.Valid {
		return 0
	}
	return n.Float
}

// String formats the value the way the long-format CSV export writes it.
func (n NullFloat) String() string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatFloat(n.Float, 'f', -1, 64)
}

// MarshalJSON encodes a missing value as null.
func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Float)
}

// UnmarshalJSON accepts a number or null.
func (n *NullFloat) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*n = NullFloat{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = Float(v)
	return nil
}

// Observation is one normalized fact in long format: the value of a category
// for a period, as reported by one source institution.
type Observation struct {
	Category string    `json:"category"`
	Period   string    `json:"year"`
	Value    NullFloat `json:"value"`
	SourceID string    `json:"university"`
}
