// Package core provides the ledger domain: records, validation, the category
// taxonomy and amount parsing.
//
// This file contains the Amount type. Stored amounts are kept verbatim so a
// single malformed value in a hand-edited ledger does not make the whole
// document unreadable; callers parse on use and skip what does not parse.
package core

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a non-negative decimal amount as it was stored.
type Amount struct {
	raw string
}

// NewAmount wraps an already validated decimal.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{raw: d.String()}
}

// RawAmount wraps an arbitrary stored value without validating it.
func RawAmount(s string) Amount {
	return Amount{raw: s}
}

// ParseAmount converts user or stored text to a decimal.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Signs
// are rejected: amounts are always non-negative, zero included.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("-1")    -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.IsNegative() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// Decimal parses the stored value.
func (a Amount) Decimal() (decimal.Decimal, error) {
	return ParseAmount(a.raw)
}

// String returns the stored text.
func (a Amount) String() string {
	return a.raw
}

// Comma renders the amount with two decimals and a comma separator, the
// layout spreadsheets in pt-BR locales expect. Unparseable values are
// rendered as stored.
func (a Amount) Comma() string {
	d, err := a.Decimal()
	if err != nil {
		return a.raw
	}
	return strings.Replace(d.StringFixed(2), ".", ",", 1)
}

// MarshalJSON writes parseable amounts as JSON numbers and anything else as
// the original string.
func (a Amount) MarshalJSON() ([]byte, error) {
	if d, err := a.Decimal(); err == nil {
		return []byte(d.String()), nil
	}
	return json.Marshal(a.raw)
}

// UnmarshalJSON accepts a JSON number, a JSON string or null.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		a.raw = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		a.raw = s
	default:
		a.raw = string(data)
	}
	return nil
}
