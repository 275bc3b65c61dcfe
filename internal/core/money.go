// Package core provides the finance domain types.
//
// This file contains the two monetary units of the system: Amount, which is
// always in the reference currency and is what gets stored, and DisplayAmount,
// which only the currency converter produces and only the formatter consumes.
package core

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

type (
	// Amount is a value in the reference currency.
	Amount float64

	// DisplayAmount is a converted value ready to be formatted.
	DisplayAmount struct {
		Value    float64
		Currency CurrencyCode
	}
)

func (a Amount) Abs() Amount { return Amount(math.Abs(float64(a))) }

// ParseAmount converts a user-typed decimal string to a float.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and an
// optional leading sign. Empty or malformed input yields ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("-5")    -> -5, nil
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return d.InexactFloat64(), nil
}
