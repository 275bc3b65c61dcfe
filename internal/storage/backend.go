// Package storage persists application state as JSON documents under a
// fixed set of keys, on top of a pluggable byte-level Backend.
package storage

import (
	"context"
	"errors"
)

// Well-known keys. Each holds one JSON document.
const (
	KeyTransactions     = "transactions"
	KeyBudgets          = "budgets"
	KeyGoals            = "goals"
	KeyExchangeRates    = "exchangeRates"
	KeySelectedCurrency = "selectedCurrency"
	KeyMonthlyIncome    = "monthlyIncome"
)

// Keys lists every key the application writes.
func Keys() []string {
	return []string{
		KeyTransactions,
		KeyBudgets,
		KeyGoals,
		KeyExchangeRates,
		KeySelectedCurrency,
		KeyMonthlyIncome,
	}
}

// ErrClosed is returned by backends used after Close.
var ErrClosed = errors.New("storage: backend closed")

// Backend is a raw key-value store.
type Backend interface {
	// Read returns the value under key. ok is false when the key is absent.
	Read(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Write stores value under key, replacing any previous value.
	Write(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}
