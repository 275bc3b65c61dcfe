// Package rates obtains exchange rates against the reference currency. A
// Provider prefers a fresh stored table, then a remote Source, then a fixed
// fallback table, so a caller always receives usable rates.
package rates

import (
	"context"

	"finboard/internal/core"
)

// Quote is a rate table as returned by a remote source, in the source's own
// base currency.
type Quote struct {
	Base  core.CurrencyCode
	Rates map[core.CurrencyCode]float64
}

// Source fetches the latest rates for the requested currencies.
type Source interface {
	Latest(ctx context.Context, symbols []core.CurrencyCode) (Quote, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, symbols []core.CurrencyCode) (Quote, error)

func (f SourceFunc) Latest(ctx context.Context, symbols []core.CurrencyCode) (Quote, error) {
	return f(ctx, symbols)
}
