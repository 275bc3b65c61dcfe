// Package currency converts reference amounts into the user's selected
// display currency and formats them.
package currency

import (
	"context"
	"sync"

	"finboard/internal/core"
	"finboard/internal/log"
	"finboard/internal/notify"
	"finboard/internal/storage"
)

// RateProvider supplies rate tables. *rates.Provider implements it.
type RateProvider interface {
	ExchangeRates(ctx context.Context) core.RateTable
	Refresh(ctx context.Context) core.RateTable
	// Cached returns the stored table when it is still fresh, without
	// fetching.
	Cached(ctx context.Context) (core.RateTable, bool)
}

// Converter holds the current rate table and the selected currency.
type Converter struct {
	mu       sync.RWMutex
	provider RateProvider
	store    *storage.Store
	logger   *log.Logger
	table    core.RateTable
	current  core.CurrencyCode
	changes  notify.Subject
	selected notify.Subject
}

// NewConverter restores the selected currency from the store, defaulting to
// the reference currency. Rates stay empty until Init.
func NewConverter(ctx context.Context, store *storage.Store, provider RateProvider, logger *log.Logger) *Converter {
	if logger == nil {
		logger = log.Discard()
	}
	c := &Converter{
		provider: provider,
		store:    store,
		logger:   logger.WithComponent(log.ComponentCurrency),
		table:    core.RateTable{Rates: map[core.CurrencyCode]float64{}, Source: core.ProvenanceInitial},
		current:  core.ReferenceCurrency,
	}
	c.reloadCurrency(ctx)
	return c
}

// Reload re-reads the selected currency from the store and adopts a fresh
// stored rate table newer than the one held, without signalling. An absent
// or invalid currency selects the reference currency.
func (c *Converter) Reload(ctx context.Context) {
	c.reloadCurrency(ctx)

	t, ok := c.provider.Cached(ctx)
	if !ok {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if t.Timestamp > c.table.Timestamp {
		c.table = t.Clone()
		c.logger.DebugContext(ctx, "Adopted stored exchange rates", log.FieldSource, t.Source, log.FieldCount, len(t.Rates))
	}
}

func (c *Converter) reloadCurrency(ctx context.Context) {
	code := core.ReferenceCurrency
	var stored string
	if c.store.Get(ctx, storage.KeySelectedCurrency, &stored) {
		parsed, err := core.ParseCurrencyCode(stored)
		if err != nil {
			c.logger.WarnContext(ctx, "Ignoring stored currency", log.FieldCurrency, stored, log.FieldError, err)
		} else {
			code = parsed
		}
	}
	c.mu.Lock()
	c.current = code
	c.mu.Unlock()
}

// Init loads rates through the provider and signals a change.
func (c *Converter) Init(ctx context.Context) {
	c.setTable(ctx, c.provider.ExchangeRates(ctx))
}

// Refresh forces a new fetch through the provider and signals a change.
func (c *Converter) Refresh(ctx context.Context) {
	c.setTable(ctx, c.provider.Refresh(ctx))
}

func (c *Converter) setTable(ctx context.Context, t core.RateTable) {
	c.mu.Lock()
	c.table = t.Clone()
	c.mu.Unlock()
	c.logger.InfoContext(ctx, "Exchange rates loaded", log.FieldSource, t.Source, log.FieldCount, len(t.Rates))
	c.changes.Notify(ctx)
}

// Convert multiplies a by the rate of the selected currency. A missing or
// zero rate counts as 1.
func (c *Converter) Convert(a core.Amount) core.DisplayAmount {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rate := c.table.Rates[c.current]
	if rate == 0 {
		rate = 1
	}
	return core.DisplayAmount{Value: float64(a) * rate, Currency: c.current}
}

// Format converts and formats a in one step.
func (c *Converter) Format(a core.Amount) string {
	return Format(c.Convert(a))
}

// Rates returns a copy of the current table.
func (c *Converter) Rates() core.RateTable {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.table.Clone()
}

// Source returns where the current table came from.
func (c *Converter) Source() core.Provenance {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.table.Source
}

// Current returns the selected display currency.
func (c *Converter) Current() core.CurrencyCode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// SetCurrency validates and persists a new display currency, then signals
// a change so every displayed figure is recomputed.
func (c *Converter) SetCurrency(ctx context.Context, code core.CurrencyCode) error {
	if !code.IsValid() {
		return core.ErrUnknownCurrency
	}
	c.mu.Lock()
	c.current = code
	c.store.Set(ctx, storage.KeySelectedCurrency, code.String())
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "Display currency changed", log.FieldCurrency, code)
	c.changes.Notify(ctx)
	c.selected.Notify(ctx)
	return nil
}

// Changes is signalled after a currency switch or a rate reload.
func (c *Converter) Changes() *notify.Subject {
	return &c.changes
}

// Selections is signalled only after a currency switch, the one converter
// change that is persisted.
func (c *Converter) Selections() *notify.Subject {
	return &c.selected
}
