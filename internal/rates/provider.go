package rates

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"finboard/internal/clock"
	"finboard/internal/core"
	"finboard/internal/log"
	"finboard/internal/storage"
)

// DefaultTTL is how long a stored table is preferred over a new fetch.
const DefaultTTL = 24 * time.Hour

// Provider resolves the current rate table.
type Provider struct {
	store  *storage.Store
	source Source
	clock  clock.Clock
	ttl    time.Duration
	logger *log.Logger
	group  singleflight.Group
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) ProviderOption {
	return func(p *Provider) {
		if ttl > 0 {
			p.ttl = ttl
		}
	}
}

// WithClock sets the time source used for cache age and timestamps.
func WithClock(c clock.Clock) ProviderOption {
	return func(p *Provider) { p.clock = clock.OrReal(c) }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) ProviderOption {
	return func(p *Provider) {
		if l != nil {
			p.logger = l.WithComponent(log.ComponentRates)
		}
	}
}

// NewProvider builds a provider. A nil source always falls back.
func NewProvider(store *storage.Store, source Source, opts ...ProviderOption) *Provider {
	p := &Provider{
		store:  store,
		source: source,
		clock:  clock.NewReal(),
		ttl:    DefaultTTL,
		logger: log.Discard().WithComponent(log.ComponentRates),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// TTL returns the cache lifetime.
func (p *Provider) TTL() time.Duration { return p.ttl }

// ExchangeRates returns the stored table when it is younger than the TTL,
// without contacting the source. Otherwise it fetches and re-bases a new
// table, and if that fails it uses the built-in fallback. Fetched and
// fallback tables are persisted. It never fails.
func (p *Provider) ExchangeRates(ctx context.Context) core.RateTable {
	if cached, ok := p.Cached(ctx); ok {
		return cached
	}
	return p.refresh(ctx)
}

// Cached returns the stored table if it is still fresh.
func (p *Provider) Cached(ctx context.Context) (core.RateTable, bool) {
	var stored core.RateTable
	if !p.store.Get(ctx, storage.KeyExchangeRates, &stored) || len(stored.Rates) == 0 {
		return core.RateTable{}, false
	}
	age := p.clock.Now().Sub(stored.FetchedAt())
	if age < 0 || age >= p.ttl {
		p.logger.DebugContext(ctx, "Stored rates expired", "age", age.String())
		return core.RateTable{}, false
	}
	stored.Source = core.ProvenanceCached
	return stored, true
}

// Refresh ignores the stored table and goes to the source, falling back
// like ExchangeRates. Concurrent calls share one fetch.
func (p *Provider) Refresh(ctx context.Context) core.RateTable {
	return p.refresh(ctx)
}

func (p *Provider) refresh(ctx context.Context) core.RateTable {
	v, _, _ := p.group.Do("refresh", func() (any, error) {
		table, err := p.fetch(ctx)
		if err != nil {
			p.logger.WarnContext(ctx, "Rate fetch failed, using fallback rates", log.FieldError, err)
			table = core.RateTable{
				Rates:     FallbackRates(),
				Timestamp: p.clock.Now().UnixMilli(),
				Source:    core.ProvenanceFallback,
			}
		} else {
			p.logger.InfoContext(ctx, "Exchange rates fetched", log.FieldCount, len(table.Rates))
		}
		p.store.Set(ctx, storage.KeyExchangeRates, table)
		return table, nil
	})
	return v.(core.RateTable).Clone()
}

var errNoSource = errors.New("no rate source configured")

func (p *Provider) fetch(ctx context.Context) (core.RateTable, error) {
	if p.source == nil {
		return core.RateTable{}, errNoSource
	}
	quote, err := p.source.Latest(ctx, core.SupportedCurrencies())
	if err != nil {
		return core.RateTable{}, err
	}
	rebased, err := Rebase(quote, core.ReferenceCurrency)
	if err != nil {
		return core.RateTable{}, err
	}
	if len(rebased) < 2 {
		return core.RateTable{}, fmt.Errorf("%w: no usable rates", ErrSourceFailure)
	}
	return core.RateTable{
		Rates:     rebased,
		Timestamp: p.clock.Now().UnixMilli(),
		Source:    core.ProvenanceFetched,
	}, nil
}
