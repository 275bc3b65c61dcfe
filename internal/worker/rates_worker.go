package worker

import (
	"context"
	"time"

	"finboard/internal/core"
	"finboard/internal/log"
)

// DefaultRefreshInterval is how often the rate cache is checked for expiry.
const DefaultRefreshInterval = time.Hour

// RateCache reports whether a stored table is still fresh.
type RateCache interface {
	Cached(ctx context.Context) (core.RateTable, bool)
}

// RateLoader reloads the table in use. *currency.Converter implements it.
type RateLoader interface {
	Refresh(ctx context.Context)
	Source() core.Provenance
}

// RateWorker re-applies the rate cache expiry rule in long running
// processes. The table is only fetched again once the cached one is stale.
type RateWorker struct {
	cache    RateCache
	loader   RateLoader
	interval time.Duration
	logger   *log.Logger
}

func NewRateWorker(cache RateCache, loader RateLoader, interval time.Duration, logger *log.Logger) *RateWorker {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &RateWorker{
		cache:    cache,
		loader:   loader,
		interval: interval,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// CheckExpiry refreshes the loader when the cached table expired or is
// missing. It reports whether a refresh happened.
func (w *RateWorker) CheckExpiry(ctx context.Context) bool {
	if _, fresh := w.cache.Cached(ctx); fresh {
		w.logger.DebugContext(ctx, "Exchange rate cache is fresh")
		return false
	}

	w.logger.InfoContext(ctx, "Exchange rate cache expired, refreshing")
	w.loader.Refresh(ctx)
	source := w.loader.Source()
	if source == core.ProvenanceFallback {
		w.logger.WarnContext(ctx, "Rate refresh fell back to built-in rates", log.FieldSource, source)
	} else {
		w.logger.InfoContext(ctx, "Exchange rates refreshed", log.FieldSource, source)
	}
	return true
}

// Run checks the cache every interval until ctx is cancelled.
func (w *RateWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.InfoContext(ctx, "Rate worker started", "interval", w.interval.String())
	for {
		select {
		case <-ctx.Done():
			w.logger.InfoContext(ctx, "Rate worker stopped")
			return nil
		case <-ticker.C:
			w.CheckExpiry(ctx)
		}
	}
}
