// Package app assembles a finboard process from configuration: the storage
// backend, the record managers, the rate provider, the converter, the
// dashboard presenter and, when configured, the AMQP link to other
// processes.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"finboard/internal/amqp"
	"finboard/internal/backend"
	"finboard/internal/cache"
	"finboard/internal/clock"
	"finboard/internal/config"
	"finboard/internal/currency"
	"finboard/internal/dashboard"
	"finboard/internal/ledger"
	"finboard/internal/log"
	"finboard/internal/notify"
	"finboard/internal/rates"
	"finboard/internal/storage"
	"finboard/internal/worker"
)

const cacheSweepInterval = 10 * time.Minute

// App is one wired process.
type App struct {
	Config *config.Config
	Logger *log.Logger
	Clock  clock.Clock
	Origin string

	Store *storage.Store
	// Changed is raised by local mutations and forwarded to other processes.
	Changed *notify.Subject
	// Reloaded is raised after applying another process's changes. It is
	// never forwarded.
	Reloaded *notify.Subject

	Transactions *ledger.Transactions
	Budgets      *ledger.Budgets
	Goals        *ledger.Goals
	Income       *ledger.Income

	Rates     *rates.Provider
	Converter *currency.Converter
	Presenter *dashboard.Presenter

	// AMQP is nil when AMQP_URL is empty or the broker was unreachable.
	AMQP *amqp.Client

	backend  storage.Backend
	janitor  *cache.Janitor
	cleanups []func() error
}

type options struct {
	clock      clock.Clock
	source     rates.Source
	httpClient *http.Client
	factory    backend.Factory
}

// Option customises New, mostly for tests.
type Option func(*options)

func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithRateSource replaces the Fixer client.
func WithRateSource(s rates.Source) Option {
	return func(o *options) { o.source = s }
}

// WithHTTPClient sets the client used by the Fixer source.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

func WithBackendFactory(f backend.Factory) Option {
	return func(o *options) { o.factory = f }
}

// New wires an App. Rates are not loaded yet: call Init.
func New(ctx context.Context, cfg *config.Config, logger *log.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = log.Discard()
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	o.clock = clock.OrReal(o.clock)
	if o.factory == nil {
		o.factory = backend.NewFactory(logger)
	}

	a := &App{
		Config:   cfg,
		Logger:   logger,
		Clock:    o.clock,
		Origin:   newOrigin(),
		Changed:  &notify.Subject{},
		Reloaded: &notify.Subject{},
		janitor:  cache.NewJanitor(logger),
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := o.factory.CreateBackend(ctx, backendCfg)
	if err != nil {
		return nil, fmt.Errorf("create backend: %w", err)
	}
	a.backend = res.Backend
	if res.Cleanup != nil {
		a.cleanups = append(a.cleanups, res.Cleanup)
	}
	if cached, ok := res.Backend.(*storage.CachedBackend); ok {
		a.janitor.Register(cached.Cache())
	}
	a.janitor.Start(cacheSweepInterval)
	a.cleanups = append(a.cleanups, func() error { a.janitor.Stop(); return nil })

	a.Store = storage.NewStore(res.Backend, logger)

	ledgerOpts := []ledger.Option{ledger.WithClock(o.clock), ledger.WithLogger(logger)}
	a.Transactions = ledger.NewTransactions(ctx, a.Store, a.Changed, ledgerOpts...)
	a.Budgets = ledger.NewBudgets(ctx, a.Store, a.Changed, ledgerOpts...)
	a.Goals = ledger.NewGoals(ctx, a.Store, a.Changed, ledgerOpts...)
	a.Income = ledger.NewIncome(ctx, a.Store, a.Changed, ledgerOpts...)

	source := o.source
	if source == nil && cfg.RatesAPIKey != "" {
		source = rates.NewFixerSource(cfg.RatesAPIURL, cfg.RatesAPIKey, o.httpClient)
	}
	if source == nil {
		logger.Warn("RATES_API_KEY not set, exchange rates will use the built-in fallback table")
	}
	a.Rates = rates.NewProvider(a.Store, source,
		rates.WithTTL(cfg.RatesCacheTTL),
		rates.WithClock(o.clock),
		rates.WithLogger(logger))
	a.Converter = currency.NewConverter(ctx, a.Store, a.Rates, logger)

	a.Presenter = dashboard.NewPresenter(dashboard.Sources{
		Transactions: a.Transactions,
		Budgets:      a.Budgets,
		Goals:        a.Goals,
		Income:       a.Income,
		Converter:    a.Converter,
	}, o.clock, logger)
	a.Presenter.Attach(a.Changed, a.Reloaded, a.Converter.Changes())

	if cfg.AMQPEnabled() {
		a.connectAMQP(ctx)
	}
	return a, nil
}

func newOrigin() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "finboard"
	}
	return fmt.Sprintf("%s-%d-%s", host, os.Getpid(), uuid.NewString()[:8])
}

// connectAMQP links local changes to the exchange. A broker that cannot be
// reached only disables the link.
func (a *App) connectAMQP(ctx context.Context) {
	client, err := amqp.NewClient(a.Config.AMQPURL, a.Config.AMQPExchange, a.Config.AMQPQueue, a.Logger)
	if err != nil {
		a.Logger.WarnContext(ctx, "AMQP unavailable, changes will not be broadcast", log.FieldError, err)
		return
	}
	a.AMQP = client
	forward := client.Forwarder(a.Origin)
	unsubChanged := a.Changed.Subscribe(forward)
	unsubCurrency := a.Converter.Selections().Subscribe(forward)
	a.cleanups = append(a.cleanups, func() error {
		unsubChanged()
		unsubCurrency()
		return client.Close()
	})
	a.Logger.InfoContext(ctx, "AMQP link established",
		"exchange", a.Config.AMQPExchange, "origin", a.Origin)
}

// Init loads the exchange rates: cached, fetched or fallback.
func (a *App) Init(ctx context.Context) {
	a.Converter.Init(ctx)
}

// Reloaders lists, in order, what must be re-read after another process
// changed the store.
func (a *App) Reloaders() []worker.Reloadable {
	var targets []worker.Reloadable
	if r, ok := a.backend.(worker.Reloadable); ok {
		targets = append(targets, r)
	}
	return append(targets, a.Transactions, a.Budgets, a.Goals, a.Income, a.Converter)
}

// ReloadWorker applies remote data-changed messages to this process.
func (a *App) ReloadWorker() *worker.ReloadWorker {
	return worker.NewReloadWorker(a.Reloaded, a.Logger, a.Reloaders()...)
}

// RateWorker re-checks the rate cache every RATES_REFRESH_INTERVAL.
func (a *App) RateWorker() *worker.RateWorker {
	return worker.NewRateWorker(a.Rates, a.Converter, a.Config.RatesRefreshInterval, a.Logger)
}

// Close releases everything New acquired, last acquired first.
func (a *App) Close() error {
	a.Presenter.Detach()
	var errs []error
	for i := len(a.cleanups) - 1; i >= 0; i-- {
		if err := a.cleanups[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.cleanups = nil
	return errors.Join(errs...)
}
