// Package http serves the dashboard page and a JSON API over the record
// managers, the currency converter and the rate provider.
package http

import (
	"context"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"finboard/internal/clock"
	"finboard/internal/core"
	"finboard/internal/dashboard"
	"finboard/internal/log"
	"finboard/internal/middleware/ratelimit"
	"finboard/internal/middleware/security"
	appweb "finboard/web"
)

// TransactionStore is the transaction manager as seen by the handlers.
type TransactionStore interface {
	Add(ctx context.Context, in core.TransactionInput) (core.Transaction, error)
	Remove(ctx context.Context, id string)
	All() []core.Transaction
}

type BudgetStore interface {
	Add(ctx context.Context, in core.BudgetInput) (core.Budget, error)
	Remove(ctx context.Context, id string)
	All() []core.Budget
}

type GoalStore interface {
	Add(ctx context.Context, in core.GoalInput) (core.Goal, error)
	Remove(ctx context.Context, id string)
	All() []core.Goal
}

type IncomeStore interface {
	Get() core.Amount
	Set(ctx context.Context, v core.Amount) error
}

// CurrencySelector is the converter as seen by the handlers.
type CurrencySelector interface {
	Current() core.CurrencyCode
	SetCurrency(ctx context.Context, code core.CurrencyCode) error
	Rates() core.RateTable
	Refresh(ctx context.Context)
}

// ViewSource hands out the latest dashboard view.
type ViewSource interface {
	Current(ctx context.Context) dashboard.View
}

// Deps groups what the server reads and mutates.
type Deps struct {
	Transactions TransactionStore
	Budgets      BudgetStore
	Goals        GoalStore
	Income       IncomeStore
	Currency     CurrencySelector
	Dashboard    ViewSource
	Clock        clock.Clock
}

// Options tunes the middleware stack. Zero values use the defaults.
type Options struct {
	RateLimit ratelimit.Config
	Headers   *security.HeadersConfig
}

type Server struct {
	http.Server
	deps     Deps
	clock    clock.Clock
	logger   *log.Logger
	limiter  *ratelimit.Limiter
	detector *security.Detector

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// server.
func NewServer(addr string, deps Deps, logger *log.Logger, opts Options) *Server {
	if logger == nil {
		logger = log.Discard()
	}
	headers := security.DefaultHeadersConfig()
	if opts.Headers != nil {
		headers = *opts.Headers
	}

	s := &Server{
		deps:     deps,
		clock:    clock.OrReal(deps.Clock),
		logger:   logger.WithComponent(log.ComponentHTTP),
		limiter:  ratelimit.NewLimiter(opts.RateLimit),
		detector: security.NewDetector(),
	}

	mux := http.NewServeMux()
	s.routes(mux)

	var handler http.Handler = mux
	handler = s.limiter.Middleware(s.detector.ExtractClientIP, s.handleRateLimited)(handler)
	handler = security.NewHeadersMiddleware(headers).Middleware(handler)
	handler = s.detector.Middleware(handler)
	handler = log.Middleware(logger)(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /currency", s.handleCurrencyForm)

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/dashboard.md", s.handleDashboardMarkdown)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/budgets", s.handleListBudgets)
	mux.HandleFunc("POST /api/budgets", s.handleSetBudget)
	mux.HandleFunc("DELETE /api/budgets/{id}", s.handleDeleteBudget)

	mux.HandleFunc("GET /api/goals", s.handleListGoals)
	mux.HandleFunc("POST /api/goals", s.handleCreateGoal)
	mux.HandleFunc("DELETE /api/goals/{id}", s.handleDeleteGoal)

	mux.HandleFunc("GET /api/income", s.handleGetIncome)
	mux.HandleFunc("PUT /api/income", s.handleSetIncome)

	mux.HandleFunc("GET /api/currency", s.handleGetCurrency)
	mux.HandleFunc("PUT /api/currency", s.handleSetCurrency)

	mux.HandleFunc("GET /api/rates", s.handleGetRates)
	mux.HandleFunc("POST /api/rates/refresh", s.handleRefreshRates)
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, please try again later").Write(w)
}

// Shutdown stops the rate limiter and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// Run serves until ctx is cancelled, then shuts down within timeout.
func (s *Server) Run(ctx context.Context, timeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.InfoContext(ctx, "HTTP server listening", "addr", s.Addr)
		if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.limiter.Stop()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	s.logger.Info("HTTP server shutting down", log.FieldOperation, log.OpShutdown)
	return s.Shutdown(shutdownCtx)
}
