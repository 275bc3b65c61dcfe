package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"finboard/internal/clock"
	"finboard/internal/core"
	"finboard/internal/currency"
	"finboard/internal/dashboard"
	"finboard/internal/ledger"
	"finboard/internal/middleware/ratelimit"
	"finboard/internal/notify"
	"finboard/internal/storage"
)

type staticRates struct {
	table     core.RateTable
	refreshes int
}

func (s *staticRates) ExchangeRates(context.Context) core.RateTable { return s.table }
func (s *staticRates) Cached(context.Context) (core.RateTable, bool) {
	return core.RateTable{}, false
}
func (s *staticRates) Refresh(context.Context) core.RateTable {
	s.refreshes++
	return s.table
}

type harness struct {
	srv       *Server
	txs       *ledger.Transactions
	converter *currency.Converter
	rates     *staticRates
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	ctx := context.Background()
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	clk := clock.NewFixed(now)

	store := storage.NewStore(storage.NewMemoryBackend(), nil)
	changed := &notify.Subject{}
	txs := ledger.NewTransactions(ctx, store, changed, ledger.WithClock(clk))
	budgets := ledger.NewBudgets(ctx, store, changed)
	goals := ledger.NewGoals(ctx, store, changed)
	income := ledger.NewIncome(ctx, store, changed)

	rates := &staticRates{table: core.RateTable{
		Rates:     map[core.CurrencyCode]float64{core.USD: 1, core.EUR: 0.5, core.JPY: 150},
		Timestamp: now.UnixMilli(),
		Source:    core.ProvenanceFetched,
	}}
	conv := currency.NewConverter(ctx, store, rates, nil)
	conv.Init(ctx)

	presenter := dashboard.NewPresenter(dashboard.Sources{
		Transactions: txs,
		Budgets:      budgets,
		Goals:        goals,
		Income:       income,
		Converter:    conv,
	}, clk, nil)
	presenter.Attach(changed, conv.Changes())
	t.Cleanup(presenter.Detach)

	srv := NewServer(":0", Deps{
		Transactions: txs,
		Budgets:      budgets,
		Goals:        goals,
		Income:       income,
		Currency:     conv,
		Dashboard:    presenter,
		Clock:        clk,
	}, nil, opts)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	return &harness{srv: srv, txs: txs, converter: conv, rates: rates}
}

func (h *harness) do(t *testing.T, method, target, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.srv.Handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return v
}

func TestIndexAndHealth(t *testing.T) {
	h := newHarness(t, Options{})

	rec := h.do(t, http.MethodGet, "/", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("index status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"<select", `value="EUR"`, "Total balance"} {
		if !strings.Contains(body, want) {
			t.Errorf("index body missing %q", want)
		}
	}
	if rec.Header().Get("Content-Security-Policy") == "" || rec.Header().Get("X-Request-ID") == "" {
		t.Error("middleware headers missing")
	}

	for _, path := range []string{"/healthz", "/readyz", "/static/style.css"} {
		if rec := h.do(t, http.MethodGet, path, "", ""); rec.Code != http.StatusOK {
			t.Errorf("%s status = %d", path, rec.Code)
		}
	}
	if rec := h.do(t, http.MethodGet, "/nope", "", ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown path status = %d", rec.Code)
	}
}

func TestTransactionsAPI(t *testing.T) {
	h := newHarness(t, Options{})

	rec := h.do(t, http.MethodPost, "/api/transactions", "application/json",
		`{"description":"Groceries","amount":"40","category":"food","date":"2024-06-10"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d body = %s", rec.Code, rec.Body.String())
	}
	tx := decode[core.Transaction](t, rec)
	if tx.Amount != -40 || !strings.HasPrefix(tx.ID, ledger.TransactionIDPrefix) {
		t.Errorf("created = %+v", tx)
	}

	rec = h.do(t, http.MethodPost, "/api/transactions", "application/x-www-form-urlencoded",
		url.Values{"description": {"Salary"}, "amount": {"1000"}, "category": {"income"}}.Encode())
	if rec.Code != http.StatusCreated {
		t.Fatalf("create form status = %d", rec.Code)
	}
	if got := decode[core.Transaction](t, rec); got.Date.String() != "2024-06-15" {
		t.Errorf("default date = %s, want today", got.Date)
	}

	list := decode[[]core.Transaction](t, h.do(t, http.MethodGet, "/api/transactions", "", ""))
	if len(list) != 2 || list[0].Description != "Salary" {
		t.Fatalf("list = %+v", list)
	}

	view := decode[dashboard.View](t, h.do(t, http.MethodGet, "/api/dashboard", "", ""))
	if view.Balance.Value != 960 || view.MonthExpenses.Value != 40 {
		t.Errorf("dashboard balance = %+v expenses = %+v", view.Balance, view.MonthExpenses)
	}

	rec = h.do(t, http.MethodDelete, "/api/transactions/"+tx.ID, "", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if rec := h.do(t, http.MethodDelete, "/api/transactions/tx_missing", "", ""); rec.Code != http.StatusNoContent {
		t.Errorf("delete unknown status = %d", rec.Code)
	}
	if h.txs.Len() != 1 {
		t.Errorf("Len() = %d, want 1", h.txs.Len())
	}
}

func TestValidationErrors(t *testing.T) {
	h := newHarness(t, Options{})

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"empty description", http.MethodPost, "/api/transactions", `{"description":"","amount":"5","category":"food"}`, http.StatusUnprocessableEntity},
		{"zero amount", http.MethodPost, "/api/transactions", `{"description":"x","amount":"0","category":"food"}`, http.StatusUnprocessableEntity},
		{"garbage amount", http.MethodPost, "/api/transactions", `{"description":"x","amount":"ten","category":"food"}`, http.StatusUnprocessableEntity},
		{"income budget", http.MethodPost, "/api/budgets", `{"category":"income","limit":"10"}`, http.StatusUnprocessableEntity},
		{"negative goal", http.MethodPost, "/api/goals", `{"name":"x","target":"-1"}`, http.StatusUnprocessableEntity},
		{"negative income", http.MethodPut, "/api/income", `{"amount":"-5"}`, http.StatusUnprocessableEntity},
		{"unknown currency", http.MethodPut, "/api/currency", `{"currency":"DOGE"}`, http.StatusUnprocessableEntity},
		{"malformed json", http.MethodPost, "/api/goals", `{"name":`, http.StatusBadRequest},
		{"wrong method", http.MethodPatch, "/api/transactions", ``, http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := h.do(t, tt.method, tt.path, "application/json", tt.body)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d, body %s", rec.Code, tt.want, rec.Body.String())
			}
			if tt.want == http.StatusUnprocessableEntity {
				if body := decode[ErrorBody](t, rec); body.Error == "" {
					t.Error("422 without error message")
				}
			}
		})
	}
}

func TestBudgetsAndGoalsAPI(t *testing.T) {
	h := newHarness(t, Options{})

	first := decode[core.Budget](t, h.do(t, http.MethodPost, "/api/budgets", "", `{"category":"food","limit":"200"}`))
	second := decode[core.Budget](t, h.do(t, http.MethodPost, "/api/budgets", "", `{"category":"food","limit":"300"}`))
	if first.ID != second.ID || second.Limit != 300 {
		t.Errorf("upsert: first %+v second %+v", first, second)
	}
	if list := decode[[]core.Budget](t, h.do(t, http.MethodGet, "/api/budgets", "", "")); len(list) != 1 {
		t.Errorf("budgets = %+v", list)
	}

	rec := h.do(t, http.MethodPost, "/api/goals", "", `{"name":"Trip","target":"1000","current":"250","targetDate":"2025-01-31"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("goal status = %d", rec.Code)
	}
	goal := decode[core.Goal](t, rec)

	view := decode[dashboard.View](t, h.do(t, http.MethodGet, "/api/dashboard", "", ""))
	if view.GoalProgress != 25 || len(view.Goals) != 1 || view.Goals[0].TargetDate != "Jan 31, 2025" {
		t.Errorf("goal progress = %v goals = %+v", view.GoalProgress, view.Goals)
	}

	for _, path := range []string{"/api/goals/" + goal.ID, "/api/budgets/" + first.ID} {
		if rec := h.do(t, http.MethodDelete, path, "", ""); rec.Code != http.StatusNoContent {
			t.Errorf("DELETE %s status = %d", path, rec.Code)
		}
	}
	if list := decode[[]core.Goal](t, h.do(t, http.MethodGet, "/api/goals", "", "")); len(list) != 0 {
		t.Errorf("goals after delete = %+v", list)
	}
}

func TestIncomeAPI(t *testing.T) {
	h := newHarness(t, Options{})

	rec := h.do(t, http.MethodPut, "/api/income", "", `{"amount":"4200.50"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decode[incomeBody](t, h.do(t, http.MethodGet, "/api/income", "", "")); got.Amount != 4200.5 {
		t.Errorf("income = %v", got.Amount)
	}
}

func TestCurrencySwitch(t *testing.T) {
	h := newHarness(t, Options{})
	h.do(t, http.MethodPost, "/api/transactions", "", `{"description":"Pay","amount":"100","category":"income","date":"2024-06-01"}`)

	rec := h.do(t, http.MethodPut, "/api/currency", "", `{"currency":"eur"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decode[currencyBody](t, rec); got.Current != core.EUR || len(got.Supported) != 15 {
		t.Errorf("currency = %+v", got)
	}

	view := decode[dashboard.View](t, h.do(t, http.MethodGet, "/api/dashboard", "", ""))
	if view.Currency != core.EUR || view.Balance.Value != 50 || !strings.Contains(view.Balance.Text, "€") || !strings.Contains(view.Balance.Text, "50.00") {
		t.Errorf("balance after switch = %+v (%s)", view.Balance, view.Currency)
	}

	rec = h.do(t, http.MethodPost, "/currency", "application/x-www-form-urlencoded", "currency=JPY")
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Fatalf("form status = %d location = %q", rec.Code, rec.Header().Get("Location"))
	}
	if h.converter.Current() != core.JPY {
		t.Errorf("Current() = %s", h.converter.Current())
	}
}

func TestRatesAPI(t *testing.T) {
	h := newHarness(t, Options{})

	table := decode[core.RateTable](t, h.do(t, http.MethodGet, "/api/rates", "", ""))
	if table.Rates[core.USD] != 1 || table.Source != core.ProvenanceFetched {
		t.Errorf("rates = %+v", table)
	}

	rec := h.do(t, http.MethodPost, "/api/rates/refresh", "", "")
	if rec.Code != http.StatusOK || h.rates.refreshes != 1 {
		t.Errorf("refresh status = %d refreshes = %d", rec.Code, h.rates.refreshes)
	}

	rec = h.do(t, http.MethodGet, "/api/dashboard.md", "", "")
	if !strings.Contains(rec.Body.String(), "EUR") || !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/markdown") {
		t.Errorf("markdown = %s", rec.Body.String())
	}
}

func TestRateLimitAppliesToMutations(t *testing.T) {
	h := newHarness(t, Options{RateLimit: ratelimit.Config{Requests: 1, Window: time.Hour}})

	body := `{"description":"x","amount":"1","category":"food"}`
	if rec := h.do(t, http.MethodPost, "/api/transactions", "", body); rec.Code != http.StatusCreated {
		t.Fatalf("first status = %d", rec.Code)
	}
	rec := h.do(t, http.MethodPost, "/api/transactions", "", body)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second status = %d", rec.Code)
	}
	if rec := h.do(t, http.MethodGet, "/api/transactions", "", ""); rec.Code != http.StatusOK {
		t.Errorf("reads must not be limited, got %d", rec.Code)
	}
}

func TestSuspiciousRequestRejected(t *testing.T) {
	h := newHarness(t, Options{})
	if rec := h.do(t, http.MethodGet, "/.git/config", "", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
