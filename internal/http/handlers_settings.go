package http

import (
	"net/http"

	"finboard/internal/core"
	"finboard/internal/log"
)

type incomeBody struct {
	Amount core.Amount `json:"amount"`
}

type currencyBody struct {
	Current   core.CurrencyCode   `json:"current"`
	Supported []core.CurrencyCode `json:"supported"`
}

func (s *Server) handleGetIncome(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(incomeBody{Amount: s.deps.Income.Get()}).Write(w)
}

func (s *Server) handleSetIncome(w http.ResponseWriter, r *http.Request) {
	p, ok := parseBody(w, r)
	if !ok {
		return
	}
	v, err := p.amount("amount")
	if err != nil {
		validationFailed(w, r, err)
		return
	}
	if err := s.deps.Income.Set(r.Context(), core.Amount(v)); err != nil {
		validationFailed(w, r, err)
		return
	}
	NewResponse().JSON(incomeBody{Amount: s.deps.Income.Get()}).Write(w)
}

func (s *Server) currencyBody() currencyBody {
	return currencyBody{Current: s.deps.Currency.Current(), Supported: core.SupportedCurrencies()}
}

func (s *Server) handleGetCurrency(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(s.currencyBody()).Write(w)
}

func (s *Server) selectCurrency(w http.ResponseWriter, r *http.Request) bool {
	p, ok := parseBody(w, r)
	if !ok {
		return false
	}
	code, err := core.ParseCurrencyCode(p.Get("currency"))
	if err == nil {
		err = s.deps.Currency.SetCurrency(r.Context(), code)
	}
	if err != nil {
		validationFailed(w, r, err)
		return false
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Display currency selected",
		log.FieldOperation, log.OpUpdate, log.FieldCurrency, code)
	return true
}

func (s *Server) handleSetCurrency(w http.ResponseWriter, r *http.Request) {
	if s.selectCurrency(w, r) {
		NewResponse().JSON(s.currencyBody()).Write(w)
	}
}

// handleCurrencyForm serves the selector on the dashboard page and sends
// the browser back to it.
func (s *Server) handleCurrencyForm(w http.ResponseWriter, r *http.Request) {
	if s.selectCurrency(w, r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func (s *Server) handleGetRates(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(s.deps.Currency.Rates()).Write(w)
}

func (s *Server) handleRefreshRates(w http.ResponseWriter, r *http.Request) {
	s.deps.Currency.Refresh(r.Context())
	table := s.deps.Currency.Rates()
	log.FromContext(r.Context()).InfoContext(r.Context(), "Exchange rates refreshed on request",
		log.FieldOperation, log.OpFetch, log.FieldSource, table.Source)
	NewResponse().JSON(table).Write(w)
}
