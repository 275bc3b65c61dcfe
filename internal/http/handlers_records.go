package http

import (
	"net/http"

	"finboard/internal/log"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(s.deps.Transactions.All()).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	p, ok := parseBody(w, r)
	if !ok {
		return
	}
	in, err := ParseTransactionInput(p, s.today())
	if err != nil {
		validationFailed(w, r, err)
		return
	}
	tx, err := s.deps.Transactions.Add(r.Context(), in)
	if err != nil {
		validationFailed(w, r, err)
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Transaction created",
		log.FieldOperation, log.OpCreate, log.FieldRecordID, tx.ID)
	NewResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/transactions/"+tx.ID).
		JSON(tx).
		Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.deps.Transactions.Remove(r.Context(), id)
	log.FromContext(r.Context()).InfoContext(r.Context(), "Transaction deleted",
		log.FieldOperation, log.OpDelete, log.FieldRecordID, id)
	NoContent().Write(w)
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(s.deps.Budgets.All()).Write(w)
}

// handleSetBudget creates or replaces the budget of a category.
func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	p, ok := parseBody(w, r)
	if !ok {
		return
	}
	in, err := ParseBudgetInput(p)
	if err != nil {
		validationFailed(w, r, err)
		return
	}
	b, err := s.deps.Budgets.Add(r.Context(), in)
	if err != nil {
		validationFailed(w, r, err)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Budget saved",
		log.FieldOperation, log.OpUpdate, log.FieldRecordID, b.ID, log.FieldCategory, b.Category)
	NewResponse().JSON(b).Write(w)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.deps.Budgets.Remove(r.Context(), id)
	NoContent().Write(w)
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(s.deps.Goals.All()).Write(w)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	p, ok := parseBody(w, r)
	if !ok {
		return
	}
	in, err := ParseGoalInput(p)
	if err != nil {
		validationFailed(w, r, err)
		return
	}
	g, err := s.deps.Goals.Add(r.Context(), in)
	if err != nil {
		validationFailed(w, r, err)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Goal created",
		log.FieldOperation, log.OpCreate, log.FieldRecordID, g.ID)
	NewResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/goals/"+g.ID).
		JSON(g).
		Write(w)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.deps.Goals.Remove(r.Context(), id)
	NoContent().Write(w)
}
