// Package dashboard derives everything the user sees from the record
// managers and the currency converter. Build is stateless: every call
// recomputes the whole view, and every monetary figure goes through the
// converter before it is formatted.
package dashboard

import (
	"time"

	"finboard/internal/core"
)

// RecentLimit is the number of transactions on the overview.
const RecentLimit = 5

// Uncategorized labels expenses stored without a category.
const Uncategorized = "uncategorized"

type (
	// View is one complete rendering of the dashboard.
	View struct {
		GeneratedAt time.Time         `json:"generated_at"`
		Month       string            `json:"month"`
		Currency    core.CurrencyCode `json:"currency"`

		Balance       Money   `json:"balance"`
		MonthIncome   Money   `json:"month_income"`
		MonthExpenses Money   `json:"month_expenses"`
		IncomeTarget  Money   `json:"income_target"`
		GoalProgress  float64 `json:"goal_progress"`

		Recent       []TransactionRow `json:"recent"`
		Transactions []TransactionRow `json:"transactions"`
		Expenses     []ExpenseSlice   `json:"expenses"`
		Budgets      []BudgetCard     `json:"budgets"`
		Goals        []GoalCard       `json:"goals"`
		Rates        RatesWidget      `json:"rates"`
	}

	// Money is a converted amount with its formatted text.
	Money struct {
		Value float64 `json:"value"`
		Text  string  `json:"text"`
	}

	TransactionRow struct {
		ID          string        `json:"id"`
		Date        string        `json:"date"`
		Description string        `json:"description"`
		Category    core.Category `json:"category"`
		Amount      Money         `json:"amount"`
		Income      bool          `json:"income"`
	}

	// ExpenseSlice is one category of the expense breakdown. Share is the
	// category's fraction of all expenses, in percent.
	ExpenseSlice struct {
		Category string  `json:"category"`
		Amount   Money   `json:"amount"`
		Share    float64 `json:"share"`
	}

	// BudgetCard shows how much of a category's limit this month used.
	// Remaining is a magnitude; Over tells whether it is an overrun.
	BudgetCard struct {
		ID        string        `json:"id"`
		Category  core.Category `json:"category"`
		Spent     Money         `json:"spent"`
		Remaining Money         `json:"remaining"`
		Limit     Money         `json:"limit"`
		Percent   float64       `json:"percent"`
		Bar       float64       `json:"bar"`
		Over      bool          `json:"over"`
	}

	GoalCard struct {
		ID         string  `json:"id"`
		Name       string  `json:"name"`
		Current    Money   `json:"current"`
		Target     Money   `json:"target"`
		Percent    float64 `json:"percent"`
		Bar        float64 `json:"bar"`
		TargetDate string  `json:"target_date,omitempty"`
	}

	RatesWidget struct {
		Source    core.Provenance `json:"source"`
		UpdatedAt string          `json:"updated_at,omitempty"`
		Fallback  bool            `json:"fallback"`
		Rows      []RateRow       `json:"rows"`
	}

	RateRow struct {
		Currency core.CurrencyCode `json:"currency"`
		Rate     float64           `json:"rate"`
		Text     string            `json:"text"`
	}
)

// FormatDate renders d as "Jan 2, 2006", or "N/A" when unset.
func FormatDate(d core.Date) string {
	if d.IsEmpty() {
		return "N/A"
	}
	return d.Format("Jan 2, 2006")
}
