package dashboard

import (
	"math"
	"sort"
	"time"

	"finboard/internal/core"
	"finboard/internal/currency"
)

// TransactionSource is the read side of the transaction manager.
type TransactionSource interface {
	All() []core.Transaction
	TotalBalance() core.Amount
	MonthlyTotalsAt(t time.Time) core.MonthlyTotals
}

type BudgetSource interface {
	All() []core.Budget
}

type GoalSource interface {
	All() []core.Goal
	TotalProgress() float64
}

type IncomeSource interface {
	Get() core.Amount
}

// Converter turns reference amounts into display amounts.
type Converter interface {
	Convert(a core.Amount) core.DisplayAmount
	Rates() core.RateTable
	Current() core.CurrencyCode
}

// Sources groups everything Build reads. Income may be nil.
type Sources struct {
	Transactions TransactionSource
	Budgets      BudgetSource
	Goals        GoalSource
	Income       IncomeSource
	Converter    Converter
}

// Build computes the dashboard as of now.
func Build(src Sources, now time.Time) View {
	money := func(a core.Amount) Money {
		d := src.Converter.Convert(a)
		return Money{Value: d.Value, Text: currency.Format(d)}
	}

	all := src.Transactions.All()
	totals := src.Transactions.MonthlyTotalsAt(now)

	v := View{
		GeneratedAt:   now,
		Month:         now.Format("January 2006"),
		Currency:      src.Converter.Current(),
		Balance:       money(src.Transactions.TotalBalance()),
		MonthIncome:   money(totals.Income),
		MonthExpenses: money(totals.Expenses),
		GoalProgress:  src.Goals.TotalProgress(),
	}
	if src.Income != nil {
		v.IncomeTarget = money(src.Income.Get())
	} else {
		v.IncomeTarget = money(0)
	}

	v.Transactions = make([]TransactionRow, 0, len(all))
	for _, t := range all {
		v.Transactions = append(v.Transactions, TransactionRow{
			ID:          t.ID,
			Date:        FormatDate(t.Date),
			Description: t.Description,
			Category:    t.Category,
			Amount:      money(t.Amount),
			Income:      t.Amount > 0,
		})
	}
	v.Recent = v.Transactions[:min(RecentLimit, len(v.Transactions))]

	v.Expenses = expenseBreakdown(all, money)
	v.Budgets = budgetCards(src.Budgets.All(), all, now, money)
	v.Goals = goalCards(src.Goals.All(), money)
	v.Rates = ratesWidget(src.Converter.Rates())
	return v
}

// expenseBreakdown totals every expense by category, over all time, in order
// of first appearance in the date-sorted list.
func expenseBreakdown(all []core.Transaction, money func(core.Amount) Money) []ExpenseSlice {
	sums := core.ExpensesByCategory(all)
	var total core.Amount
	for _, s := range sums {
		total += s.Amount
	}

	out := make([]ExpenseSlice, 0, len(sums))
	for _, s := range sums {
		cat := string(s.Category)
		if cat == "" {
			cat = Uncategorized
		}
		share := 0.0
		if total > 0 {
			share = float64(s.Amount) / float64(total) * 100
		}
		out = append(out, ExpenseSlice{Category: cat, Amount: money(s.Amount), Share: share})
	}
	return out
}

// budgetCards compares this month's spending per category with the limit.
func budgetCards(budgets []core.Budget, all []core.Transaction, now time.Time, money func(core.Amount) Money) []BudgetCard {
	spent := make(map[core.Category]core.Amount)
	for _, t := range all {
		if t.Amount < 0 && t.Date.InMonth(now) {
			spent[t.Category] += t.Amount.Abs()
		}
	}

	out := make([]BudgetCard, 0, len(budgets))
	for _, b := range budgets {
		s := spent[b.Category]
		remaining := b.Limit - s
		pct := BudgetPercent(s, b.Limit)
		out = append(out, BudgetCard{
			ID:        b.ID,
			Category:  b.Category,
			Spent:     money(s),
			Remaining: money(remaining.Abs()),
			Limit:     money(b.Limit),
			Percent:   pct,
			Bar:       math.Min(pct, 100),
			Over:      remaining < 0,
		})
	}
	return out
}

// BudgetPercent is spent/limit in percent. A zero limit reads 100 once
// anything was spent and 0 otherwise.
func BudgetPercent(spent, limit core.Amount) float64 {
	switch {
	case limit > 0:
		return float64(spent) / float64(limit) * 100
	case spent > 0:
		return 100
	default:
		return 0
	}
}

func goalCards(goals []core.Goal, money func(core.Amount) Money) []GoalCard {
	out := make([]GoalCard, 0, len(goals))
	for _, g := range goals {
		pct := g.Percent()
		card := GoalCard{
			ID:      g.ID,
			Name:    g.Name,
			Current: money(g.Current),
			Target:  money(g.Target),
			Percent: pct,
			Bar:     math.Min(pct, 100),
		}
		if !g.TargetDate.IsEmpty() {
			card.TargetDate = FormatDate(g.TargetDate)
		}
		out = append(out, card)
	}
	return out
}

// ratesWidget lists every non-reference rate, sorted by code.
func ratesWidget(t core.RateTable) RatesWidget {
	w := RatesWidget{
		Source:   t.Source,
		Fallback: t.Source == core.ProvenanceFallback,
		Rows:     []RateRow{},
	}
	if t.Timestamp > 0 {
		w.UpdatedAt = t.FetchedAt().UTC().Format("Jan 2, 2006 15:04 MST")
	}
	for c, r := range t.Rates {
		if c == core.ReferenceCurrency {
			continue
		}
		w.Rows = append(w.Rows, RateRow{Currency: c, Rate: r, Text: currency.FormatRate(r)})
	}
	sort.Slice(w.Rows, func(i, j int) bool { return w.Rows[i].Currency < w.Rows[j].Currency })
	return w
}
