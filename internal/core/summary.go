package core

// MonthlyTotals splits a month's transactions into income and expenses.
// Expenses are reported as a positive magnitude.
type MonthlyTotals struct {
	Income   Amount
	Expenses Amount
}

// CategoryAmount represents an amount aggregated by category.
type CategoryAmount struct {
	Category Category
	Amount   Amount
}

// ExpensesByCategory totals expense magnitudes per category, in order of
// first appearance in txs. Income is skipped.
func ExpensesByCategory(txs []Transaction) []CategoryAmount {
	var out []CategoryAmount
	index := make(map[Category]int)
	for _, t := range txs {
		if t.Amount >= 0 {
			continue
		}
		i, seen := index[t.Category]
		if !seen {
			i = len(out)
			index[t.Category] = i
			out = append(out, CategoryAmount{Category: t.Category})
		}
		out[i].Amount += t.Amount.Abs()
	}
	return out
}
