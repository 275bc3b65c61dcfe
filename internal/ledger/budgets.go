package ledger

import (
	"context"

	"finboard/internal/core"
	"finboard/internal/log"
	"finboard/internal/notify"
	"finboard/internal/storage"
)

// Budgets manages the per-category monthly limits. There is at most one
// budget per category.
type Budgets struct {
	c    *collection[core.Budget]
	opts options
}

func NewBudgets(ctx context.Context, store *storage.Store, changed *notify.Subject, opts ...Option) *Budgets {
	return &Budgets{
		c:    loadCollection[core.Budget](ctx, storage.KeyBudgets, store, changed),
		opts: buildOptions(opts),
	}
}

// Add creates a budget for the category, or updates the limit of the
// existing one while keeping its id.
func (m *Budgets) Add(ctx context.Context, in core.BudgetInput) (core.Budget, error) {
	b, err := core.NewBudget(in)
	if err != nil {
		return core.Budget{}, err
	}

	var saved core.Budget
	m.c.mutate(ctx, func(items []core.Budget) []core.Budget {
		for i := range items {
			if items[i].Category == b.Category {
				items[i].Limit = b.Limit
				saved = items[i]
				return items
			}
		}
		b.ID = m.opts.newID(BudgetIDPrefix)
		saved = b
		return append(items, b)
	})

	m.opts.logger.InfoContext(ctx, "Budget saved",
		log.FieldRecordID, saved.ID, log.FieldCategory, saved.Category, log.FieldAmount, saved.Limit)
	return saved, nil
}

// Remove drops the budget with the given id. Unknown ids are ignored.
func (m *Budgets) Remove(ctx context.Context, id string) {
	m.c.mutate(ctx, func(items []core.Budget) []core.Budget {
		return removeWhere(items, func(b core.Budget) bool { return b.ID == id })
	})
	m.opts.logger.InfoContext(ctx, "Budget removed", log.FieldRecordID, id)
}

// All returns a copy in insertion order.
func (m *Budgets) All() []core.Budget {
	return m.c.snapshot()
}

// Reload re-reads the stored list, dropping in-memory state.
func (m *Budgets) Reload(ctx context.Context) {
	m.c.reload(ctx)
}
