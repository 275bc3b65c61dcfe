package ledger

import (
	"context"
	"sort"
	"time"

	"finboard/internal/core"
	"finboard/internal/log"
	"finboard/internal/notify"
	"finboard/internal/storage"
)

// Transactions manages the transaction list.
type Transactions struct {
	c    *collection[core.Transaction]
	opts options
}

// NewTransactions loads the stored transactions. A missing or unreadable
// document yields an empty ledger.
func NewTransactions(ctx context.Context, store *storage.Store, changed *notify.Subject, opts ...Option) *Transactions {
	return &Transactions{
		c:    loadCollection[core.Transaction](ctx, storage.KeyTransactions, store, changed),
		opts: buildOptions(opts),
	}
}

// Add validates in, assigns an id and stores the transaction at the head of
// the list.
func (m *Transactions) Add(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	tx, err := core.NewTransaction(in)
	if err != nil {
		return core.Transaction{}, err
	}
	tx.ID = m.opts.newID(TransactionIDPrefix)

	m.c.mutate(ctx, func(items []core.Transaction) []core.Transaction {
		return append([]core.Transaction{tx}, items...)
	})

	m.opts.logger.InfoContext(ctx, "Transaction added",
		log.FieldRecordID, tx.ID, log.FieldCategory, tx.Category, log.FieldAmount, tx.Amount)
	return tx, nil
}

// Remove drops the transaction with the given id. Unknown ids are ignored.
func (m *Transactions) Remove(ctx context.Context, id string) {
	m.c.mutate(ctx, func(items []core.Transaction) []core.Transaction {
		return removeWhere(items, func(t core.Transaction) bool { return t.ID == id })
	})
	m.opts.logger.InfoContext(ctx, "Transaction removed", log.FieldRecordID, id)
}

// All returns a copy sorted by date, newest first. Transactions on the same
// date keep their stored order.
func (m *Transactions) All() []core.Transaction {
	out := m.c.snapshot()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date.Time)
	})
	return out
}

// Len returns the number of transactions.
func (m *Transactions) Len() int {
	m.c.mu.Lock()
	defer m.c.mu.Unlock()
	return len(m.c.items)
}

// TotalBalance is the sum of every amount.
func (m *Transactions) TotalBalance() core.Amount {
	var sum core.Amount
	for _, t := range m.c.snapshot() {
		sum += t.Amount
	}
	return sum
}

// MonthlyTotals sums income and expenses for the current calendar month.
func (m *Transactions) MonthlyTotals() core.MonthlyTotals {
	return m.MonthlyTotalsAt(m.opts.clock.Now())
}

// MonthlyTotalsAt sums income and expenses for the calendar month containing
// t. Expenses are reported as a positive magnitude.
func (m *Transactions) MonthlyTotalsAt(t time.Time) core.MonthlyTotals {
	var totals core.MonthlyTotals
	for _, tx := range m.c.snapshot() {
		if !tx.Date.InMonth(t) {
			continue
		}
		if tx.Amount > 0 {
			totals.Income += tx.Amount
		} else {
			totals.Expenses += tx.Amount.Abs()
		}
	}
	return totals
}

// Now returns the manager's notion of the current time.
func (m *Transactions) Now() time.Time {
	return m.opts.clock.Now()
}

// Reload re-reads the stored list, dropping in-memory state.
func (m *Transactions) Reload(ctx context.Context) {
	m.c.reload(ctx)
}
