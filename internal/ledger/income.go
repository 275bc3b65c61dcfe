package ledger

import (
	"context"
	"math"
	"sync"

	"finboard/internal/core"
	"finboard/internal/log"
	"finboard/internal/notify"
	"finboard/internal/storage"
)

// Income is the single monthly income figure the user enters by hand.
type Income struct {
	mu      sync.Mutex
	value   core.Amount
	store   *storage.Store
	changed *notify.Subject
	opts    options
}

func NewIncome(ctx context.Context, store *storage.Store, changed *notify.Subject, opts ...Option) *Income {
	in := &Income{store: store, changed: changed, opts: buildOptions(opts)}
	in.Reload(ctx)
	return in
}

// Reload re-reads the stored income. Missing or invalid values read as 0.
func (m *Income) Reload(ctx context.Context) {
	var v float64
	if !m.store.Get(ctx, storage.KeyMonthlyIncome, &v) || !validIncome(v) {
		v = 0
	}
	m.mu.Lock()
	m.value = core.Amount(v)
	m.mu.Unlock()
}

func validIncome(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// Get returns the stored income, 0 when never set.
func (m *Income) Get() core.Amount {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value
}

// Set stores a new income. Negative or non-finite values are rejected.
func (m *Income) Set(ctx context.Context, v core.Amount) error {
	if !validIncome(float64(v)) {
		return core.ErrInvalidAmount
	}

	m.mu.Lock()
	m.value = v
	m.store.Set(ctx, storage.KeyMonthlyIncome, float64(v))
	m.mu.Unlock()

	m.opts.logger.InfoContext(ctx, "Monthly income updated", log.FieldAmount, v)
	if m.changed != nil {
		m.changed.Notify(ctx)
	}
	return nil
}
