// Package ledger holds the record managers: transactions, budgets, goals and
// the monthly income slot. Each manager owns one storage key, loads it at
// construction and, on every mutation, persists the whole collection before
// raising the shared data-changed signal.
package ledger

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"finboard/internal/clock"
	"finboard/internal/log"
	"finboard/internal/notify"
	"finboard/internal/storage"
)

// Identifier prefixes per collection.
const (
	TransactionIDPrefix = "tx_"
	BudgetIDPrefix      = "bud_"
	GoalIDPrefix        = "goal_"
)

// IDGenerator returns a fresh identifier with the given prefix.
type IDGenerator func(prefix string) string

// NewUUID is the default IDGenerator.
func NewUUID(prefix string) string {
	return prefix + uuid.NewString()
}

type options struct {
	clock  clock.Clock
	logger *log.Logger
	newID  IDGenerator
}

// Option configures a manager.
type Option func(*options)

// WithClock sets the time source used for "current month" aggregates.
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithIDGenerator overrides how record ids are produced.
func WithIDGenerator(g IDGenerator) Option {
	return func(o *options) { o.newID = g }
}

func buildOptions(opts []Option) options {
	o := options{clock: clock.NewReal(), newID: NewUUID}
	for _, opt := range opts {
		opt(&o)
	}
	o.clock = clock.OrReal(o.clock)
	if o.logger == nil {
		o.logger = log.Discard()
	}
	o.logger = o.logger.WithComponent(log.ComponentLedger)
	if o.newID == nil {
		o.newID = NewUUID
	}
	return o
}

// collection is the persisted list behind a manager.
type collection[T any] struct {
	mu      sync.Mutex
	key     string
	items   []T
	store   *storage.Store
	changed *notify.Subject
}

func loadCollection[T any](ctx context.Context, key string, store *storage.Store, changed *notify.Subject) *collection[T] {
	c := &collection[T]{key: key, store: store, changed: changed}
	c.reload(ctx)
	return c
}

// reload replaces the in-memory items with the stored document. It does not
// notify: it is used when another process changed the store.
func (c *collection[T]) reload(ctx context.Context) {
	var items []T
	if !c.store.Get(ctx, c.key, &items) || items == nil {
		items = []T{}
	}
	c.mu.Lock()
	c.items = items
	c.mu.Unlock()
}

// mutate applies fn to the items under the lock, persists the result and
// then notifies observers outside the lock so they can read the manager.
func (c *collection[T]) mutate(ctx context.Context, fn func(items []T) []T) {
	c.mu.Lock()
	c.items = fn(c.items)
	c.store.Set(ctx, c.key, c.items)
	c.mu.Unlock()

	if c.changed != nil {
		c.changed.Notify(ctx)
	}
}

func (c *collection[T]) snapshot() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

func removeWhere[T any](items []T, match func(T) bool) []T {
	out := items[:0:0]
	for _, it := range items {
		if !match(it) {
			out = append(out, it)
		}
	}
	return out
}
