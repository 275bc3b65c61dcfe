package ledger

import (
	"context"

	"finboard/internal/core"
	"finboard/internal/log"
	"finboard/internal/notify"
	"finboard/internal/storage"
)

// Goals manages savings goals.
type Goals struct {
	c    *collection[core.Goal]
	opts options
}

func NewGoals(ctx context.Context, store *storage.Store, changed *notify.Subject, opts ...Option) *Goals {
	return &Goals{
		c:    loadCollection[core.Goal](ctx, storage.KeyGoals, store, changed),
		opts: buildOptions(opts),
	}
}

func (m *Goals) Add(ctx context.Context, in core.GoalInput) (core.Goal, error) {
	g, err := core.NewGoal(in)
	if err != nil {
		return core.Goal{}, err
	}
	g.ID = m.opts.newID(GoalIDPrefix)

	m.c.mutate(ctx, func(items []core.Goal) []core.Goal {
		return append(items, g)
	})

	m.opts.logger.InfoContext(ctx, "Goal added", log.FieldRecordID, g.ID, log.FieldAmount, g.Target)
	return g, nil
}

// Remove drops the goal with the given id. Unknown ids are ignored.
func (m *Goals) Remove(ctx context.Context, id string) {
	m.c.mutate(ctx, func(items []core.Goal) []core.Goal {
		return removeWhere(items, func(g core.Goal) bool { return g.ID == id })
	})
	m.opts.logger.InfoContext(ctx, "Goal removed", log.FieldRecordID, id)
}

func (m *Goals) All() []core.Goal {
	return m.c.snapshot()
}

// TotalProgress averages each goal's capped progress and returns it as a
// percentage in [0, 100]. No goals means no progress.
func (m *Goals) TotalProgress() float64 {
	goals := m.c.snapshot()
	if len(goals) == 0 {
		return 0
	}
	var sum float64
	for _, g := range goals {
		sum += g.Progress()
	}
	return sum / float64(len(goals)) * 100
}

// Reload re-reads the stored list, dropping in-memory state.
func (m *Goals) Reload(ctx context.Context) {
	m.c.reload(ctx)
}
