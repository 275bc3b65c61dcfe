// Package worker holds the background jobs of long running processes: the
// exchange rate expiry check and the reload that follows a data-changed
// message from another process.
package worker

import (
	"context"

	"finboard/internal/amqp"
	"finboard/internal/log"
	"finboard/internal/notify"
)

// Reloadable re-reads its state from the store.
type Reloadable interface {
	Reload(ctx context.Context)
}

// ReloadFunc adapts a function to Reloadable.
type ReloadFunc func(ctx context.Context)

func (f ReloadFunc) Reload(ctx context.Context) { f(ctx) }

// ReloadWorker applies data-changed messages published by other processes.
type ReloadWorker struct {
	targets []Reloadable
	changed *notify.Subject
	logger  *log.Logger
}

// NewReloadWorker reloads targets in order on every message, then raises
// changed once so views are rebuilt from the fresh state.
func NewReloadWorker(changed *notify.Subject, logger *log.Logger, targets ...Reloadable) *ReloadWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &ReloadWorker{
		targets: targets,
		changed: changed,
		logger:  logger.WithComponent(log.ComponentWorker),
	}
}

// HandleDataChanged processes a single data-changed message from AMQP.
func (w *ReloadWorker) HandleDataChanged(ctx context.Context, msg *amqp.DataChangedMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w.logger.InfoContext(ctx, "Processing data-changed message",
		"origin", msg.Origin,
		"timestamp", msg.Timestamp)

	for _, t := range w.targets {
		t.Reload(ctx)
	}
	if w.changed != nil {
		w.changed.Notify(ctx)
	}
	return nil
}
