package dashboard

import (
	"context"
	"sync"
	"time"

	"finboard/internal/clock"
	"finboard/internal/log"
	"finboard/internal/notify"
)

// Sink receives every freshly built view.
type Sink func(ctx context.Context, v View)

// Presenter rebuilds the whole view whenever one of the subjects it is
// attached to fires, keeps the latest one and hands it to its sinks.
type Presenter struct {
	src    Sources
	clock  clock.Clock
	logger *log.Logger

	mu      sync.RWMutex
	current View
	sinks   []Sink
	unsubs  []func()
}

func NewPresenter(src Sources, c clock.Clock, logger *log.Logger) *Presenter {
	if logger == nil {
		logger = log.Discard()
	}
	return &Presenter{
		src:    src,
		clock:  clock.OrReal(c),
		logger: logger.WithComponent(log.ComponentDashboard),
	}
}

// AddSink registers s. Sinks are called in registration order.
func (p *Presenter) AddSink(s Sink) {
	p.mu.Lock()
	p.sinks = append(p.sinks, s)
	p.mu.Unlock()
}

// Attach subscribes the presenter to each subject.
func (p *Presenter) Attach(subjects ...*notify.Subject) {
	for _, s := range subjects {
		unsub := s.Subscribe(p.Refresh)
		p.mu.Lock()
		p.unsubs = append(p.unsubs, unsub)
		p.mu.Unlock()
	}
}

// Detach undoes every Attach.
func (p *Presenter) Detach() {
	p.mu.Lock()
	unsubs := p.unsubs
	p.unsubs = nil
	p.mu.Unlock()
	for _, u := range unsubs {
		u()
	}
}

// Refresh rebuilds the view and publishes it to the sinks.
func (p *Presenter) Refresh(ctx context.Context) {
	v := Build(p.src, p.clock.Now())

	p.mu.Lock()
	p.current = v
	sinks := append([]Sink(nil), p.sinks...)
	p.mu.Unlock()

	p.logger.DebugContext(ctx, "Dashboard rebuilt",
		log.FieldOperation, log.OpRender, log.FieldCurrency, v.Currency, log.FieldCount, len(v.Transactions))
	for _, s := range sinks {
		s(ctx, v)
	}
}

// Current returns the latest view. It rebuilds when none exists yet or when
// the clock has moved into another month since the view was built.
func (p *Presenter) Current(ctx context.Context) View {
	p.mu.RLock()
	v := p.current
	p.mu.RUnlock()
	if v.GeneratedAt.IsZero() || !sameMonth(v.GeneratedAt, p.clock.Now()) {
		p.Refresh(ctx)
		p.mu.RLock()
		v = p.current
		p.mu.RUnlock()
	}
	return v
}

func sameMonth(a, b time.Time) bool {
	ay, am, _ := a.Date()
	by, bm, _ := b.In(a.Location()).Date()
	return ay == by && am == bm
}
