package worker

import (
	"context"
	"testing"
	"time"

	"finboard/internal/amqp"
	"finboard/internal/core"
	"finboard/internal/notify"
)

type fakeCache struct{ fresh bool }

func (f *fakeCache) Cached(context.Context) (core.RateTable, bool) {
	return core.RateTable{}, f.fresh
}

type fakeLoader struct {
	refreshes int
	source    core.Provenance
}

func (f *fakeLoader) Refresh(context.Context)  { f.refreshes++ }
func (f *fakeLoader) Source() core.Provenance { return f.source }

func TestRateWorkerCheckExpiry(t *testing.T) {
	tests := []struct {
		name      string
		fresh     bool
		refreshed bool
	}{
		{"fresh cache is kept", true, false},
		{"stale cache is refreshed", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := &fakeLoader{source: core.ProvenanceFetched}
			w := NewRateWorker(&fakeCache{fresh: tt.fresh}, loader, time.Minute, nil)

			if got := w.CheckExpiry(context.Background()); got != tt.refreshed {
				t.Errorf("CheckExpiry() = %v, want %v", got, tt.refreshed)
			}
			want := 0
			if tt.refreshed {
				want = 1
			}
			if loader.refreshes != want {
				t.Errorf("refreshes = %d, want %d", loader.refreshes, want)
			}
		})
	}
}

func TestRateWorkerRunStopsOnCancel(t *testing.T) {
	w := NewRateWorker(&fakeCache{fresh: true}, &fakeLoader{}, time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestNewRateWorkerDefaultInterval(t *testing.T) {
	w := NewRateWorker(&fakeCache{}, &fakeLoader{}, 0, nil)
	if w.interval != DefaultRefreshInterval {
		t.Errorf("interval = %v, want %v", w.interval, DefaultRefreshInterval)
	}
}

func TestReloadWorkerHandleDataChanged(t *testing.T) {
	var order []string
	changed := &notify.Subject{}
	changed.Subscribe(func(context.Context) { order = append(order, "notify") })

	w := NewReloadWorker(changed, nil,
		ReloadFunc(func(context.Context) { order = append(order, "transactions") }),
		ReloadFunc(func(context.Context) { order = append(order, "currency") }),
	)

	msg := amqp.NewDataChangedMessage("serve-1")
	if err := w.HandleDataChanged(context.Background(), msg); err != nil {
		t.Fatal(err)
	}

	want := []string{"transactions", "currency", "notify"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestReloadWorkerCancelledContext(t *testing.T) {
	reloads := 0
	w := NewReloadWorker(nil, nil, ReloadFunc(func(context.Context) { reloads++ }))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := w.HandleDataChanged(ctx, amqp.NewDataChangedMessage("x")); err != context.Canceled {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if reloads != 0 {
		t.Errorf("reloads = %d, want 0", reloads)
	}
}
