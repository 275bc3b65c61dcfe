// Package notify implements the payload-free change signal that record
// managers raise after persisting and that presenters listen to.
package notify

import (
	"context"
	"sync"
)

// Observer is called once per signal.
type Observer func(ctx context.Context)

// Subject fans a signal out to its observers, synchronously and in
// registration order. The zero value is ready to use.
type Subject struct {
	mu        sync.Mutex
	nextID    uint64
	observers []entry
}

type entry struct {
	id uint64
	fn Observer
}

// Subscribe registers fn and returns a function that removes it again.
// Calling the returned function more than once is harmless.
func (s *Subject) Subscribe(fn Observer) (unsubscribe func()) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.observers = append(s.observers, entry{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { s.remove(id) })
	}
}

func (s *Subject) remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.observers {
		if e.id == id {
			s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
			return
		}
	}
}

// Notify calls every observer registered at the time of the call. Observers
// may subscribe or unsubscribe from inside the callback.
func (s *Subject) Notify(ctx context.Context) {
	s.mu.Lock()
	snapshot := make([]entry, len(s.observers))
	copy(snapshot, s.observers)
	s.mu.Unlock()

	for _, e := range snapshot {
		e.fn(ctx)
	}
}

// Len reports the number of registered observers.
func (s *Subject) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.observers)
}
