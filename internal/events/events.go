// Package events delivers committed ledger changes to live listeners.
package events

import (
	"context"
	"sync"

	"github.com/dojosmash/dojo-smash/internal/model"
)

// Publisher receives events after the change they describe has been committed.
// Implementations must not block the caller for long and never fail the request;
// delivery problems are the sink's to log.
type Publisher interface {
	Publish(ctx context.Context, event model.Event)
}

// Nop discards every event
type Nop struct{}

func (Nop) Publish(context.Context, model.Event) {}

// Multi fans an event out to every publisher in order
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, event model.Event) {
	for _, p := range m {
		p.Publish(ctx, event)
	}
}

// Recorder keeps every published event in memory. Used by tests.
type Recorder struct {
	mu     sync.Mutex
	events []model.Event
}

// NewRecorder creates an empty Recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Publish(_ context.Context, event model.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of everything published so far
func (r *Recorder) Events() []model.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Event(nil), r.events...)
}

// Types returns the type of every published event in order
func (r *Recorder) Types() []model.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]model.EventType, len(r.events))
	for i, e := range r.events {
		types[i] = e.Type
	}
	return types
}

// Reset drops everything recorded
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
