package testutil

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/inboxsim/internal/config"
	"github.com/roach88/inboxsim/internal/event"
	"github.com/roach88/inboxsim/internal/rng"
	"github.com/roach88/inboxsim/internal/sched"
	"github.com/roach88/inboxsim/internal/world"
)

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewTickContext returns a tick context over a fresh world, the default
// config, a constant 0.5 RNG and sequential "id-N" ids.
// Callers overwrite fields as needed before running systems.
func NewTickContext() *sched.TickContext {
	logger := DiscardLogger()
	return &sched.TickContext{
		Tick:   1,
		World:  world.New(),
		Bus:    event.NewBus(logger),
		Config: config.Default(),
		RNG:    rng.Constant(0.5),
		IDs:    NewSequentialIDs("id"),
		Logger: logger,
		Now:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// InitAll calls Init on every system against tc.Bus.
func InitAll(tc *sched.TickContext, systems ...sched.System) error {
	for _, s := range systems {
		if err := s.Init(tc.Bus); err != nil {
			return err
		}
	}
	return nil
}

// Recorder captures every event published on a bus, in publish order.
type Recorder struct {
	mu     sync.Mutex
	events []event.Event
}

// Record attaches a new recorder to bus.
func Record(bus *event.Bus) *Recorder {
	r := &Recorder{}
	bus.SubscribeAll(func(env event.Envelope) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.events = append(r.events, env.Event)
	})
	return r
}

// Events returns a copy of everything recorded.
func (r *Recorder) Events() []event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]event.Event(nil), r.events...)
}

// Kinds returns the kinds of everything recorded.
func (r *Recorder) Kinds() []event.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]event.Kind, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Kind()
	}
	return out
}

// OfKind returns the recorded events of kind k.
func (r *Recorder) OfKind(k event.Kind) []event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []event.Event
	for _, ev := range r.events {
		if ev.Kind() == k {
			out = append(out, ev)
		}
	}
	return out
}

// Count returns how many events of kind k were recorded.
func (r *Recorder) Count(k event.Kind) int {
	return len(r.OfKind(k))
}

// Reset forgets everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// Of returns the recorded events of type T, in order.
func Of[T event.Event](r *Recorder) []T {
	var out []T
	for _, ev := range r.Events() {
		if v, ok := ev.(T); ok {
			out = append(out, v)
		}
	}
	return out
}
