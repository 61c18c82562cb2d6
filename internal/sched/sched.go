// Package sched defines the per-tick system pipeline.
//
// A System is a step function run once per tick. Systems run sequentially in
// the order the Pipeline declares; no two systems ever run at the same time
// and a system never yields mid-run. Everything a system needs arrives in
// the TickContext: the World, the Bus, the config, the RNG and the id
// generator.
//
// Systems keep nothing between ticks except through their own Storage slot:
// event queues they drain and scheduling tables only they read.
package sched

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/inboxsim/internal/config"
	"github.com/roach88/inboxsim/internal/event"
	"github.com/roach88/inboxsim/internal/rng"
	"github.com/roach88/inboxsim/internal/world"
)

// IDGenerator mints unique ids for messages, orders and timers.
type IDGenerator interface {
	NewID() string
}

// TickContext is everything a system may touch during one tick.
type TickContext struct {
	Tick uint64

	// RealDeltaMs is the uncapped real-world time since the previous tick.
	RealDeltaMs int64

	World  *world.World
	Bus    *event.Bus
	Config *config.Config
	RNG    rng.Func
	IDs    IDGenerator
	Logger *slog.Logger

	// Now is the wall-clock time of the tick, for informational timestamps.
	Now time.Time
}

// Publish is shorthand for tc.Bus.Publish.
func (tc *TickContext) Publish(ev event.Event) {
	tc.Bus.Publish(ev)
}

// SimNow returns the current sim time.
func (tc *TickContext) SimNow() int64 {
	return tc.World.Clock.SimNowMs
}

// SimDelta returns the sim time the clock advanced by in this tick. It is
// zero while paused.
func (tc *TickContext) SimDelta() int64 {
	return tc.World.Clock.LastSimDtMs
}

// Paused reports whether sim-time logic should be skipped this tick.
func (tc *TickContext) Paused() bool {
	return tc.World.Clock.Paused
}

// System is one step of the tick pipeline.
type System interface {
	// Name identifies the system in logs and errors.
	Name() string

	// Init is called once before the first tick; systems subscribe their
	// queues here.
	Init(bus *event.Bus) error

	// Run executes the system for one tick.
	Run(tc *TickContext) error
}

// Pipeline is the declared, ordered list of systems.
type Pipeline []System

// Names returns the system names in run order.
func (p Pipeline) Names() []string {
	names := make([]string, len(p))
	for i, s := range p {
		names[i] = s.Name()
	}
	return names
}

// Validate fails on duplicate names.
func (p Pipeline) Validate() error {
	seen := make(map[string]bool, len(p))
	for _, s := range p {
		if seen[s.Name()] {
			return fmt.Errorf("pipeline: duplicate system %q", s.Name())
		}
		seen[s.Name()] = true
	}
	return nil
}

// Storage is a system's private state between ticks.
//
// It is a typed slot: a system embeds Storage[T] for its own T and nobody
// else can reach it.
type Storage[T any] struct {
	value T
	init  bool
}

// Get returns the stored value, creating it with newFn on first use.
func (s *Storage[T]) Get(newFn func() T) *T {
	if !s.init {
		s.value = newFn()
		s.init = true
	}
	return &s.value
}

// Reset discards the stored value.
func (s *Storage[T]) Reset() {
	var zero T
	s.value = zero
	s.init = false
}
