package systems

import (
	"github.com/roach88/inboxsim/internal/event"
	"github.com/roach88/inboxsim/internal/sched"
)

// Tick publishes the event that opens every tick.
type Tick struct{}

func (Tick) Name() string          { return "tick" }
func (Tick) Init(*event.Bus) error { return nil }
func (Tick) Run(tc *sched.TickContext) error {
	tc.Publish(event.Tick{Tick: tc.Tick, RealDeltaMs: tc.RealDeltaMs})
	return nil
}

// Tock publishes the event that closes every tick.
type Tock struct{}

func (Tock) Name() string          { return "tock" }
func (Tock) Init(*event.Bus) error { return nil }
func (Tock) Run(tc *sched.TickContext) error {
	tc.Publish(event.Tock{Tick: tc.Tick, SimNowMs: tc.SimNow()})
	return nil
}
