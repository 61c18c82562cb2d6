package systems

import (
	"github.com/roach88/inboxsim/internal/event"
	"github.com/roach88/inboxsim/internal/sched"
	"github.com/roach88/inboxsim/internal/world"
)

// Timers is the generic delayed and repeating trigger facility.
//
// Each tick it ingests every AddTimer and RemoveTimer request first, then
// fires the timers due at the current sim time in (ExpiresAt, ID) order.
// A repeating timer fires MaxRepeats times in total (forever when
// MaxRepeats <= 0) and fires at most once per tick.
type Timers struct {
	queue *event.Queue
}

func NewTimers() *Timers { return &Timers{} }

func (s *Timers) Name() string { return "timers" }

func (s *Timers) Init(bus *event.Bus) error {
	s.queue = bus.Queue(event.KindAddTimer, event.KindRemoveTimer)
	return nil
}

func (s *Timers) Run(tc *sched.TickContext) error {
	store := tc.World.Timers
	now := tc.SimNow()

	for _, ev := range s.queue.Drain() {
		switch e := ev.(type) {
		case event.AddTimer:
			id := e.ID
			if id == "" {
				id = tc.IDs.NewID()
			}
			t := world.Timer{
				ID:        id,
				ExpiresAt: now + e.DelayMs,
				Trigger:   e.Trigger,
				Source:    e.Source,
			}
			if e.Repeat != nil {
				t.Repeat = &world.Repeat{IntervalMs: e.Repeat.IntervalMs, MaxRepeats: e.Repeat.MaxRepeats}
			}
			store.Put(t)
			tc.Logger.Debug("timer armed", "tick", tc.Tick, "timer_id", id, "expires_at", t.ExpiresAt, "kind", t.Trigger.Kind)
		case event.RemoveTimer:
			store.Remove(e.TimerID)
		}
	}

	if tc.Paused() {
		return nil
	}

	for _, t := range store.Due(now) {
		repeating := t.Repeat != nil && t.Repeat.IntervalMs > 0
		if repeating {
			t.Repeat.CurrentRepeat++
		}
		tc.Publish(event.TimerExpired{Timer: t.Clone()})

		if !repeating || (t.Repeat.MaxRepeats > 0 && t.Repeat.CurrentRepeat >= t.Repeat.MaxRepeats) {
			store.Remove(t.ID)
			continue
		}
		t.ExpiresAt += t.Repeat.IntervalMs
	}
	return nil
}
