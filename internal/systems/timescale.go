package systems

import (
	"github.com/roach88/inboxsim/internal/event"
	"github.com/roach88/inboxsim/internal/sched"
)

// TimeScale applies SetTimeScale and SetPaused requests. Several requests of
// the same kind within one tick coalesce: the last one wins.
type TimeScale struct {
	queue *event.Queue
}

func NewTimeScale() *TimeScale { return &TimeScale{} }

func (s *TimeScale) Name() string { return "timescale" }

func (s *TimeScale) Init(bus *event.Bus) error {
	s.queue = bus.Queue(event.KindSetTimeScale, event.KindSetPaused)
	return nil
}

func (s *TimeScale) Run(tc *sched.TickContext) error {
	var scale *event.SetTimeScale
	var pause *event.SetPaused
	for _, ev := range s.queue.Drain() {
		switch e := ev.(type) {
		case event.SetTimeScale:
			scale = &e
		case event.SetPaused:
			pause = &e
		}
	}

	if scale != nil {
		prev := tc.World.TimeScale.Multiplier()
		tc.World.TimeScale.Set(scale.Multiplier)
		applied := tc.World.TimeScale.Multiplier()
		tc.Logger.Debug("time scale set",
			"tick", tc.Tick,
			"multiplier", applied,
			"previous", prev,
			"source", scale.Source,
		)
		tc.Publish(event.TimeScaleChanged{Multiplier: applied, Previous: prev})
	}

	if pause != nil {
		tc.World.Clock.Paused = pause.Paused
		tc.Publish(event.PauseChanged{Paused: pause.Paused})
	}
	return nil
}
