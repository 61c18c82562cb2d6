package systems

import (
	"math"

	"github.com/roach88/inboxsim/internal/event"
	"github.com/roach88/inboxsim/internal/sched"
	"github.com/roach88/inboxsim/internal/world"
)

// DayCycle advances the clock and walks phase boundaries.
//
// Per tick:
//  1. Cap the real delta at clock.frame_cap_ms; a non-positive delta skips
//     the tick.
//  2. Multiply by the time scale. Paused or frozen (multiplier 0) applies no
//     sim delta and stops here. Sub-millisecond remainders carry over to the
//     next tick, so small multipliers still advance the clock. A product
//     above MaxSimDeltaMs is clamped.
//  3. Advance SimNowMs, rederive day and minute, publish SimTimeAdvanced.
//  4. Publish DayPhaseChanged for every boundary crossed, in order.
//
// CRITICAL: boundaries are walked one by one, never skipped, however large
// the sim delta. A tick that crosses N midnights walks every boundary of
// every day in between and publishes DayChanged for each midnight. When the
// final day's walk crosses nothing, one night -> PhaseAt(minute) event is
// published for the new day.
type DayCycle struct {
	remainder sched.Storage[float64]
}

// MaxSimDeltaMs bounds the sim time one tick may advance.
const MaxSimDeltaMs = 7 * float64(world.DayLengthMs)

func NewDayCycle() *DayCycle { return &DayCycle{} }

func (s *DayCycle) Name() string          { return "daycycle" }
func (s *DayCycle) Init(*event.Bus) error { return nil }

func (s *DayCycle) Run(tc *sched.TickContext) error {
	c := &tc.World.Clock
	c.LastSimDtMs = 0

	realDt := tc.RealDeltaMs
	if limit := tc.Config.Clock.FrameCapMs; limit > 0 && realDt > limit {
		realDt = limit
	}
	if realDt <= 0 {
		c.DeltaTimeMs = 0
		return nil
	}
	c.DeltaTimeMs = realDt

	mult := tc.World.TimeScale.Multiplier()
	if c.Paused || mult == 0 {
		return nil
	}

	remainder := s.remainder.Get(func() float64 { return 0 })
	exact := float64(realDt)*mult + *remainder
	if exact > MaxSimDeltaMs {
		tc.Logger.Warn("sim delta clamped",
			"tick", tc.Tick,
			"real_delta_ms", realDt,
			"multiplier", mult,
			"max_sim_delta_ms", int64(MaxSimDeltaMs),
		)
		exact = MaxSimDeltaMs
	}
	simDt := int64(math.Floor(exact))
	*remainder = exact - float64(simDt)
	if simDt == 0 {
		return nil
	}
	prevDay, prevMinute := c.DayIndex, c.MinuteOfDay

	c.SimNowMs += simDt
	c.LastSimDtMs = simDt
	c.Derive()

	tc.Publish(event.SimTimeAdvanced{
		RealDeltaMs: realDt,
		SimDeltaMs:  simDt,
		Multiplier:  mult,
		SimNowMs:    c.SimNowMs,
		DayIndex:    c.DayIndex,
		MinuteOfDay: c.MinuteOfDay,
	})

	if c.DayIndex == prevDay {
		walkBoundaries(tc, prevDay, prevMinute, c.MinuteOfDay)
		return nil
	}

	walkBoundaries(tc, prevDay, prevMinute, world.MinutesInDay)
	for day := prevDay + 1; day < c.DayIndex; day++ {
		tc.Publish(event.DayChanged{From: day - 1, To: day})
		walkBoundaries(tc, day, 0, world.MinutesInDay)
	}
	tc.Publish(event.DayChanged{From: c.DayIndex - 1, To: c.DayIndex})
	tc.Logger.Debug("day changed", "tick", tc.Tick, "from", prevDay, "to", c.DayIndex)

	if !walkBoundaries(tc, c.DayIndex, 0, c.MinuteOfDay) {
		to := world.PhaseAt(c.MinuteOfDay)
		tc.Publish(event.DayPhaseChanged{DayIndex: c.DayIndex, From: world.PhaseNight, To: to})
		c.Phase = to
	}
	return nil
}

// walkBoundaries publishes a phase change for every boundary in (from, to]
// that moves the tracked phase. Reports whether any was published.
func walkBoundaries(tc *sched.TickContext, day int64, from, to int) bool {
	c := &tc.World.Clock
	crossed := false
	for _, b := range world.PhaseBoundaries {
		if b.Minute <= from || b.Minute > to || b.Phase == c.Phase {
			continue
		}
		tc.Publish(event.DayPhaseChanged{DayIndex: day, From: c.Phase, To: b.Phase})
		c.Phase = b.Phase
		crossed = true
	}
	return crossed
}
