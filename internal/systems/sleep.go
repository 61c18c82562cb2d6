package systems

import (
	"fmt"
	"math"

	"github.com/roach88/inboxsim/internal/config"
	"github.com/roach88/inboxsim/internal/event"
	"github.com/roach88/inboxsim/internal/rng"
	"github.com/roach88/inboxsim/internal/sched"
	"github.com/roach88/inboxsim/internal/world"
)

type sleepSession struct {
	reason  event.SleepReason
	target  float64
	startMs int64
	before  float64
}

// Sleep runs the sleep cycle.
//
// GoToSleep while awake puts the player to sleep, fast-forwards time, picks a
// wake target and adjusts the exhausted-sleep stacks. While asleep energy
// regenerates per sim-hour. Reaching the target wakes the player once, with a
// weighted random bonus. SleepInterruptRequested wakes the player at once and
// discards the session.
type Sleep struct {
	queue   *event.Queue
	session sched.Storage[*sleepSession]
}

func NewSleep() *Sleep { return &Sleep{} }

func (s *Sleep) Name() string { return "sleep" }

func (s *Sleep) Init(bus *event.Bus) error {
	s.queue = bus.Queue(event.KindGoToSleep, event.KindSleepInterruptRequest)
	return nil
}

func noSession() *sleepSession { return nil }

func (s *Sleep) Run(tc *sched.TickContext) error {
	sess := s.session.Get(noSession)
	p := &tc.World.Player

	for _, ev := range s.queue.Drain() {
		switch e := ev.(type) {
		case event.GoToSleep:
			if p.IsSleeping() {
				tc.Logger.Debug("already asleep", "tick", tc.Tick, "reason", e.Reason)
				continue
			}
			*sess = s.start(tc, e.Reason)
		case event.SleepInterruptRequested:
			if !p.IsSleeping() {
				continue
			}
			s.interrupt(tc, *sess, e.Source)
			*sess = nil
		}
	}

	simDt := tc.SimDelta()
	if tc.Paused() || simDt <= 0 || !p.IsSleeping() {
		return nil
	}
	if *sess == nil {
		// Asleep without a session, e.g. a world set up asleep.
		*sess = &sleepSession{reason: event.SleepAuto, target: tc.Config.Sleep.TargetVoluntary, startMs: tc.SimNow(), before: p.Stats.Energy}
	}

	cfg := tc.Config.Sleep
	cur := *sess
	hours := float64(simDt) / float64(world.HourMs)
	rate := RegenPerHour(cfg, p.Stats.Energy, cur.target, cur.reason == event.SleepExhausted, p.Stats.ExhaustedSleepStacks)
	p.AddEnergy(rate * hours)

	if p.Stats.Energy >= cur.target {
		s.wake(tc, cur)
		*sess = nil
	}
	return nil
}

func (s *Sleep) start(tc *sched.TickContext, reason event.SleepReason) *sleepSession {
	cfg := tc.Config.Sleep
	p := &tc.World.Player
	now := tc.SimNow()

	target := cfg.TargetVoluntary
	if reason == event.SleepExhausted {
		target = cfg.TargetExhausted
		p.AdjustSleepStacks(1)
	} else {
		p.AdjustSleepStacks(-1)
	}

	p.Status = world.PlayerSleeping
	p.SleepStartedAt = &now

	tc.Publish(event.SetTimeScale{Multiplier: cfg.Multiplier, Source: "sleep"})
	tc.Publish(event.SleepStarted{
		Reason:     reason,
		Energy:     p.Stats.Energy,
		WakeTarget: target,
		Stacks:     p.Stats.ExhaustedSleepStacks,
	})
	tc.Logger.Info("sleep started",
		"tick", tc.Tick,
		"reason", reason,
		"energy", p.Stats.Energy,
		"target", target,
		"stacks", p.Stats.ExhaustedSleepStacks,
	)

	return &sleepSession{reason: reason, target: target, startMs: now, before: p.Stats.Energy}
}

func (s *Sleep) wake(tc *sched.TickContext, sess *sleepSession) {
	cfg := tc.Config.Sleep
	p := &tc.World.Player

	bonus := WakeBonus(cfg, p.Stats.ExhaustedSleepStacks, tc.RNG)
	p.AddEnergy(bonus)
	p.Status = world.PlayerActive
	p.SleepStartedAt = nil

	if cfg.ResetScaleOnWake {
		tc.Publish(event.SetTimeScale{Multiplier: 1, Source: "sleep"})
	}

	minutes := float64(tc.SimNow()-sess.startMs) / float64(world.MinuteMs)
	tc.Publish(event.SleepFinished{
		Before:       sess.before,
		After:        p.Stats.Energy,
		MinutesSlept: minutes,
		Bonus:        bonus,
	})
	tc.Publish(event.TaskFinished{
		TaskID:          fmt.Sprintf("sleep:%d", sess.startMs),
		TaskKind:        "sleep",
		Source:          "sleep",
		TimeCostMinutes: int(math.Round(minutes)),
		Refs:            map[string]string{"reason": string(sess.reason)},
		Tags:            []string{"sleep", string(sess.reason)},
	})

	if p.Stats.Energy >= cfg.HighEnergyDecay {
		p.AdjustSleepStacks(-1)
	}
	tc.Logger.Info("sleep finished",
		"tick", tc.Tick,
		"energy", p.Stats.Energy,
		"minutes", minutes,
		"bonus", bonus,
	)
}

func (s *Sleep) interrupt(tc *sched.TickContext, sess *sleepSession, source string) {
	p := &tc.World.Player

	before := p.Stats.Energy
	minutes := 0.0
	if sess != nil {
		before = sess.before
		minutes = float64(tc.SimNow()-sess.startMs) / float64(world.MinuteMs)
	}

	p.Status = world.PlayerActive
	p.SleepStartedAt = nil
	tc.Publish(event.SetTimeScale{Multiplier: 1, Source: "sleep"})
	tc.Publish(event.SleepInterrupted{Before: before, After: p.Stats.Energy, MinutesSlept: minutes})
	tc.Logger.Info("sleep interrupted", "tick", tc.Tick, "source", source, "energy", p.Stats.Energy)
}

// RegenPerHour is the sleeping energy regeneration per sim-hour.
//
// The base rate is scaled by 0.5 + deficit/target, so a deeper deficit
// recovers faster, then by the exhausted multiplier for exhausted sleeps and
// by stack_penalty^stacks (never below stack_floor), and finally clamped to
// [min_regen_per_hour, max_regen_per_hour].
func RegenPerHour(cfg config.SleepConfig, energy, target float64, exhausted bool, stacks int) float64 {
	rate := cfg.RegenPerHour
	if target > 0 {
		deficit := math.Max(0, target-energy)
		rate *= 0.5 + deficit/target
	}
	if exhausted {
		rate *= cfg.ExhaustedMultiplier
	}
	rate *= math.Max(cfg.StackFloor, math.Pow(cfg.StackPenalty, float64(stacks)))
	return clamp(rate, cfg.MinRegenPerHour, cfg.MaxRegenPerHour)
}

// WakeBonus draws the wake-up bonus. Each stack moves weight toward the low
// end: weight i is scaled by 1 + bonus_stack_shift × stacks × (n-1-i).
func WakeBonus(cfg config.SleepConfig, stacks int, f rng.Func) float64 {
	weights := BonusWeights(cfg, stacks)
	i := rng.Weighted(f, weights)
	if i < 0 {
		return 0
	}
	return cfg.BonusValues[i]
}

// BonusWeights returns the bonus distribution for the given stacks.
func BonusWeights(cfg config.SleepConfig, stacks int) []float64 {
	n := min(len(cfg.BonusValues), len(cfg.BonusWeights))
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		distance := float64(n - 1 - i)
		out[i] = cfg.BonusWeights[i] * (1 + cfg.BonusStackShift*float64(stacks)*distance)
	}
	return out
}
