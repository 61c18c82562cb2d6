package systems

import (
	"math"

	"github.com/roach88/inboxsim/internal/config"
	"github.com/roach88/inboxsim/internal/event"
	"github.com/roach88/inboxsim/internal/sched"
	"github.com/roach88/inboxsim/internal/world"
)

type exhaustion struct {
	zeroMinutes float64
	depleted    bool
	latched     bool
}

// Energy drains the awake player's energy with sim time and sends an
// exhausted player to sleep.
//
// Once energy has sat at zero for energy.exhaustion_minutes it publishes
// GoToSleep{exhausted} exactly once. The latch resets only when energy is
// back above zero.
type Energy struct {
	state sched.Storage[exhaustion]
}

func NewEnergy() *Energy { return &Energy{} }

func (s *Energy) Name() string          { return "energy" }
func (s *Energy) Init(*event.Bus) error { return nil }

func (s *Energy) Run(tc *sched.TickContext) error {
	st := s.state.Get(func() exhaustion { return exhaustion{} })
	p := &tc.World.Player

	if p.Stats.Energy > world.MinEnergy {
		*st = exhaustion{}
		if p.Status == world.PlayerExhausted {
			p.Status = world.PlayerActive
		}
	}

	simDt := tc.SimDelta()
	if tc.Paused() || simDt <= 0 || p.IsSleeping() {
		return nil
	}

	cfg := tc.Config.Energy
	minutes := float64(simDt) / float64(world.MinuteMs)
	rate := DrainPerMinute(cfg, tc.World.Clock.Phase, p)
	before := p.Stats.Energy
	p.AddEnergy(-rate * minutes)

	if p.Stats.Energy > world.MinEnergy {
		return nil
	}

	// Only the part of the tick spent at zero counts toward exhaustion.
	atZero := minutes
	if before > 0 {
		atZero = math.Max(0, minutes-before/rate)
	}
	st.zeroMinutes += atZero
	p.Status = world.PlayerExhausted

	if !st.depleted {
		st.depleted = true
		tc.Logger.Info("energy depleted", "tick", tc.Tick, "sim_now_ms", tc.SimNow())
		tc.Publish(event.EnergyDepleted{SimNowMs: tc.SimNow()})
	}
	if !st.latched && st.zeroMinutes >= cfg.ExhaustionMinutes {
		st.latched = true
		tc.Logger.Info("player exhausted", "tick", tc.Tick, "minutes_at_zero", st.zeroMinutes)
		tc.Publish(event.GoToSleep{Reason: event.SleepExhausted})
	}
	return nil
}

// DrainPerMinute is the awake energy drain per sim-minute.
//
// baseline/1440, times the phase multiplier and the player's fatigue
// multiplier, boosted along a power curve below the low-energy threshold,
// mitigated by endurance down to the floor, and clamped to
// [min_per_minute, max_per_minute].
func DrainPerMinute(cfg config.EnergyConfig, phase world.Phase, p *world.Player) float64 {
	rate := cfg.BaselinePerDay / world.MinutesInDay

	if m, ok := cfg.PhaseMultipliers[phase]; ok {
		rate *= m
	}
	if p.FatigueMultiplier > 0 {
		rate *= p.FatigueMultiplier
	}

	if e := p.Stats.Energy; cfg.LowThreshold > 0 && e < cfg.LowThreshold {
		deficit := (cfg.LowThreshold - e) / cfg.LowThreshold
		rate *= 1 + cfg.LowBoostMax*math.Pow(deficit, cfg.LowCurveExponent)
	}

	mitigation := math.Max(cfg.MitigationFloor, 1-cfg.EndurancePerPoint*p.Stats.Endurance)
	rate *= mitigation

	return clamp(rate, cfg.MinPerMinute, cfg.MaxPerMinute)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
