package world

import "math"

// Simulated time constants.
const (
	MinuteMs    int64 = 60_000
	HourMs      int64 = 60 * MinuteMs
	DayLengthMs int64 = 24 * HourMs
)

// MinutesInDay is the length of a simulated day in minutes.
const MinutesInDay = 1440

// Phase is a named segment of a simulated day.
type Phase string

const (
	PhaseNight   Phase = "night"
	PhaseMorning Phase = "morning"
	PhaseWork    Phase = "work"
	PhaseSession Phase = "session"
	PhaseWrapup  Phase = "wrapup"
)

// PhaseBoundary is the minute-of-day at which a phase starts.
type PhaseBoundary struct {
	Minute int
	Phase  Phase
}

// PhaseBoundaries lists the phase starts in ascending order, ending with the
// midnight boundary (minute 1440) which begins the next day's night.
//
// Night's own start at minute 0 is not listed: it coincides with the
// midnight boundary of the previous day.
var PhaseBoundaries = []PhaseBoundary{
	{Minute: 360, Phase: PhaseMorning},
	{Minute: 540, Phase: PhaseWork},
	{Minute: 1020, Phase: PhaseSession},
	{Minute: 1200, Phase: PhaseWrapup},
	{Minute: MinutesInDay, Phase: PhaseNight},
}

// PhaseAt returns the phase in effect at the given minute of day.
// Minutes outside [0,1440) are folded into range.
func PhaseAt(minute int) Phase {
	m := minute % MinutesInDay
	if m < 0 {
		m += MinutesInDay
	}
	switch {
	case m < 360:
		return PhaseNight
	case m < 540:
		return PhaseMorning
	case m < 1020:
		return PhaseWork
	case m < 1200:
		return PhaseSession
	default:
		return PhaseWrapup
	}
}

// Clock is the simulation clock state.
//
// INVARIANT: DayIndex and MinuteOfDay are always derivable from SimNowMs,
// and Phase equals PhaseAt(MinuteOfDay) at the end of every tick.
type Clock struct {
	SimNowMs    int64 `json:"sim_now_ms"`
	DayIndex    int64 `json:"day_index"`
	MinuteOfDay int   `json:"minute_of_day"`
	Phase       Phase `json:"phase"`
	Paused      bool  `json:"paused"`

	// LastSimDtMs is the sim-time delta applied in the last tick.
	LastSimDtMs int64 `json:"last_sim_dt_ms"`

	// DeltaTimeMs is the capped real-world delta of the current tick.
	DeltaTimeMs int64 `json:"delta_time_ms"`
}

// NewClockAt returns a clock positioned at simNowMs with derived fields set.
func NewClockAt(simNowMs int64) Clock {
	c := Clock{SimNowMs: simNowMs}
	c.Derive()
	c.Phase = PhaseAt(c.MinuteOfDay)
	return c
}

// Derive recomputes DayIndex and MinuteOfDay from SimNowMs.
// Phase is left alone; the day-cycle system walks it.
func (c *Clock) Derive() {
	c.DayIndex, c.MinuteOfDay = DayAndMinute(c.SimNowMs)
}

// DayAndMinute splits an absolute sim time into day index and minute of day.
func DayAndMinute(simNowMs int64) (int64, int) {
	day := floorDiv(simNowMs, DayLengthMs)
	rem := simNowMs - day*DayLengthMs
	return day, int(rem / MinuteMs)
}

// SimMsAt returns the absolute sim time for a day and minute of day.
func SimMsAt(day int64, minute int) int64 {
	return day*DayLengthMs + int64(minute)*MinuteMs
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// TimeScale converts real elapsed time into simulated elapsed time.
// 0 freezes the clock, 1 is real time.
type TimeScale struct {
	multiplier float64
}

// NewTimeScale returns a time scale with the given multiplier.
func NewTimeScale(m float64) TimeScale {
	ts := TimeScale{}
	ts.Set(m)
	return ts
}

// Multiplier returns the current multiplier.
func (t TimeScale) Multiplier() float64 {
	return t.multiplier
}

// Set replaces the multiplier. Negative and NaN values clamp to 0.
func (t *TimeScale) Set(m float64) {
	if m < 0 || math.IsNaN(m) {
		m = 0
	}
	t.multiplier = m
}
