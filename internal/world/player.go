package world

// PlayerStatus is the player's activity state.
type PlayerStatus string

const (
	PlayerActive    PlayerStatus = "active"
	PlayerSleeping  PlayerStatus = "sleeping"
	PlayerIdle      PlayerStatus = "idle"
	PlayerExhausted PlayerStatus = "exhausted"
)

// Energy and stack bounds.
const (
	MinEnergy      = 0.0
	MaxEnergy      = 100.0
	MaxSleepStacks = 5
)

// PlayerStats are the player's progression numbers.
type PlayerStats struct {
	Energy    float64 `json:"energy" yaml:"energy"`
	XP        int     `json:"xp" yaml:"xp"`
	Endurance float64 `json:"endurance" yaml:"endurance"`

	// ExhaustedSleepStacks penalizes sleep quality after forced sleeps.
	ExhaustedSleepStacks int `json:"exhausted_sleep_stacks" yaml:"exhausted_sleep_stacks"`
}

// Player is the single player of the simulation.
type Player struct {
	Status            PlayerStatus `json:"status" yaml:"status"`
	Stats             PlayerStats  `json:"stats" yaml:"stats"`
	FatigueMultiplier float64      `json:"fatigue_multiplier" yaml:"fatigue_multiplier"`
	SleepStartedAt    *int64       `json:"sleep_started_at,omitempty" yaml:"sleep_started_at"`
}

// NewPlayer returns an active, fully rested player.
func NewPlayer() Player {
	return Player{
		Status:            PlayerActive,
		Stats:             PlayerStats{Energy: MaxEnergy},
		FatigueMultiplier: 1,
	}
}

// IsSleeping reports whether the player is asleep.
func (p *Player) IsSleeping() bool {
	return p.Status == PlayerSleeping
}

// AddEnergy adds delta (which may be negative) and clamps to [0,100].
// Returns the energy actually applied.
func (p *Player) AddEnergy(delta float64) float64 {
	before := p.Stats.Energy
	p.Stats.Energy = ClampEnergy(before + delta)
	return p.Stats.Energy - before
}

// AdjustSleepStacks adds delta and clamps to [0,MaxSleepStacks].
func (p *Player) AdjustSleepStacks(delta int) {
	n := p.Stats.ExhaustedSleepStacks + delta
	if n < 0 {
		n = 0
	}
	if n > MaxSleepStacks {
		n = MaxSleepStacks
	}
	p.Stats.ExhaustedSleepStacks = n
}

// ClampEnergy clamps e to [MinEnergy, MaxEnergy].
func ClampEnergy(e float64) float64 {
	if e < MinEnergy {
		return MinEnergy
	}
	if e > MaxEnergy {
		return MaxEnergy
	}
	return e
}
