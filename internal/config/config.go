// Package config holds every tunable of the simulation.
//
// Default returns a complete configuration. Load reads a CUE file (plain JSON
// is valid CUE), validates it against the embedded schema and decodes it over
// the defaults, so a file only needs the fields it changes.
package config

import (
	"github.com/shopspring/decimal"

	"github.com/roach88/inboxsim/internal/lineitem"
	"github.com/roach88/inboxsim/internal/world"
)

// Config is the full set of tunables.
type Config struct {
	Seed    uint64        `json:"seed"`
	Clock   ClockConfig   `json:"clock"`
	Inbox   InboxConfig   `json:"inbox"`
	Payment PaymentConfig `json:"payment"`
	Energy  EnergyConfig  `json:"energy"`
	Sleep   SleepConfig   `json:"sleep"`
	Orders  OrdersConfig  `json:"orders"`
	Roller  RollerConfig  `json:"roller"`
	Catalog []Product     `json:"catalog"`
}

// ClockConfig tunes the clock and the engine loop.
type ClockConfig struct {
	// FrameCapMs caps a tick's real delta after host stalls.
	FrameCapMs int64 `json:"frame_cap_ms"`

	// FrameIntervalMs is the real-time tick interval of Engine.Run.
	FrameIntervalMs int64 `json:"frame_interval_ms"`

	// InitialMultiplier is the time scale at start.
	InitialMultiplier float64 `json:"initial_multiplier"`

	// StartMinute positions the clock on day 0 at start.
	StartMinute int `json:"start_minute"`
}

// ActionCost is what an inbox action costs and earns.
type ActionCost struct {
	Energy      float64 `json:"energy"`
	TimeMinutes int     `json:"time_minutes"`
	XP          int     `json:"xp"`
}

// InboxConfig tunes the inbox.
type InboxConfig struct {
	// Capacity bounds the number of active messages. Zero is unbounded.
	Capacity int `json:"capacity"`

	Costs map[world.Action]ActionCost `json:"costs"`
}

// PaymentConfig tunes payment scheduling.
type PaymentConfig struct {
	DelayMs            int64   `json:"delay_ms"`
	JitterMs           int64   `json:"jitter_ms"`
	SuccessProbability float64 `json:"success_probability"`

	// FixedAmount, when set, replaces the line item total.
	FixedAmount *float64 `json:"fixed_amount,omitempty"`
}

// FixedAmountDecimal returns FixedAmount as a decimal and whether it is set.
func (p PaymentConfig) FixedAmountDecimal() (decimal.Decimal, bool) {
	if p.FixedAmount == nil {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(*p.FixedAmount), true
}

// EnergyConfig tunes the awake drain model.
type EnergyConfig struct {
	BaselinePerDay    float64                 `json:"baseline_per_day"`
	PhaseMultipliers  map[world.Phase]float64 `json:"phase_multipliers"`
	LowThreshold      float64                 `json:"low_threshold"`
	LowBoostMax       float64                 `json:"low_boost_max"`
	LowCurveExponent  float64                 `json:"low_curve_exponent"`
	EndurancePerPoint float64                 `json:"endurance_per_point"`
	MitigationFloor   float64                 `json:"mitigation_floor"`
	MinPerMinute      float64                 `json:"min_per_minute"`
	MaxPerMinute      float64                 `json:"max_per_minute"`

	// ExhaustionMinutes is how long energy must sit at zero before the
	// player is sent to sleep.
	ExhaustionMinutes float64 `json:"exhaustion_minutes"`
}

// SleepConfig tunes the sleep cycle.
type SleepConfig struct {
	Multiplier          float64   `json:"multiplier"`
	TargetVoluntary     float64   `json:"target_voluntary"`
	TargetExhausted     float64   `json:"target_exhausted"`
	RegenPerHour        float64   `json:"regen_per_hour"`
	ExhaustedMultiplier float64   `json:"exhausted_multiplier"`
	StackPenalty        float64   `json:"stack_penalty"`
	StackFloor          float64   `json:"stack_floor"`
	MinRegenPerHour     float64   `json:"min_regen_per_hour"`
	MaxRegenPerHour     float64   `json:"max_regen_per_hour"`
	BonusValues         []float64 `json:"bonus_values"`
	BonusWeights        []float64 `json:"bonus_weights"`

	// BonusStackShift moves weight toward low bonuses, per stack and per
	// index of distance from the top bonus.
	BonusStackShift float64 `json:"bonus_stack_shift"`

	ResetScaleOnWake bool    `json:"reset_scale_on_wake"`
	HighEnergyDecay  float64 `json:"high_energy_decay"`
}

// OrdersConfig tunes order fulfilment.
type OrdersConfig struct {
	// AutoProcessDelayMs arms a timer that processes new orders.
	// Zero leaves processing to explicit requests.
	AutoProcessDelayMs int64 `json:"auto_process_delay_ms"`

	// AutoShipDelayMs arms a timer that ships active orders.
	AutoShipDelayMs int64 `json:"auto_ship_delay_ms"`

	// Strategy fills orders whose message carried no line items.
	Strategy lineitem.Strategy `json:"strategy"`
}

// RollerConfig tunes the purchase-order message roller.
type RollerConfig struct {
	Enabled bool `json:"enabled"`

	// ChancePerMinute is the probability of a new message per sim-minute
	// during active phases.
	ChancePerMinute float64           `json:"chance_per_minute"`
	Phases          []world.Phase     `json:"phases"`
	Customers       []string          `json:"customers"`
	Strategy        lineitem.Strategy `json:"strategy"`
}

// Product is a catalog entry as written in config files.
type Product struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Products converts the catalog to world products.
func (c *Config) Products() []world.Product {
	out := make([]world.Product, 0, len(c.Catalog))
	for _, p := range c.Catalog {
		out = append(out, world.Product{
			ID:    p.ID,
			Name:  p.Name,
			Price: decimal.NewFromFloat(p.Price).Round(2),
		})
	}
	return out
}

// Cost returns the cost of action, and whether one is configured.
func (c *Config) Cost(action world.Action) (ActionCost, bool) {
	cost, ok := c.Inbox.Costs[action]
	return cost, ok
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Seed: 1,
		Clock: ClockConfig{
			FrameCapMs:        33,
			FrameIntervalMs:   16,
			InitialMultiplier: 1,
			StartMinute:       0,
		},
		Inbox: InboxConfig{
			Capacity: 50,
			Costs: map[world.Action]ActionCost{
				world.ActionRead:    {Energy: 2, TimeMinutes: 2, XP: 6},
				world.ActionArchive: {Energy: 1, TimeMinutes: 1, XP: 2},
				world.ActionDelete:  {Energy: 1, TimeMinutes: 1, XP: 1},
				world.ActionSpam:    {Energy: 1, TimeMinutes: 1, XP: 2},
				world.ActionAccept:  {Energy: 10, TimeMinutes: 15, XP: 25},
				world.ActionCollect: {Energy: 15, TimeMinutes: 10, XP: 30},
			},
		},
		Payment: PaymentConfig{
			DelayMs:            3 * world.DayLengthMs,
			JitterMs:           0,
			SuccessProbability: 0.98,
		},
		Energy: EnergyConfig{
			BaselinePerDay: 100,
			PhaseMultipliers: map[world.Phase]float64{
				world.PhaseNight:   1.6,
				world.PhaseMorning: 0.8,
				world.PhaseWork:    1.0,
				world.PhaseSession: 1.2,
				world.PhaseWrapup:  0.9,
			},
			LowThreshold:      30,
			LowBoostMax:       0.75,
			LowCurveExponent:  2,
			EndurancePerPoint: 0.01,
			MitigationFloor:   0.4,
			MinPerMinute:      0.02,
			MaxPerMinute:      0.5,
			ExhaustionMinutes: 5,
		},
		Sleep: SleepConfig{
			Multiplier:          36000,
			TargetVoluntary:     95,
			TargetExhausted:     70,
			RegenPerHour:        12,
			ExhaustedMultiplier: 0.8,
			StackPenalty:        0.9,
			StackFloor:          0.5,
			MinRegenPerHour:     4,
			MaxRegenPerHour:     24,
			BonusValues:         []float64{0, 1, 2, 3, 5},
			BonusWeights:        []float64{10, 30, 30, 20, 10},
			BonusStackShift:     0.2,
			ResetScaleOnWake:    true,
			HighEnergyDecay:     95,
		},
		Orders: OrdersConfig{
			Strategy: lineitem.Strategy{
				Kind:     lineitem.KindKnownProducts,
				Count:    lineitem.Between(1, 3),
				Quantity: lineitem.Between(1, 10),
			},
		},
		Roller: RollerConfig{
			Enabled:         false,
			ChancePerMinute: 0.02,
			Phases:          []world.Phase{world.PhaseMorning, world.PhaseWork},
			Customers:       []string{"Acme Corp", "Globex", "Initech", "Umbrella Supply"},
			Strategy: lineitem.Strategy{
				Kind:     lineitem.KindMixed,
				Count:    lineitem.Between(1, 3),
				Quantity: lineitem.Between(1, 10),
				Unknown: []lineitem.UnknownSpec{
					{Name: "Custom bracket assembly", Quantity: lineitem.Between(1, 4), EstimatedPrice: lineitem.Between(40, 120)},
				},
			},
		},
		Catalog: []Product{
			{ID: "widget", Name: "Widget", Price: 12.5},
			{ID: "gadget", Name: "Gadget", Price: 25},
			{ID: "sprocket", Name: "Sprocket", Price: 3.75},
			{ID: "flange", Name: "Flange", Price: 8.2},
		},
	}
}
