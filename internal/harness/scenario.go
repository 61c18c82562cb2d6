package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/inboxsim/internal/config"
	"github.com/roach88/inboxsim/internal/event"
	"github.com/roach88/inboxsim/internal/world"
)

// DefaultRealDeltaMs is the real delta of a tick step that does not set one.
const DefaultRealDeltaMs = 16

// Scenario defines a deterministic simulation scenario.
// A scenario seeds the world, feeds the engine requests and ticks, and
// asserts on the resulting event trace and final world state.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Seed seeds the RNG when RNG is empty. Zero keeps the config seed.
	Seed uint64 `yaml:"seed,omitempty"`

	// RNG is a scripted sample sequence, cycled. Empty uses a seeded source.
	RNG []float64 `yaml:"rng,omitempty"`

	// IDs are handed out in order to everything that mints an id.
	// Empty yields "id-1", "id-2", ...
	IDs []string `yaml:"ids,omitempty"`

	// Config overrides the default configuration. It is validated against
	// the config schema.
	Config map[string]any `yaml:"config,omitempty"`

	Setup Setup `yaml:"setup,omitempty"`

	// Steps run in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final trace and state.
	Assertions []Assertion `yaml:"assertions"`
}

// Setup writes initial state directly into the world before the first step.
type Setup struct {
	Player   *PlayerSetup    `yaml:"player,omitempty"`
	Messages []world.Message `yaml:"messages,omitempty"`
	Paused   bool            `yaml:"paused,omitempty"`
}

// PlayerSetup overrides player fields. Unset fields keep their defaults.
type PlayerSetup struct {
	Energy    *float64           `yaml:"energy,omitempty"`
	XP        *int               `yaml:"xp,omitempty"`
	Endurance *float64           `yaml:"endurance,omitempty"`
	Stacks    *int               `yaml:"exhausted_sleep_stacks,omitempty"`
	Status    world.PlayerStatus `yaml:"status,omitempty"`
}

// Step publishes an event, runs ticks, or both (publish first).
type Step struct {
	// Publish is the kind of the event to publish.
	Publish event.Kind `yaml:"publish,omitempty"`

	// Event is the payload, decoded into the Go type of Publish.
	Event yaml.Node `yaml:"event,omitempty"`

	// Ticks is the number of ticks to run.
	Ticks int `yaml:"ticks,omitempty"`

	// RealDeltaMs is the real delta of each tick. Zero uses
	// DefaultRealDeltaMs; use a negative value for a zero-delta tick.
	RealDeltaMs int64 `yaml:"real_delta_ms,omitempty"`
}

// Delta returns the real delta each tick of the step advances by.
func (s Step) Delta() int64 {
	switch {
	case s.RealDeltaMs == 0:
		return DefaultRealDeltaMs
	case s.RealDeltaMs < 0:
		return 0
	}
	return s.RealDeltaMs
}

// Assertion validates the trace or the final state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Kind is the event kind (event_count, event_contains).
	Kind event.Kind `yaml:"kind,omitempty"`

	// Kinds is the expected relative order (event_order).
	Kinds []event.Kind `yaml:"kinds,omitempty"`

	// Where filters events by payload fields, subset match. Keys may be
	// dotted paths into nested objects.
	Where map[string]any `yaml:"where,omitempty"`

	// Count is the expected number of matching events (event_count).
	Count int `yaml:"count,omitempty"`

	// ID selects the message, order or payment (state assertions).
	ID string `yaml:"id,omitempty"`

	// Expect holds expected field values, subset match (state assertions).
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertEventContains = "event_contains"
	AssertEventOrder    = "event_order"
	AssertEventCount    = "event_count"
	AssertMessageState  = "message_state"
	AssertPlayerState   = "player_state"
	AssertOrderState    = "order_state"
	AssertPaymentState  = "payment_state"
	AssertClockState    = "clock_state"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}
	s, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // catches typos like "assertion:" vs "assertions:"
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}
	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

// BuildConfig returns the default config with the scenario's overrides and
// seed applied.
func (s *Scenario) BuildConfig() (*config.Config, error) {
	cfg := config.Default()
	if len(s.Config) > 0 {
		data, err := json.Marshal(s.Config)
		if err != nil {
			return nil, fmt.Errorf("config overrides: %w", err)
		}
		if cfg, err = config.Parse(data, s.Name+".config"); err != nil {
			return nil, err
		}
	}
	if s.Seed != 0 {
		cfg.Seed = s.Seed
	}
	return cfg, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, m := range s.Setup.Messages {
		if m.ID == "" {
			return fmt.Errorf("setup.messages[%d]: id is required", i)
		}
	}

	for i, step := range s.Steps {
		if step.Publish == "" && step.Ticks == 0 {
			return fmt.Errorf("steps[%d]: publish or ticks is required", i)
		}
		if step.Ticks < 0 {
			return fmt.Errorf("steps[%d]: ticks must be non-negative", i)
		}
		if step.Publish != "" {
			if _, err := decodeEvent(step.Publish, &step.Event); err != nil {
				return fmt.Errorf("steps[%d]: %w", i, err)
			}
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertEventContains:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for event_contains", index)
		}
	case AssertEventOrder:
		if len(a.Kinds) == 0 {
			return fmt.Errorf("assertions[%d]: kinds list is required for event_order", index)
		}
	case AssertEventCount:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for event_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for event_count", index)
		}
	case AssertMessageState, AssertOrderState, AssertPaymentState:
		if a.ID == "" {
			return fmt.Errorf("assertions[%d]: id is required for %s", index, a.Type)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for %s", index, a.Type)
		}
	case AssertPlayerState, AssertClockState:
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for %s", index, a.Type)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	for _, k := range append(a.Kinds, a.Kind) {
		if k != "" && !event.IsKnown(k) {
			return fmt.Errorf("assertions[%d]: unknown event kind %q", index, k)
		}
	}
	return nil
}

// decodeEvent decodes node into the request type of kind.
// Only kinds a caller outside the engine may publish are accepted.
func decodeEvent(kind event.Kind, node *yaml.Node) (event.Event, error) {
	switch kind {
	case event.KindSetTimeScale:
		return decodeAs[event.SetTimeScale](node)
	case event.KindSetPaused:
		return decodeAs[event.SetPaused](node)
	case event.KindNewMessageReceived:
		return decodeAs[event.NewMessageReceived](node)
	case event.KindMessageActionRequested:
		return decodeAs[event.MessageActionRequested](node)
	case event.KindMessageHardDeleteRequested:
		return decodeAs[event.MessageHardDeleteRequested](node)
	case event.KindInboxLockRequested:
		return decodeAs[event.InboxLockRequested](node)
	case event.KindInboxUnlockRequested:
		return decodeAs[event.InboxUnlockRequested](node)
	case event.KindInboxResetRequested:
		return decodeAs[event.InboxResetRequested](node)
	case event.KindOrderProcessRequested:
		return decodeAs[event.OrderProcessRequested](node)
	case event.KindOrderShipRequested:
		return decodeAs[event.OrderShipRequested](node)
	case event.KindOrderCloseRequested:
		return decodeAs[event.OrderCloseRequested](node)
	case event.KindOrderCancelRequested:
		return decodeAs[event.OrderCancelRequested](node)
	case event.KindOrderShipped:
		return decodeAs[event.OrderShipped](node)
	case event.KindGoToSleep:
		return decodeAs[event.GoToSleep](node)
	case event.KindSleepInterruptRequest:
		return decodeAs[event.SleepInterruptRequested](node)
	case event.KindAddTimer:
		return decodeAs[event.AddTimer](node)
	case event.KindRemoveTimer:
		return decodeAs[event.RemoveTimer](node)
	}
	if event.IsKnown(kind) {
		return nil, fmt.Errorf("%s is published by the engine, not by scenarios", kind)
	}
	return nil, fmt.Errorf("unknown event kind %q", kind)
}

// decodeAs decodes node into a T. An empty node yields the zero T.
func decodeAs[T event.Event](node *yaml.Node) (event.Event, error) {
	var v T
	if node == nil || node.Kind == 0 {
		return v, nil
	}
	if err := node.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", v.Kind(), err)
	}
	return v, nil
}
