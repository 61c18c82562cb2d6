package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/inboxsim/internal/config"
	"github.com/roach88/inboxsim/internal/engine"
	"github.com/roach88/inboxsim/internal/journal"
	"github.com/roach88/inboxsim/internal/rng"
	"github.com/roach88/inboxsim/internal/sched"
	"github.com/roach88/inboxsim/internal/testutil"
	"github.com/roach88/inboxsim/internal/world"
)

// FixedNow is the wall clock every scenario runs at.
var FixedNow = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// Option configures a scenario run.
type Option func(*Harness)

// WithLogger sets the engine logger. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) {
		h.logger = l
	}
}

// WithJournal records into j instead of a private in-memory journal.
// The caller owns j and closes it.
func WithJournal(j *journal.Journal) Option {
	return func(h *Harness) {
		h.journal = j
	}
}

// Harness runs one scenario against a fresh engine.
type Harness struct {
	scenario *Scenario
	engine   *engine.Engine
	journal  *journal.Journal
	logger   *slog.Logger
	runID    string
}

// RunID returns the journal run id a scenario is recorded under.
func RunID(s *Scenario) string {
	return "scenario:" + s.Name
}

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Build config, RNG and ids from the scenario
//  2. Create the engine and attach a journal recorder
//  3. Apply setup to the world
//  4. Run steps: publish, then tick
//  5. Read the trace back from the journal
//  6. Evaluate assertions against trace and final state
//
// Returns an error only if the scenario could not be executed. Assertion
// failures are reported in Result.Errors.
func Run(s *Scenario, opts ...Option) (*Result, error) {
	ctx := context.Background()
	h := &Harness{scenario: s, runID: RunID(s)}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = testutil.DiscardLogger()
	}

	cfg, err := s.BuildConfig()
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	h.engine, err = engine.New(cfg,
		engine.WithLogger(h.logger),
		engine.WithRNG(scenarioRNG(s, cfg)),
		engine.WithIDGenerator(scenarioIDs(s)),
		engine.WithNow(func() time.Time { return FixedNow }),
	)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: create engine: %w", s.Name, err)
	}

	if h.journal == nil {
		j, err := journal.Open(":memory:")
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
		}
		defer j.Close()
		h.journal = j
	}
	run := journal.Run{ID: h.runID, Label: s.Name, Seed: cfg.Seed, StartedAt: FixedNow}
	if err := h.journal.BeginRun(ctx, run, cfg); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	rec := h.journal.Attach(h.engine.Bus(), h.runID, h.logger)

	result := NewResult()
	h.applySetup(s.Setup)
	if err := h.executeSteps(result); err != nil {
		_ = rec.Close()
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	if err := rec.Close(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	if result.Trace, err = h.readTrace(ctx); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	result.Snapshot = h.engine.Snapshot()

	for _, msg := range EvaluateAssertions(result, s.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func scenarioRNG(s *Scenario, cfg *config.Config) rng.Func {
	if len(s.RNG) > 0 {
		return rng.Sequence(s.RNG...)
	}
	return rng.New(cfg.Seed)
}

func scenarioIDs(s *Scenario) sched.IDGenerator {
	if len(s.IDs) > 0 {
		return engine.NewFixedGenerator(s.IDs...)
	}
	return testutil.NewSequentialIDs("id")
}

// applySetup writes the scenario's initial state into the world.
// Setup bypasses the bus; nothing it does appears in the trace.
func (h *Harness) applySetup(setup Setup) {
	h.engine.Mutate(func(w *world.World) {
		if p := setup.Player; p != nil {
			if p.Energy != nil {
				w.Player.Stats.Energy = world.ClampEnergy(*p.Energy)
			}
			if p.XP != nil {
				w.Player.Stats.XP = *p.XP
			}
			if p.Endurance != nil {
				w.Player.Stats.Endurance = *p.Endurance
			}
			if p.Stacks != nil {
				w.Player.AdjustSleepStacks(*p.Stacks - w.Player.Stats.ExhaustedSleepStacks)
			}
			if p.Status != "" {
				w.Player.Status = p.Status
			}
		}
		for _, m := range setup.Messages {
			if !w.Messages.Add(m) {
				h.logger.Warn("setup: duplicate message id", "message_id", m.ID)
			}
		}
		if setup.Paused {
			w.Clock.Paused = true
		}
	})
}

func (h *Harness) executeSteps(result *Result) error {
	for i, step := range h.scenario.Steps {
		if step.Publish != "" {
			ev, err := decodeEvent(step.Publish, &step.Event)
			if err != nil {
				return fmt.Errorf("steps[%d]: %w", i, err)
			}
			h.engine.Publish(ev)
		}
		for range step.Ticks {
			if err := h.engine.Step(step.Delta()); err != nil {
				result.StepErrors = append(result.StepErrors,
					fmt.Sprintf("steps[%d] tick %d: %v", i, h.engine.Tick(), err))
			}
		}
	}
	return nil
}

func (h *Harness) readTrace(ctx context.Context) ([]TraceEvent, error) {
	records, err := h.journal.ReadEvents(ctx, h.runID, journal.Filter{})
	if err != nil {
		return nil, err
	}
	trace := make([]TraceEvent, 0, len(records))
	for _, r := range records {
		te := TraceEvent{Seq: r.Seq, Tick: r.Tick, SimNowMs: r.SimNowMs, Kind: r.Kind}
		if len(r.Payload) > 0 {
			if err := json.Unmarshal(r.Payload, &te.Payload); err != nil {
				return nil, fmt.Errorf("trace seq %d: %w", r.Seq, err)
			}
		}
		trace = append(trace, te)
	}
	return trace, nil
}
