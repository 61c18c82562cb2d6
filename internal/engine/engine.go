package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/roach88/inboxsim/internal/config"
	"github.com/roach88/inboxsim/internal/event"
	"github.com/roach88/inboxsim/internal/rng"
	"github.com/roach88/inboxsim/internal/sched"
	"github.com/roach88/inboxsim/internal/world"
)

// DefaultFrameInterval is used when the config leaves the frame interval
// unset.
const DefaultFrameInterval = 16 * time.Millisecond

// Engine is the single-writer tick loop.
//
// CRITICAL: World mutations only happen inside Step (systems) or Mutate.
// Both hold the engine mutex, so ticks never interleave with each other or
// with external publishers.
//
// Thread-safety model:
//   - Step(), Publish(), Mutate(), Snapshot(): safe from any goroutine
//   - Run(): must be called from exactly one goroutine
//
// INVARIANTS:
//   - pipeline order NEVER changes after construction
//   - system names within pipeline are unique
//   - the tick counter is strictly increasing
type Engine struct {
	mu sync.Mutex

	cfg      *config.Config
	world    *world.World
	bus      *event.Bus
	pipeline sched.Pipeline
	rng      rng.Func
	ids      sched.IDGenerator
	logger   *slog.Logger
	now      func() time.Time

	tick     uint64
	failures map[string]int
}

// EngineOption allows configuration of engine collaborators.
type EngineOption func(*Engine)

// WithRNG replaces the RNG seeded from config.
func WithRNG(f rng.Func) EngineOption {
	return func(e *Engine) {
		e.rng = f
	}
}

// WithIDGenerator replaces the UUIDv7 id generator.
// Use NewFixedGenerator or NewSeededGenerator for reproducible runs.
func WithIDGenerator(ids sched.IDGenerator) EngineOption {
	return func(e *Engine) {
		e.ids = ids
	}
}

// WithLogger sets the logger handed to systems. Default: slog.Default().
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithPipeline replaces DefaultPipeline.
func WithPipeline(p sched.Pipeline) EngineOption {
	return func(e *Engine) {
		e.pipeline = p
	}
}

// WithWorld starts the engine from w instead of a world built from config.
func WithWorld(w *world.World) EngineOption {
	return func(e *Engine) {
		e.world = w
	}
}

// WithNow replaces the wall clock used for informational timestamps.
func WithNow(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates an engine for cfg, builds its world and inits every system in
// the pipeline. A nil cfg uses config.Default().
func New(cfg *config.Config, opts ...EngineOption) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:      cfg,
		failures: make(map[string]int),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.world == nil {
		e.world = newWorld(cfg)
	}
	if e.pipeline == nil {
		e.pipeline = DefaultPipeline()
	}
	if e.rng == nil {
		e.rng = rng.New(cfg.Seed)
	}
	if e.ids == nil {
		e.ids = UUIDv7Generator{}
	}
	if e.now == nil {
		e.now = time.Now
	}
	e.bus = event.NewBus(e.logger)

	if err := e.pipeline.Validate(); err != nil {
		return nil, err
	}
	for _, sys := range e.pipeline {
		if err := sys.Init(e.bus); err != nil {
			return nil, fmt.Errorf("init pipeline: %w", &SystemError{
				Code:    ErrCodeInitFailed,
				System:  sys.Name(),
				Message: err.Error(),
				Err:     err,
			})
		}
	}

	e.logger.Debug("engine ready",
		"systems", e.pipeline.Names(),
		"seed", cfg.Seed,
		"sim_now_ms", e.world.Clock.SimNowMs,
	)
	return e, nil
}

func newWorld(cfg *config.Config) *world.World {
	w := world.New()
	w.Clock = world.NewClockAt(world.SimMsAt(0, cfg.Clock.StartMinute))
	w.TimeScale = world.NewTimeScale(cfg.Clock.InitialMultiplier)
	return w
}

// Step runs one tick: every system in pipeline order, with realDeltaMs of
// real time elapsed since the previous tick.
//
// A failing system does not stop the tick. Step returns the joined
// SystemErrors of every system that failed, or nil.
func (e *Engine) Step(realDeltaMs int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.tick++
	tc := &sched.TickContext{
		Tick:        e.tick,
		RealDeltaMs: realDeltaMs,
		World:       e.world,
		Bus:         e.bus,
		Config:      e.cfg,
		RNG:         e.rng,
		IDs:         e.ids,
		Logger:      e.logger,
		Now:         e.now(),
	}

	var errs []error
	for _, sys := range e.pipeline {
		if serr := runSystem(sys, tc); serr != nil {
			e.failures[serr.System]++
			e.logger.Error("system failed",
				"tick", serr.Tick,
				"system", serr.System,
				"code", serr.Code,
				"error", serr.Message,
			)
			errs = append(errs, serr)
		}
	}
	return errors.Join(errs...)
}

func runSystem(sys sched.System, tc *sched.TickContext) (serr *SystemError) {
	defer func() {
		if r := recover(); r != nil {
			serr = newPanicError(sys.Name(), tc.Tick, r)
		}
	}()
	if err := sys.Run(tc); err != nil {
		return newSystemError(sys.Name(), tc.Tick, err)
	}
	return nil
}

// Publish submits an external request. It is delivered to subscriber queues
// immediately and consumed on the next tick. Returns the publish sequence.
func (e *Engine) Publish(ev event.Event) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.bus.Publish(ev)
}

// Run steps the engine at the configured frame interval until ctx is
// cancelled. The real delta of each tick is the measured time since the
// previous one.
func (e *Engine) Run(ctx context.Context) error {
	interval := time.Duration(e.cfg.Clock.FrameIntervalMs) * time.Millisecond
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	e.logger.Info("engine starting", "interval", interval, "systems", len(e.pipeline))

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			e.logger.Info("engine stopping: context cancelled", "tick", e.Tick())
			return ctx.Err()

		case now := <-ticker.C:
			dt := now.Sub(last).Milliseconds()
			last = now
			// Failures are logged and counted by Step.
			_ = e.Step(dt)
		}
	}
}

// Mutate runs fn against the world between ticks.
func (e *Engine) Mutate(fn func(w *world.World)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.world)
}

// Snapshot returns a copy of the world.
func (e *Engine) Snapshot() world.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.world.Snapshot()
}

// Bus returns the engine's bus, for attaching taps such as a journal.
func (e *Engine) Bus() *event.Bus {
	return e.bus
}

// Tick returns the number of ticks run so far.
func (e *Engine) Tick() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tick
}

// Config returns the engine's configuration.
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// Pipeline returns the system names in run order.
func (e *Engine) Pipeline() []string {
	return e.pipeline.Names()
}

// Failures returns the failure count per system name.
func (e *Engine) Failures() map[string]int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return maps.Clone(e.failures)
}
