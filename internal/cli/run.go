package cli

import (
	"context"
	"errors"
	"maps"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/inboxsim/internal/engine"
	"github.com/roach88/inboxsim/internal/world"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string
	Label    string

	// Duration stops the engine after this much real time. Zero runs until
	// interrupted.
	Duration time.Duration
}

// RunSummary is printed when the real-time loop stops.
type RunSummary struct {
	RunID    string         `json:"run_id,omitempty"`
	Ticks    uint64         `json:"ticks"`
	Clock    world.Clock    `json:"clock"`
	Player   world.Player   `json:"player"`
	Messages int            `json:"messages"`
	Orders   int            `json:"orders"`
	Payments int            `json:"payments"`
	Events   int            `json:"events_journaled,omitempty"`
	Failures map[string]int `json:"failures,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulation in real time",
		Long: `Run the simulation loop in real time at the configured frame interval.

The engine ticks until interrupted (Ctrl-C, SIGTERM) or until --duration
elapses. With --db every event is journaled to SQLite for later inspection
with "inboxsim trace".

Examples:
  inboxsim run --duration 30s
  inboxsim run --db ./inboxsim.db --config ./fast.cue --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEngine(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "journal events to this SQLite database")
	cmd.Flags().StringVar(&opts.Label, "label", "run", "label stored with the journaled run")
	cmd.Flags().DurationVar(&opts.Duration, "duration", 0, "stop after this much real time (0 runs until interrupted)")

	return cmd
}

func runEngine(opts *RunOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	logger := f.Logger()

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}

	eng, err := engine.New(cfg, engine.WithLogger(logger))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create engine", err)
	}

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if opts.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Duration)
		defer cancel()
	}

	summary := RunSummary{}
	var rec *recording
	if opts.Database != "" {
		summary.RunID = engine.UUIDv7Generator{}.NewID()
		rec, err = startRecording(ctx, opts.Database, summary.RunID, opts.Label, time.Now(), cfg, eng, logger)
		if err != nil {
			return err
		}
	}

	f.Textf("Simulation running (%d systems). Press Ctrl-C to stop.\n", len(eng.Pipeline()))
	runErr := eng.Run(ctx)

	if rec != nil {
		written, err := rec.Close()
		if err != nil {
			return err
		}
		summary.Events = written
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) && !errors.Is(runErr, context.DeadlineExceeded) {
		return WrapExitError(ExitFailure, "engine error", runErr)
	}

	fillSummary(&summary, eng)
	logger.Info("engine stopped gracefully", "ticks", summary.Ticks)
	return outputSummary(f, summary)
}

func fillSummary(s *RunSummary, eng *engine.Engine) {
	snap := eng.Snapshot()
	s.Ticks = eng.Tick()
	s.Clock = snap.Clock
	s.Player = snap.Player
	s.Messages = len(snap.Messages)
	s.Orders = len(snap.Orders)
	s.Payments = len(snap.Payments)
	if failures := eng.Failures(); len(failures) > 0 {
		s.Failures = failures
	}
}

func outputSummary(f *OutputFormatter, s RunSummary) error {
	if f.IsJSON() {
		return f.Success(s)
	}
	if s.RunID != "" {
		f.Textf("Run:      %s (%d events journaled)\n", s.RunID, s.Events)
	}
	f.Textf("Ticks:    %d\n", s.Ticks)
	f.Textf("Clock:    day %d %02d:%02d (%s)\n", s.Clock.DayIndex, s.Clock.MinuteOfDay/60, s.Clock.MinuteOfDay%60, s.Clock.Phase)
	f.Textf("Player:   %s, energy %.1f, xp %d\n", s.Player.Status, s.Player.Stats.Energy, s.Player.Stats.XP)
	f.Textf("Inbox:    %d messages, %d orders, %d payments\n", s.Messages, s.Orders, s.Payments)
	for _, name := range slices.Sorted(maps.Keys(s.Failures)) {
		f.Textf("Failures: %s x%d\n", name, s.Failures[name])
	}
	return nil
}
