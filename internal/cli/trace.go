package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/inboxsim/internal/event"
	"github.com/roach88/inboxsim/internal/journal"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	RunID    string
	Kinds    []string
	FromTick uint64
	ToTick   uint64
	Limit    int
	Message  string // show the action history of one message instead
}

// TraceEvent is one journaled event in the timeline.
type TraceEvent struct {
	Seq      uint64          `json:"seq"`
	Tick     uint64          `json:"tick"`
	SimNowMs int64           `json:"sim_now_ms"`
	Kind     event.Kind      `json:"kind"`
	Payload  json.RawMessage `json:"payload"`
}

// TraceAction is one journaled inbox action attempt.
type TraceAction struct {
	Seq     uint64 `json:"seq"`
	Tick    uint64 `json:"tick"`
	Action  string `json:"action"`
	Source  string `json:"source,omitempty"`
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	RunID     string        `json:"run_id"`
	MessageID string        `json:"message_id,omitempty"`
	Timeline  []TraceEvent  `json:"timeline,omitempty"`
	Actions   []TraceAction `json:"actions,omitempty"`
	Stats     TraceStats    `json:"stats"`
}

// TraceStats holds summary statistics for the trace.
type TraceStats struct {
	TotalEvents int            `json:"total_events"`
	ByKind      map[string]int `json:"by_kind,omitempty"`
	FirstTick   uint64         `json:"first_tick"`
	LastTick    uint64         `json:"last_tick"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the journaled events of a run",
		Long: `Show the events a run journaled, in publish order.

Without --run the most recently started run is shown. --message switches to
the action history of one message: every read, archive, accept or collect
attempt with its outcome.

Examples:
  inboxsim trace --db ./sim.db
  inboxsim trace --db ./sim.db --kind OrderCreated --kind PaymentReceived
  inboxsim trace --db ./sim.db --from-tick 100 --to-tick 200 --verbose
  inboxsim trace --db ./sim.db --message po-1 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run id (default: the latest run)")
	cmd.Flags().StringSliceVar(&opts.Kinds, "kind", nil, "only show these event kinds (repeatable)")
	cmd.Flags().Uint64Var(&opts.FromTick, "from-tick", 0, "first tick to show")
	cmd.Flags().Uint64Var(&opts.ToTick, "to-tick", 0, "last tick to show (0: no limit)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of events (0: no limit)")
	cmd.Flags().StringVar(&opts.Message, "message", "", "show the action history of this message")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	f := newFormatter(opts.RootOptions, cmd)

	kinds := make([]event.Kind, 0, len(opts.Kinds))
	for _, k := range opts.Kinds {
		kind := event.Kind(k)
		if !event.IsKnown(kind) {
			return NewExitError(ExitCommandError, fmt.Sprintf("unknown event kind %q", k))
		}
		kinds = append(kinds, kind)
	}

	j, runID, err := openRun(ctx, opts.Database, opts.RunID)
	if err != nil {
		return err
	}
	defer j.Close()

	result := TraceResult{RunID: runID, MessageID: opts.Message}
	if opts.Message != "" {
		actions, err := j.ReadActions(ctx, runID, opts.Message)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read actions", err)
		}
		result.Actions = make([]TraceAction, 0, len(actions))
		for _, a := range actions {
			result.Actions = append(result.Actions, TraceAction{
				Seq:     a.Seq,
				Tick:    a.Tick,
				Action:  string(a.Action),
				Source:  a.Source,
				Success: a.Success,
				Reason:  a.Reason,
			})
		}
	} else {
		records, err := j.ReadEvents(ctx, runID, journal.Filter{
			Kinds:    kinds,
			FromTick: opts.FromTick,
			ToTick:   opts.ToTick,
			Limit:    opts.Limit,
		})
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read events", err)
		}
		result.Timeline = buildTimeline(records)
		result.Stats = traceStats(result.Timeline)
	}

	if f.IsJSON() {
		return f.Success(result)
	}
	outputTraceText(f.Writer, result, opts.Verbose)
	return nil
}

// openRun opens the journal at path and resolves runID, defaulting to the
// latest run. The caller closes the journal.
func openRun(ctx context.Context, path, runID string) (*journal.Journal, string, error) {
	j, err := journal.Open(path)
	if err != nil {
		return nil, "", WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	if runID != "" {
		return j, runID, nil
	}
	runID, err = j.LatestRun(ctx)
	if err != nil {
		_ = j.Close()
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", NewExitError(ExitCommandError, fmt.Sprintf("no runs in journal: %s", path))
		}
		return nil, "", WrapExitError(ExitCommandError, "failed to find latest run", err)
	}
	return j, runID, nil
}

func buildTimeline(records []journal.Record) []TraceEvent {
	timeline := make([]TraceEvent, 0, len(records))
	for _, r := range records {
		timeline = append(timeline, TraceEvent{
			Seq:      r.Seq,
			Tick:     r.Tick,
			SimNowMs: r.SimNowMs,
			Kind:     r.Kind,
			Payload:  r.Payload,
		})
	}
	return timeline
}

func traceStats(timeline []TraceEvent) TraceStats {
	stats := TraceStats{TotalEvents: len(timeline)}
	if len(timeline) == 0 {
		return stats
	}
	stats.ByKind = make(map[string]int)
	stats.FirstTick = timeline[0].Tick
	stats.LastTick = timeline[len(timeline)-1].Tick
	for _, ev := range timeline {
		stats.ByKind[string(ev.Kind)]++
	}
	return stats
}

func outputTraceText(w io.Writer, result TraceResult, verbose bool) {
	fmt.Fprintf(w, "Trace for Run: %s\n", result.RunID)

	if result.MessageID != "" {
		fmt.Fprintf(w, "Message: %s\n\n", result.MessageID)
		fmt.Fprintln(w, "=== Actions ===")
		if len(result.Actions) == 0 {
			fmt.Fprintln(w, "  (no actions)")
			return
		}
		for _, a := range result.Actions {
			outcome := "ok"
			if !a.Success {
				outcome = "rejected: " + a.Reason
			}
			fmt.Fprintf(w, "  [%d] tick %d %s (%s)\n", a.Seq, a.Tick, a.Action, outcome)
		}
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== Timeline ===")
	if len(result.Timeline) == 0 {
		fmt.Fprintln(w, "  (no events)")
	}
	for _, ev := range result.Timeline {
		fmt.Fprintf(w, "  [%d] tick %d %s\n", ev.Seq, ev.Tick, ev.Kind)
		if verbose {
			fmt.Fprintf(w, "       %s\n", ev.Payload)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Stats ===")
	fmt.Fprintf(w, "  Total Events: %d\n", result.Stats.TotalEvents)
	if result.Stats.TotalEvents > 0 {
		fmt.Fprintf(w, "  Ticks:        %d-%d\n", result.Stats.FirstTick, result.Stats.LastTick)
	}
}
