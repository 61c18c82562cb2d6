package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/inboxsim/internal/journal"
)

// VerifyOptions holds flags for the verify command.
type VerifyOptions struct {
	*RootOptions
	Database string
	RunID    string
}

// VerifyResult is the outcome of a journal integrity check.
type VerifyResult struct {
	RunID    string   `json:"run_id"`
	Events   int      `json:"events"`
	Valid    bool     `json:"valid"`
	Mismatch []uint64 `json:"mismatch,omitempty"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check a journaled run against its content hashes",
		Long: `Recompute the hash of every journaled event of a run and compare it
with the stored one. A mismatch means the row was edited after it was written.

Exit codes:
  0 - Every event matches
  1 - One or more events do not match
  2 - Command error (journal missing, no runs, etc.)

Examples:
  inboxsim verify --db ./sim.db
  inboxsim verify --db ./sim.db --run 0192f0c1-... --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run id (default: the latest run)")

	return cmd
}

func runVerify(opts *VerifyOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	f := newFormatter(opts.RootOptions, cmd)

	j, runID, err := openRun(ctx, opts.Database, opts.RunID)
	if err != nil {
		return err
	}
	defer j.Close()

	records, err := j.ReadEvents(ctx, runID, journal.Filter{})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read events", err)
	}
	bad, err := j.Verify(ctx, runID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to verify run", err)
	}

	result := VerifyResult{RunID: runID, Events: len(records), Valid: len(bad) == 0, Mismatch: bad}
	if f.IsJSON() {
		if err := f.Success(result); err != nil {
			return err
		}
	} else if result.Valid {
		f.Textf("✓ run %s: %d events verified\n", runID, result.Events)
	} else {
		f.Textf("✗ run %s: %d of %d events do not match\n", runID, len(bad), result.Events)
		for _, seq := range bad {
			f.Textf("  seq %d\n", seq)
		}
	}

	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("run %s failed verification", runID))
	}
	return nil
}
