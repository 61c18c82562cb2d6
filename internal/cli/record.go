package cli

import (
	"context"
	"log/slog"
	"time"

	"github.com/roach88/inboxsim/internal/config"
	"github.com/roach88/inboxsim/internal/engine"
	"github.com/roach88/inboxsim/internal/journal"
)

// recording is an open journal with a recorder attached to one engine.
type recording struct {
	journal  *journal.Journal
	recorder *journal.Recorder
	runID    string
}

// startRecording opens the journal at path, begins a run and attaches a
// recorder to eng's bus.
func startRecording(ctx context.Context, path, runID, label string, startedAt time.Time,
	cfg *config.Config, eng *engine.Engine, logger *slog.Logger) (*recording, error) {
	j, err := journal.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	run := journal.Run{ID: runID, Label: label, Seed: cfg.Seed, StartedAt: startedAt}
	if err := j.BeginRun(ctx, run, cfg); err != nil {
		_ = j.Close()
		return nil, WrapExitError(ExitCommandError, "failed to begin run", err)
	}
	logger.Info("journal recording", "path", path, "run_id", runID)
	return &recording{
		journal:  j,
		recorder: j.Attach(eng.Bus(), runID, logger),
		runID:    runID,
	}, nil
}

// Close flushes the recorder and closes the journal. Returns the number of
// events written.
func (r *recording) Close() (int, error) {
	recErr := r.recorder.Close()
	written := r.recorder.Written()
	if err := r.journal.Close(); err != nil && recErr == nil {
		recErr = err
	}
	if recErr != nil {
		return written, WrapExitError(ExitFailure, "journal write failed", recErr)
	}
	return written, nil
}
