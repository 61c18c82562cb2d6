package journal

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/inboxsim/internal/event"
)

// Recorder is a bus tap that journals every published event.
//
// Records are buffered and written in one transaction when a Tock closes
// the tick, or on Flush. Events published between ticks carry the number of
// the most recent tick.
//
// A tap cannot return errors, so the first write failure is kept and
// reported by Err, Flush and Close. Recording continues after a failure.
type Recorder struct {
	journal *Journal
	runID   string
	bus     *event.Bus
	sub     event.Subscription
	logger  *slog.Logger

	mu       sync.Mutex
	tick     uint64
	simNowMs int64
	records  []Record
	events   []event.Event
	written  int
	err      error
}

// Attach subscribes a recorder for runID to bus. The run must already exist
// (BeginRun).
func (j *Journal) Attach(bus *event.Bus, runID string, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Recorder{
		journal: j,
		runID:   runID,
		bus:     bus,
		logger:  logger,
	}
	r.sub = bus.SubscribeAll(r.tap)
	return r
}

func (r *Recorder) tap(env event.Envelope) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch e := env.Event.(type) {
	case event.Tick:
		r.tick = e.Tick
	case event.SimTimeAdvanced:
		r.simNowMs = e.SimNowMs
	case event.Tock:
		r.simNowMs = e.SimNowMs
	}

	rec, err := NewRecord(r.runID, env, r.tick, r.simNowMs)
	if err != nil {
		r.fail(err)
		return
	}
	r.records = append(r.records, rec)
	r.events = append(r.events, env.Event)

	if env.Event.Kind() == event.KindTock {
		r.flushLocked()
	}
}

// Flush writes buffered records.
func (r *Recorder) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flushLocked()
	return r.err
}

func (r *Recorder) flushLocked() {
	if len(r.records) == 0 {
		return
	}
	if err := r.journal.Append(context.Background(), r.records, r.events); err != nil {
		r.fail(err)
	} else {
		r.written += len(r.records)
	}
	r.records = r.records[:0]
	r.events = r.events[:0]
}

func (r *Recorder) fail(err error) {
	r.logger.Error("journal write failed", "run_id", r.runID, "tick", r.tick, "error", err)
	if r.err == nil {
		r.err = err
	}
}

// Written returns the number of records written so far.
func (r *Recorder) Written() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.written
}

// Err returns the first write failure, if any.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Close detaches the recorder from the bus and flushes what is buffered.
func (r *Recorder) Close() error {
	r.bus.Unsubscribe(r.sub)
	if err := r.Flush(); err != nil {
		return fmt.Errorf("journal recorder: %w", err)
	}
	return nil
}
