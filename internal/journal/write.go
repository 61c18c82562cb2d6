package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/inboxsim/internal/event"
	"github.com/roach88/inboxsim/internal/world"
)

// Run describes one engine run.
type Run struct {
	ID        string
	Label     string
	Seed      uint64
	StartedAt time.Time

	// Config is the run's canonical configuration.
	Config json.RawMessage
}

// Record is one journaled event.
type Record struct {
	RunID    string
	Seq      uint64
	Tick     uint64
	SimNowMs int64
	Kind     event.Kind
	Payload  json.RawMessage
	Hash     string
}

// ActionRecord is the journaled outcome of one inbox action attempt.
type ActionRecord struct {
	RunID     string
	Seq       uint64
	Tick      uint64
	MessageID string
	Action    world.Action
	Source    string
	Success   bool
	Reason    string
}

// BeginRun inserts run. cfg is stored as canonical JSON.
// Uses ON CONFLICT(id) DO NOTHING for idempotency.
func (j *Journal) BeginRun(ctx context.Context, run Run, cfg any) error {
	config, err := MarshalCanonical(cfg)
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	_, err = j.db.ExecContext(ctx, `
		INSERT INTO runs (id, label, seed, started_at, config)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Label,
		int64(run.Seed),
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		string(config),
	)
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

// NewRecord builds the journal row for env.
func NewRecord(runID string, env event.Envelope, tick uint64, simNowMs int64) (Record, error) {
	kind := env.Event.Kind()
	payload, err := MarshalCanonical(env.Event)
	if err != nil {
		return Record{}, fmt.Errorf("record %s seq %d: %w", kind, env.Seq, err)
	}
	hash, err := EventHash(runID, env.Seq, tick, simNowMs, kind, payload)
	if err != nil {
		return Record{}, err
	}
	return Record{
		RunID:    runID,
		Seq:      env.Seq,
		Tick:     tick,
		SimNowMs: simNowMs,
		Kind:     kind,
		Payload:  payload,
		Hash:     hash,
	}, nil
}

// actionFromEvent extracts an action outcome from ev, if it is one.
func actionFromEvent(rec Record, ev event.Event) (ActionRecord, bool) {
	out := ActionRecord{RunID: rec.RunID, Seq: rec.Seq, Tick: rec.Tick}
	switch e := ev.(type) {
	case event.MessageActionRejected:
		out.MessageID = e.MessageID
		out.Action = e.Action
		out.Reason = e.Reason
		return out, true
	case event.TaskFinished:
		action, ok := strings.CutPrefix(e.TaskKind, "inbox.")
		if !ok {
			return ActionRecord{}, false
		}
		out.MessageID = e.Refs["message_id"]
		out.Action = world.Action(action)
		out.Source = e.Source
		out.Success = true
		return out, true
	}
	return ActionRecord{}, false
}

// Append writes records and the action outcomes among events in one
// transaction. events[i] must be the event records[i] was built from.
// Uses ON CONFLICT DO NOTHING for idempotency - rewriting a batch is a no-op.
func (j *Journal) Append(ctx context.Context, records []Record, events []event.Event) error {
	if len(records) != len(events) {
		return fmt.Errorf("append: %d records for %d events", len(records), len(events))
	}
	if len(records) == 0 {
		return nil
	}

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("append: %w", err)
	}
	defer tx.Rollback()

	if err := insertRecords(ctx, tx, records, events); err != nil {
		return fmt.Errorf("append: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("append: commit: %w", err)
	}
	return nil
}

func insertRecords(ctx context.Context, tx *sql.Tx, records []Record, events []event.Event) error {
	evStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO events (run_id, seq, tick, sim_now_ms, kind, payload, hash)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`)
	if err != nil {
		return err
	}
	defer evStmt.Close()

	actStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO actions (run_id, seq, tick, message_id, action, source, success, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`)
	if err != nil {
		return err
	}
	defer actStmt.Close()

	for i, r := range records {
		if _, err := evStmt.ExecContext(ctx,
			r.RunID, int64(r.Seq), int64(r.Tick), r.SimNowMs, string(r.Kind), string(r.Payload), r.Hash,
		); err != nil {
			return fmt.Errorf("event seq %d: %w", r.Seq, err)
		}

		a, ok := actionFromEvent(r, events[i])
		if !ok {
			continue
		}
		if _, err := actStmt.ExecContext(ctx,
			a.RunID, int64(a.Seq), int64(a.Tick), a.MessageID, string(a.Action), a.Source, a.Success, a.Reason,
		); err != nil {
			return fmt.Errorf("action seq %d: %w", a.Seq, err)
		}
	}
	return nil
}
