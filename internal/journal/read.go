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

// Filter narrows ReadEvents. Zero values match everything.
type Filter struct {
	Kinds []event.Kind

	// FromTick and ToTick bound the tick range, inclusive. Zero ToTick is
	// unbounded.
	FromTick uint64
	ToTick   uint64

	Limit int
}

// Runs returns every run, oldest first.
func (j *Journal) Runs(ctx context.Context) ([]Run, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, label, seed, started_at, config
		FROM runs
		ORDER BY started_at ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var (
			r       Run
			seed    int64
			started string
			config  string
		)
		if err := rows.Scan(&r.ID, &r.Label, &seed, &started, &config); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Seed = uint64(seed)
		r.Config = json.RawMessage(config)
		if r.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("run %s: started_at: %w", r.ID, err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// LatestRun returns the id of the most recently started run.
// Returns sql.ErrNoRows if the journal is empty.
func (j *Journal) LatestRun(ctx context.Context) (string, error) {
	var id string
	err := j.db.QueryRowContext(ctx, `
		SELECT id FROM runs ORDER BY started_at DESC, id COLLATE BINARY DESC LIMIT 1
	`).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("latest run: %w", err)
	}
	return id, nil
}

// ReadEvents returns the run's events matching f, ordered by seq.
// Returns an empty slice (not nil) if nothing matches.
func (j *Journal) ReadEvents(ctx context.Context, runID string, f Filter) ([]Record, error) {
	var (
		where = []string{"run_id = ?"}
		args  = []any{runID}
	)
	if len(f.Kinds) > 0 {
		marks := make([]string, len(f.Kinds))
		for i, k := range f.Kinds {
			marks[i] = "?"
			args = append(args, string(k))
		}
		where = append(where, "kind IN ("+strings.Join(marks, ", ")+")")
	}
	if f.FromTick > 0 {
		where = append(where, "tick >= ?")
		args = append(args, int64(f.FromTick))
	}
	if f.ToTick > 0 {
		where = append(where, "tick <= ?")
		args = append(args, int64(f.ToTick))
	}

	query := `
		SELECT run_id, seq, tick, sim_now_ms, kind, payload, hash
		FROM events
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY seq ASC`
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return records, nil
}

func scanRecord(rows *sql.Rows) (Record, error) {
	var (
		r             Record
		seq, tick     int64
		kind, payload string
	)
	if err := rows.Scan(&r.RunID, &seq, &tick, &r.SimNowMs, &kind, &payload, &r.Hash); err != nil {
		return Record{}, fmt.Errorf("scan event: %w", err)
	}
	r.Seq = uint64(seq)
	r.Tick = uint64(tick)
	r.Kind = event.Kind(kind)
	r.Payload = json.RawMessage(payload)
	return r, nil
}

// ReadActions returns the run's action outcomes, ordered by seq.
// An empty messageID matches every message.
func (j *Journal) ReadActions(ctx context.Context, runID, messageID string) ([]ActionRecord, error) {
	query := `
		SELECT run_id, seq, tick, message_id, action, source, success, reason
		FROM actions
		WHERE run_id = ?`
	args := []any{runID}
	if messageID != "" {
		query += " AND message_id = ?"
		args = append(args, messageID)
	}
	query += " ORDER BY seq ASC"

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query actions: %w", err)
	}
	defer rows.Close()

	actions := []ActionRecord{}
	for rows.Next() {
		var (
			a         ActionRecord
			seq, tick int64
			action    string
		)
		if err := rows.Scan(&a.RunID, &seq, &tick, &a.MessageID, &action, &a.Source, &a.Success, &a.Reason); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		a.Seq = uint64(seq)
		a.Tick = uint64(tick)
		a.Action = world.Action(action)
		actions = append(actions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate actions: %w", err)
	}
	return actions, nil
}

// Verify recomputes the hash of every event in the run and returns the seqs
// whose stored hash does not match.
func (j *Journal) Verify(ctx context.Context, runID string) ([]uint64, error) {
	records, err := j.ReadEvents(ctx, runID, Filter{})
	if err != nil {
		return nil, err
	}
	var bad []uint64
	for _, r := range records {
		canonical, err := MarshalCanonical(r.Payload)
		if err != nil {
			bad = append(bad, r.Seq)
			continue
		}
		want, err := EventHash(r.RunID, r.Seq, r.Tick, r.SimNowMs, r.Kind, canonical)
		if err != nil || want != r.Hash {
			bad = append(bad, r.Seq)
		}
	}
	return bad, nil
}
