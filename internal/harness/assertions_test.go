package harness

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/inboxsim/internal/event"
	"github.com/roach88/inboxsim/internal/world"
)

func sampleTrace() []TraceEvent {
	return []TraceEvent{
		{Seq: 1, Tick: 1, Kind: event.KindTick, Payload: map[string]any{"tick": 1.0}},
		{Seq: 2, Tick: 1, Kind: event.KindTaskFinished, Payload: map[string]any{
			"kind":    "inbox.read",
			"xp_gain": 6.0,
			"refs":    map[string]any{"message_id": "m1"},
			"tags":    []any{"inbox", "Inquiry"},
		}},
		{Seq: 3, Tick: 1, Kind: event.KindTock, Payload: map[string]any{"tick": 1.0}},
		{Seq: 4, Tick: 2, Kind: event.KindTick, Payload: map[string]any{"tick": 2.0}},
		{Seq: 5, Tick: 2, Kind: event.KindTock, Payload: map[string]any{"tick": 2.0}},
	}
}

func TestAssertEventContains(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertEventContains(trace, Assertion{Kind: event.KindTaskFinished}))
	assert.NoError(t, assertEventContains(trace, Assertion{
		Kind:  event.KindTaskFinished,
		Where: map[string]any{"xp_gain": 6, "refs.message_id": "m1"},
	}))
	assert.NoError(t, assertEventContains(trace, Assertion{
		Kind:  event.KindTaskFinished,
		Where: map[string]any{"tags": []any{"inbox", "Inquiry"}},
	}))

	err := assertEventContains(trace, Assertion{
		Kind:  event.KindTaskFinished,
		Where: map[string]any{"refs.message_id": "m2"},
	})
	var aerr *AssertionError
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, AssertEventContains, aerr.Type)
	assert.Contains(t, err.Error(), "refs.message_id=m2")
	assert.Contains(t, err.Error(), "2 1 TaskFinished")
}

func TestAssertEventOrder(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertEventOrder(trace, Assertion{Kinds: []event.Kind{event.KindTick, event.KindTock, event.KindTock}}))
	assert.NoError(t, assertEventOrder(trace, Assertion{Kinds: []event.Kind{event.KindTaskFinished, event.KindTick}}))

	err := assertEventOrder(trace, Assertion{Kinds: []event.Kind{event.KindTock, event.KindTaskFinished}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sequence broke at TaskFinished (position 1)")
}

func TestAssertEventCount(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertEventCount(trace, Assertion{Kind: event.KindTick, Count: 2}))
	assert.NoError(t, assertEventCount(trace, Assertion{Kind: event.KindTick, Where: map[string]any{"tick": 2}, Count: 1}))
	assert.NoError(t, assertEventCount(trace, Assertion{Kind: event.KindPauseChanged, Count: 0}))

	err := assertEventCount(trace, Assertion{Kind: event.KindTock, Count: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 matching events")
}

func TestAssertState(t *testing.T) {
	read := int64(100)
	snap := world.Snapshot{
		Clock:      world.NewClockAt(world.SimMsAt(2, 600)),
		Multiplier: 60,
		Player:     world.NewPlayer(),
		Messages: []world.Message{
			{ID: "m1", Type: world.MessageInquiry, ReadAt: &read},
		},
	}
	snap.Player.Stats.XP = 12

	tests := []struct {
		name string
		a    Assertion
		ok   bool
	}{
		{"clock", Assertion{Type: AssertClockState, Expect: map[string]any{"day_index": 2, "minute_of_day": 600, "phase": "work", "multiplier": 60}}, true},
		{"clock mismatch", Assertion{Type: AssertClockState, Expect: map[string]any{"phase": "night"}}, false},
		{"player dotted", Assertion{Type: AssertPlayerState, Expect: map[string]any{"stats.xp": 12, "status": "active"}}, true},
		{"player missing path", Assertion{Type: AssertPlayerState, Expect: map[string]any{"stats.gold": 1}}, false},
		{"message derived", Assertion{Type: AssertMessageState, ID: "m1", Expect: map[string]any{"read": true, "deleted": false, "exists": true}}, true},
		{"message absent", Assertion{Type: AssertMessageState, ID: "m2", Expect: map[string]any{"exists": false}}, true},
		{"message absent but expected", Assertion{Type: AssertMessageState, ID: "m2", Expect: map[string]any{"read": true}}, false},
		{"order absent", Assertion{Type: AssertOrderState, ID: "o1", Expect: map[string]any{"status": "new"}}, false},
		{"payment absent", Assertion{Type: AssertPaymentState, ID: "o1", Expect: map[string]any{"status": "new"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := assertState(snap, tt.a)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValuesEqual(t *testing.T) {
	tests := []struct {
		name     string
		actual   any
		expected any
		want     bool
	}{
		{"float vs int", 6.0, 6, true},
		{"json number vs int", json.Number("6"), 6, true},
		{"float vs float", 0.5, 0.5, true},
		{"number vs string", 6.0, "6", false},
		{"strings", "a", "a", true},
		{"bools", true, true, true},
		{"nil both", nil, nil, true},
		{"nil one", nil, "x", false},
		{"slices", []any{1.0, "b"}, []any{1, "b"}, true},
		{"slice length", []any{1.0}, []any{1, 2}, false},
		{"nested subset", map[string]any{"a": 1.0, "b": 2.0}, map[string]any{"a": 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, valuesEqual(tt.actual, tt.expected))
		})
	}
}

func TestEvaluateAssertions_UnknownType(t *testing.T) {
	errs := EvaluateAssertions(NewResult(), []Assertion{{Type: "final_state"}})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], `unknown assertion type "final_state"`)
}

func TestFormatTrace(t *testing.T) {
	assert.Equal(t,
		"1 1 Tick\n2 1 TaskFinished\n3 1 Tock\n4 2 Tick\n5 2 Tock\n",
		FormatTrace(sampleTrace()))
	assert.Empty(t, FormatTrace(nil))
}
