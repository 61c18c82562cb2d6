package harness

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/roach88/inboxsim/internal/world"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context, may be nil
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		buf.WriteString(FormatTrace(e.Trace))
	}
	return buf.String()
}

// assertEventContains checks that some event of the kind matches where.
func assertEventContains(trace []TraceEvent, a Assertion) error {
	if len(matching(trace, a)) > 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertEventContains,
		Expected: fmt.Sprintf("%s %s", a.Kind, formatWhere(a.Where)),
		Actual:   "no matching event found",
		Trace:    trace,
	}
}

// assertEventOrder checks that the kinds appear in the given relative order.
// Other events may be interleaved.
func assertEventOrder(trace []TraceEvent, a Assertion) error {
	next := 0
	for _, ev := range trace {
		if next < len(a.Kinds) && ev.Kind == a.Kinds[next] {
			next++
		}
	}
	if next == len(a.Kinds) {
		return nil
	}
	return &AssertionError{
		Type:     AssertEventOrder,
		Expected: fmt.Sprintf("%v in order", a.Kinds),
		Actual:   fmt.Sprintf("sequence broke at %s (position %d)", a.Kinds[next], next),
		Trace:    trace,
	}
}

// assertEventCount checks that exactly Count events of the kind match where.
func assertEventCount(trace []TraceEvent, a Assertion) error {
	n := len(matching(trace, a))
	if n == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertEventCount,
		Expected: fmt.Sprintf("%d × %s %s", a.Count, a.Kind, formatWhere(a.Where)),
		Actual:   fmt.Sprintf("%d matching events", n),
		Trace:    trace,
	}
}

func matching(trace []TraceEvent, a Assertion) []TraceEvent {
	var out []TraceEvent
	for _, ev := range trace {
		if ev.Kind == a.Kind && matchFields(ev.Payload, a.Where) {
			out = append(out, ev)
		}
	}
	return out
}

// assertState checks expected fields against one entity of the final world.
func assertState(snap world.Snapshot, a Assertion) error {
	fields, err := stateFields(snap, a)
	if err != nil {
		return &AssertionError{Type: a.Type, Expected: formatWhere(a.Expect), Actual: err.Error()}
	}
	for _, key := range sortedKeys(a.Expect) {
		want := a.Expect[key]
		got, ok := lookup(fields, key)
		if !ok || !valuesEqual(got, want) {
			actual := "missing"
			if ok {
				actual = fmt.Sprintf("%v", got)
			}
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%s%s = %v", subject(a), key, want),
				Actual:   actual,
			}
		}
	}
	return nil
}

func subject(a Assertion) string {
	if a.ID == "" {
		return ""
	}
	return a.ID + "."
}

// stateFields flattens the entity an assertion targets into JSON-shaped
// fields, plus derived ones.
func stateFields(snap world.Snapshot, a Assertion) (map[string]any, error) {
	switch a.Type {
	case AssertMessageState:
		for _, m := range snap.Messages {
			if m.ID != a.ID {
				continue
			}
			fields, err := toFields(m)
			if err != nil {
				return nil, err
			}
			fields["exists"] = true
			fields["read"] = m.IsRead()
			fields["deleted"] = m.IsDeleted()
			fields["spam"] = m.SpamAt != nil
			return fields, nil
		}
		if exists, ok := a.Expect["exists"]; ok && exists == false {
			return map[string]any{"exists": false}, nil
		}
		return nil, fmt.Errorf("message %s not found", a.ID)

	case AssertOrderState:
		for _, o := range snap.Orders {
			if o.ID == a.ID {
				fields, err := toFields(o)
				if err == nil {
					fields["total"] = o.Total().String()
				}
				return fields, err
			}
		}
		return nil, fmt.Errorf("order %s not found", a.ID)

	case AssertPaymentState:
		for _, p := range snap.Payments {
			if p.ID == a.ID {
				return toFields(p)
			}
		}
		return nil, fmt.Errorf("payment %s not found", a.ID)

	case AssertPlayerState:
		return toFields(snap.Player)

	case AssertClockState:
		fields, err := toFields(snap.Clock)
		if err == nil {
			fields["multiplier"] = snap.Multiplier
		}
		return fields, err
	}
	return nil, fmt.Errorf("not a state assertion: %s", a.Type)
}

// toFields round-trips v through JSON so field names match the wire names.
func toFields(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// lookup resolves a dotted path like "stats.xp".
func lookup(fields map[string]any, path string) (any, bool) {
	var cur any = fields
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[part]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// matchFields checks if actual contains all expected fields (subset match).
// Extra keys in actual are ignored.
func matchFields(actual map[string]any, expected map[string]any) bool {
	for key, want := range expected {
		got, ok := lookup(actual, key)
		if !ok || !valuesEqual(got, want) {
			return false
		}
	}
	return true
}

// valuesEqual compares a JSON-decoded actual value with a YAML-decoded
// expected one. Numbers compare by value whatever their Go type.
func valuesEqual(actual, expected any) bool {
	if actual == nil || expected == nil {
		return actual == nil && expected == nil
	}
	if a, ok := toFloat(actual); ok {
		e, ok := toFloat(expected)
		return ok && a == e
	}
	switch e := expected.(type) {
	case []any:
		a, ok := actual.([]any)
		if !ok || len(a) != len(e) {
			return false
		}
		for i := range e {
			if !valuesEqual(a[i], e[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		a, ok := actual.(map[string]any)
		return ok && matchFields(a, e)
	}
	return reflect.DeepEqual(actual, expected)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func formatWhere(where map[string]any) string {
	if len(where) == 0 {
		return "{}"
	}
	parts := make([]string, 0, len(where))
	for _, k := range sortedKeys(where) {
		parts = append(parts, fmt.Sprintf("%s=%v", k, where[k]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, a := range assertions {
		var err error

		switch a.Type {
		case AssertEventContains:
			err = assertEventContains(result.Trace, a)
		case AssertEventOrder:
			err = assertEventOrder(result.Trace, a)
		case AssertEventCount:
			err = assertEventCount(result.Trace, a)
		case AssertMessageState, AssertOrderState, AssertPaymentState,
			AssertPlayerState, AssertClockState:
			err = assertState(result.Snapshot, a)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, a.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
