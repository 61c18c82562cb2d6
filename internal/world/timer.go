package world

import (
	"cmp"
	"maps"
	"slices"
)

// Trigger is the opaque payload a timer fires with.
type Trigger struct {
	Kind string            `json:"kind" yaml:"kind"`
	Data map[string]string `json:"data,omitempty" yaml:"data"`
}

// Repeat configures a repeating timer. MaxRepeats <= 0 repeats forever.
type Repeat struct {
	IntervalMs    int64 `json:"interval_ms" yaml:"interval_ms"`
	MaxRepeats    int   `json:"max_repeats" yaml:"max_repeats"`
	CurrentRepeat int   `json:"current_repeat" yaml:"current_repeat"`
}

// Timer is a delayed, optionally repeating trigger.
type Timer struct {
	ID        string  `json:"id" yaml:"id"`
	ExpiresAt int64   `json:"expires_at" yaml:"expires_at"`
	Trigger   Trigger `json:"trigger" yaml:"trigger"`
	Repeat    *Repeat `json:"repeat,omitempty" yaml:"repeat"`
	Source    string  `json:"source,omitempty" yaml:"source"`
}

// Clone returns a deep copy.
func (t Timer) Clone() Timer {
	c := t
	c.Trigger.Data = maps.Clone(t.Trigger.Data)
	if t.Repeat != nil {
		r := *t.Repeat
		c.Repeat = &r
	}
	return c
}

// TimerStore keys timers by id.
type TimerStore struct {
	timers map[string]*Timer
}

// NewTimerStore returns an empty store.
func NewTimerStore() *TimerStore {
	return &TimerStore{timers: make(map[string]*Timer)}
}

// Put stores t, overwriting any timer with the same id.
func (s *TimerStore) Put(t Timer) {
	c := t.Clone()
	s.timers[t.ID] = &c
}

// Get returns the timer with id, or nil.
func (s *TimerStore) Get(id string) *Timer {
	return s.timers[id]
}

// Remove deletes the timer with id. Absent ids are a no-op.
func (s *TimerStore) Remove(id string) bool {
	if _, ok := s.timers[id]; !ok {
		return false
	}
	delete(s.timers, id)
	return true
}

// Len returns the number of armed timers.
func (s *TimerStore) Len() int { return len(s.timers) }

// Due returns the timers with ExpiresAt <= now ordered by (ExpiresAt, ID).
func (s *TimerStore) Due(now int64) []*Timer {
	var due []*Timer
	for _, t := range s.timers {
		if t.ExpiresAt <= now {
			due = append(due, t)
		}
	}
	sortTimers(due)
	return due
}

// All returns every timer ordered by (ExpiresAt, ID).
func (s *TimerStore) All() []*Timer {
	all := slices.Collect(maps.Values(s.timers))
	sortTimers(all)
	return all
}

func sortTimers(ts []*Timer) {
	slices.SortFunc(ts, func(a, b *Timer) int {
		if c := cmp.Compare(a.ExpiresAt, b.ExpiresAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
