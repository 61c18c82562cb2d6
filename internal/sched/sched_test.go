package sched

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/inboxsim/internal/event"
)

type namedSystem string

func (n namedSystem) Name() string         { return string(n) }
func (namedSystem) Init(*event.Bus) error  { return nil }
func (namedSystem) Run(*TickContext) error { return nil }

func TestPipeline_NamesAndValidate(t *testing.T) {
	p := Pipeline{namedSystem("a"), namedSystem("b")}
	assert.Equal(t, []string{"a", "b"}, p.Names())
	assert.NoError(t, p.Validate())

	p = append(p, namedSystem("a"))
	assert.Error(t, p.Validate())
}

func TestStorage_LazyInitAndReset(t *testing.T) {
	var s Storage[map[string]int]
	calls := 0
	newMap := func() map[string]int {
		calls++
		return map[string]int{}
	}

	(*s.Get(newMap))["x"] = 1
	assert.Equal(t, 1, (*s.Get(newMap))["x"])
	assert.Equal(t, 1, calls)

	s.Reset()
	assert.Empty(t, *s.Get(newMap))
	assert.Equal(t, 2, calls)
}
