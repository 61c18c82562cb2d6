package engine

import (
	"sync"

	"github.com/google/uuid"
)

// UUIDv7Generator mints time-sortable UUIDv7 ids for messages, orders and
// timers.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// NewID returns a new UUIDv7 as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// SeededGenerator mints UUIDs from the simulation RNG, so a seeded run
// produces the same ids every time.
type SeededGenerator struct {
	mu   sync.Mutex
	next func() float64
}

// NewSeededGenerator returns a generator drawing bytes from next.
func NewSeededGenerator(next func() float64) *SeededGenerator {
	return &SeededGenerator{next: next}
}

// NewID returns a version 4 UUID built from 16 RNG draws.
func (g *SeededGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	var b uuid.UUID
	for i := range b {
		b[i] = byte(g.next() * 256)
	}
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80
	return b.String()
}

// FixedGenerator returns predetermined ids for testing.
//
// Thread-safety: FixedGenerator is safe for concurrent use via internal mutex.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator creates a generator that returns ids in order.
//
// Example:
//
//	gen := NewFixedGenerator("msg-1", "order-1")
//	gen.NewID() // "msg-1"
//	gen.NewID() // "order-1"
//	gen.NewID() // panic: all ids exhausted
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// NewID returns the next predetermined id.
//
// Panics if all ids have been consumed, to catch a test that mints more ids
// than it declared.
func (g *FixedGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("FixedGenerator: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
