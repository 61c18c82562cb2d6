package event

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

// Event is implemented by every payload published on the bus.
type Event interface {
	Kind() Kind
}

// Handler receives events of the kind it subscribed to.
type Handler func(Event)

// Tap receives every published event with its publish sequence.
type Tap func(Envelope)

// Envelope is an event stamped with the bus publish sequence.
type Envelope struct {
	Seq   uint64
	Event Event
}

// Subscription identifies a registration for Unsubscribe.
type Subscription struct {
	kind Kind
	id   uint64
	tap  bool
}

type subscriber struct {
	id      uint64
	handler Handler
}

type tapSubscriber struct {
	id  uint64
	tap Tap
}

// Bus is a typed publish/subscribe channel keyed by event kind.
//
// Registration is safe from any goroutine. Publish is normally called from
// the engine's tick goroutine; the engine serializes external publishers.
type Bus struct {
	mu       sync.Mutex
	handlers map[Kind][]subscriber
	taps     []tapSubscriber
	nextID   uint64
	seq      uint64
	logger   *slog.Logger
}

// NewBus creates an empty bus. A nil logger uses slog.Default().
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		handlers: make(map[Kind][]subscriber),
		logger:   logger,
	}
}

// Subscribe registers handler for events of kind.
// Handlers of the same kind fire in subscription order.
func (b *Bus) Subscribe(kind Kind, handler Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.handlers[kind] = append(b.handlers[kind], subscriber{id: b.nextID, handler: handler})
	return Subscription{kind: kind, id: b.nextID}
}

// SubscribeAll registers a tap that sees every event.
// Taps run before kind handlers.
func (b *Bus) SubscribeAll(tap Tap) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.taps = append(b.taps, tapSubscriber{id: b.nextID, tap: tap})
	return Subscription{id: b.nextID, tap: true}
}

// Unsubscribe removes a registration. Unknown subscriptions are a no-op.
func (b *Bus) Unsubscribe(sub Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if sub.tap {
		b.taps = slices.DeleteFunc(b.taps, func(t tapSubscriber) bool { return t.id == sub.id })
		return
	}
	subs := slices.DeleteFunc(b.handlers[sub.kind], func(s subscriber) bool { return s.id == sub.id })
	if len(subs) == 0 {
		delete(b.handlers, sub.kind)
		return
	}
	b.handlers[sub.kind] = subs
}

// Publish delivers ev to every tap and then to every handler subscribed to
// ev.Kind(), before returning. Returns the publish sequence assigned to ev.
//
// A panicking handler does not abort delivery to the others.
func (b *Bus) Publish(ev Event) uint64 {
	b.mu.Lock()
	b.seq++
	seq := b.seq
	taps := slices.Clone(b.taps)
	subs := slices.Clone(b.handlers[ev.Kind()])
	b.mu.Unlock()

	env := Envelope{Seq: seq, Event: ev}
	for _, t := range taps {
		b.deliver(ev, func() { t.tap(env) })
	}
	for _, s := range subs {
		b.deliver(ev, func() { s.handler(ev) })
	}
	return seq
}

// Seq returns the sequence of the most recently published event.
func (b *Bus) Seq() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.seq
}

// HandlerCount returns the number of handlers subscribed to kind.
func (b *Bus) HandlerCount(kind Kind) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers[kind])
}

func (b *Bus) deliver(ev Event, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				"kind", ev.Kind(),
				"panic", fmt.Sprint(r),
			)
		}
	}()
	fn()
}
