package event

import "sync"

// Queue buffers events of selected kinds until drained.
//
// A Queue is how a system consumes the bus: events pile up between its runs
// and the system drains them once per tick, in publish order.
type Queue struct {
	bus  *Bus
	subs []Subscription

	mu     sync.Mutex
	events []Event
}

// Queue creates a queue subscribed to kinds.
func (b *Bus) Queue(kinds ...Kind) *Queue {
	q := &Queue{bus: b, events: make([]Event, 0, 8)}
	for _, k := range kinds {
		q.subs = append(q.subs, b.Subscribe(k, q.push))
	}
	return q
}

func (q *Queue) push(ev Event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.events = append(q.events, ev)
}

// Drain returns the buffered events in publish order and empties the queue.
func (q *Queue) Drain() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.events) == 0 {
		return nil
	}
	out := q.events
	q.events = make([]Event, 0, cap(out))
	return out
}

// Len returns the number of buffered events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Close unsubscribes the queue and drops anything buffered.
func (q *Queue) Close() {
	for _, s := range q.subs {
		q.bus.Unsubscribe(s)
	}
	q.subs = nil
	q.mu.Lock()
	q.events = nil
	q.mu.Unlock()
}
