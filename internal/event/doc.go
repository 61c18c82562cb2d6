// Package event is the simulation's event bus.
//
// Producers and consumers never hold references to each other. They share a
// Bus and a closed set of event kinds, each a plain struct tagged by Kind().
//
// # Delivery
//
// Publish delivers synchronously: every handler subscribed to the event's
// kind runs, in subscription order, before Publish returns. Ordering across
// different kinds is not guaranteed to subscribers. A handler that panics is
// recovered and logged; delivery to the remaining handlers continues.
//
// # Queues
//
// Systems do not react inside handlers. They own a Queue, which is a
// subscriber that buffers matching events, and drain it once per tick:
//
//	q := bus.Queue(event.KindSetTimeScale)
//	...
//	for _, ev := range q.Drain() {
//	    // handle
//	}
//
// An event published during a tick is seen in the same tick only by systems
// that drain later in the pipeline order; earlier systems see it next tick.
//
// # Taps
//
// SubscribeAll registers a tap that sees every event wrapped in an Envelope
// stamped with the bus's monotonic publish sequence. The journal and the
// scenario harness trace are taps.
package event
