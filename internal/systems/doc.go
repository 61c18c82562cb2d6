// Package systems holds the tick pipeline's step functions.
//
// Each system drains its own event queues, reads and writes the World, and
// publishes events for systems later in the pipeline (or the next tick).
// The order they run in is declared by engine.DefaultPipeline:
//
//	tick, timescale, daycycle, inbox-bridge, inbox, orders, payments,
//	timers, energy, sleep, roller, tock
//
// Systems that depend on sim time check TickContext.Paused first and skip
// their time-based logic while still draining their queues.
package systems
