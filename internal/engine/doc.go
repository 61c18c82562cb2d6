// Package engine drives the simulation.
//
// The engine owns the World, the Bus and the declared Pipeline, and advances
// them one tick at a time.
//
// ARCHITECTURE:
//
// Single-Writer Tick Loop:
// Every tick runs the whole pipeline under one mutex. This ensures:
// - Systems never observe a half-applied tick
// - External requests (Publish) land between ticks, never inside one
// - Identical inputs produce identical event streams
//
// Tick Flow:
// 1. Step(realDeltaMs) bumps the tick counter and builds a TickContext
// 2. Each system's Run is called in pipeline order
// 3. Systems drain their queues, mutate the World and publish events
// 4. Events published in a tick are consumed by later systems in the same
// tick or by earlier systems on the next tick
//
// Run drives Step from a ticker at the configured frame interval. Tests and
// the harness call Step directly with fixed deltas.
//
// CRITICAL PATTERNS:
//
// Failure Isolation:
// A system that returns an error or panics is recovered, logged, wrapped in
// a SystemError and counted. The remaining systems still run. There is no
// rollback of what the failing system already applied.
//
// Deterministic Scheduling:
// Pipeline order is fixed at construction. All randomness comes from the
// injected RNG and all ids from the injected IDGenerator.
// NEVER read wall-clock time inside a system except for informational stamps.
package engine
