// Package inbox implements the inbox action state machine.
//
// Every player action goes through validate, then mutate, then notify:
//
//  1. Validate is the guard. It reads the world and either approves the
//     action with its resolved context or returns a Rejection. It never
//     writes.
//  2. Transition is the pure state machine. Given a state, a command and a
//     read-only Env it returns the next state and a list of Effects.
//  3. Apply replays those effects against the world and the bus.
//
// CRITICAL: a rejected action has no effect besides the rejection event and
// the LastAction audit record.
//
// States: idle accepts actions, locked rejects all of them without running
// the guard, processing is reserved. Reset is only valid from idle.
package inbox
