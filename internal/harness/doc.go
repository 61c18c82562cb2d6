// Package harness runs deterministic simulation scenarios against the engine.
//
// A scenario seeds the world, publishes requests, runs ticks and then checks
// the journaled event trace and the final world state.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: read_then_archive
//	description: "A read message can be archived; a deleted one cannot be read"
//	seed: 42
//	config:
//	  clock: { start_minute: 540 }
//	setup:
//	  player: { energy: 50 }
//	  messages:
//	    - id: m1
//	      type: Inquiry
//	      possible_actions: [read, archive]
//	steps:
//	  - publish: MessageActionRequested
//	    event: { message_id: m1, action: read, source: test }
//	    ticks: 1
//	assertions:
//	  - type: event_count
//	    kind: TaskFinished
//	    count: 1
//	  - type: message_state
//	    id: m1
//	    expect: { read: true }
//
// A step publishes its event first, then runs its ticks. Only request kinds
// may be published; everything else is engine output.
//
// # Assertion Types
//
//   - event_contains: an event of kind whose payload matches where
//   - event_order: the kinds appear in this relative order
//   - event_count: exactly count events of kind match where
//   - message_state: fields of one message, plus derived read, deleted, spam
//   - player_state: fields of the player (dotted paths, e.g. stats.xp)
//   - order_state: fields of one sales order
//   - payment_state: fields of one payment
//   - clock_state: fields of the clock, plus multiplier
//
// # Deterministic Testing
//
// Every scenario runs with:
//   - scripted or seeded RNG (scenario.rng, else scenario.seed)
//   - scripted or sequential ids (scenario.ids, else "id-N")
//   - a fixed wall clock
//   - an in-memory SQLite journal, isolated per run
//
// This ensures identical traces across runs for golden file comparison.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/read_then_archive.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, e := range result.Errors {
//	        fmt.Println(e)
//	    }
//	}
package harness
