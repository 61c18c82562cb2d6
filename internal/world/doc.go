// Package world holds the shared simulation state: the clock, the time
// scale, the inbox message store, sales orders, payments, the player and
// timers.
//
// # Ownership
//
// A World is exclusively owned by the engine. Systems receive it by
// reference once per tick and mutate it in place; nothing else writes to it.
// External collaborators read snapshots and publish request events.
//
// # Tombstones
//
// Messages are never physically removed on normal deletion. Deleting,
// archiving and accepting set DeletedAt; reading sets ReadAt; marking spam
// sets SpamAt and IsSpam. Only an explicit hard delete or an inbox reset
// removes records.
//
// # Time
//
// All timestamps stored on records are simulated milliseconds (Clock.SimNowMs
// at the tick the change happened). Message.Timestamp is the only wall-clock
// field and is informational.
package world
