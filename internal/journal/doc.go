// Package journal provides a SQLite-backed append-only log of simulation runs.
//
// The journal records:
//   - Runs: one row per engine run, with its seed and canonical config
//   - Events: every envelope published on the bus, in publish order
//   - Actions: the outcome of every inbox action attempt
//
// # Critical Patterns
//
// Logical Ordering:
//   - All ordering uses the bus publish seq, NEVER timestamps
//   - All queries MUST include: ORDER BY seq ASC
//
// Content Hashes:
//   - Payloads are stored as canonical JSON (sorted keys, NFC strings)
//   - Each event row carries SHA-256(domain + 0x00 + canonical record)
//   - Verify recomputes hashes to detect edited rows
//
// Idempotent Writes:
//   - PRIMARY KEY(run_id, seq) with ON CONFLICT DO NOTHING
//   - Re-flushing a batch never duplicates rows
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package journal
