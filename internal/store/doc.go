// Package store persists field snapshots in SQLite.
//
// A snapshot records every instance field of one object at one point in a
// logical timeline:
//   - id: SHA-256 content hash of the canonical snapshot (ir.SnapshotID)
//   - batch: token shared by all snapshots captured in one call
//   - seq: logical clock value, never wall time
//   - fields: canonical JSON object of field name to value
//
// Reads are ordered by seq ASC, id ASC COLLATE BINARY so listings are
// identical across runs.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
