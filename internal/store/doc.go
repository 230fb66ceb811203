// Package store provides the SQLite-backed edit journal.
//
// Every edit request a session receives (manual edge ops and position pins)
// is appended as one row, whether or not it applied:
//   - Sessions: one row per opened project session (UUIDv7 id)
//   - Edits: the op payload as canonical JSON, the applied and saved
//     outcomes, and the fingerprint of the graph after the rebuild
//
// Ordering uses a logical sequence number, never wall time. The clock
// resumes from the highest stored seq so a reopened journal keeps a single
// increasing sequence across sessions. Queries order by seq ASC.
//
// The journal records outcomes. It is never read back into the graph, so
// a missing or disabled journal changes nothing about what a session builds.
// A row with applied=1 and saved=0 marks an edit that lives only in memory
// because the metadata document could not be written.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
