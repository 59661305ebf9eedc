// Package store provides SQLite-backed persistence for conformance runs.
//
// Every run of the checker is recorded with:
//   - Runs: one row per invocation of the checker, with its resolved config
//   - Trace results: per-trace step counts, digest and pass/fail
//   - Findings: every divergence, content-addressed
//
// # Identity and Ordering
//
// Run ids are UUIDv7, so they sort by creation time, but ordering always
// uses the runs.seq logical counter, never timestamps.
//
// Finding ids are the canonical digest of the finding's content. Writing
// the same finding twice for a run is a no-op, so a sink that streams
// findings and a trace result that carries them can both write without
// duplicating rows.
//
// All queries that return lists are ordered deterministically:
// runs by seq, findings by trace, step and insertion order.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
