// Package store provides SQLite-backed persistence for host scene state and
// the sync-run journal.
//
// The store holds:
//   - Snapshots: content-addressed scene graph encodings
//   - Heads: the current snapshot of each asset
//   - Sync Runs: one record per sync pass, with the snapshots before and
//     after it
//
// Undo and redo across processes move an asset's head between a run's pre
// and post snapshots; the in-process command buffers are not persisted.
//
// # Invariants
//
// Logical time:
//   - All ordering uses seq INTEGER from the clock table, never timestamps
//
// Deterministic query results:
//   - Run listings use ORDER BY seq ASC, id ASC COLLATE BINARY
//   - Reads return empty slices, never nil
//
// Linear history:
//   - Committing a run discards the asset's undone runs, so redo only ever
//     replays the most recent undo chain
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Snapshot ids are computed with cook.HashWithDomain over the snapshot body.
package store
