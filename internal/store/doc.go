// Package store provides SQLite-backed durable storage for session event
// logs.
//
// The store is an append-only log of recorded events, one row per event,
// grouped by coaching point. Two properties the rest of the system depends
// on:
//
//   - Idempotent appends: event IDs are unique; re-sending an event after a
//     failed acknowledgement is a no-op (ON CONFLICT(id) DO NOTHING).
//   - Deterministic reads: ListEvents orders by (timestamp_ms, seq) where
//     seq is insertion order, so events recorded in the same millisecond
//     replay in the order they occurred.
//
// Events are never updated. The only mutation besides append is deleting a
// coaching point outright, which removes its whole log.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//
// The postgres subpackage implements the same EventStore contract for
// shared deployments.
package store
