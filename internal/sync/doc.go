// Package sync provides the translation sync cycle.
//
// # Core Interfaces
//
//   - Manager: performs one refresh cycle (fetch, validate, mask, compare, store)
//
// # Coordinator Package
//
// The sync/coordinator subpackage schedules cycles on a fixed interval,
// persists the sync status around every cycle and stops at the first
// failed cycle. See internal/sync/coordinator for details.
//
// # Result Types
//
//   - Result: outcome of a successful cycle (changed flag, reason, hash, counts)
//   - Error: failed cycle, carrying the failing stage (fetch, validation, storage)
//
// # Change Detection
//
// The fetched document is masked with the configured tag filter and compared
// by deep equality, together with its tags, against the stored snapshot.
// A missing or unreadable snapshot is an empty baseline. Only a difference
// clears the store and writes the new snapshot; an unchanged cycle performs
// no write and logs nothing above debug level.
package sync
