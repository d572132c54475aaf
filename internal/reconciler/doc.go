// Package reconciler implements the monster lifecycle state machine that
// ties inbound snapshot batches to the in-memory collections and the
// cluster orchestration mirror.
//
// # State machine
//
// Each monster id moves through three states:
//
//	Unseen ──batch──▶ Active ──batch/death/admin──▶ Dead (terminal)
//
// Unseen -> Active assigns the spawn timestamp, bumps the created counter,
// creates the orchestration resource, and inserts the record into the
// all-time and active collections. Active -> Active refreshes field values
// locally and in the mirror. Active -> Dead assigns the death timestamp
// exactly once, bumps the death counter, records the lifespan, moves the
// record to the dead collection, and deletes the mirrored resource. There
// is no transition out of Dead: later snapshots for a dead id are ignored,
// and repeated death events are rejected with ErrAlreadyDead.
//
// # Consistency contract
//
// The local store and the orchestration mirror are eventually, not
// transactionally, consistent. Batch validation is atomic (one bad entry
// rejects the whole batch) but application is not: an orchestrator failure
// mid-batch leaves earlier entries applied locally, and a failed delete on
// a death leaves the local record dead while the mirror lags. Callers must
// treat the local store as the source of truth.
//
// # Concurrency
//
// One engine mutex serializes every mutating operation for its full
// duration, orchestrator round trips included; reset is therefore
// stop-the-world with respect to the collections it clears. Reads bypass
// the engine entirely and hit the state store's own lock.
package reconciler
