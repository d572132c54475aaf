// Package state holds the portal's in-memory view of the game.
//
// Store keeps three keyed collections of monsters — active, all-time, and
// dead — plus the administrative-kill ledger, all behind one coarse
// RWMutex. The collections are intentionally ephemeral: the process is the
// single owner and nothing survives a restart. PodFeed is the small queue
// of monster pod names the cluster controller publishes and the game
// drains.
//
// Mutation decisions (what counts as new, dead, and so on) live in
// internal/reconciler; this package only guarantees that each mutation is
// applied atomically with respect to the membership contract documented on
// Store.
package state
