// Package monster defines the monster record tracked by the portal and the
// validation that turns an untrusted snapshot from the game client into one.
//
// A Record carries identity (id, name), vitals (hp, maxHp, isDead), combat
// stats, placement (depth, position), and lifecycle timestamps. Validation
// is a plain function over a map payload: no reflection, no schema
// annotations. Every required field must be present and well-typed or the
// snapshot is rejected outright with a ValidationError naming each
// offending field.
//
// Timestamps are optional on the wire and represented as *int64 so the
// reconciler can tell "never set" apart from "set to epoch".
package monster
