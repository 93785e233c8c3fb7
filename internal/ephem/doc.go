// Package ephem provides serialized, state-isolated access to an external
// ephemeris engine.
//
// The underlying engine (Swiss Ephemeris or compatible) keeps process-global
// mutable configuration: sidereal mode, topocentric observer, tidal
// acceleration model. This package reframes that global state as a single
// explicit EngineState value that is mutated in exactly one place: a
// stack-scoped Scope acquired from the Engine. Every Scope saves the state it
// found, applies its request, and restores the saved state exactly on
// release, on every exit path.
//
// All provider calls are serialized behind a process-wide lock. A caller
// either acquires a Scope (holding the lock for its lifetime) or calls the
// gateway methods directly, in which case a default scope is opened and
// closed around the single call. No two goroutines ever observe interleaved
// engine state.
package ephem
