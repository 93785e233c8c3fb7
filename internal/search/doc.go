// Package search locates zero-crossings, threshold-crossings, and extrema of
// ephemeris-derived scalar functions over bounded time windows.
//
// The engine treats a scalar.Func as a continuous signal: it samples the
// window at a coarse step, scans adjacent samples for brackets (sign changes
// of f-target, wraparound-aware for angular signals), and refines each
// bracket by bisection to the configured time tolerance. Refinement only ever
// runs inside a maintained bracket, so it cannot diverge.
//
// Search cost is bounded up front: a window wider than the max-span guardrail
// is rejected before any sampling happens. Fast oscillations that pack more
// than one crossing into a step are resolved by shrinking the step
// adaptively; at the minimum step floor the engine reports the first crossing
// and flags the ambiguity in metadata instead of guessing.
package search
