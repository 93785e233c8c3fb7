// Package rules implements declarative event rules: named combinations of
// chart conditions (aspects, dignities, combustion, speed, retrograde,
// longitude ranges) joined by AND/OR logic, evaluated against position
// snapshots over a time range.
//
// Every condition exposes a continuous margin function that is positive
// while the condition holds. The scanner uses these margins to refine a
// coarse false-to-true transition down to the actual instant the rule
// started matching, instead of reporting the sample grid time.
package rules
