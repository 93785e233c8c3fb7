package rules

import (
	"sort"

	"github.com/roach88/sidereal/internal/ephem"
	"github.com/roach88/sidereal/internal/scalar"
)

// Ptolemaic aspect names as used in rule files.
const (
	AspectConjunction = "conjunction"
	AspectSextile     = "sextile"
	AspectSquare      = "square"
	AspectTrine       = "trine"
	AspectOpposition  = "opposition"
)

// aspectAngles maps each aspect to its exact angle in degrees.
var aspectAngles = map[string]float64{
	AspectConjunction: 0,
	AspectSextile:     60,
	AspectSquare:      90,
	AspectTrine:       120,
	AspectOpposition:  180,
}

// defaultOrbs are the traditional maximum deviations per aspect.
var defaultOrbs = map[string]float64{
	AspectConjunction: 10,
	AspectSextile:     6,
	AspectSquare:      8,
	AspectTrine:       8,
	AspectOpposition:  10,
}

// KnownAspect reports whether name is a recognized aspect.
func KnownAspect(name string) bool {
	_, ok := aspectAngles[name]
	return ok
}

// Aspect is a detected angular relationship between two bodies. Orb is the
// deviation from the exact angle, always >= 0.
type Aspect struct {
	A     ephem.Body
	B     ephem.Body
	Name  string
	Angle float64
	Orb   float64
}

// ComputeAspects finds every Ptolemaic aspect within its default orb among
// the given positions. Pairs are emitted with A < B; output order is
// deterministic regardless of map iteration.
func ComputeAspects(positions map[ephem.Body]ephem.PositionSample) []Aspect {
	bodies := make([]ephem.Body, 0, len(positions))
	for b := range positions {
		bodies = append(bodies, b)
	}
	sort.Slice(bodies, func(i, j int) bool { return bodies[i] < bodies[j] })

	var out []Aspect
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			a, b := bodies[i], bodies[j]
			sep := scalar.ArcDistance(positions[a].Longitude, positions[b].Longitude)
			for _, name := range []string{AspectConjunction, AspectSextile, AspectSquare, AspectTrine, AspectOpposition} {
				orb := sep - aspectAngles[name]
				if orb < 0 {
					orb = -orb
				}
				if orb <= defaultOrbs[name] {
					out = append(out, Aspect{A: a, B: b, Name: name, Angle: aspectAngles[name], Orb: orb})
				}
			}
		}
	}
	return out
}
