package ephem

import "fmt"

// Body identifies a solar-system object, lunar node, or apsis. Values match
// the Swiss Ephemeris body numbering so providers can pass them through
// unchanged.
type Body int

const (
	Sun     Body = 0
	Moon    Body = 1
	Mercury Body = 2
	Venus   Body = 3
	Mars    Body = 4
	Jupiter Body = 5
	Saturn  Body = 6
	Uranus  Body = 7
	Neptune Body = 8
	Pluto   Body = 9

	// MeanNode is the mean lunar ascending node (Rahu).
	MeanNode Body = 10
	// TrueNode is the osculating lunar ascending node.
	TrueNode Body = 11
	// MeanLilith is the mean lunar apogee (Black Moon Lilith).
	MeanLilith Body = 12
	// TrueLilith is the osculating lunar apogee.
	TrueLilith Body = 13

	Chiron Body = 15
	Ceres  Body = 17
	Pallas Body = 18
	Juno   Body = 19
	Vesta  Body = 20
)

var bodyNames = map[Body]string{
	Sun:        "Sun",
	Moon:       "Moon",
	Mercury:    "Mercury",
	Venus:      "Venus",
	Mars:       "Mars",
	Jupiter:    "Jupiter",
	Saturn:     "Saturn",
	Uranus:     "Uranus",
	Neptune:    "Neptune",
	Pluto:      "Pluto",
	MeanNode:   "MeanNode",
	TrueNode:   "TrueNode",
	MeanLilith: "MeanLilith",
	TrueLilith: "TrueLilith",
	Chiron:     "Chiron",
	Ceres:      "Ceres",
	Pallas:     "Pallas",
	Juno:       "Juno",
	Vesta:      "Vesta",
}

// String returns the canonical body name, or a numeric placeholder for
// unknown IDs.
func (b Body) String() string {
	if name, ok := bodyNames[b]; ok {
		return name
	}
	return fmt.Sprintf("Body(%d)", int(b))
}

// Known reports whether b is one of the named bodies. Known is weaker than
// the engine allow-list: a configuration may restrict the allowed set further
// but can never extend it past the known bodies.
func (b Body) Known() bool {
	_, ok := bodyNames[b]
	return ok
}

// ParseBody resolves a canonical body name (case-sensitive, as produced by
// String). Returns an UnsupportedBodyError for unknown names.
func ParseBody(name string) (Body, error) {
	for b, n := range bodyNames {
		if n == name {
			return b, nil
		}
	}
	return 0, &Error{
		Code:    ErrCodeUnsupportedBody,
		Message: fmt.Sprintf("unknown body name %q", name),
	}
}

// KnownBodies returns all named bodies in ascending ID order.
func KnownBodies() []Body {
	out := make([]Body, 0, len(bodyNames))
	for b := range bodyNames {
		out = append(out, b)
	}
	// Small fixed set; insertion sort keeps this dependency-free.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// BodyClass groups bodies by apparent angular speed. The search layer picks
// coarse sampling steps per class: the Moon moves ~13 deg/day while Pluto
// crawls at arcseconds, so one step size cannot serve both.
type BodyClass string

const (
	// ClassFast covers the Moon and lunar points (nodes, apsides).
	ClassFast BodyClass = "fast"
	// ClassInner covers Sun through Mars.
	ClassInner BodyClass = "inner"
	// ClassOuter covers Jupiter and beyond, including asteroids.
	ClassOuter BodyClass = "outer"
)

// Class returns the sampling class for a body.
func (b Body) Class() BodyClass {
	switch b {
	case Moon, MeanNode, TrueNode, MeanLilith, TrueLilith:
		return ClassFast
	case Sun, Mercury, Venus, Mars:
		return ClassInner
	default:
		return ClassOuter
	}
}
