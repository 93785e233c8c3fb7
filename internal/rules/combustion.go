package rules

import (
	"github.com/roach88/sidereal/internal/ephem"
	"github.com/roach88/sidereal/internal/scalar"
)

// CombustionState describes a planet's proximity to the Sun.
type CombustionState string

const (
	// CombustCazimi is exact conjunction, within 17 arcminutes.
	CombustCazimi CombustionState = "cazimi"
	// CombustCombust is inside the planet's combustion orb.
	CombustCombust CombustionState = "combust"
	// CombustUnderBeams is inside 17 degrees but outside the combustion orb.
	CombustUnderBeams CombustionState = "under_beams"
	// CombustFree is outside all solar influence.
	CombustFree CombustionState = "free"
)

// KnownCombustionState reports whether s is a recognized state.
func KnownCombustionState(s CombustionState) bool {
	switch s {
	case CombustCazimi, CombustCombust, CombustUnderBeams, CombustFree:
		return true
	}
	return false
}

const (
	// CazimiOrb is 17 arcminutes in degrees.
	CazimiOrb = 0.283
	// UnderBeamsOrb is the traditional outer limit of solar influence.
	UnderBeamsOrb = 17.0
	// defaultCombustOrb applies to bodies without a traditional orb.
	defaultCombustOrb = 8.0
)

// Traditional combustion orbs in degrees.
var combustionOrbs = map[ephem.Body]float64{
	ephem.Moon:    12,
	ephem.Mercury: 14,
	ephem.Venus:   8,
	ephem.Mars:    17,
	ephem.Jupiter: 11,
	ephem.Saturn:  15,
	ephem.Uranus:  10,
	ephem.Neptune: 10,
	ephem.Pluto:   10,
}

// CombustOrbFor returns the combustion threshold for a body.
func CombustOrbFor(body ephem.Body) float64 {
	if orb, ok := combustionOrbs[body]; ok {
		return orb
	}
	return defaultCombustOrb
}

// CombustionResult is the combustion classification of a planet.
type CombustionResult struct {
	State      CombustionState
	OrbFromSun float64
	Threshold  float64
	IsCazimi   bool
}

// CalcCombustion classifies a body's combustion state from its longitude
// and the Sun's. Cazimi takes precedence over combust; the bands are
// checked from the innermost outward.
func CalcCombustion(body ephem.Body, planetLon, sunLon float64) CombustionResult {
	orb := scalar.ArcDistance(planetLon, sunLon)
	threshold := CombustOrbFor(body)

	switch {
	case orb <= CazimiOrb:
		return CombustionResult{State: CombustCazimi, OrbFromSun: orb, Threshold: threshold, IsCazimi: true}
	case orb <= threshold:
		return CombustionResult{State: CombustCombust, OrbFromSun: orb, Threshold: threshold}
	case orb <= UnderBeamsOrb:
		return CombustionResult{State: CombustUnderBeams, OrbFromSun: orb, Threshold: threshold}
	default:
		return CombustionResult{State: CombustFree, OrbFromSun: orb, Threshold: threshold}
	}
}
