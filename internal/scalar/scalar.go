// Package scalar turns gateway outputs into pure, time-parameterized scalar
// functions. These are the continuous signals the search engine brackets and
// refines: longitude mod 360, signed daily speed, phase angle, angular
// separation, declination difference.
//
// The package holds no search logic and no state beyond the captured source;
// a Func is safe to sample in any order and as often as needed.
package scalar

import (
	"math"

	"github.com/roach88/sidereal/internal/ephem"
)

// Func is a time-parameterized scalar: Julian Day (UT) in, value out.
// An error marks the function undefined at that instant (e.g. the body left
// ephemeris coverage); the search engine treats it as a discontinuity, not a
// value.
type Func func(jd float64) (float64, error)

// Source is anything that can produce positions under the engine lock —
// both *ephem.Engine (implicit per-call scope) and *ephem.Scope (ambient
// scope) satisfy it.
type Source interface {
	Position(t ephem.UTTime, body ephem.Body) (ephem.PositionSample, error)
	Declination(t ephem.UTTime, body ephem.Body) (float64, error)
}

// Norm360 normalizes an angle into [0,360).
func Norm360(deg float64) float64 {
	m := math.Mod(deg, 360)
	if m < 0 {
		m += 360
	}
	return m
}

// SignedDelta returns the shortest signed arc from b to a in (-180,180].
// This is the wraparound-aware difference: a crossing near the 0°/360° seam
// is a plain sign change of SignedDelta, never a 360° jump.
func SignedDelta(a, b float64) float64 {
	d := math.Mod(a-b, 360)
	if d < 0 {
		d += 360
	}
	if d > 180 {
		d -= 360
	}
	return d
}

// ArcDistance returns the unsigned angular distance between two longitudes,
// always <= 180.
func ArcDistance(a, b float64) float64 {
	return math.Abs(SignedDelta(a, b))
}

// Longitude returns the ecliptic longitude of a body as a function of time,
// in [0,360).
func Longitude(src Source, body ephem.Body) Func {
	return func(jd float64) (float64, error) {
		pos, err := src.Position(ephem.JulianDayUT(jd), body)
		if err != nil {
			return 0, err
		}
		return Norm360(pos.Longitude), nil
	}
}

// Speed returns the signed daily longitudinal motion of a body. A station is
// a zero crossing of this function.
func Speed(src Source, body ephem.Body) Func {
	return func(jd float64) (float64, error) {
		pos, err := src.Position(ephem.JulianDayUT(jd), body)
		if err != nil {
			return 0, err
		}
		return pos.SpeedLongitude, nil
	}
}

// Declination returns the equatorial declination of a body in degrees.
func Declination(src Source, body ephem.Body) Func {
	return func(jd float64) (float64, error) {
		return src.Declination(ephem.JulianDayUT(jd), body)
	}
}

// Separation returns the shortest signed arc from body b to body a. Zero at
// conjunction, ±180 at opposition; aspect detection is a crossing of this
// function against the aspect angle.
func Separation(src Source, a, b ephem.Body) Func {
	return func(jd float64) (float64, error) {
		t := ephem.JulianDayUT(jd)
		pa, err := src.Position(t, a)
		if err != nil {
			return 0, err
		}
		pb, err := src.Position(t, b)
		if err != nil {
			return 0, err
		}
		return SignedDelta(pa.Longitude, pb.Longitude), nil
	}
}

// PhaseAngle returns the synodic phase angle from body a to body b in
// [0,360), measured as (lon_b - lon_a) mod 360. The lunation cycle is
// PhaseAngle(Sun, Moon): 0 at new moon, 180 at full.
func PhaseAngle(src Source, a, b ephem.Body) Func {
	return func(jd float64) (float64, error) {
		t := ephem.JulianDayUT(jd)
		pa, err := src.Position(t, a)
		if err != nil {
			return 0, err
		}
		pb, err := src.Position(t, b)
		if err != nil {
			return 0, err
		}
		return Norm360(pb.Longitude - pa.Longitude), nil
	}
}

// DeclinationDiff returns the declination of body a minus that of body b.
// A zero crossing is a parallel (same declination) between the two bodies.
func DeclinationDiff(src Source, a, b ephem.Body) Func {
	return func(jd float64) (float64, error) {
		t := ephem.JulianDayUT(jd)
		da, err := src.Declination(t, a)
		if err != nil {
			return 0, err
		}
		db, err := src.Declination(t, b)
		if err != nil {
			return 0, err
		}
		return da - db, nil
	}
}
