package rules

import (
	"math"

	"github.com/roach88/sidereal/internal/ephem"
)

// DignityType classifies a planet's essential dignity in a sign.
type DignityType string

const (
	DignityExaltation DignityType = "exaltation"
	DignityOwnSign    DignityType = "own_sign"
	DignityDetriment  DignityType = "detriment"
	DignityFall       DignityType = "fall"
	DignityNeutral    DignityType = "neutral"
)

// KnownDignity reports whether d is a recognized dignity type.
func KnownDignity(d DignityType) bool {
	switch d {
	case DignityExaltation, DignityOwnSign, DignityDetriment, DignityFall, DignityNeutral:
		return true
	}
	return false
}

type dignitySpec struct {
	exalt     ephem.Sign
	exaltDeg  float64
	own       []ephem.Sign
	detriment []ephem.Sign
	fall      ephem.Sign
	fallDeg   float64
}

// Traditional Western dignity rules for the seven classical planets.
// Bodies outside this table are always neutral.
var dignityRules = map[ephem.Body]dignitySpec{
	ephem.Sun: {
		exalt: ephem.Aries, exaltDeg: 19,
		own:       []ephem.Sign{ephem.Leo},
		detriment: []ephem.Sign{ephem.Aquarius},
		fall:      ephem.Libra, fallDeg: 19,
	},
	ephem.Moon: {
		exalt: ephem.Taurus, exaltDeg: 3,
		own:       []ephem.Sign{ephem.Cancer},
		detriment: []ephem.Sign{ephem.Capricorn},
		fall:      ephem.Scorpio, fallDeg: 3,
	},
	ephem.Mercury: {
		exalt: ephem.Virgo, exaltDeg: 15,
		own:       []ephem.Sign{ephem.Gemini, ephem.Virgo},
		detriment: []ephem.Sign{ephem.Sagittarius, ephem.Pisces},
		fall:      ephem.Pisces, fallDeg: 15,
	},
	ephem.Venus: {
		exalt: ephem.Pisces, exaltDeg: 27,
		own:       []ephem.Sign{ephem.Taurus, ephem.Libra},
		detriment: []ephem.Sign{ephem.Scorpio, ephem.Aries},
		fall:      ephem.Virgo, fallDeg: 27,
	},
	ephem.Mars: {
		exalt: ephem.Capricorn, exaltDeg: 28,
		own:       []ephem.Sign{ephem.Aries, ephem.Scorpio},
		detriment: []ephem.Sign{ephem.Libra, ephem.Taurus},
		fall:      ephem.Cancer, fallDeg: 28,
	},
	ephem.Jupiter: {
		exalt: ephem.Cancer, exaltDeg: 15,
		own:       []ephem.Sign{ephem.Sagittarius, ephem.Pisces},
		detriment: []ephem.Sign{ephem.Gemini, ephem.Virgo},
		fall:      ephem.Capricorn, fallDeg: 15,
	},
	ephem.Saturn: {
		exalt: ephem.Libra, exaltDeg: 21,
		own:       []ephem.Sign{ephem.Capricorn, ephem.Aquarius},
		detriment: []ephem.Sign{ephem.Cancer, ephem.Leo},
		fall:      ephem.Aries, fallDeg: 21,
	},
}

// DignityResult is the dignity classification of a planet at a longitude.
type DignityResult struct {
	Type     DignityType
	Strength float64
	// ExactDegree is the degree within the sign of exact exaltation or
	// fall, when applicable.
	ExactDegree float64
	HasExact    bool
}

// CalcDignity classifies the essential dignity of a body at an ecliptic
// longitude. Exaltation is checked before own sign, fall before detriment;
// the first match wins. Strength is a 0-100 score peaking at the exact
// exaltation degree.
func CalcDignity(body ephem.Body, longitude float64) DignityResult {
	spec, ok := dignityRules[body]
	if !ok {
		return DignityResult{Type: DignityNeutral, Strength: 50}
	}

	sign := ephem.SignOf(longitude)
	deg := longitude - sign.Start()
	if deg < 0 {
		deg += 360
	}

	if sign == spec.exalt {
		dist := math.Abs(deg - spec.exaltDeg)
		strength := math.Max(85, 100-dist*5)
		return DignityResult{
			Type:        DignityExaltation,
			Strength:    math.Min(100, strength),
			ExactDegree: spec.exaltDeg,
			HasExact:    true,
		}
	}
	for _, s := range spec.own {
		if sign == s {
			return DignityResult{Type: DignityOwnSign, Strength: 75}
		}
	}
	if sign == spec.fall {
		dist := math.Abs(deg - spec.fallDeg)
		return DignityResult{
			Type:        DignityFall,
			Strength:    math.Max(0, 15-dist*5),
			ExactDegree: spec.fallDeg,
			HasExact:    true,
		}
	}
	for _, s := range spec.detriment {
		if sign == s {
			return DignityResult{Type: DignityDetriment, Strength: 25}
		}
	}
	return DignityResult{Type: DignityNeutral, Strength: 50}
}

// dignitySigns returns the set of signs in which the body carries the given
// dignity. For neutral it is the complement of all the other sets.
func dignitySigns(body ephem.Body, d DignityType) []ephem.Sign {
	spec, ok := dignityRules[body]
	if !ok {
		if d == DignityNeutral {
			all := make([]ephem.Sign, 12)
			for i := range all {
				all[i] = ephem.Sign(i)
			}
			return all
		}
		return nil
	}

	switch d {
	case DignityExaltation:
		return []ephem.Sign{spec.exalt}
	case DignityOwnSign:
		return spec.own
	case DignityDetriment:
		return spec.detriment
	case DignityFall:
		return []ephem.Sign{spec.fall}
	case DignityNeutral:
		taken := map[ephem.Sign]bool{spec.exalt: true, spec.fall: true}
		for _, s := range spec.own {
			taken[s] = true
		}
		for _, s := range spec.detriment {
			taken[s] = true
		}
		var out []ephem.Sign
		for i := 0; i < 12; i++ {
			if !taken[ephem.Sign(i)] {
				out = append(out, ephem.Sign(i))
			}
		}
		return out
	}
	return nil
}
