package ephem

import (
	"fmt"
	"math"
)

// Sign is a zodiac sign, Aries = 0 through Pisces = 11. Each sign spans 30°
// of longitude; an ingress is a crossing of a sign boundary.
type Sign int

const (
	Aries Sign = iota
	Taurus
	Gemini
	Cancer
	Leo
	Virgo
	Libra
	Scorpio
	Sagittarius
	Capricorn
	Aquarius
	Pisces
)

var signNames = [12]string{
	"Aries", "Taurus", "Gemini", "Cancer", "Leo", "Virgo",
	"Libra", "Scorpio", "Sagittarius", "Capricorn", "Aquarius", "Pisces",
}

// String returns the sign name.
func (s Sign) String() string {
	if s >= 0 && s < 12 {
		return signNames[s]
	}
	return fmt.Sprintf("Sign(%d)", int(s))
}

// Start returns the longitude of the sign's leading boundary.
func (s Sign) Start() float64 {
	return float64(s) * 30
}

// Next returns the following sign, wrapping Pisces to Aries.
func (s Sign) Next() Sign {
	return (s + 1) % 12
}

// Prev returns the preceding sign, wrapping Aries to Pisces.
func (s Sign) Prev() Sign {
	return (s + 11) % 12
}

// SignOf returns the sign containing a longitude.
func SignOf(longitude float64) Sign {
	lon := math.Mod(longitude, 360)
	if lon < 0 {
		lon += 360
	}
	return Sign(int(lon / 30))
}
