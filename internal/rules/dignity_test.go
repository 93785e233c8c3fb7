package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/sidereal/internal/ephem"
	"github.com/roach88/sidereal/internal/rules"
)

func TestCalcDignity(t *testing.T) {
	tests := []struct {
		name      string
		body      ephem.Body
		longitude float64
		dignity   rules.DignityType
		strength  float64
	}{
		{"sun exact exaltation", ephem.Sun, 19, rules.DignityExaltation, 100},
		{"sun near exaltation degree", ephem.Sun, 21, rules.DignityExaltation, 90},
		{"sun far from exaltation degree", ephem.Sun, 0.5, rules.DignityExaltation, 85},
		{"sun own sign", ephem.Sun, 130, rules.DignityOwnSign, 75},
		{"sun fall near exact", ephem.Sun, 200, rules.DignityFall, 10},
		{"sun detriment", ephem.Sun, 310, rules.DignityDetriment, 25},
		{"sun neutral", ephem.Sun, 215, rules.DignityNeutral, 50},
		{"moon exaltation", ephem.Moon, 33, rules.DignityExaltation, 100},
		{"mercury own sign", ephem.Mercury, 75, rules.DignityOwnSign, 75},
		{"venus exact exaltation", ephem.Venus, 357, rules.DignityExaltation, 100},
		{"mars deep fall", ephem.Mars, 95, rules.DignityFall, 0},
		{"jupiter own sign", ephem.Jupiter, 250, rules.DignityOwnSign, 75},
		{"saturn exaltation", ephem.Saturn, 201, rules.DignityExaltation, 100},
		{"outer planet always neutral", ephem.Uranus, 19, rules.DignityNeutral, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rules.CalcDignity(tt.body, tt.longitude)
			assert.Equal(t, tt.dignity, got.Type)
			assert.InDelta(t, tt.strength, got.Strength, 1e-9)
		})
	}
}

func TestCalcDignityExactDegree(t *testing.T) {
	got := rules.CalcDignity(ephem.Sun, 10)
	assert.True(t, got.HasExact)
	assert.InDelta(t, 19, got.ExactDegree, 0)

	got = rules.CalcDignity(ephem.Sun, 130)
	assert.False(t, got.HasExact)
}

func TestExaltationWinsOverOwnSign(t *testing.T) {
	// Mercury is exalted in Virgo and also rules it; exaltation takes
	// precedence there.
	got := rules.CalcDignity(ephem.Mercury, 165)
	assert.Equal(t, rules.DignityExaltation, got.Type)
}

func TestFallWinsOverDetriment(t *testing.T) {
	// Mercury is both in fall and in detriment in Pisces.
	got := rules.CalcDignity(ephem.Mercury, 345)
	assert.Equal(t, rules.DignityFall, got.Type)
}
