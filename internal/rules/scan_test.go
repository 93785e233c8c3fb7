package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sidereal/internal/ephem"
	"github.com/roach88/sidereal/internal/orbit"
	"github.com/roach88/sidereal/internal/rules"
)

func TestScanLocalizesLongitudeEntry(t *testing.T) {
	src := newRuleSource(t)
	scanner := rules.NewScanner(src)

	rule := rules.Rule{
		Name:  "sun-enters-late-capricorn",
		Logic: rules.LogicAnd,
		Conditions: []rules.Condition{
			rules.LongitudeCondition{Body: ephem.Sun, Min: 300, Max: 330},
		},
	}

	matches, err := scanner.ScanTimeRange(orbit.J2000, orbit.J2000+40, 5, []rules.Rule{rule})
	require.NoError(t, err)
	require.Len(t, matches, 1)

	m := matches[0]
	assert.Equal(t, "sun-enters-late-capricorn", m.RuleName)
	assert.True(t, m.Localized)
	assert.Equal(t, "longitude", m.Trigger)
	// The Sun reaches 300° at dt = 20/0.9856 ≈ 20.29 days, well off the
	// 5-day grid.
	assert.InDelta(t, orbit.J2000+20.0/0.9856, m.JD, 1e-3)
	assert.Equal(t, 1, m.MatchedConditions)
	assert.Equal(t, 1, m.TotalConditions)
	assert.InDelta(t, 100, m.MatchPercent(), 0)
}

func TestScanEdgeTriggered(t *testing.T) {
	src := newRuleSource(t)
	scanner := rules.NewScanner(src)

	rule := rules.Rule{
		Name:  "mercury-retrograde",
		Logic: rules.LogicAnd,
		Conditions: []rules.Condition{
			rules.RetrogradeCondition{Body: ephem.Mercury, Retrograde: true},
		},
	}

	// Mercury is retrograde from about dt=45.9 to dt=70.1: many matching
	// samples, exactly one reported transition.
	matches, err := scanner.ScanTimeRange(orbit.J2000+30, orbit.J2000+80, 2, []rules.Rule{rule})
	require.NoError(t, err)
	require.Len(t, matches, 1)

	m := matches[0]
	assert.True(t, m.Localized)
	assert.Equal(t, "retrograde", m.Trigger)
	assert.InDelta(t, orbit.J2000+45.8496, m.JD, 0.01)
}

func TestScanInitiallyTrueReportedUnlocalized(t *testing.T) {
	src := newRuleSource(t)
	scanner := rules.NewScanner(src)

	// The Sun sits at 280° when the window opens.
	rule := rules.Rule{
		Name:  "already-matching",
		Logic: rules.LogicAnd,
		Conditions: []rules.Condition{
			rules.LongitudeCondition{Body: ephem.Sun, Min: 270, Max: 330},
		},
	}
	matches, err := scanner.ScanTimeRange(orbit.J2000, orbit.J2000+10, 1, []rules.Rule{rule})
	require.NoError(t, err)
	require.Len(t, matches, 1)

	assert.False(t, matches[0].Localized)
	assert.InDelta(t, orbit.J2000, matches[0].JD, 0)
}

func TestScanOrRule(t *testing.T) {
	src := newRuleSource(t)
	scanner := rules.NewScanner(src)

	rule := rules.Rule{
		Name:  "either",
		Logic: rules.LogicOr,
		Conditions: []rules.Condition{
			rules.LongitudeCondition{Body: ephem.Sun, Min: 300, Max: 330},
			rules.RetrogradeCondition{Body: ephem.Mercury, Retrograde: true},
		},
	}

	// The longitude leg turns true at dt=20.3, drops at dt=50.7, and the
	// retrograde leg holds from 45.9 to 70.1: the OR stays true across the
	// overlap, so the scan sees one long true interval.
	matches, err := scanner.ScanTimeRange(orbit.J2000, orbit.J2000+80, 2, []rules.Rule{rule})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.InDelta(t, orbit.J2000+20.0/0.9856, matches[0].JD, 1e-3)
}

func TestScanMultipleRulesSortedByTime(t *testing.T) {
	src := newRuleSource(t)
	scanner := rules.NewScanner(src)

	rls := []rules.Rule{
		{
			Name:  "late",
			Logic: rules.LogicAnd,
			Conditions: []rules.Condition{
				rules.RetrogradeCondition{Body: ephem.Mercury, Retrograde: true},
			},
		},
		{
			Name:  "early",
			Logic: rules.LogicAnd,
			Conditions: []rules.Condition{
				rules.LongitudeCondition{Body: ephem.Sun, Min: 300, Max: 330},
			},
		},
	}

	matches, err := scanner.ScanTimeRange(orbit.J2000, orbit.J2000+60, 2, rls)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "early", matches[0].RuleName)
	assert.Equal(t, "late", matches[1].RuleName)
	assert.Less(t, matches[0].JD, matches[1].JD)
}

func TestScanRejectsInvalidInput(t *testing.T) {
	src := newRuleSource(t)
	scanner := rules.NewScanner(src)
	valid := rules.Rule{
		Name:       "ok",
		Conditions: []rules.Condition{rules.RetrogradeCondition{Body: ephem.Mars}},
	}

	_, err := scanner.ScanTimeRange(orbit.J2000, orbit.J2000, 1, []rules.Rule{valid})
	require.Error(t, err)
	assert.True(t, ephem.IsCode(err, ephem.ErrCodeConfiguration))

	_, err = scanner.ScanTimeRange(orbit.J2000, orbit.J2000+10, 0, []rules.Rule{valid})
	require.Error(t, err)
	assert.True(t, ephem.IsCode(err, ephem.ErrCodeConfiguration))

	_, err = scanner.ScanTimeRange(orbit.J2000, orbit.J2000+40000, 1, []rules.Rule{valid})
	require.Error(t, err)
	assert.True(t, ephem.IsCode(err, ephem.ErrCodeSearchRangeTooLarge))
}

func TestScanRejectsMalformedRule(t *testing.T) {
	src := newRuleSource(t)
	scanner := rules.NewScanner(src)

	bad := rules.Rule{Name: "", Conditions: []rules.Condition{
		rules.SpeedCondition{Body: ephem.Moon, Operator: "~", Value: 1},
	}}
	_, err := scanner.ScanTimeRange(orbit.J2000, orbit.J2000+10, 1, []rules.Rule{bad})
	require.Error(t, err)
	assert.True(t, ephem.IsCode(err, ephem.ErrCodeConfiguration))
}

func TestScanMaxSpanOption(t *testing.T) {
	src := newRuleSource(t)
	scanner := rules.NewScanner(src, rules.WithScanMaxSpan(10))

	valid := rules.Rule{
		Name:       "ok",
		Conditions: []rules.Condition{rules.RetrogradeCondition{Body: ephem.Mars}},
	}
	_, err := scanner.ScanTimeRange(orbit.J2000, orbit.J2000+11, 1, []rules.Rule{valid})
	require.Error(t, err)
	assert.True(t, ephem.IsCode(err, ephem.ErrCodeSearchRangeTooLarge))
}

func TestScanCustomSnapshotFunc(t *testing.T) {
	src := newRuleSource(t)

	// A caller-supplied sampler sees every grid instant and the union of
	// rule bodies; here it delegates to the source but counts samples.
	var calls int
	custom := func(jd float64, bodies []ephem.Body) (*rules.Snapshot, error) {
		calls++
		positions := make(map[ephem.Body]ephem.PositionSample, len(bodies))
		for _, b := range bodies {
			pos, err := src.Position(ephem.JulianDayUT(jd), b)
			if err != nil {
				return nil, err
			}
			positions[b] = pos
		}
		return &rules.Snapshot{
			JD:        jd,
			Positions: positions,
			Aspects:   rules.ComputeAspects(positions),
		}, nil
	}

	scanner := rules.NewScanner(src, rules.WithSnapshotFunc(custom))
	rule := rules.Rule{
		Name:  "sun-enters-late-capricorn",
		Logic: rules.LogicAnd,
		Conditions: []rules.Condition{
			rules.LongitudeCondition{Body: ephem.Sun, Min: 300, Max: 330},
		},
	}

	matches, err := scanner.ScanTimeRange(orbit.J2000, orbit.J2000+40, 5, []rules.Rule{rule})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.True(t, matches[0].Localized)
	assert.Equal(t, 9, calls)
}

func TestScanSeesTransitionInFinalPartialInterval(t *testing.T) {
	src := newRuleSource(t)
	scanner := rules.NewScanner(src)

	rule := rules.Rule{
		Name:  "sun-enters-late-capricorn",
		Logic: rules.LogicAnd,
		Conditions: []rules.Condition{
			rules.LongitudeCondition{Body: ephem.Sun, Min: 300, Max: 330},
		},
	}

	// The transition at dt ≈ 20.29 falls after the last whole 5-day grid
	// step; the clamped final sample at t1 = 20.5 must still catch it.
	matches, err := scanner.ScanTimeRange(orbit.J2000, orbit.J2000+20.5, 5, []rules.Rule{rule})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.True(t, matches[0].Localized)
	assert.InDelta(t, orbit.J2000+20.0/0.9856, matches[0].JD, 1e-3)
}
