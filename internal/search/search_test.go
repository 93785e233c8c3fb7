package search_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sidereal/internal/ephem"
	"github.com/roach88/sidereal/internal/search"
)

func line(slope, root float64) func(float64) (float64, error) {
	return func(t float64) (float64, error) { return slope * (t - root), nil }
}

func TestFindCrossingLinear(t *testing.T) {
	eng := search.New(search.Linear())

	results, err := eng.FindCrossings(line(1, 5), 0, 10, 0, search.ModeCrossing)
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	assert.InDelta(t, 5.0, r.JD, 1e-5)
	assert.LessOrEqual(t, r.Exactness, ephem.DefaultToleranceFloorDays)
	assert.Equal(t, search.KindCrossing, r.Kind)
	assert.False(t, r.Ambiguous())
	assert.NotEmpty(t, r.RunToken)
}

func TestFindCrossingAngularSeam(t *testing.T) {
	eng := search.New()

	// Longitude sweeping 358° -> 2°: the crossing of 0° at t=2 is a plain
	// sign change of the shortest-arc offset, not a 360° jump.
	f := func(t float64) (float64, error) {
		return math.Mod(358+t, 360), nil
	}
	results, err := eng.FindCrossings(f, 0, 4, 0, search.ModeCrossing)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 2.0, results[0].JD, 1e-5)
}

func TestAngularAntipodeNotACrossing(t *testing.T) {
	eng := search.New()

	// Sweeping 178° -> 182° flips the sign of the shortest-arc offset at
	// the antipode of the target; that flip must not be reported.
	f := func(t float64) (float64, error) {
		return math.Mod(178+t, 360), nil
	}
	results, err := eng.FindCrossings(f, 0, 4, 0, search.ModeCrossing)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRangeGuardBeforeSampling(t *testing.T) {
	eng := search.New(search.Linear())

	evals := 0
	f := func(t float64) (float64, error) {
		evals++
		return t, nil
	}

	_, err := eng.FindCrossings(f, 0, 40000, 0, search.ModeCrossing)
	require.Error(t, err)
	assert.True(t, ephem.IsCode(err, ephem.ErrCodeSearchRangeTooLarge))
	assert.Zero(t, evals)
}

func TestInvalidWindow(t *testing.T) {
	eng := search.New(search.Linear())

	_, err := eng.FindCrossings(line(1, 5), 10, 10, 0, search.ModeCrossing)
	require.Error(t, err)
	assert.True(t, ephem.IsCode(err, ephem.ErrCodeConfiguration))

	_, err = eng.FindCrossings(line(1, 5), 10, 5, 0, search.ModeCrossing)
	require.Error(t, err)
}

func TestNonPositiveParametersRejected(t *testing.T) {
	eng := search.New(search.Linear())

	// A zero step would sample the same instant forever; each of the
	// tunables must be positive and is checked before sampling starts.
	evals := 0
	counted := func(t float64) (float64, error) {
		evals++
		return t - 5, nil
	}

	for _, opt := range []search.Option{
		search.WithStepDays(0),
		search.WithStepDays(-1),
		search.WithMinStepDays(0),
		search.WithTolerance(0),
	} {
		_, err := eng.FindCrossings(counted, 0, 10, 0, search.ModeCrossing, opt)
		require.Error(t, err)
		assert.True(t, ephem.IsCode(err, ephem.ErrCodeConfiguration))
	}
	assert.Zero(t, evals)
}

func TestUnknownMode(t *testing.T) {
	eng := search.New(search.Linear())
	_, err := eng.FindCrossings(line(1, 5), 0, 1, 0, search.Mode(99))
	require.Error(t, err)
	assert.True(t, ephem.IsCode(err, ephem.ErrCodeConfiguration))
}

func TestMultipleCrossingsInOneStep(t *testing.T) {
	eng := search.New(search.Linear())

	// cos(3*pi*t) has roots at 1/6, 1/2, 5/6: three crossings inside the
	// single 1-day step, separated by adaptive subdivision.
	f := func(t float64) (float64, error) {
		return math.Cos(3 * math.Pi * t), nil
	}
	results, err := eng.FindCrossings(f, 0, 1, 0, search.ModeCrossing)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.InDelta(t, 1.0/6, results[0].JD, 1e-4)
	assert.InDelta(t, 0.5, results[1].JD, 1e-4)
	assert.InDelta(t, 5.0/6, results[2].JD, 1e-4)
	for _, r := range results {
		assert.False(t, r.Ambiguous())
	}
}

func TestAmbiguityAtStepFloor(t *testing.T) {
	f := func(t float64) (float64, error) {
		return math.Cos(3 * math.Pi * t), nil
	}

	// A step floor as wide as the window forbids subdivision, so the three
	// crossings cannot be separated: first crossing, flagged.
	eng := search.New(search.Linear(), search.WithMinStepDays(1.0))
	results, err := eng.FindCrossings(f, 0, 1, 0, search.ModeCrossing)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Ambiguous())
	assert.InDelta(t, 1.0/6, results[0].JD, 1e-2)

	// Strict mode turns the flag into an error.
	strict := search.New(search.Linear(), search.WithMinStepDays(1.0), search.WithStrictAmbiguity())
	_, err = strict.FindCrossings(f, 0, 1, 0, search.ModeCrossing)
	require.Error(t, err)
	assert.True(t, ephem.IsCode(err, ephem.ErrCodeAmbiguousCrossing))
}

func TestDiscontinuityExcluded(t *testing.T) {
	eng := search.New(search.Linear(), search.WithStepDays(10))

	// Sign change across [0,10], but the function is undefined in the
	// middle: the bracket straddles a discontinuity and is dropped.
	f := func(t float64) (float64, error) {
		if t > 4 && t < 6 {
			return 0, assert.AnError
		}
		return t - 5, nil
	}
	results, err := eng.FindCrossings(f, 0, 10, 0, search.ModeCrossing)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFindExtrema(t *testing.T) {
	eng := search.New(search.Linear())

	// 10*sin(2*pi*t/20): maximum at t=5, minimum at t=15.
	f := func(t float64) (float64, error) {
		return 10 * math.Sin(2*math.Pi*t/20), nil
	}
	results, err := eng.FindCrossings(f, 0, 20, 0, search.ModeExtremum)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.InDelta(t, 5.0, results[0].JD, 1e-3)
	assert.InDelta(t, 15.0, results[1].JD, 1e-3)
	assert.Equal(t, search.KindExtremum, results[0].Kind)
}

func TestKindOverride(t *testing.T) {
	eng := search.New(search.Linear(), search.WithKind(search.KindStation))

	results, err := eng.FindCrossings(line(1, 0.5), 0, 1, 0, search.ModeCrossing)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, search.KindStation, results[0].Kind)
}

func TestRunTokenSharedAcrossResults(t *testing.T) {
	gen := search.NewFixedGenerator("run-a", "run-b")
	eng := search.New(search.Linear(), search.WithTokenGenerator(gen))

	f := func(t float64) (float64, error) {
		return math.Cos(3 * math.Pi * t), nil
	}
	first, err := eng.FindCrossings(f, 0, 1, 0, search.ModeCrossing)
	require.NoError(t, err)
	require.Len(t, first, 3)
	for _, r := range first {
		assert.Equal(t, "run-a", r.RunToken)
	}

	second, err := eng.FindCrossings(f, 0, 1, 0, search.ModeCrossing)
	require.NoError(t, err)
	require.Len(t, second, 3)
	for _, r := range second {
		assert.Equal(t, "run-b", r.RunToken)
	}
}

func TestUUIDv7TokensAreOrdered(t *testing.T) {
	gen := search.UUIDv7Generator{}
	a := gen.Generate()
	b := gen.Generate()
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 36)
}

func TestSampleClampsToWindowEnd(t *testing.T) {
	series := search.Sample(line(1, 0), 0, 2.5, 1)
	require.Equal(t, 4, series.Len())

	tl, _, _ := series.At(series.Len() - 1)
	assert.InDelta(t, 2.5, tl, 0)
}

func TestSampleMarksGaps(t *testing.T) {
	f := func(t float64) (float64, error) {
		if t == 1 {
			return 0, assert.AnError
		}
		return t, nil
	}
	series := search.Sample(f, 0, 2, 1)
	_, _, ok := series.At(1)
	assert.False(t, ok)
	_, _, ok = series.At(2)
	assert.True(t, ok)
}
