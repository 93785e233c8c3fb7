package search

import (
	"math"

	"github.com/roach88/sidereal/internal/ephem"
	"github.com/roach88/sidereal/internal/scalar"
)

// evalFunc is a pre-offset signal: zero at the sought instant.
type evalFunc func(t float64) (float64, error)

// FindCrossings locates all crossings of f against target within [t0,t1]
// (Julian Days UT) and returns them in time-ascending order.
//
// The window is validated against the max-span guardrail before any sampling.
// Brackets straddling a discontinuity (f undefined somewhere inside) are
// excluded rather than reported as spurious crossings. When more than one
// crossing falls inside a single step, the step is shrunk adaptively down to
// the configured floor; an ambiguity that survives the floor is reported as
// the first crossing with the MetaAmbiguous flag, or as an
// AmbiguousCrossingError under WithStrictAmbiguity.
//
// Angular signals need a step small enough that f moves less than 90° per
// step: the seam guard that separates real crossings from the ±180°
// antipode flip discards any bracket whose samples sit 90° or more from the
// target. Size the step from the body's fastest motion (Config.StepFor does
// this per body class).
func (e *Engine) FindCrossings(f scalar.Func, t0, t1, target float64, mode Mode, opts ...Option) ([]EventResult, error) {
	e = e.with(opts)

	span := t1 - t0
	if span <= 0 {
		return nil, ephem.NewConfigurationError("search window end must be after start")
	}
	if span > e.maxSpanDays {
		return nil, ephem.NewSearchRangeTooLargeError(span, e.maxSpanDays)
	}
	if e.stepDays <= 0 {
		return nil, ephem.NewConfigurationError("search step must be positive")
	}
	if e.minStepDays <= 0 {
		return nil, ephem.NewConfigurationError("search step floor must be positive")
	}
	if e.toleranceDays <= 0 {
		return nil, ephem.NewConfigurationError("search tolerance must be positive")
	}

	token := e.tokens.Generate()

	switch mode {
	case ModeCrossing:
		return e.findCrossings(f, t0, t1, target, token)
	case ModeExtremum:
		return e.findExtrema(f, t0, t1, token)
	default:
		return nil, ephem.NewConfigurationError("unknown search mode")
	}
}

// Sample evaluates f across [t0,t1] at the given step, clamping the final
// sample to t1. Undefined instants become gaps, not errors.
func Sample(f scalar.Func, t0, t1, step float64) *SampleSeries {
	s := &SampleSeries{}
	for t := t0; ; t += step {
		if t > t1 {
			t = t1
		}
		v, err := f(t)
		s.times = append(s.times, t)
		s.values = append(s.values, v)
		s.valid = append(s.valid, err == nil)
		if t >= t1 {
			break
		}
	}
	return s
}

// offset converts f into the signal whose zero is the sought crossing.
// Angular signals use the shortest signed arc so crossings at the 0°/360°
// seam are plain sign changes.
func (e *Engine) offset(f scalar.Func, target float64) evalFunc {
	if e.angular {
		return func(t float64) (float64, error) {
			v, err := f(t)
			if err != nil {
				return 0, err
			}
			return scalar.SignedDelta(v, target), nil
		}
	}
	return func(t float64) (float64, error) {
		v, err := f(t)
		if err != nil {
			return 0, err
		}
		return v - target, nil
	}
}

// bracketed reports whether adjacent offset values straddle zero. For
// angular signals both values must additionally lie in the front half of the
// circle: SignedDelta flips sign at ±180 too, and that flip is the
// antipode, not a crossing.
func (e *Engine) bracketed(v0, v1 float64) bool {
	if e.angular && (math.Abs(v0) >= 90 || math.Abs(v1) >= 90) {
		return false
	}
	return (v0 < 0 && v1 >= 0) || (v0 > 0 && v1 <= 0)
}

func (e *Engine) findCrossings(f scalar.Func, t0, t1, target float64, token string) ([]EventResult, error) {
	d := e.offset(f, target)
	series := Sample(scalar.Func(d), t0, t1, e.stepDays)

	var results []EventResult
	for i := 0; i+1 < series.Len(); i++ {
		ta, va, okA := series.At(i)
		tb, vb, okB := series.At(i + 1)
		if !okA || !okB || !e.bracketed(va, vb) {
			continue
		}
		rs, err := e.resolve(d, Bracket{T0: ta, T1: tb, V0: va, V1: vb}, token)
		if err != nil {
			return nil, err
		}
		results = append(results, rs...)
	}
	return results, nil
}

// resolve turns one coarse bracket into refined results. It first subdivides
// the bracket to count crossings: exactly one means refine; several mean
// shrink the step and recurse, until the floor forces the ambiguity policy.
func (e *Engine) resolve(d evalFunc, b Bracket, token string) ([]EventResult, error) {
	const parts = 8

	sub, ok := e.subBrackets(d, b, parts)
	if !ok {
		// Discontinuity inside the bracket: excluded, not reported.
		return nil, nil
	}

	switch {
	case len(sub) == 0:
		// Endpoint signs differed but no subinterval straddles zero under
		// the seam guard; treat as the antipode flip and drop it.
		return nil, nil

	case len(sub) == 1:
		r, refined := e.refine(d, sub[0], token)
		if !refined {
			return nil, nil
		}
		return []EventResult{r}, nil

	case b.Width()/parts >= e.minStepDays:
		var out []EventResult
		for _, sb := range sub {
			rs, err := e.resolve(d, sb, token)
			if err != nil {
				return nil, err
			}
			out = append(out, rs...)
		}
		return out, nil

	default:
		// Step floor reached with multiple crossings left in one step.
		if e.strict {
			return nil, ephem.NewAmbiguousCrossingError(b.T0, b.T1)
		}
		r, refined := e.refine(d, sub[0], token)
		if !refined {
			return nil, nil
		}
		r.Metadata[MetaAmbiguous] = "true"
		return []EventResult{r}, nil
	}
}

// subBrackets samples the bracket interior at parts+1 points and collects
// every sign-change subinterval. ok is false when any interior sample is
// undefined.
func (e *Engine) subBrackets(d evalFunc, b Bracket, parts int) ([]Bracket, bool) {
	h := b.Width() / float64(parts)

	prevT, prevV := b.T0, b.V0
	var out []Bracket
	for i := 1; i <= parts; i++ {
		t := b.T0 + float64(i)*h
		v := b.V1
		if i < parts {
			var err error
			v, err = d(t)
			if err != nil {
				return nil, false
			}
		} else {
			t = b.T1
		}
		if e.bracketed(prevV, v) {
			out = append(out, Bracket{T0: prevT, T1: t, V0: prevV, V1: v})
		}
		prevT, prevV = t, v
	}
	return out, true
}

// refine runs bisection inside the bracket until its width drops below the
// tolerance. Refinement never leaves the bracket, so it cannot diverge; a
// midpoint where the signal is undefined excludes the bracket entirely.
func (e *Engine) refine(d evalFunc, b Bracket, token string) (EventResult, bool) {
	lo, hi := b.T0, b.T1
	vlo := b.V0

	for i := 0; i < e.maxIter && hi-lo > e.toleranceDays; i++ {
		mid := (lo + hi) / 2
		vm, err := d(mid)
		if err != nil {
			return EventResult{}, false
		}
		if vm == 0 {
			// Exact hit; collapse the bracket around it.
			lo, hi = mid, mid
			break
		}
		if (vlo < 0) == (vm < 0) {
			lo, vlo = mid, vm
		} else {
			hi = mid
		}
	}

	return EventResult{
		JD:        (lo + hi) / 2,
		Kind:      e.kind,
		Exactness: hi - lo,
		Metadata:  map[string]string{},
		RunToken:  token,
	}, true
}

// findExtrema scans for sign changes of the discrete difference of f and
// refines each on a central-difference derivative proxy.
func (e *Engine) findExtrema(f scalar.Func, t0, t1 float64, token string) ([]EventResult, error) {
	h := math.Max(e.minStepDays, e.toleranceDays)

	// Derivative proxy; angular-aware so longitude extrema work across the
	// seam.
	g := func(t float64) (float64, error) {
		va, err := f(t - h)
		if err != nil {
			return 0, err
		}
		vb, err := f(t + h)
		if err != nil {
			return 0, err
		}
		if e.angular {
			return scalar.SignedDelta(vb, va), nil
		}
		return vb - va, nil
	}

	series := Sample(f, t0, t1, e.stepDays)

	kind := e.kind
	if kind == KindCrossing {
		kind = KindExtremum
	}

	var results []EventResult
	for i := 0; i+2 < series.Len(); i++ {
		ta, va, okA := series.At(i)
		_, vb, okB := series.At(i + 1)
		tc, vc, okC := series.At(i + 2)
		if !okA || !okB || !okC {
			continue
		}

		d0, d1 := vb-va, vc-vb
		if e.angular {
			d0, d1 = scalar.SignedDelta(vb, va), scalar.SignedDelta(vc, vb)
		}
		if !((d0 < 0 && d1 >= 0) || (d0 > 0 && d1 <= 0)) {
			continue
		}

		// Confirm the proxy brackets zero before bisecting.
		glo, err := g(ta + h)
		if err != nil {
			continue
		}
		ghi, err := g(tc - h)
		if err != nil {
			continue
		}
		if (glo < 0) == (ghi < 0) {
			continue
		}

		r, refined := e.refine(g, Bracket{T0: ta + h, T1: tc - h, V0: glo, V1: ghi}, token)
		if !refined {
			continue
		}
		r.Kind = kind
		results = append(results, r)
	}
	return results, nil
}
