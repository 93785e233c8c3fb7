package rules

import (
	"fmt"
	"math"

	"github.com/roach88/sidereal/internal/ephem"
	"github.com/roach88/sidereal/internal/scalar"
)

// Logic combines a rule's conditions.
type Logic string

const (
	LogicAnd Logic = "AND"
	LogicOr  Logic = "OR"
)

// Condition type tags as they appear in rule files.
const (
	TypeAspect     = "aspect"
	TypeDignity    = "dignity"
	TypeCombustion = "combustion"
	TypeSpeed      = "speed"
	TypeRetrograde = "retrograde"
	TypeLongitude  = "longitude"
)

// speedEqualTol is the tolerance for the "==" speed operator, in degrees
// per day.
const speedEqualTol = 0.01

// Snapshot is the chart state at one instant: positions for every body a
// rule set references, plus the aspects among them.
type Snapshot struct {
	JD        float64
	Positions map[ephem.Body]ephem.PositionSample
	Aspects   []Aspect
}

func (s *Snapshot) position(b ephem.Body) (ephem.PositionSample, error) {
	pos, ok := s.Positions[b]
	if !ok {
		return ephem.PositionSample{}, ephem.NewComputationError(
			fmt.Sprintf("snapshot at JD %.6f has no position for %s", s.JD, b), nil)
	}
	return pos, nil
}

// Condition is one testable predicate over a snapshot.
//
// Margin returns a continuous function of time that is positive while the
// condition holds and negative while it does not, so its zero crossings
// are the condition's transition instants. Margins are plain scalars, not
// angles; search over them must run in linear mode.
type Condition interface {
	Type() string
	Bodies() []ephem.Body
	Validate(field string) []ValidationError
	Evaluate(snap *Snapshot) (bool, error)
	Margin(src scalar.Source) scalar.Func
}

// AspectCondition holds when BodyA and BodyB form the named aspect. Orb
// zero means the aspect's default orb; a smaller Orb tightens it.
type AspectCondition struct {
	BodyA  ephem.Body
	BodyB  ephem.Body
	Aspect string
	Orb    float64
}

func (c AspectCondition) Type() string         { return TypeAspect }
func (c AspectCondition) Bodies() []ephem.Body { return []ephem.Body{c.BodyA, c.BodyB} }

func (c AspectCondition) effectiveOrb() float64 {
	def := defaultOrbs[c.Aspect]
	if c.Orb > 0 && c.Orb < def {
		return c.Orb
	}
	return def
}

func (c AspectCondition) Evaluate(snap *Snapshot) (bool, error) {
	for _, asp := range snap.Aspects {
		if asp.Name != c.Aspect {
			continue
		}
		if (asp.A == c.BodyA && asp.B == c.BodyB) || (asp.A == c.BodyB && asp.B == c.BodyA) {
			if asp.Orb <= c.effectiveOrb() {
				return true, nil
			}
		}
	}
	return false, nil
}

func (c AspectCondition) Margin(src scalar.Source) scalar.Func {
	sep := scalar.Separation(src, c.BodyA, c.BodyB)
	angle := aspectAngles[c.Aspect]
	orb := c.effectiveOrb()
	return func(jd float64) (float64, error) {
		v, err := sep(jd)
		if err != nil {
			return 0, err
		}
		return orb - math.Abs(math.Abs(v)-angle), nil
	}
}

// DignityCondition holds when the body carries the given essential dignity.
type DignityCondition struct {
	Body    ephem.Body
	Dignity DignityType
}

func (c DignityCondition) Type() string         { return TypeDignity }
func (c DignityCondition) Bodies() []ephem.Body { return []ephem.Body{c.Body} }

func (c DignityCondition) Evaluate(snap *Snapshot) (bool, error) {
	pos, err := snap.position(c.Body)
	if err != nil {
		return false, err
	}
	return CalcDignity(c.Body, pos.Longitude).Type == c.Dignity, nil
}

func (c DignityCondition) Margin(src scalar.Source) scalar.Func {
	lon := scalar.Longitude(src, c.Body)
	runs := signRuns(dignitySigns(c.Body, c.Dignity))
	return func(jd float64) (float64, error) {
		v, err := lon(jd)
		if err != nil {
			return 0, err
		}
		if len(runs) == 0 {
			return -180, nil
		}
		best := math.Inf(-1)
		for _, r := range runs {
			m := r.span/2 - scalar.ArcDistance(v, r.start+r.span/2)
			if m > best {
				best = m
			}
		}
		return best, nil
	}
}

// signRun is a contiguous arc of whole signs, start in degrees.
type signRun struct {
	start float64
	span  float64
}

// signRuns merges a set of signs into maximal contiguous arcs, treating the
// zodiac as circular.
func signRuns(signs []ephem.Sign) []signRun {
	var in [12]bool
	n := 0
	for _, s := range signs {
		if s >= 0 && s < 12 && !in[s] {
			in[s] = true
			n++
		}
	}
	if n == 0 {
		return nil
	}
	if n == 12 {
		return []signRun{{start: 0, span: 360}}
	}

	var out []signRun
	for i := 0; i < 12; i++ {
		prev := (i + 11) % 12
		if !in[i] || in[prev] {
			continue
		}
		span := 0.0
		for j := i; in[j%12]; j++ {
			span += 30
		}
		out = append(out, signRun{start: float64(i) * 30, span: span})
	}
	return out
}

// CombustionCondition holds when the body is in the given combustion state.
type CombustionCondition struct {
	Body  ephem.Body
	State CombustionState
}

func (c CombustionCondition) Type() string         { return TypeCombustion }
func (c CombustionCondition) Bodies() []ephem.Body { return []ephem.Body{c.Body, ephem.Sun} }

func (c CombustionCondition) Evaluate(snap *Snapshot) (bool, error) {
	pos, err := snap.position(c.Body)
	if err != nil {
		return false, err
	}
	sun, err := snap.position(ephem.Sun)
	if err != nil {
		return false, err
	}
	return CalcCombustion(c.Body, pos.Longitude, sun.Longitude).State == c.State, nil
}

func (c CombustionCondition) Margin(src scalar.Source) scalar.Func {
	sep := scalar.Separation(src, c.Body, ephem.Sun)
	threshold := CombustOrbFor(c.Body)
	return func(jd float64) (float64, error) {
		v, err := sep(jd)
		if err != nil {
			return 0, err
		}
		orb := math.Abs(v)
		switch c.State {
		case CombustCazimi:
			return CazimiOrb - orb, nil
		case CombustCombust:
			return math.Min(orb-CazimiOrb, threshold-orb), nil
		case CombustUnderBeams:
			return math.Min(orb-threshold, UnderBeamsOrb-orb), nil
		default:
			return orb - UnderBeamsOrb, nil
		}
	}
}

// SpeedCondition compares the body's daily longitudinal speed to a value.
type SpeedCondition struct {
	Body     ephem.Body
	Operator string
	Value    float64
}

func (c SpeedCondition) Type() string         { return TypeSpeed }
func (c SpeedCondition) Bodies() []ephem.Body { return []ephem.Body{c.Body} }

func (c SpeedCondition) Evaluate(snap *Snapshot) (bool, error) {
	pos, err := snap.position(c.Body)
	if err != nil {
		return false, err
	}
	s := pos.SpeedLongitude
	switch c.Operator {
	case "<":
		return s < c.Value, nil
	case ">":
		return s > c.Value, nil
	case "<=":
		return s <= c.Value, nil
	case ">=":
		return s >= c.Value, nil
	case "==":
		return math.Abs(s-c.Value) < speedEqualTol, nil
	}
	return false, ephem.NewConfigurationError(fmt.Sprintf("unknown speed operator %q", c.Operator))
}

func (c SpeedCondition) Margin(src scalar.Source) scalar.Func {
	speed := scalar.Speed(src, c.Body)
	return func(jd float64) (float64, error) {
		s, err := speed(jd)
		if err != nil {
			return 0, err
		}
		switch c.Operator {
		case "<", "<=":
			return c.Value - s, nil
		case ">", ">=":
			return s - c.Value, nil
		default:
			return speedEqualTol - math.Abs(s-c.Value), nil
		}
	}
}

// RetrogradeCondition holds when the body's retrograde status matches.
type RetrogradeCondition struct {
	Body       ephem.Body
	Retrograde bool
}

func (c RetrogradeCondition) Type() string         { return TypeRetrograde }
func (c RetrogradeCondition) Bodies() []ephem.Body { return []ephem.Body{c.Body} }

func (c RetrogradeCondition) Evaluate(snap *Snapshot) (bool, error) {
	pos, err := snap.position(c.Body)
	if err != nil {
		return false, err
	}
	return (pos.SpeedLongitude < 0) == c.Retrograde, nil
}

func (c RetrogradeCondition) Margin(src scalar.Source) scalar.Func {
	speed := scalar.Speed(src, c.Body)
	return func(jd float64) (float64, error) {
		s, err := speed(jd)
		if err != nil {
			return 0, err
		}
		if c.Retrograde {
			return -s, nil
		}
		return s, nil
	}
}

// LongitudeCondition holds when the body's longitude lies in [Min, Max].
// Min > Max wraps through 0°.
type LongitudeCondition struct {
	Body ephem.Body
	Min  float64
	Max  float64
}

func (c LongitudeCondition) Type() string         { return TypeLongitude }
func (c LongitudeCondition) Bodies() []ephem.Body { return []ephem.Body{c.Body} }

func (c LongitudeCondition) span() float64 {
	s := scalar.Norm360(c.Max - c.Min)
	if s == 0 {
		s = 360
	}
	return s
}

func (c LongitudeCondition) Evaluate(snap *Snapshot) (bool, error) {
	pos, err := snap.position(c.Body)
	if err != nil {
		return false, err
	}
	return scalar.Norm360(pos.Longitude-c.Min) <= c.span(), nil
}

func (c LongitudeCondition) Margin(src scalar.Source) scalar.Func {
	lon := scalar.Longitude(src, c.Body)
	span := c.span()
	center := scalar.Norm360(c.Min + span/2)
	return func(jd float64) (float64, error) {
		v, err := lon(jd)
		if err != nil {
			return 0, err
		}
		return span/2 - scalar.ArcDistance(v, center), nil
	}
}

// Rule is a named set of conditions combined with AND or OR.
type Rule struct {
	Name        string
	Description string
	Logic       Logic
	Conditions  []Condition
}

// Bodies returns the distinct bodies the rule's conditions reference, in
// body order.
func (r *Rule) Bodies() []ephem.Body {
	seen := make(map[ephem.Body]bool)
	var out []ephem.Body
	for _, c := range r.Conditions {
		for _, b := range c.Bodies() {
			if !seen[b] {
				seen[b] = true
				out = append(out, b)
			}
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// Evaluate tests every condition against the snapshot and combines them by
// the rule's logic. It returns the overall verdict and how many conditions
// held individually. A condition error aborts the evaluation.
func (r *Rule) Evaluate(snap *Snapshot) (bool, int, error) {
	matched := 0
	for _, c := range r.Conditions {
		ok, err := c.Evaluate(snap)
		if err != nil {
			return false, 0, err
		}
		if ok {
			matched++
		}
	}
	switch r.Logic {
	case LogicOr:
		return matched > 0, matched, nil
	default:
		return matched == len(r.Conditions), matched, nil
	}
}
