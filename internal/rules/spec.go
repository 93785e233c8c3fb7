package rules

import (
	"fmt"

	"github.com/roach88/sidereal/internal/ephem"
)

// ConditionSpec is the wire form of a condition as decoded from a rule
// file. Which fields are meaningful depends on Type; Build rejects specs
// whose type or body names do not resolve.
type ConditionSpec struct {
	Type string `json:"type" yaml:"type"`

	Body  string `json:"body,omitempty" yaml:"body,omitempty"`
	BodyA string `json:"body_a,omitempty" yaml:"body_a,omitempty"`
	BodyB string `json:"body_b,omitempty" yaml:"body_b,omitempty"`

	Aspect string   `json:"aspect,omitempty" yaml:"aspect,omitempty"`
	Orb    *float64 `json:"orb,omitempty" yaml:"orb,omitempty"`

	Dignity string `json:"dignity,omitempty" yaml:"dignity,omitempty"`
	State   string `json:"state,omitempty" yaml:"state,omitempty"`

	Operator string  `json:"operator,omitempty" yaml:"operator,omitempty"`
	Value    float64 `json:"value,omitempty" yaml:"value,omitempty"`

	Retrograde *bool `json:"retrograde,omitempty" yaml:"retrograde,omitempty"`

	MinLongitude float64 `json:"min_longitude,omitempty" yaml:"min_longitude,omitempty"`
	MaxLongitude float64 `json:"max_longitude,omitempty" yaml:"max_longitude,omitempty"`
}

// RuleSpec is the wire form of a rule.
type RuleSpec struct {
	Name        string          `json:"name" yaml:"name"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	Logic       string          `json:"logic,omitempty" yaml:"logic,omitempty"`
	Conditions  []ConditionSpec `json:"conditions" yaml:"conditions"`
}

// Build resolves the spec into a validated Rule. An empty logic defaults
// to AND. All errors are collected; the rule is only usable when the
// returned slice is empty.
func (s RuleSpec) Build() (Rule, []ValidationError) {
	r := Rule{
		Name:        s.Name,
		Description: s.Description,
		Logic:       Logic(s.Logic),
	}
	if r.Logic == "" {
		r.Logic = LogicAnd
	}

	var errs []ValidationError
	for i, cs := range s.Conditions {
		field := fmt.Sprintf("conditions[%d]", i)
		cond, cerrs := cs.build(field)
		errs = append(errs, cerrs...)
		if cond != nil {
			r.Conditions = append(r.Conditions, cond)
		}
	}

	errs = append(errs, Validate(&r)...)
	return r, errs
}

func (s ConditionSpec) build(field string) (Condition, []ValidationError) {
	switch s.Type {
	case TypeAspect:
		a, errs := parseBody(field+".body_a", s.BodyA)
		b, berrs := parseBody(field+".body_b", s.BodyB)
		errs = append(errs, berrs...)
		if len(errs) > 0 {
			return nil, errs
		}
		orb := 0.0
		if s.Orb != nil {
			orb = *s.Orb
		}
		return AspectCondition{BodyA: a, BodyB: b, Aspect: s.Aspect, Orb: orb}, nil
	case TypeDignity:
		b, errs := parseBody(field+".body", s.Body)
		if len(errs) > 0 {
			return nil, errs
		}
		return DignityCondition{Body: b, Dignity: DignityType(s.Dignity)}, nil
	case TypeCombustion:
		b, errs := parseBody(field+".body", s.Body)
		if len(errs) > 0 {
			return nil, errs
		}
		return CombustionCondition{Body: b, State: CombustionState(s.State)}, nil
	case TypeSpeed:
		b, errs := parseBody(field+".body", s.Body)
		if len(errs) > 0 {
			return nil, errs
		}
		return SpeedCondition{Body: b, Operator: s.Operator, Value: s.Value}, nil
	case TypeRetrograde:
		b, errs := parseBody(field+".body", s.Body)
		if len(errs) > 0 {
			return nil, errs
		}
		retro := true
		if s.Retrograde != nil {
			retro = *s.Retrograde
		}
		return RetrogradeCondition{Body: b, Retrograde: retro}, nil
	case TypeLongitude:
		b, errs := parseBody(field+".body", s.Body)
		if len(errs) > 0 {
			return nil, errs
		}
		return LongitudeCondition{Body: b, Min: s.MinLongitude, Max: s.MaxLongitude}, nil
	default:
		return nil, []ValidationError{{
			Field:   field + ".type",
			Message: fmt.Sprintf("unknown condition type %q", s.Type),
			Code:    ErrCondUnknownType,
		}}
	}
}

func parseBody(field, name string) (ephem.Body, []ValidationError) {
	b, err := ephem.ParseBody(name)
	if err != nil {
		return 0, []ValidationError{{
			Field:   field,
			Message: fmt.Sprintf("unknown body %q", name),
			Code:    ErrCondUnknownBody,
		}}
	}
	return b, nil
}
