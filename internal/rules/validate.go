package rules

import (
	"fmt"
	"strings"

	"github.com/roach88/sidereal/internal/ephem"
)

// Validation error codes (R100-R199)
const (
	// Rule-level errors (R100-R109)
	ErrRuleNameEmpty    = "R100" // name is required
	ErrRuleNoConditions = "R101" // at least one condition required
	ErrRuleBadLogic     = "R102" // logic must be AND or OR

	// Condition errors (R110-R119)
	ErrCondUnknownType    = "R110" // unrecognized condition type
	ErrCondUnknownBody    = "R111" // body not a known body
	ErrCondUnknownAspect  = "R112" // aspect name not recognized
	ErrCondNegativeOrb    = "R113" // orb must be >= 0
	ErrCondSelfAspect     = "R114" // aspect needs two distinct bodies
	ErrCondUnknownDignity = "R115" // dignity type not recognized
	ErrCondUnknownState   = "R116" // combustion state not recognized
	ErrCondSunCombustion  = "R117" // combustion of the Sun itself
	ErrCondBadOperator    = "R118" // invalid comparison operator
	ErrCondBadRange       = "R119" // longitude bounds out of range
)

// ValidationError represents a rule validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a rule and all of its conditions. It returns every error
// found rather than failing fast.
func Validate(r *Rule) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(r.Name) == "" {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: "rule name is required and must be non-empty",
			Code:    ErrRuleNameEmpty,
		})
	}
	if len(r.Conditions) == 0 {
		errs = append(errs, ValidationError{
			Field:   "conditions",
			Message: "at least one condition is required",
			Code:    ErrRuleNoConditions,
		})
	}
	if r.Logic != "" && r.Logic != LogicAnd && r.Logic != LogicOr {
		errs = append(errs, ValidationError{
			Field:   "logic",
			Message: fmt.Sprintf("logic must be %q or %q, got %q", LogicAnd, LogicOr, r.Logic),
			Code:    ErrRuleBadLogic,
		})
	}

	for i, c := range r.Conditions {
		field := fmt.Sprintf("conditions[%d]", i)
		errs = append(errs, c.Validate(field)...)
	}
	return errs
}

// Validate implements Condition.
func (c AspectCondition) Validate(field string) []ValidationError {
	var errs []ValidationError
	errs = appendBodyCheck(errs, field+".body_a", c.BodyA)
	errs = appendBodyCheck(errs, field+".body_b", c.BodyB)
	if c.BodyA == c.BodyB {
		errs = append(errs, ValidationError{
			Field:   field,
			Message: "aspect requires two distinct bodies",
			Code:    ErrCondSelfAspect,
		})
	}
	if !KnownAspect(c.Aspect) {
		errs = append(errs, ValidationError{
			Field:   field + ".aspect",
			Message: fmt.Sprintf("unknown aspect %q", c.Aspect),
			Code:    ErrCondUnknownAspect,
		})
	}
	if c.Orb < 0 {
		errs = append(errs, ValidationError{
			Field:   field + ".orb",
			Message: fmt.Sprintf("orb must be >= 0, got %g", c.Orb),
			Code:    ErrCondNegativeOrb,
		})
	}
	return errs
}

// Validate implements Condition.
func (c DignityCondition) Validate(field string) []ValidationError {
	var errs []ValidationError
	errs = appendBodyCheck(errs, field+".body", c.Body)
	if !KnownDignity(c.Dignity) {
		errs = append(errs, ValidationError{
			Field:   field + ".dignity",
			Message: fmt.Sprintf("unknown dignity type %q", c.Dignity),
			Code:    ErrCondUnknownDignity,
		})
	}
	return errs
}

// Validate implements Condition.
func (c CombustionCondition) Validate(field string) []ValidationError {
	var errs []ValidationError
	errs = appendBodyCheck(errs, field+".body", c.Body)
	if c.Body == ephem.Sun {
		errs = append(errs, ValidationError{
			Field:   field + ".body",
			Message: "the Sun cannot be combust relative to itself",
			Code:    ErrCondSunCombustion,
		})
	}
	if !KnownCombustionState(c.State) {
		errs = append(errs, ValidationError{
			Field:   field + ".state",
			Message: fmt.Sprintf("unknown combustion state %q", c.State),
			Code:    ErrCondUnknownState,
		})
	}
	return errs
}

// Validate implements Condition.
func (c SpeedCondition) Validate(field string) []ValidationError {
	var errs []ValidationError
	errs = appendBodyCheck(errs, field+".body", c.Body)
	switch c.Operator {
	case "<", ">", "<=", ">=", "==":
	default:
		errs = append(errs, ValidationError{
			Field:   field + ".operator",
			Message: fmt.Sprintf("operator must be one of <, >, <=, >=, ==, got %q", c.Operator),
			Code:    ErrCondBadOperator,
		})
	}
	return errs
}

// Validate implements Condition.
func (c RetrogradeCondition) Validate(field string) []ValidationError {
	return appendBodyCheck(nil, field+".body", c.Body)
}

// Validate implements Condition.
func (c LongitudeCondition) Validate(field string) []ValidationError {
	var errs []ValidationError
	errs = appendBodyCheck(errs, field+".body", c.Body)
	if c.Min < 0 || c.Min >= 360 || c.Max < 0 || c.Max >= 360 {
		errs = append(errs, ValidationError{
			Field:   field,
			Message: fmt.Sprintf("longitude bounds must lie in [0,360), got [%g, %g]", c.Min, c.Max),
			Code:    ErrCondBadRange,
		})
	} else if c.Min == c.Max {
		errs = append(errs, ValidationError{
			Field:   field,
			Message: "longitude range must be non-degenerate",
			Code:    ErrCondBadRange,
		})
	}
	return errs
}

func appendBodyCheck(errs []ValidationError, field string, b ephem.Body) []ValidationError {
	if !b.Known() {
		errs = append(errs, ValidationError{
			Field:   field,
			Message: fmt.Sprintf("unknown body %s", b),
			Code:    ErrCondUnknownBody,
		})
	}
	return errs
}
