package search

import (
	"github.com/roach88/sidereal/internal/ephem"
)

// Mode selects what the engine looks for.
type Mode int

const (
	// ModeCrossing finds instants where f crosses the target value.
	ModeCrossing Mode = iota + 1
	// ModeExtremum finds instants where f has a local extremum, via sign
	// changes of a discrete derivative proxy. The target is ignored.
	ModeExtremum
)

// Engine is a bounded root-finder over scalar functions of time. An Engine
// is a bundle of search parameters; it is stateless across calls and safe
// for concurrent use.
type Engine struct {
	maxSpanDays   float64
	stepDays      float64
	minStepDays   float64
	toleranceDays float64
	maxIter       int
	angular       bool
	strict        bool
	kind          Kind
	tokens        TokenGenerator
}

// Option configures an Engine. Options passed to FindCrossings override the
// engine's settings for that call only.
type Option func(*Engine)

// WithMaxSpanDays sets the window guardrail. Windows wider than this fail
// with SearchRangeTooLargeError before any sampling.
func WithMaxSpanDays(days float64) Option {
	return func(e *Engine) { e.maxSpanDays = days }
}

// WithStepDays sets the coarse sampling step.
func WithStepDays(days float64) Option {
	return func(e *Engine) { e.stepDays = days }
}

// WithMinStepDays sets the floor for adaptive step shrinking.
func WithMinStepDays(days float64) Option {
	return func(e *Engine) { e.minStepDays = days }
}

// WithTolerance sets the refinement tolerance: the bracket width, in days,
// below which refinement stops.
func WithTolerance(days float64) Option {
	return func(e *Engine) { e.toleranceDays = days }
}

// Linear marks the scalar as non-angular: crossings use plain subtraction
// instead of shortest-arc distance. Use for speed and declination signals.
func Linear() Option {
	return func(e *Engine) { e.angular = false }
}

// WithKind tags produced results with a domain kind.
func WithKind(kind Kind) Option {
	return func(e *Engine) { e.kind = kind }
}

// WithStrictAmbiguity makes unresolvable multi-crossings fail with
// AmbiguousCrossingError instead of reporting the first crossing with a
// metadata flag.
func WithStrictAmbiguity() Option {
	return func(e *Engine) { e.strict = true }
}

// WithTokenGenerator replaces the run-token generator. Tests use
// FixedGenerator for deterministic output.
func WithTokenGenerator(g TokenGenerator) Option {
	return func(e *Engine) { e.tokens = g }
}

// New creates an Engine. Defaults: the package-level guardrail span, 1-day
// step, 1-minute step floor, 1-second tolerance, angular signal, UUIDv7
// tokens.
func New(opts ...Option) *Engine {
	e := &Engine{
		maxSpanDays:   ephem.DefaultMaxSearchDays,
		stepDays:      1.0,
		minStepDays:   1.0 / 1440.0,
		toleranceDays: ephem.DefaultToleranceFloorDays,
		maxIter:       64,
		angular:       true,
		kind:          KindCrossing,
		tokens:        UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// with returns a copy with per-call overrides applied, or the engine itself
// when there are none.
func (e *Engine) with(opts []Option) *Engine {
	if len(opts) == 0 {
		return e
	}
	clone := *e
	for _, opt := range opts {
		opt(&clone)
	}
	return &clone
}
