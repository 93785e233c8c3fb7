package ephem

import (
	"fmt"
	"log/slog"
	"sync"
)

// Engine is the gateway to the shared ephemeris provider.
//
// The provider's mode state (sidereal, topocentric, tidal) is process-global
// and mutable, so every call — position lookups and mode changes alike — is
// serialized behind one mutex. Mode changes happen only through Scopes
// (see scope.go); direct gateway calls open an implicit per-call scope by
// taking the lock around exactly one provider call.
//
// Thread-safety model:
//   - Position/Declination/Phenomena: safe from any goroutine, each call
//     holds the lock for a single sample so external cancellation can be
//     checked between samples
//   - Acquire: safe from any goroutine; blocks until the lock is free and
//     holds it until the outermost Scope releases
//
// INVARIANTS:
//   - at most one EngineState is active at any instant
//   - state is mutated only by Scope apply/restore
//   - a restored state equals the saved copy exactly
type Engine struct {
	mu       sync.Mutex
	provider Provider
	cfg      Config

	// state is the active configuration. Guarded by mu.
	state EngineState

	// top is the innermost unreleased scope, nil outside any scope.
	// Guarded by mu (scopes mutate it while holding the lock).
	top *Scope
}

// NewEngine wires a provider with a configuration and applies the configured
// defaults as the initial EngineState. Fails with a ConfigurationError for an
// invalid config and a ComputationError if the provider rejects the initial
// mode calls.
func NewEngine(p Provider, cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{provider: p, cfg: cfg}
	initial := EngineState{
		Sidereal: cfg.DefaultSidereal,
		Tidal:    cfg.DefaultTidal,
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.transition(e.state, initial, true); err != nil {
		return nil, err
	}
	e.state = initial

	slog.Debug("ephemeris engine initialized",
		"sidereal", initial.Sidereal.String(),
		"tidal", initial.Tidal.String(),
		"allowed_bodies", len(cfg.AllowedBodies))
	return e, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// State returns the active EngineState. Mostly useful in tests asserting the
// round-trip law.
func (e *Engine) State() EngineState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// PositionSample is one typed, immutable position result.
type PositionSample struct {
	Longitude      float64 // ecliptic longitude, degrees [0,360)
	Latitude       float64 // ecliptic latitude, degrees
	Distance       float64 // AU
	SpeedLongitude float64 // degrees/day, negative while retrograde
	SpeedLatitude  float64 // degrees/day
	SpeedDistance  float64 // AU/day
	IsRetrograde   bool
}

// Position computes the position of a body at a UT instant under the active
// engine state. Opens an implicit per-call scope: the lock is held for this
// single provider call only.
//
// Fails with UnsupportedBodyError for bodies outside the allow-list and
// EphemerisComputationError when the provider fails. Never approximates.
func (e *Engine) Position(t UTTime, body Body) (PositionSample, error) {
	if !e.cfg.Allowed(body) {
		return PositionSample{}, NewUnsupportedBodyError(body)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.position(t, body)
}

// Declination computes the equatorial declination of a body in degrees.
func (e *Engine) Declination(t UTTime, body Body) (float64, error) {
	if !e.cfg.Allowed(body) {
		return 0, NewUnsupportedBodyError(body)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.declination(t, body)
}

// Phenomena computes planetary phenomena (phase angle, elongation, ...).
// Fails with a ComputationError if the provider lacks the capability.
func (e *Engine) Phenomena(t UTTime, body Body) (Phenomena, error) {
	if !e.cfg.Allowed(body) {
		return Phenomena{}, NewUnsupportedBodyError(body)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phenomena(t, body)
}

// NextSolarEclipse finds the next global solar eclipse after start. The
// window guardrail applies: maxSpanDays <= 0 uses the configured maximum.
func (e *Engine) NextSolarEclipse(start UTTime, maxSpanDays float64) (RawEclipse, error) {
	return e.eclipse(start, maxSpanDays, true)
}

// NextLunarEclipse finds the next lunar eclipse after start.
func (e *Engine) NextLunarEclipse(start UTTime, maxSpanDays float64) (RawEclipse, error) {
	return e.eclipse(start, maxSpanDays, false)
}

// position performs the raw calc under an already-held lock.
func (e *Engine) position(t UTTime, body Body) (PositionSample, error) {
	raw, err := e.provider.Calc(t.JD(), body, e.calcFlags())
	if err != nil {
		return PositionSample{}, NewComputationError(
			fmt.Sprintf("position calculation failed for %s", body), err)
	}
	return PositionSample{
		Longitude:      raw[0],
		Latitude:       raw[1],
		Distance:       raw[2],
		SpeedLongitude: raw[3],
		SpeedLatitude:  raw[4],
		SpeedDistance:  raw[5],
		IsRetrograde:   raw[3] < 0,
	}, nil
}

// declination performs an equatorial calc under an already-held lock.
// Equatorial output puts declination in the second component.
func (e *Engine) declination(t UTTime, body Body) (float64, error) {
	flags := FlagSwiss | FlagSpeed | FlagEquatorial
	if e.state.HasTopo {
		flags |= FlagTopocentric
	}
	raw, err := e.provider.Calc(t.JD(), body, flags)
	if err != nil {
		return 0, NewComputationError(
			fmt.Sprintf("declination calculation failed for %s", body), err)
	}
	return raw[1], nil
}

func (e *Engine) phenomena(t UTTime, body Body) (Phenomena, error) {
	pp, ok := e.provider.(PhenoProvider)
	if !ok {
		return Phenomena{}, NewComputationError("provider does not support phenomena", nil)
	}
	ph, err := pp.Pheno(t.JD(), body, FlagSwiss)
	if err != nil {
		return Phenomena{}, NewComputationError(
			fmt.Sprintf("phenomena calculation failed for %s", body), err)
	}
	return ph, nil
}

func (e *Engine) eclipse(start UTTime, maxSpanDays float64, solar bool) (RawEclipse, error) {
	if maxSpanDays <= 0 {
		maxSpanDays = e.cfg.MaxSearchDays
	}
	if maxSpanDays > e.cfg.MaxSearchDays {
		return RawEclipse{}, NewSearchRangeTooLargeError(maxSpanDays, e.cfg.MaxSearchDays)
	}
	searcher, ok := e.provider.(EclipseSearcher)
	if !ok {
		return RawEclipse{}, NewComputationError("provider does not support eclipse search", nil)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	var (
		raw RawEclipse
		err error
	)
	if solar {
		raw, err = searcher.NextSolarEclipse(start.JD(), false)
	} else {
		raw, err = searcher.NextLunarEclipse(start.JD(), false)
	}
	if err != nil {
		return RawEclipse{}, NewComputationError("eclipse search failed", err)
	}
	if raw.PeakJD-start.JD() > maxSpanDays {
		return RawEclipse{}, NewSearchRangeTooLargeError(raw.PeakJD-start.JD(), maxSpanDays)
	}
	return raw, nil
}

// calcFlags derives the calc bitmask from the active state.
func (e *Engine) calcFlags() CalcFlag {
	flags := FlagSwiss | FlagSpeed
	if e.state.Sidereal != SiderealNone {
		flags |= FlagSidereal
	}
	if e.state.HasTopo {
		flags |= FlagTopocentric
	}
	return flags
}

// transition drives the provider's mode setters from one state to another.
// When force is set every component is written; otherwise only components
// that differ. Fails fast on the first provider error.
func (e *Engine) transition(from, to EngineState, force bool) error {
	if force || from.Sidereal != to.Sidereal {
		if to.Sidereal != SiderealNone {
			if err := e.provider.SetSidMode(to.Sidereal, 0, 0); err != nil {
				return NewComputationError("failed to set sidereal mode", err)
			}
		}
	}
	if force || from.Tidal != to.Tidal {
		if err := e.provider.SetTidAcc(to.Tidal.Acceleration()); err != nil {
			return NewComputationError("failed to set tidal acceleration", err)
		}
	}
	if force || from.Topo != to.Topo || from.HasTopo != to.HasTopo {
		if to.HasTopo {
			if err := e.provider.SetTopo(to.Topo.Lat, to.Topo.Lon, to.Topo.Alt); err != nil {
				return NewComputationError("failed to set topocentric location", err)
			}
		} else {
			// Geocentric center; mirrors what the engine means by "no observer".
			if err := e.provider.SetTopo(0, 0, 0); err != nil {
				return NewComputationError("failed to reset topocentric location", err)
			}
		}
	}
	return nil
}
