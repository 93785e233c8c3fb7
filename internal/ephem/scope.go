package ephem

import "log/slog"

// Scope is a stack-scoped state isolation context.
//
// Acquire saves the active EngineState, applies the request, and hands back a
// Scope that holds the engine lock. Release restores the saved state exactly
// and returns the lock once the outermost scope unwinds. The intended shape
// is defer-based so restoration happens on every exit path:
//
//	scope, err := eng.Acquire(ephem.WithSidereal(ephem.SiderealKrishnamurti))
//	if err != nil { ... }
//	defer scope.Release()
//
// Nesting goes through Scope.Nest, never through a second Acquire from the
// same goroutine (the lock is not re-entrant; a second Acquire deadlocks by
// design — nesting is a stack owned by the outer scope). A nested request
// that contradicts a pending outer request fails with ConflictingContextError
// unless AllowConflict is supplied.
//
// Scopes are stack-scoped values: they must not outlive the call frame that
// acquired them, and Release is idempotent so a deferred Release after an
// explicit one is harmless.
type Scope struct {
	eng      *Engine
	parent   *Scope
	saved    EngineState
	req      StateRequest
	override bool
	released bool
}

// NestOption configures Nest.
type NestOption func(*Scope)

// AllowConflict lets a nested scope override a pending outer request.
// The outer state is still restored exactly when the nested scope releases.
func AllowConflict() NestOption {
	return func(s *Scope) { s.override = true }
}

// Acquire locks the engine, saves the active state, and applies the request.
// Blocks until any other holder releases. On apply failure the saved state is
// restored and the lock released before returning.
func (e *Engine) Acquire(req StateRequest) (*Scope, error) {
	e.mu.Lock()

	s := &Scope{eng: e, saved: e.state, req: req}
	next := req.applyTo(e.state)
	if err := e.transition(e.state, next, false); err != nil {
		// Best-effort rollback of any partial mode writes before giving
		// the lock back.
		_ = e.transition(next, s.saved, true)
		e.mu.Unlock()
		return nil, err
	}
	e.state = next
	e.top = s
	return s, nil
}

// Nest opens a child scope inside s. The child shares the lock hold of the
// acquisition chain; only stack-order release is permitted.
func (s *Scope) Nest(req StateRequest, opts ...NestOption) (*Scope, error) {
	e := s.eng
	if s.released {
		return nil, NewScopeMisuseError("scope used after release")
	}
	if e.top != s {
		return nil, NewScopeMisuseError("nest called on a non-innermost scope")
	}

	child := &Scope{eng: e, parent: s, saved: e.state, req: req}
	for _, opt := range opts {
		opt(child)
	}

	if !child.override {
		for outer := s; outer != nil; outer = outer.parent {
			if field := req.ConflictsWith(outer.req); field != "" {
				return nil, NewConflictingContextError(field)
			}
		}
	}

	next := req.applyTo(e.state)
	if err := e.transition(e.state, next, false); err != nil {
		_ = e.transition(next, child.saved, true)
		return nil, err
	}
	e.state = next
	e.top = child
	return child, nil
}

// Release restores the state saved at entry and, for the outermost scope,
// releases the engine lock. Restoration is unconditional: it happens whether
// the scope body succeeded or failed. Idempotent.
//
// Releasing out of stack order fails with ConflictingContextError and leaves
// the stack untouched; deferred releases naturally run in stack order.
func (s *Scope) Release() error {
	if s.released {
		return nil
	}
	e := s.eng
	if e.top != s {
		return NewScopeMisuseError("scope released out of stack order")
	}

	err := e.transition(e.state, s.saved, false)
	// The tracked state is restored even if a provider setter failed:
	// the saved value is the source of truth for outer scopes.
	e.state = s.saved
	e.top = s.parent
	s.released = true

	if s.parent == nil {
		e.mu.Unlock()
	}
	if err != nil {
		slog.Warn("engine state restore reported provider error", "err", err)
	}
	return err
}

// Position computes a body position inside the scope, under the lock already
// held by the acquisition chain.
func (s *Scope) Position(t UTTime, body Body) (PositionSample, error) {
	if s.released {
		return PositionSample{}, NewScopeMisuseError("scope used after release")
	}
	if !s.eng.cfg.Allowed(body) {
		return PositionSample{}, NewUnsupportedBodyError(body)
	}
	return s.eng.position(t, body)
}

// Declination computes a body's equatorial declination inside the scope.
func (s *Scope) Declination(t UTTime, body Body) (float64, error) {
	if s.released {
		return 0, NewScopeMisuseError("scope used after release")
	}
	if !s.eng.cfg.Allowed(body) {
		return 0, NewUnsupportedBodyError(body)
	}
	return s.eng.declination(t, body)
}

// Phenomena computes planetary phenomena inside the scope.
func (s *Scope) Phenomena(t UTTime, body Body) (Phenomena, error) {
	if s.released {
		return Phenomena{}, NewScopeMisuseError("scope used after release")
	}
	if !s.eng.cfg.Allowed(body) {
		return Phenomena{}, NewUnsupportedBodyError(body)
	}
	return s.eng.phenomena(t, body)
}

// State returns the EngineState active inside the scope.
func (s *Scope) State() EngineState {
	return s.eng.state
}
