package ephem

import "fmt"

// SiderealMode selects the ayanamsa used to convert tropical to sidereal
// longitudes. Values match the Swiss Ephemeris sidereal mode numbering.
// SiderealNone leaves the engine in tropical mode.
type SiderealMode int

const (
	SiderealNone SiderealMode = -1

	SiderealFaganBradley SiderealMode = 0
	SiderealLahiri       SiderealMode = 1
	SiderealDeLuce       SiderealMode = 2
	SiderealRaman        SiderealMode = 3
	SiderealKrishnamurti SiderealMode = 5
	SiderealYukteshwar   SiderealMode = 7
	SiderealJ2000        SiderealMode = 18
	SiderealJ1900        SiderealMode = 19
	SiderealB1950        SiderealMode = 20
	SiderealTrueCitra    SiderealMode = 27
	SiderealTrueRevati   SiderealMode = 28
)

var siderealNames = map[SiderealMode]string{
	SiderealNone:         "none",
	SiderealFaganBradley: "fagan_bradley",
	SiderealLahiri:       "lahiri",
	SiderealDeLuce:       "deluce",
	SiderealRaman:        "raman",
	SiderealKrishnamurti: "krishnamurti",
	SiderealYukteshwar:   "yukteshwar",
	SiderealJ2000:        "j2000",
	SiderealJ1900:        "j1900",
	SiderealB1950:        "b1950",
	SiderealTrueCitra:    "true_citra",
	SiderealTrueRevati:   "true_revati",
}

// String returns the configuration name for the mode.
func (m SiderealMode) String() string {
	if name, ok := siderealNames[m]; ok {
		return name
	}
	return fmt.Sprintf("sidereal(%d)", int(m))
}

// Valid reports whether m is a supported sidereal mode.
func (m SiderealMode) Valid() bool {
	_, ok := siderealNames[m]
	return ok
}

// ParseSiderealMode resolves a configuration name to a mode.
func ParseSiderealMode(name string) (SiderealMode, error) {
	for m, n := range siderealNames {
		if n == name {
			return m, nil
		}
	}
	return 0, NewConfigurationError(fmt.Sprintf("unknown sidereal mode %q", name))
}

// TidalModel selects the tidal acceleration value applied to lunar theory.
type TidalModel int

const (
	// TidalAutomatic lets the engine pick the value matching its ephemeris
	// files (DE431 for the standard distribution).
	TidalAutomatic TidalModel = iota
	TidalDE431
	TidalDE406
)

// Acceleration returns the tidal acceleration in arcsec/cty^2 passed to the
// provider. TidalAutomatic returns 0, which providers treat as "use the
// ephemeris file default".
func (m TidalModel) Acceleration() float64 {
	switch m {
	case TidalDE431:
		return -25.80
	case TidalDE406:
		return -25.826
	default:
		return 0
	}
}

// String returns the configuration name for the model.
func (m TidalModel) String() string {
	switch m {
	case TidalDE431:
		return "de431"
	case TidalDE406:
		return "de406"
	default:
		return "automatic"
	}
}

// ParseTidalModel resolves a configuration name to a model.
func ParseTidalModel(name string) (TidalModel, error) {
	switch name {
	case "automatic", "":
		return TidalAutomatic, nil
	case "de431":
		return TidalDE431, nil
	case "de406":
		return TidalDE406, nil
	default:
		return 0, NewConfigurationError(fmt.Sprintf("unknown tidal model %q", name))
	}
}

// Topocentric holds an observer location for topocentric positions.
type Topocentric struct {
	Lat float64 // geographic latitude, degrees north
	Lon float64 // geographic longitude, degrees east
	Alt float64 // altitude above sea level, meters
}

// EngineState is the complete engine configuration at an instant. Exactly one
// EngineState is active per process; it is mutated only through Scopes.
// EngineState is a value type: copying it is saving it, and restoring a saved
// copy is exact.
type EngineState struct {
	Sidereal SiderealMode
	Tidal    TidalModel

	// Topo is the topocentric observer; meaningful only when HasTopo is set.
	// Zero values with HasTopo=false mean geocentric.
	Topo    Topocentric
	HasTopo bool
}

// Equal reports exact equality of two states.
func (s EngineState) Equal(o EngineState) bool {
	return s == o
}

// StateRequest names the state components a scope wants to change. Nil fields
// inherit from the enclosing scope (or the engine default at the outermost
// level). A request naming no fields is valid: it serializes access without
// touching configuration.
type StateRequest struct {
	Sidereal *SiderealMode
	Tidal    *TidalModel
	Topo     *Topocentric
}

// ConflictsWith reports the first component both requests pin to different
// values, or "" when the requests are compatible. Nesting is a stack, never
// a merge: a nested scope may restate an outer value but not contradict it
// without the override flag.
func (r StateRequest) ConflictsWith(outer StateRequest) string {
	if r.Sidereal != nil && outer.Sidereal != nil && *r.Sidereal != *outer.Sidereal {
		return "sidereal mode"
	}
	if r.Tidal != nil && outer.Tidal != nil && *r.Tidal != *outer.Tidal {
		return "tidal model"
	}
	if r.Topo != nil && outer.Topo != nil && *r.Topo != *outer.Topo {
		return "topocentric location"
	}
	return ""
}

// applyTo returns the state resulting from applying the request on top of s.
func (r StateRequest) applyTo(s EngineState) EngineState {
	next := s
	if r.Sidereal != nil {
		next.Sidereal = *r.Sidereal
	}
	if r.Tidal != nil {
		next.Tidal = *r.Tidal
	}
	if r.Topo != nil {
		next.Topo = *r.Topo
		next.HasTopo = true
	}
	return next
}

// WithSidereal is a convenience constructor for a sidereal-only request.
func WithSidereal(mode SiderealMode) StateRequest {
	return StateRequest{Sidereal: &mode}
}

// WithTopo is a convenience constructor for a topocentric-only request.
func WithTopo(lat, lon, alt float64) StateRequest {
	return StateRequest{Topo: &Topocentric{Lat: lat, Lon: lon, Alt: alt}}
}

// WithTidal is a convenience constructor for a tidal-only request.
func WithTidal(model TidalModel) StateRequest {
	return StateRequest{Tidal: &model}
}
