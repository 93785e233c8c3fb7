package ephem

// CalcFlag is the bitmask passed to the provider's Calc call. Values match
// the Swiss Ephemeris SEFLG_* constants.
type CalcFlag int32

const (
	// FlagSwiss selects the compressed Swiss Ephemeris files.
	FlagSwiss CalcFlag = 2
	// FlagHeliocentric requests heliocentric positions.
	FlagHeliocentric CalcFlag = 8
	// FlagSpeed requests speed components alongside positions.
	FlagSpeed CalcFlag = 256
	// FlagEquatorial requests equatorial coordinates (RA/declination).
	FlagEquatorial CalcFlag = 2048
	// FlagTopocentric requests topocentric positions (observer set via SetTopo).
	FlagTopocentric CalcFlag = 32 * 1024
	// FlagSidereal requests sidereal longitudes (ayanamsa set via SetSidMode).
	FlagSidereal CalcFlag = 64 * 1024
)

// RawPosition is the raw six-tuple returned by the engine:
// longitude, latitude, distance, and their daily rates of change.
// In equatorial mode the first two components are RA and declination.
type RawPosition [6]float64

// Provider is the external ephemeris engine. Implementations are opaque,
// versioned, side-effecting: the mode setters mutate engine-global state,
// which is why all calls are funneled through the Engine lock.
//
// A Provider must be deterministic: identical inputs under identical mode
// state return bit-identical results.
type Provider interface {
	// Calc computes the position of a body at a UT Julian Day.
	Calc(jd float64, body Body, flags CalcFlag) (RawPosition, error)

	// SetSidMode configures the sidereal mode (ayanamsa). t0 and ayanT0 are
	// only meaningful for user-defined modes and are normally zero.
	SetSidMode(mode SiderealMode, t0, ayanT0 float64) error

	// SetTopo configures the topocentric observer location.
	SetTopo(lat, lon, alt float64) error

	// SetTidAcc configures the tidal acceleration. Zero means "use the
	// ephemeris file default" (TidalAutomatic).
	SetTidAcc(acc float64) error
}

// Phenomena holds planetary phenomena attributes for one instant.
type Phenomena struct {
	PhaseAngle        float64
	PhaseFraction     float64
	Elongation        float64
	ApparentDiameter  float64
	ApparentMagnitude float64
}

// PhenoProvider is an optional provider capability for planetary phenomena
// (phase angle, elongation, magnitude).
type PhenoProvider interface {
	Pheno(jd float64, body Body, flags CalcFlag) (Phenomena, error)
}

// EclipseKind distinguishes eclipse geometries as reported by the engine.
type EclipseKind string

const (
	EclipseTotal     EclipseKind = "total"
	EclipseAnnular   EclipseKind = "annular"
	EclipsePartial   EclipseKind = "partial"
	EclipsePenumbral EclipseKind = "penumbral"
)

// RawEclipse is the engine's report of one eclipse.
type RawEclipse struct {
	PeakJD    float64
	Kind      EclipseKind
	Magnitude float64
}

// EclipseSearcher is an optional provider capability wrapping the engine's
// own eclipse search (sol_eclipse_when_glob and friends). The search itself
// stays opaque; the gateway only adds range guarding and typed errors.
type EclipseSearcher interface {
	NextSolarEclipse(jd float64, backward bool) (RawEclipse, error)
	NextLunarEclipse(jd float64, backward bool) (RawEclipse, error)
}
