// Package orbit provides a deterministic synthetic ephemeris provider.
//
// Bodies move on uniform circular orbits with an optional sinusoidal wobble
// term, which is enough to produce every signal shape the search layer cares
// about: monotonic longitude growth, seam crossings, retrograde episodes
// (speed sign changes), and configurable separations. Positions are closed-
// form, so tests and the offline CLI mode get analytic ground truth without
// ephemeris data files.
package orbit

import (
	"fmt"
	"math"
	"sync"

	"github.com/roach88/sidereal/internal/ephem"
)

// J2000 is the default model epoch (2000-01-01 12:00 UT).
const J2000 = 2451545.0

const obliquity = 23.4367 // mean obliquity of the ecliptic, degrees

// BodyModel describes one synthetic body.
//
// Longitude at time t is
//
//	Lon0 + Rate*(t-Epoch) + WobbleAmp*sin(2*pi*(t-Epoch)/WobblePeriod)
//
// (mod 360). With WobbleAmp*2*pi/WobblePeriod > Rate the apparent speed
// changes sign periodically, modeling retrograde loops.
type BodyModel struct {
	EpochJD      float64
	Lon0         float64
	Rate         float64 // degrees/day
	WobbleAmp    float64 // degrees; zero disables the wobble
	WobblePeriod float64 // days
	Lat          float64 // constant ecliptic latitude, degrees
	Dist         float64 // AU
}

// longitudeAt returns the tropical longitude (unwrapped) and its derivative.
func (m BodyModel) longitudeAt(jd float64) (lon, speed float64) {
	dt := jd - m.EpochJD
	lon = m.Lon0 + m.Rate*dt
	speed = m.Rate
	if m.WobbleAmp != 0 && m.WobblePeriod != 0 {
		w := 2 * math.Pi / m.WobblePeriod
		lon += m.WobbleAmp * math.Sin(w*dt)
		speed += m.WobbleAmp * w * math.Cos(w*dt)
	}
	return lon, speed
}

// Provider implements ephem.Provider with closed-form motion. It also
// records every mode call so tests can assert exact save/restore behavior.
//
// Thread-safety: guarded by an internal mutex, though the engine serializes
// calls anyway.
type Provider struct {
	mu     sync.Mutex
	bodies map[ephem.Body]BodyModel

	sidMode ephem.SiderealMode
	topo    ephem.Topocentric
	tidAcc  float64

	failures map[ephem.Body]error
	calls    int
}

// New creates a provider with the default body set: rates approximate real
// mean motions, and Mercury carries a wobble big enough to go retrograde.
func New() *Provider {
	return &Provider{
		sidMode: ephem.SiderealNone,
		bodies: map[ephem.Body]BodyModel{
			ephem.Sun:      {EpochJD: J2000, Lon0: 280.0, Rate: 0.9856, Dist: 1.0},
			ephem.Moon:     {EpochJD: J2000, Lon0: 218.3, Rate: 13.1764, Lat: 5.1, Dist: 0.00257},
			ephem.Mercury:  {EpochJD: J2000, Lon0: 252.3, Rate: 0.9856, WobbleAmp: 23, WobblePeriod: 116, Dist: 0.7},
			ephem.Venus:    {EpochJD: J2000, Lon0: 181.9, Rate: 0.9856, WobbleAmp: 46, WobblePeriod: 584, Dist: 0.9},
			ephem.Mars:     {EpochJD: J2000, Lon0: 355.4, Rate: 0.524, Dist: 1.5},
			ephem.Jupiter:  {EpochJD: J2000, Lon0: 34.4, Rate: 0.0831, Dist: 5.2},
			ephem.Saturn:   {EpochJD: J2000, Lon0: 50.1, Rate: 0.0334, Dist: 9.5},
			ephem.Uranus:   {EpochJD: J2000, Lon0: 314.1, Rate: 0.0117, Dist: 19.2},
			ephem.Neptune:  {EpochJD: J2000, Lon0: 304.3, Rate: 0.006, Dist: 30.1},
			ephem.Pluto:    {EpochJD: J2000, Lon0: 238.9, Rate: 0.004, Dist: 39.5},
			ephem.MeanNode: {EpochJD: J2000, Lon0: 125.0, Rate: -0.0529, Dist: 0.00257},
		},
	}
}

// SetModel installs or replaces the model for a body.
func (p *Provider) SetModel(body ephem.Body, m BodyModel) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bodies[body] = m
}

// FailBody makes Calc fail for one body with the given error. Pass nil to
// clear. Used to exercise discontinuity and error propagation paths.
func (p *Provider) FailBody(body ephem.Body, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failures == nil {
		p.failures = make(map[ephem.Body]error)
	}
	if err == nil {
		delete(p.failures, body)
		return
	}
	p.failures[body] = err
}

// ayanamsa returns the synthetic ayanamsa for the active mode: a fixed
// per-mode offset, which is all the search layer needs from sidereal mode.
func (p *Provider) ayanamsa() float64 {
	if p.sidMode == ephem.SiderealNone {
		return 0
	}
	return 24.0 + 0.05*float64(p.sidMode)
}

// Calc implements ephem.Provider.
func (p *Provider) Calc(jd float64, body ephem.Body, flags ephem.CalcFlag) (ephem.RawPosition, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++

	if err, ok := p.failures[body]; ok {
		return ephem.RawPosition{}, err
	}
	m, ok := p.bodies[body]
	if !ok {
		return ephem.RawPosition{}, fmt.Errorf("no orbit model for body %s", body)
	}

	lon, speed := m.longitudeAt(jd)
	if flags&ephem.FlagSidereal != 0 {
		lon -= p.ayanamsa()
	}
	lon = norm360(lon)

	if flags&ephem.FlagEquatorial != 0 {
		// First-order conversion: declination from ecliptic longitude with
		// zero latitude, RA approximated by longitude. Adequate for a
		// synthetic sky.
		decl := obliquity * math.Sin(lon*math.Pi/180)
		declSpeed := obliquity * math.Cos(lon*math.Pi/180) * speed * math.Pi / 180
		return ephem.RawPosition{lon, decl, m.Dist, speed, declSpeed, 0}, nil
	}
	return ephem.RawPosition{lon, m.Lat, m.Dist, speed, 0, 0}, nil
}

// Pheno implements ephem.PhenoProvider. Phase geometry is derived from the
// synthetic longitudes: elongation is the arc to the Sun, phase angle its
// supplement, which is exact for the zero-latitude circular model.
func (p *Provider) Pheno(jd float64, body ephem.Body, flags ephem.CalcFlag) (ephem.Phenomena, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err, ok := p.failures[body]; ok {
		return ephem.Phenomena{}, err
	}
	m, ok := p.bodies[body]
	if !ok {
		return ephem.Phenomena{}, fmt.Errorf("no orbit model for body %s", body)
	}
	sun, ok := p.bodies[ephem.Sun]
	if !ok {
		return ephem.Phenomena{}, fmt.Errorf("no orbit model for body %s", ephem.Sun)
	}

	lon, _ := m.longitudeAt(jd)
	sunLon, _ := sun.longitudeAt(jd)
	elong := math.Abs(math.Mod(norm360(lon)-norm360(sunLon)+540, 360) - 180)
	phase := 180 - elong
	return ephem.Phenomena{
		PhaseAngle:       phase,
		PhaseFraction:    (1 + math.Cos(phase*math.Pi/180)) / 2,
		Elongation:       elong,
		ApparentDiameter: 1919.26 / math.Max(m.Dist, 0.001),
	}, nil
}

// syzygy returns the first jd' > jd where the Moon-Sun elongation equals
// target degrees. Closed form: both bodies move linearly in the default
// model, so the relative longitude is a line.
func (p *Provider) syzygy(jd, target float64) (float64, error) {
	moon, okM := p.bodies[ephem.Moon]
	sun, okS := p.bodies[ephem.Sun]
	if !okM || !okS {
		return 0, fmt.Errorf("syzygy search needs Sun and Moon models")
	}
	relRate := moon.Rate - sun.Rate
	if relRate <= 0 {
		return 0, fmt.Errorf("degenerate synodic rate %f", relRate)
	}
	rel0 := (moon.Lon0 - moon.Rate*moon.EpochJD) - (sun.Lon0 - sun.Rate*sun.EpochJD)
	// Solve rel0 + relRate*t ≡ target (mod 360) for the first t > jd.
	k := math.Floor((jd*relRate+rel0-target)/360) + 1
	return (target + 360*k - rel0) / relRate, nil
}

// NextSolarEclipse implements ephem.EclipseSearcher. Every synthetic
// conjunction counts as an eclipse; the kind cycles so callers see all
// variants.
func (p *Provider) NextSolarEclipse(jd float64, backward bool) (ephem.RawEclipse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	peak, err := p.syzygy(jd, 0)
	if err != nil {
		return ephem.RawEclipse{}, err
	}
	kinds := []ephem.EclipseKind{ephem.EclipseTotal, ephem.EclipseAnnular, ephem.EclipsePartial}
	kind := kinds[int(math.Abs(math.Round(peak)))%3]
	mag := 1.0
	if kind == ephem.EclipsePartial {
		mag = 0.6
	}
	return ephem.RawEclipse{PeakJD: peak, Kind: kind, Magnitude: mag}, nil
}

// NextLunarEclipse implements ephem.EclipseSearcher.
func (p *Provider) NextLunarEclipse(jd float64, backward bool) (ephem.RawEclipse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	peak, err := p.syzygy(jd, 180)
	if err != nil {
		return ephem.RawEclipse{}, err
	}
	kinds := []ephem.EclipseKind{ephem.EclipseTotal, ephem.EclipsePartial, ephem.EclipsePenumbral}
	kind := kinds[int(math.Abs(math.Round(peak)))%3]
	mag := 1.0
	if kind != ephem.EclipseTotal {
		mag = 0.6
	}
	return ephem.RawEclipse{PeakJD: peak, Kind: kind, Magnitude: mag}, nil
}

// SetSidMode implements ephem.Provider.
func (p *Provider) SetSidMode(mode ephem.SiderealMode, t0, ayanT0 float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sidMode = mode
	return nil
}

// SetTopo implements ephem.Provider.
func (p *Provider) SetTopo(lat, lon, alt float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topo = ephem.Topocentric{Lat: lat, Lon: lon, Alt: alt}
	return nil
}

// SetTidAcc implements ephem.Provider.
func (p *Provider) SetTidAcc(acc float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tidAcc = acc
	return nil
}

// SidMode returns the last sidereal mode set. Test hook.
func (p *Provider) SidMode() ephem.SiderealMode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sidMode
}

// Topo returns the last topocentric location set. Test hook.
func (p *Provider) Topo() ephem.Topocentric {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.topo
}

// TidAcc returns the last tidal acceleration set. Test hook.
func (p *Provider) TidAcc() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tidAcc
}

// Calls returns the number of Calc invocations. Test hook for "no sampling
// happened" assertions.
func (p *Provider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func norm360(deg float64) float64 {
	m := math.Mod(deg, 360)
	if m < 0 {
		m += 360
	}
	return m
}
