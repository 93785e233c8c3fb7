// Package events turns the generic search engine into named astronomical
// event detectors: ingresses, stations, returns, aspect perfection, synodic
// phase boundaries, and eclipse passthrough. Each detector builds the
// scalar function for its event, picks a sampling cadence from the body's
// motion class, and relabels the localized crossings with the domain kind.
package events

import (
	"fmt"
	"math"
	"sort"

	"github.com/roach88/sidereal/internal/ephem"
	"github.com/roach88/sidereal/internal/scalar"
	"github.com/roach88/sidereal/internal/search"
)

// Metadata keys set by the detectors.
const (
	MetaBody      = "body"
	MetaSignFrom  = "sign_from"
	MetaSignTo    = "sign_to"
	MetaStation   = "station"
	MetaAspect    = "aspect"
	MetaAngle     = "angle"
	MetaPhase     = "phase"
	MetaNatal     = "natal_longitude"
	MetaEclipse   = "eclipse_kind"
	MetaMagnitude = "magnitude"
)

// Station directions.
const (
	StationRetrograde = "retrograde"
	StationDirect     = "direct"
)

// EclipseSource finds eclipses; *ephem.Engine satisfies it when the
// underlying provider supports eclipse search.
type EclipseSource interface {
	NextSolarEclipse(start ephem.UTTime, maxSpanDays float64) (ephem.RawEclipse, error)
	NextLunarEclipse(start ephem.UTTime, maxSpanDays float64) (ephem.RawEclipse, error)
}

// Detector finds domain events over a position source. The zero cadence
// for a body comes from the configured per-class step; pair detectors use
// the faster body's cadence.
type Detector struct {
	src      scalar.Source
	cfg      ephem.Config
	searcher *search.Engine
	eclipses EclipseSource
}

// Option configures a Detector.
type Option func(*Detector)

// WithSearcher replaces the search engine.
func WithSearcher(e *search.Engine) Option {
	return func(d *Detector) { d.searcher = e }
}

// WithEclipseSource enables the eclipse detectors.
func WithEclipseSource(src EclipseSource) Option {
	return func(d *Detector) { d.eclipses = src }
}

// New builds a detector over a position source.
func New(src scalar.Source, cfg ephem.Config, opts ...Option) *Detector {
	d := &Detector{
		src:      src,
		cfg:      cfg,
		searcher: search.New(search.WithMaxSpanDays(cfg.MaxSearchDays)),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Detector) stepFor(bodies ...ephem.Body) float64 {
	step := math.Inf(1)
	for _, b := range bodies {
		if s := d.cfg.StepFor(b); s < step {
			step = s
		}
	}
	if math.IsInf(step, 1) {
		return 1
	}
	return step
}

// ScanLongitudeCrossings finds every instant a body's longitude equals
// target within [t0, t1].
func (d *Detector) ScanLongitudeCrossings(body ephem.Body, target float64, t0, t1 ephem.UTTime) ([]search.EventResult, error) {
	f := scalar.Longitude(d.src, body)
	results, err := d.searcher.FindCrossings(f, t0.JD(), t1.JD(), target, search.ModeCrossing,
		search.WithStepDays(d.stepFor(body)))
	if err != nil {
		return nil, err
	}
	for i := range results {
		setMeta(&results[i], MetaBody, body.String())
	}
	return results, nil
}

// ScanIngresses finds every sign boundary crossing of a body in [t0, t1],
// in time order. A retrograde body re-entering a sign is an ingress too;
// sign_from and sign_to follow the direction of motion at the crossing.
func (d *Detector) ScanIngresses(body ephem.Body, t0, t1 ephem.UTTime) ([]search.EventResult, error) {
	f := scalar.Longitude(d.src, body)
	speed := scalar.Speed(d.src, body)
	step := d.stepFor(body)

	var all []search.EventResult
	for boundary := 0; boundary < 12; boundary++ {
		target := float64(boundary) * 30
		results, err := d.searcher.FindCrossings(f, t0.JD(), t1.JD(), target, search.ModeCrossing,
			search.WithStepDays(step), search.WithKind(search.KindIngress))
		if err != nil {
			return nil, err
		}
		entering := ephem.Sign(boundary)
		for i := range results {
			r := &results[i]
			from, to := entering.Prev(), entering
			if v, err := speed(r.JD); err == nil && v < 0 {
				from, to = entering, entering.Prev()
			}
			setMeta(r, MetaBody, body.String())
			setMeta(r, MetaSignFrom, from.String())
			setMeta(r, MetaSignTo, to.String())
		}
		all = append(all, results...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].JD < all[j].JD })
	return all, nil
}

// NextIngress finds the first sign change of a body after start, looking
// ahead at most maxSpanDays. The target boundary follows the direction of
// motion at start: the next sign's cusp when direct, the current sign's
// when retrograde.
func (d *Detector) NextIngress(body ephem.Body, start ephem.UTTime, maxSpanDays float64) (search.EventResult, error) {
	pos, err := d.src.Position(start, body)
	if err != nil {
		return search.EventResult{}, err
	}
	sign := ephem.SignOf(pos.Longitude)
	target := sign.Next().Start()
	if pos.SpeedLongitude < 0 {
		target = sign.Start()
	}

	f := scalar.Longitude(d.src, body)
	results, err := d.searcher.FindCrossings(f, start.JD(), start.JD()+maxSpanDays, target,
		search.ModeCrossing, search.WithStepDays(d.stepFor(body)), search.WithKind(search.KindIngress))
	if err != nil {
		return search.EventResult{}, err
	}
	if len(results) == 0 {
		return search.EventResult{}, ephem.NewComputationError(
			fmt.Sprintf("no ingress of %s within %.1f days", body, maxSpanDays), nil)
	}

	r := results[0]
	from, to := sign, sign.Next()
	if pos.SpeedLongitude < 0 {
		from, to = sign, sign.Prev()
	}
	setMeta(&r, MetaBody, body.String())
	setMeta(&r, MetaSignFrom, from.String())
	setMeta(&r, MetaSignTo, to.String())
	return r, nil
}

// ScanStations finds every station of a body in [t0, t1]: the zero
// crossings of its longitudinal speed. Each result is labeled with the
// direction the body turns toward.
func (d *Detector) ScanStations(body ephem.Body, t0, t1 ephem.UTTime) ([]search.EventResult, error) {
	speed := scalar.Speed(d.src, body)
	results, err := d.searcher.FindCrossings(speed, t0.JD(), t1.JD(), 0, search.ModeCrossing,
		search.Linear(), search.WithStepDays(d.stepFor(body)), search.WithKind(search.KindStation))
	if err != nil {
		return nil, err
	}
	for i := range results {
		r := &results[i]
		dir := StationDirect
		if v, err := speed(r.JD + d.stepFor(body)/10); err == nil && v < 0 {
			dir = StationRetrograde
		}
		setMeta(r, MetaBody, body.String())
		setMeta(r, MetaStation, dir)
	}
	return results, nil
}

// FindReturn finds the first instant after start that a body returns to a
// natal longitude, looking ahead at most maxSpanDays.
func (d *Detector) FindReturn(body ephem.Body, natalLongitude float64, start ephem.UTTime, maxSpanDays float64) (search.EventResult, error) {
	f := scalar.Longitude(d.src, body)
	results, err := d.searcher.FindCrossings(f, start.JD(), start.JD()+maxSpanDays,
		scalar.Norm360(natalLongitude), search.ModeCrossing,
		search.WithStepDays(d.stepFor(body)), search.WithKind(search.KindReturn))
	if err != nil {
		return search.EventResult{}, err
	}
	if len(results) == 0 {
		return search.EventResult{}, ephem.NewComputationError(
			fmt.Sprintf("no return of %s within %.1f days", body, maxSpanDays), nil)
	}
	r := results[0]
	setMeta(&r, MetaBody, body.String())
	setMeta(&r, MetaNatal, fmt.Sprintf("%.6f", scalar.Norm360(natalLongitude)))
	return r, nil
}

// ScanAspects finds every perfection of the named aspect between two
// bodies in [t0, t1]. For angles other than 0 and 180 the aspect perfects
// on both sides of conjunction, so both signed targets are searched.
func (d *Detector) ScanAspects(a, b ephem.Body, aspect string, t0, t1 ephem.UTTime) ([]search.EventResult, error) {
	angle, ok := AspectAngle(aspect)
	if !ok {
		return nil, ephem.NewConfigurationError(fmt.Sprintf("unknown aspect %q", aspect))
	}

	sep := scalar.Separation(d.src, a, b)
	step := d.stepFor(a, b)
	kind := search.KindAspect
	if angle == 0 {
		kind = search.KindConjunction
	}

	targets := []float64{angle}
	if angle != 0 && angle != 180 {
		targets = append(targets, -angle)
	}

	var all []search.EventResult
	for _, target := range targets {
		results, err := d.searcher.FindCrossings(sep, t0.JD(), t1.JD(), target, search.ModeCrossing,
			search.WithStepDays(step), search.WithKind(kind))
		if err != nil {
			return nil, err
		}
		for i := range results {
			setMeta(&results[i], MetaBody, a.String()+"/"+b.String())
			setMeta(&results[i], MetaAspect, aspect)
			setMeta(&results[i], MetaAngle, fmt.Sprintf("%g", angle))
		}
		all = append(all, results...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].JD < all[j].JD })
	return all, nil
}

// SynodicPhases finds the quadrature boundaries of the synodic cycle from
// body a to body b in [t0, t1]: conjunction, first quarter, opposition and
// last quarter, in time order.
func (d *Detector) SynodicPhases(a, b ephem.Body, t0, t1 ephem.UTTime) ([]search.EventResult, error) {
	phase := scalar.PhaseAngle(d.src, a, b)
	step := d.stepFor(a, b)

	names := map[float64]string{0: "conjunction", 90: "first_quarter", 180: "opposition", 270: "last_quarter"}
	var all []search.EventResult
	for _, target := range []float64{0, 90, 180, 270} {
		results, err := d.searcher.FindCrossings(phase, t0.JD(), t1.JD(), target, search.ModeCrossing,
			search.WithStepDays(step), search.WithKind(search.KindPhaseBoundary))
		if err != nil {
			return nil, err
		}
		for i := range results {
			setMeta(&results[i], MetaBody, a.String()+"/"+b.String())
			setMeta(&results[i], MetaPhase, names[target])
			setMeta(&results[i], MetaAngle, fmt.Sprintf("%g", target))
		}
		all = append(all, results...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].JD < all[j].JD })
	return all, nil
}

// ClassifyPhase names the synodic phase for an angle in [0,360), using 45
// degree windows centered on each quadrature.
func ClassifyPhase(phaseAngle float64) string {
	a := scalar.Norm360(phaseAngle)
	switch {
	case a < 22.5 || a >= 337.5:
		return "conjunction"
	case a < 67.5:
		return "waxing_crescent"
	case a < 112.5:
		return "first_quarter"
	case a < 157.5:
		return "waxing_gibbous"
	case a < 202.5:
		return "opposition"
	case a < 247.5:
		return "waning_gibbous"
	case a < 292.5:
		return "last_quarter"
	default:
		return "waning_crescent"
	}
}

// NextSolarEclipse finds the next solar eclipse after start. Requires an
// eclipse source.
func (d *Detector) NextSolarEclipse(start ephem.UTTime, maxSpanDays float64) (search.EventResult, error) {
	return d.nextEclipse(start, maxSpanDays, true)
}

// NextLunarEclipse finds the next lunar eclipse after start. Requires an
// eclipse source.
func (d *Detector) NextLunarEclipse(start ephem.UTTime, maxSpanDays float64) (search.EventResult, error) {
	return d.nextEclipse(start, maxSpanDays, false)
}

func (d *Detector) nextEclipse(start ephem.UTTime, maxSpanDays float64, solar bool) (search.EventResult, error) {
	if d.eclipses == nil {
		return search.EventResult{}, ephem.NewConfigurationError("eclipse search requires an eclipse source")
	}
	var (
		raw ephem.RawEclipse
		err error
	)
	if solar {
		raw, err = d.eclipses.NextSolarEclipse(start, maxSpanDays)
	} else {
		raw, err = d.eclipses.NextLunarEclipse(start, maxSpanDays)
	}
	if err != nil {
		return search.EventResult{}, err
	}
	r := search.EventResult{JD: raw.PeakJD, Kind: search.KindEclipse}
	setMeta(&r, MetaEclipse, string(raw.Kind))
	setMeta(&r, MetaMagnitude, fmt.Sprintf("%.4f", raw.Magnitude))
	return r, nil
}

// AspectAngle returns the exact angle for an aspect name.
func AspectAngle(name string) (float64, bool) {
	switch name {
	case "conjunction":
		return 0, true
	case "sextile":
		return 60, true
	case "square":
		return 90, true
	case "trine":
		return 120, true
	case "opposition":
		return 180, true
	}
	return 0, false
}

func setMeta(r *search.EventResult, key, value string) {
	if r.Metadata == nil {
		r.Metadata = make(map[string]string)
	}
	r.Metadata[key] = value
}
