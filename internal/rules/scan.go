package rules

import (
	"errors"
	"log/slog"
	"sort"

	"github.com/roach88/sidereal/internal/ephem"
	"github.com/roach88/sidereal/internal/scalar"
	"github.com/roach88/sidereal/internal/search"
)

// RuleMatch is a detected rule transition.
type RuleMatch struct {
	RuleName          string
	JD                float64
	MatchedConditions int
	TotalConditions   int
	// Localized is true when JD was refined to the actual transition
	// instant; false means the coarse sample time (rule already matching
	// at the range start, or refinement found no bracket).
	Localized bool
	// Trigger names the condition type whose flip produced the match,
	// empty when no single flip could be identified.
	Trigger string
}

// MatchPercent is the fraction of conditions that held, as a percentage.
func (m RuleMatch) MatchPercent() float64 {
	if m.TotalConditions == 0 {
		return 0
	}
	return float64(m.MatchedConditions) / float64(m.TotalConditions) * 100
}

// Scanner walks a time range on a coarse grid and reports, for each rule,
// the instants it starts matching. Matches are edge-triggered: a rule that
// stays true across many samples yields one match, at the localized
// false-to-true transition.
type Scanner struct {
	src         scalar.Source
	searcher    *search.Engine
	maxSpanDays float64
	sample      SnapshotFunc
}

// SnapshotFunc produces the state snapshot evaluated at each grid sample.
// Callers with chart-level data supply their own; the default samples the
// scanner's position source for the rules' bodies.
type SnapshotFunc func(jd float64, bodies []ephem.Body) (*Snapshot, error)

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithSearcher replaces the refinement engine.
func WithSearcher(e *search.Engine) ScannerOption {
	return func(s *Scanner) { s.searcher = e }
}

// WithScanMaxSpan caps the scannable range in days.
func WithScanMaxSpan(days float64) ScannerOption {
	return func(s *Scanner) { s.maxSpanDays = days }
}

// WithSnapshotFunc replaces the per-sample snapshot builder.
func WithSnapshotFunc(fn SnapshotFunc) ScannerOption {
	return func(s *Scanner) { s.sample = fn }
}

// NewScanner builds a scanner over a position source.
func NewScanner(src scalar.Source, opts ...ScannerOption) *Scanner {
	s := &Scanner{
		src:         src,
		searcher:    search.New(search.Linear()),
		maxSpanDays: ephem.DefaultMaxSearchDays,
	}
	s.sample = s.snapshotAt
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScanTimeRange evaluates the rules on a grid of intervalDays steps across
// [t0, t1] and returns every rule transition, ordered by time. Rules are
// validated up front; a malformed rule fails the whole scan before any
// sampling. Position errors during grid evaluation abort the scan.
func (s *Scanner) ScanTimeRange(t0, t1, intervalDays float64, rls []Rule) ([]RuleMatch, error) {
	if t1 <= t0 {
		return nil, ephem.NewConfigurationError("scan range must have positive span")
	}
	if intervalDays <= 0 {
		return nil, ephem.NewConfigurationError("scan interval must be positive")
	}
	if t1-t0 > s.maxSpanDays {
		return nil, ephem.NewSearchRangeTooLargeError(t1-t0, s.maxSpanDays)
	}
	for i := range rls {
		if verrs := Validate(&rls[i]); len(verrs) > 0 {
			joined := make([]error, len(verrs))
			for j, ve := range verrs {
				joined[j] = ve
			}
			return nil, ephem.WrapConfigurationError(
				"rule "+rls[i].Name+" failed validation", errors.Join(joined...))
		}
	}

	bodies := unionBodies(rls)
	var matches []RuleMatch

	prevJD := t0
	prevMatched := make([]bool, len(rls))
	prevConds := make([][]bool, len(rls))

	for step := 0; ; step++ {
		jd := t0 + float64(step)*intervalDays
		// The final sample is clamped to the range end so a transition in
		// the last partial interval is still seen.
		last := jd >= t1
		if last {
			jd = t1
		}
		snap, err := s.sample(jd, bodies)
		if err != nil {
			return nil, err
		}

		for i := range rls {
			r := &rls[i]
			conds, matchedCount, err := evaluateConditions(r, snap)
			if err != nil {
				return nil, err
			}
			matched := matchedCount == len(r.Conditions)
			if r.Logic == LogicOr {
				matched = matchedCount > 0
			}

			if matched && (step == 0 || !prevMatched[i]) {
				m := RuleMatch{
					RuleName:          r.Name,
					JD:                jd,
					MatchedConditions: matchedCount,
					TotalConditions:   len(r.Conditions),
				}
				if step > 0 {
					m = s.localize(r, prevConds[i], conds, prevJD, jd, m)
				}
				matches = append(matches, m)
			}
			prevMatched[i] = matched
			prevConds[i] = conds
		}
		prevJD = jd
		if last {
			break
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].JD != matches[j].JD {
			return matches[i].JD < matches[j].JD
		}
		return matches[i].RuleName < matches[j].RuleName
	})
	return matches, nil
}

// localize refines a coarse transition to the zero crossing of the flipped
// condition's margin. It falls back to the coarse time when no single
// condition flipped or the margin yields no bracket.
func (s *Scanner) localize(r *Rule, prev, cur []bool, t0, t1 float64, m RuleMatch) RuleMatch {
	flipped := -1
	for i := range cur {
		if cur[i] && !prev[i] {
			flipped = i
			break
		}
	}
	if flipped < 0 {
		return m
	}

	cond := r.Conditions[flipped]
	results, err := s.searcher.FindCrossings(
		cond.Margin(s.src), t0, t1, 0, search.ModeCrossing,
		search.Linear(), search.WithStepDays((t1-t0)/8))
	if err != nil || len(results) == 0 {
		slog.Debug("rule transition not localized",
			"rule", r.Name, "condition", cond.Type(), "t0", t0, "t1", t1)
		return m
	}

	m.JD = results[0].JD
	m.Localized = true
	m.Trigger = cond.Type()
	return m
}

func (s *Scanner) snapshotAt(jd float64, bodies []ephem.Body) (*Snapshot, error) {
	t := ephem.JulianDayUT(jd)
	positions := make(map[ephem.Body]ephem.PositionSample, len(bodies))
	for _, b := range bodies {
		pos, err := s.src.Position(t, b)
		if err != nil {
			return nil, err
		}
		positions[b] = pos
	}
	return &Snapshot{JD: jd, Positions: positions, Aspects: ComputeAspects(positions)}, nil
}

func evaluateConditions(r *Rule, snap *Snapshot) ([]bool, int, error) {
	conds := make([]bool, len(r.Conditions))
	matched := 0
	for i, c := range r.Conditions {
		ok, err := c.Evaluate(snap)
		if err != nil {
			return nil, 0, err
		}
		conds[i] = ok
		if ok {
			matched++
		}
	}
	return conds, matched, nil
}

func unionBodies(rls []Rule) []ephem.Body {
	seen := make(map[ephem.Body]bool)
	var out []ephem.Body
	for i := range rls {
		for _, b := range rls[i].Bodies() {
			if !seen[b] {
				seen[b] = true
				out = append(out, b)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
