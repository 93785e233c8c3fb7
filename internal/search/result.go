package search

// Kind classifies what an EventResult represents. The search engine itself
// produces KindCrossing/KindExtremum; the detector layer relabels results
// with the domain kind it was searching for.
type Kind string

const (
	KindCrossing      Kind = "crossing"
	KindExtremum      Kind = "extremum"
	KindConjunction   Kind = "conjunction"
	KindAspect        Kind = "aspect"
	KindEclipse       Kind = "eclipse"
	KindStation       Kind = "station"
	KindIngress       Kind = "ingress"
	KindReturn        Kind = "return"
	KindPhaseBoundary Kind = "phase-boundary"
)

// Metadata keys set by the engine.
const (
	// MetaAmbiguous marks a result where more crossings remained in one
	// minimum-width step than refinement could separate; the reported
	// instant is the first crossing.
	MetaAmbiguous = "ambiguous_multi_crossing"
)

// EventResult is one localized event. Immutable once produced: the engine
// never touches a result after returning it, and callers must not either.
type EventResult struct {
	// JD is the event instant, Julian Day UT.
	JD float64

	// Kind classifies the event.
	Kind Kind

	// Exactness is the achieved bracket width in days; the true instant lies
	// within ±Exactness/2 of JD.
	Exactness float64

	// Metadata carries engine annotations (see Meta* keys) and detector
	// context (sign names, speeds, phase names).
	Metadata map[string]string

	// RunToken identifies the search run that produced this result. All
	// results of one FindCrossings call share a token.
	RunToken string
}

// Ambiguous reports whether the result carries the multi-crossing flag.
func (r EventResult) Ambiguous() bool {
	_, ok := r.Metadata[MetaAmbiguous]
	return ok
}

// SampleSeries is an ordered, time-monotonic sequence of (time, value)
// samples. Immutable once built. Gaps mark instants where the scalar
// function was undefined; brackets never span a gap.
type SampleSeries struct {
	times  []float64
	values []float64
	valid  []bool
}

// Len returns the number of samples.
func (s *SampleSeries) Len() int { return len(s.times) }

// At returns the i-th sample. ok is false at a gap.
func (s *SampleSeries) At(i int) (t, v float64, ok bool) {
	return s.times[i], s.values[i], s.valid[i]
}

// Bracket is a pair of adjacent samples straddling a target: the refinement
// input. V0 and V1 are the already-offset values (f minus target), so a
// bracket always has V0 and V1 on opposite sides of zero.
type Bracket struct {
	T0, T1 float64
	V0, V1 float64
}

// Width returns the bracket width in days.
func (b Bracket) Width() float64 { return b.T1 - b.T0 }
