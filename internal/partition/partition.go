// Package partition assigns circular coordinates to owners via fixed
// proportional interval tables, nested to arbitrary depth. It backs the
// nakshatra and sub-lord classification used by KP-style house analysis.
//
// Boundary rule: every interval is half-open [start,end) except the final
// one, which is closed at the table total so the seam has no gap. A lookup
// at an exact boundary therefore always resolves to the interval starting
// there, deterministically.
package partition

import (
	"fmt"
	"math"

	"github.com/roach88/sidereal/internal/ephem"
)

// Segment is one proportional interval: an owner and its span in table
// units.
type Segment struct {
	Owner string
	Span  float64
}

// Table is an ordered proportional partition of [0,Total).
type Table struct {
	Name     string
	Total    float64
	Segments []Segment
}

// spanTolerance absorbs float accumulation when checking that spans sum to
// the total.
const spanTolerance = 1e-9

// Validate checks that the table is well-formed: a positive total, positive
// spans, and spans summing exactly (within float tolerance) to the total.
func (t Table) Validate() error {
	if t.Total <= 0 {
		return ephem.NewConfigurationError(fmt.Sprintf("partition %q: total must be positive", t.Name))
	}
	if len(t.Segments) == 0 {
		return ephem.NewConfigurationError(fmt.Sprintf("partition %q: no segments", t.Name))
	}
	sum := 0.0
	for i, seg := range t.Segments {
		if seg.Span <= 0 {
			return ephem.NewConfigurationError(
				fmt.Sprintf("partition %q: segment %d (%s) has non-positive span", t.Name, i, seg.Owner))
		}
		sum += seg.Span
	}
	if math.Abs(sum-t.Total) > spanTolerance {
		return ephem.NewConfigurationError(
			fmt.Sprintf("partition %q: spans sum to %.12f, want %.12f", t.Name, sum, t.Total))
	}
	return nil
}

// Lookup returns the owner whose interval contains x. x outside [0,Total]
// is reduced modulo the total first, so longitudes can be passed directly.
// x equal to the total resolves to the final segment (the closed end).
func (t Table) Lookup(x float64) (string, error) {
	owner, _, _, err := t.locate(x)
	return owner, err
}

// Locate returns the owner together with the containing interval's start and
// span, which nested lookups use to rescale.
func (t Table) Locate(x float64) (owner string, start, span float64, err error) {
	return t.locate(x)
}

func (t Table) locate(x float64) (string, float64, float64, error) {
	if err := t.Validate(); err != nil {
		return "", 0, 0, err
	}

	x = math.Mod(x, t.Total)
	if x < 0 {
		x += t.Total
	}

	cum := 0.0
	for i, seg := range t.Segments {
		end := cum + seg.Span
		if x < end || i == len(t.Segments)-1 {
			return seg.Owner, cum, seg.Span, nil
		}
		cum = end
	}
	// Unreachable for a validated table.
	last := t.Segments[len(t.Segments)-1]
	return last.Owner, t.Total - last.Span, last.Span, nil
}

// Nested resolves x in the outer table, then rescales x's position within
// the containing interval to the inner table's total and resolves again.
// This is the sub-lord mechanism: the inner table repeats proportionally
// inside every outer interval.
func Nested(outer, inner Table, x float64) (outerOwner, innerOwner string, err error) {
	outerOwner, start, span, err := outer.locate(x)
	if err != nil {
		return "", "", err
	}

	x = math.Mod(x, outer.Total)
	if x < 0 {
		x += outer.Total
	}

	scaled := (x - start) / span * inner.Total
	innerOwner, err = inner.Lookup(scaled)
	return outerOwner, innerOwner, err
}
