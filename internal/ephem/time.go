package ephem

import (
	"fmt"
	"math"
	"time"
)

// TimeScale names a time standard. The engine accepts Universal Time only;
// the scale exists so callers converting from TT or TDB sources fail loudly
// instead of smuggling the wrong standard across the boundary.
type TimeScale string

const (
	ScaleUT  TimeScale = "UT"
	ScaleTT  TimeScale = "TT"
	ScaleTDB TimeScale = "TDB"
)

// UTTime is a Julian Day in Universal Time. It is the only time
// representation the gateway accepts: construction is the checkpoint where
// the time standard is verified.
type UTTime struct {
	jd float64
}

// NewUTTime converts a wall-clock time to UT Julian Day using the Meeus
// (1998) algorithm. The Gregorian calendar is assumed for all supported
// dates.
func NewUTTime(t time.Time) UTTime {
	u := t.UTC()
	year, month, day := u.Year(), int(u.Month()), u.Day()

	if month <= 2 {
		year--
		month += 12
	}

	frac := (float64(u.Hour()) +
		float64(u.Minute())/60.0 +
		float64(u.Second())/3600.0 +
		float64(u.Nanosecond())/3.6e12) / 24.0

	a := math.Floor(float64(year) / 100)
	b := 2 - a + math.Floor(a/4)

	jdMidnight := math.Floor(365.25*float64(year+4716)) +
		math.Floor(30.6001*float64(month+1)) +
		float64(day) + b - 1524.5

	return UTTime{jd: jdMidnight + frac}
}

// FromJulianDay constructs a UTTime from a raw Julian Day number in the given
// scale. Any scale other than ScaleUT fails with InvalidTimeStandardError;
// conversion from dynamical time is the caller's job, done before this
// boundary.
func FromJulianDay(jd float64, scale TimeScale) (UTTime, error) {
	if scale != ScaleUT {
		return UTTime{}, NewInvalidTimeStandardError(scale)
	}
	return UTTime{jd: jd}, nil
}

// JulianDayUT constructs a UTTime from a Julian Day already known to be UT.
func JulianDayUT(jd float64) UTTime {
	return UTTime{jd: jd}
}

// JD returns the Julian Day number.
func (t UTTime) JD() float64 {
	return t.jd
}

// AddDays returns the time shifted by d days.
func (t UTTime) AddDays(d float64) UTTime {
	return UTTime{jd: t.jd + d}
}

// Sub returns t - o in days.
func (t UTTime) Sub(o UTTime) float64 {
	return t.jd - o.jd
}

// Before reports whether t precedes o.
func (t UTTime) Before(o UTTime) bool {
	return t.jd < o.jd
}

// Time converts back to a wall-clock UTC time (inverse Meeus, Gregorian).
func (t UTTime) Time() time.Time {
	z := math.Floor(t.jd + 0.5)
	f := t.jd + 0.5 - z

	a := z
	if z >= 2299161 {
		alpha := math.Floor((z - 1867216.25) / 36524.25)
		a = z + 1 + alpha - math.Floor(alpha/4)
	}
	b := a + 1524
	c := math.Floor((b - 122.1) / 365.25)
	d := math.Floor(365.25 * c)
	e := math.Floor((b - d) / 30.6001)

	day := b - d - math.Floor(30.6001*e) + f
	month := e - 1
	if e >= 14 {
		month = e - 13
	}
	year := c - 4716
	if month <= 2 {
		year = c - 4715
	}

	dayInt, dayFrac := math.Modf(day)
	nanos := int64(math.Round(dayFrac * 86400e9))

	base := time.Date(int(year), time.Month(month), int(dayInt), 0, 0, 0, 0, time.UTC)
	return base.Add(time.Duration(nanos))
}

// String renders the time as an ISO timestamp with the JD for diagnostics.
func (t UTTime) String() string {
	return fmt.Sprintf("%s (JD %.6f UT)", t.Time().Format(time.RFC3339), t.jd)
}
