package partition

// Graha names used as partition owners. Rahu and Ketu are the lunar nodes;
// they rule intervals but are not calculation bodies here.
const (
	Ketu    = "Ketu"
	Venus   = "Venus"
	SunG    = "Sun"
	MoonG   = "Moon"
	Mars    = "Mars"
	Rahu    = "Rahu"
	Jupiter = "Jupiter"
	Saturn  = "Saturn"
	Mercury = "Mercury"
)

// NakshatraSpan is the width of one lunar mansion: 13°20'.
const NakshatraSpan = 360.0 / 27.0

// vimshottariOrder is the fixed lord sequence; both the 27 nakshatras and
// the sub-divisions inside each cycle through it.
var vimshottariOrder = []string{
	Ketu, Venus, SunG, MoonG, Mars, Rahu, Jupiter, Saturn, Mercury,
}

// vimshottariYears maps each lord to its dasha period. The periods double as
// the proportional sub-division spans; they sum to 120.
var vimshottariYears = map[string]float64{
	Ketu:    7,
	Venus:   20,
	SunG:    6,
	MoonG:   10,
	Mars:    7,
	Rahu:    18,
	Jupiter: 16,
	Saturn:  19,
	Mercury: 17,
}

// VimshottariTotal is the full dasha cycle in years.
const VimshottariTotal = 120.0

// NakshatraTable returns the 27-segment partition of the zodiac by nakshatra
// lord. Segment i covers [i*13°20', (i+1)*13°20') and is owned by the lord
// at position i mod 9 in the Vimshottari order.
func NakshatraTable() Table {
	segs := make([]Segment, 27)
	for i := range segs {
		segs[i] = Segment{Owner: vimshottariOrder[i%9], Span: NakshatraSpan}
	}
	return Table{Name: "nakshatra", Total: 360, Segments: segs}
}

// SubLordTable returns the 9-segment proportional partition used inside each
// nakshatra, with spans equal to the Vimshottari dasha years (total 120).
func SubLordTable() Table {
	segs := make([]Segment, len(vimshottariOrder))
	for i, lord := range vimshottariOrder {
		segs[i] = Segment{Owner: lord, Span: vimshottariYears[lord]}
	}
	return Table{Name: "sub-lord", Total: VimshottariTotal, Segments: segs}
}

// NakshatraLord returns the nakshatra ruler for an ecliptic longitude.
func NakshatraLord(longitude float64) (string, error) {
	return NakshatraTable().Lookup(longitude)
}

// SubLord returns the nakshatra lord and the sub-lord for a longitude: the
// sub-lord is the Vimshottari partition applied within the containing
// nakshatra.
func SubLord(longitude float64) (lord, sub string, err error) {
	return Nested(NakshatraTable(), SubLordTable(), longitude)
}

// signLords maps the 12 zodiac signs, Aries first, to their traditional
// rulers.
var signLords = [12]string{
	Mars,    // Aries
	Venus,   // Taurus
	Mercury, // Gemini
	MoonG,   // Cancer
	SunG,    // Leo
	Mercury, // Virgo
	Venus,   // Libra
	Mars,    // Scorpio
	Jupiter, // Sagittarius
	Saturn,  // Capricorn
	Saturn,  // Aquarius
	Jupiter, // Pisces
}

// SignLord returns the traditional ruler of the sign containing the
// longitude.
func SignLord(longitude float64) string {
	lon := longitude
	for lon < 0 {
		lon += 360
	}
	sign := int(lon/30) % 12
	return signLords[sign]
}
