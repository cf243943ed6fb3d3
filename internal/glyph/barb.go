package glyph

// Kind is the shape of one barbule.
type Kind int

const (
	Short Kind = iota
	Long
	Pennant
)

func (k Kind) String() string {
	switch k {
	case Short:
		return "short"
	case Long:
		return "long"
	case Pennant:
		return "pennant"
	}
	return "unknown"
}

// Barbule is one speed stroke, Offset units along the shaft from the anchor.
type Barbule struct {
	Kind   Kind
	Offset float64
}

// Barb is the glyph selected for a wind speed.
type Barb struct {
	Calm     bool
	Barbules []Barbule
}

// band is one row of the speed taxonomy: speeds below upper use kinds.
type band struct {
	upper float64
	kinds []Kind
}

const (
	sh = Short
	lg = Long
	pn = Pennant
)

var bands = []band{
	{7.5, []Kind{sh}},
	{12.5, []Kind{lg}},
	{17.5, []Kind{lg, sh}},
	{22.5, []Kind{lg, lg}},
	{27.5, []Kind{lg, lg, sh}},
	{32.5, []Kind{lg, lg, lg}},
	{37.5, []Kind{lg, lg, lg, sh}},
	{45, []Kind{lg, lg, lg, lg}},
	{55, []Kind{pn}},
	{65, []Kind{pn, lg}},
	{75, []Kind{pn, lg, lg}},
	{85, []Kind{pn, lg, lg, lg}},
}

var top = []Kind{pn, pn}

// tip is the local x of the shaft tip.
const tip = Size / 2

// BarbFor selects the barb for a speed in knots. Each band's lower bound is
// inclusive.
func BarbFor(knots float64) Barb {
	if knots < 1 {
		return Barb{Calm: true}
	}
	kinds := top
	for _, b := range bands {
		if knots < b.upper {
			kinds = b.kinds
			break
		}
	}

	var off float64
	switch {
	case kinds[0] == Pennant:
		off = tip - 8
	case knots < 7.5:
		off = tip - 4
	default:
		off = tip
	}
	out := make([]Barbule, len(kinds))
	for i, k := range kinds {
		if i > 0 {
			off -= 4
			if k == Pennant && kinds[i-1] == Pennant {
				off -= 4
			}
		}
		out[i] = Barbule{Kind: k, Offset: off}
	}
	return Barb{Barbules: out}
}
