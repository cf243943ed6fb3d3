// Package colorscale maps normalized scalar values to overlay colours.
package colorscale

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ID selects a colour scale.
type ID int

const (
	Current ID = iota
	Generic
	// QuickScat is the scatterometer wind palette.
	QuickScat
	SeaTemp
	// RainRate is a plain red ramp with no table.
	RainRate
	idCount
)

var names = [idCount]string{
	Current:   "current",
	Generic:   "generic",
	QuickScat: "quickscat",
	SeaTemp:   "sea_temp",
	RainRate:  "rain_rate",
}

func (id ID) String() string {
	if id < 0 || id >= idCount {
		return fmt.Sprintf("colorscale(%d)", int(id))
	}
	return names[id]
}

// Parse returns the scale named s.
func Parse(s string) (ID, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for id, n := range names {
		if n == s {
			return ID(id), nil
		}
	}
	return 0, fmt.Errorf("colorscale: unknown scale %q", s)
}

func (id ID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *ID) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*id = v
	return nil
}

// Point is one control point of a table: Break in the table's own units.
type Point struct {
	Break float64
	Color colorful.Color
}

// Table is an ascending list of control points. Break positions are
// normalized by the last break before lookup.
type Table []Point

func (t Table) maxBreak() float64 { return t[len(t)-1].Break }

// Lookup returns the colour at normalized value v. The first control point
// whose normalized break exceeds v closes the bracket; in gradual mode the
// colour is blended between the bracket ends, otherwise the upper end is
// returned as is.
func (t Table) Lookup(v float64, gradual bool) color.RGBA {
	top := t.maxBreak()
	for i := 1; i < len(t); i++ {
		a := t[i-1].Break / top
		b := t[i].Break / top
		if b > v || i == len(t)-1 {
			c := t[i].Color
			if gradual {
				d := 0.0
				if b > a {
					d = (v - a) / (b - a)
				}
				c = t[i-1].Color.BlendRgb(t[i].Color, math.Max(0, math.Min(1, d)))
			}
			return rgba(c)
		}
	}
	return rgba(t[0].Color)
}

func rgba(c colorful.Color) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

// Normalize maps v from [lo, hi] to [0, 1]; values outside are not clamped.
func Normalize(v, lo, hi float64) float64 {
	if hi == lo {
		return 0
	}
	return (v - lo) / (hi - lo)
}

// Lookup returns the colour of scale id at normalized value v.
// An id without a scale is a programming error and panics.
func Lookup(id ID, v float64, gradual bool) color.RGBA {
	if id == RainRate {
		v = math.Max(0, math.Min(1, v))
		return color.RGBA{R: uint8(math.Round(255 * v)), A: 0xff}
	}
	t, ok := TableFor(id)
	if !ok {
		panic(fmt.Sprintf("colorscale: no table for %v", id))
	}
	return t.Lookup(v, gradual)
}

// TableFor returns the control points of a table-driven scale.
func TableFor(id ID) (Table, bool) {
	if id < 0 || id >= idCount || len(tables[id]) == 0 {
		return nil, false
	}
	return tables[id], true
}
