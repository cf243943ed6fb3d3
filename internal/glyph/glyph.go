// Package glyph draws direction arrows and wind barbs.
//
// Glyph geometry is expressed in a local frame centred on the anchor, with
// the shaft along +x, and carried to the screen by one Transform shared by
// every stroke of the glyph.
package glyph

import (
	"image/color"
	"math"

	"wxmap/internal/backend"
)

// Size is the shaft length in glyph units (pixels at scale 1).
const Size = 26

// Transform rotates local glyph coordinates and moves them onto the anchor.
type Transform struct {
	Sin, Cos float64
	X, Y     float64
}

// Rotate returns the transform for angle (radians) around anchor (x, y).
func Rotate(angle, x, y float64) Transform {
	return Transform{Sin: math.Sin(angle), Cos: math.Cos(angle), X: x, Y: y}
}

// Apply maps a local point to screen space.
func (t Transform) Apply(x, y float64) backend.Point {
	return backend.Point{
		X: x*t.Cos - y*t.Sin + t.X,
		Y: x*t.Sin + y*t.Cos + t.Y,
	}
}

// PolarAngle is the screen angle of a magnitude+direction field whose
// direction is in degrees.
func PolarAngle(dirDeg float64) float64 { return (dirDeg - 90) * math.Pi / 180 }

// ComponentAngle is the screen angle of an orthogonal u/v component pair.
func ComponentAngle(u, v float64) float64 { return math.Atan2(v, -u) }

// Renderer draws glyphs onto a canvas.
type Renderer struct {
	Canvas backend.Canvas
	Color  color.RGBA
	Width  float64
	// Scale multiplies every glyph dimension; zero means 1.
	Scale float64
}

func (r Renderer) line(t Transform, x0, y0, x1, y1 float64) {
	s := r.Scale
	if s == 0 {
		s = 1
	}
	r.Canvas.DrawLine(t.Apply(x0*s, y0*s), t.Apply(x1*s, y1*s), r.Width, r.Color)
}

// Arrow draws a shaft with a two-stroke head at the tail end, rotated by angle.
func (r Renderer) Arrow(x, y, angle float64) {
	t := Rotate(angle, x, y)
	dec := -Size / 2.0
	r.line(t, dec, 0, dec+Size, 0)
	r.line(t, dec-2, 0, dec+5, 6)
	r.line(t, dec-2, 0, dec+5, -6)
}

// calmSegments is the number of chords of the calm circle.
const calmSegments = 16

// Barb draws a wind barb for speed knots at (x, y). south mirrors the
// barbules for the southern hemisphere.
func (r Renderer) Barb(x, y, knots, angle float64, south bool) {
	r.drawBarb(Rotate(angle, x, y), BarbFor(knots), south)
}

func (r Renderer) drawBarb(t Transform, b Barb, south bool) {
	if b.Calm {
		const radius = 5.0
		for k := 0; k < calmSegments; k++ {
			a0 := 2 * math.Pi * float64(k) / calmSegments
			a1 := 2 * math.Pi * float64(k+1) / calmSegments
			r.line(t, radius*math.Cos(a0), radius*math.Sin(a0), radius*math.Cos(a1), radius*math.Sin(a1))
		}
		return
	}
	dec := -Size / 2.0
	r.line(t, dec, 0, dec+Size, 0)
	r.line(t, dec, 0, dec+5, 2)
	r.line(t, dec, 0, dec+5, -2)

	side := 1.0
	if south {
		side = -1
	}
	for _, bb := range b.Barbules {
		o := bb.Offset
		switch bb.Kind {
		case Short:
			r.line(t, o, 0, o+2, 5*side)
		case Long:
			r.line(t, o, 0, o+4, 10*side)
		case Pennant:
			r.line(t, o, 0, o+4, 10*side)
			r.line(t, o+8, 0, o+4, 10*side)
		}
	}
}
