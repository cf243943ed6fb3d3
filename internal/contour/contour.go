// Package contour traces iso-lines through a field with marching squares.
package contour

import (
	"image"
	"image/color"

	"wxmap/internal/backend"
	"wxmap/internal/field"
	"wxmap/internal/geom"
	"wxmap/internal/proj"
)

// LabelDensity is the number of segments between two labels of one line.
const LabelDensity = 40

// Segment is one piece of an iso-line, endpoints given as lon/lat.
type Segment struct {
	A, B [2]float64
}

// Line is every segment of the iso-line at Level.
type Line struct {
	Level    float64
	Segments []Segment
	BBox     geom.BBox
	density  int
}

// Builder traces iso-lines.
type Builder struct {
	// Density overrides LabelDensity when positive.
	Density int
}

// Build traces the iso-line of f at level. Cells with a missing corner are
// skipped.
func (b Builder) Build(f field.Field, level float64) *Line {
	ln := &Line{Level: level, density: b.Density}
	if ln.density <= 0 {
		ln.density = LabelDensity
	}
	ni, nj := f.Dims()
	first := true
	for j := 0; j+1 < nj; j++ {
		for i := 0; i+1 < ni; i++ {
			c := corners(f, i, j)
			if c == nil {
				continue
			}
			for _, s := range c.cross(level) {
				ln.Segments = append(ln.Segments, s)
				for _, pt := range [2][2]float64{s.A, s.B} {
					if first {
						ln.BBox = geom.BBox{MinX: pt[0], MinY: pt[1], MaxX: pt[0], MaxY: pt[1]}
						first = false
					} else {
						ln.BBox.Extend(pt[0], pt[1])
					}
				}
			}
		}
	}
	return ln
}

// cell holds the four corners of a grid cell, counter-clockwise from
// (i, j): v[0]=(i,j) v[1]=(i+1,j) v[2]=(i+1,j+1) v[3]=(i,j+1).
type cell struct {
	v   [4]float64
	pos [4][2]float64
}

func corners(f field.Field, i, j int) *cell {
	idx := [4][2]int{{i, j}, {i + 1, j}, {i + 1, j + 1}, {i, j + 1}}
	var c cell
	for k, ij := range idx {
		v := f.Value(ij[0], ij[1])
		if v == field.Missing {
			return nil
		}
		c.v[k] = v
		c.pos[k] = [2]float64{f.Lon(ij[0]), f.Lat(ij[1])}
	}
	return &c
}

// edge returns the crossing point on the edge from corner a to corner b.
func (c *cell) edge(a, b int, level float64) [2]float64 {
	va, vb := c.v[a], c.v[b]
	t := 0.5
	if vb != va {
		t = (level - va) / (vb - va)
	}
	pa, pb := c.pos[a], c.pos[b]
	return [2]float64{pa[0] + t*(pb[0]-pa[0]), pa[1] + t*(pb[1]-pa[1])}
}

// edges of the cell, indexed by the corner pair they join
var edges = [4][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}}

// cross returns the zero, one or two segments where the cell crosses level.
func (c *cell) cross(level float64) []Segment {
	var code int
	for k := 0; k < 4; k++ {
		if c.v[k] >= level {
			code |= 1 << k
		}
	}
	if code == 0 || code == 15 {
		return nil
	}
	// crossed edges, in edge order
	var hit []int
	for e, ab := range edges {
		if (code>>ab[0])&1 != (code>>ab[1])&1 {
			hit = append(hit, e)
		}
	}
	pt := func(e int) [2]float64 { return c.edge(edges[e][0], edges[e][1], level) }
	if len(hit) == 2 {
		return []Segment{{A: pt(hit[0]), B: pt(hit[1])}}
	}
	// saddle: all four edges crossed, disambiguated by the centre value
	centre := (c.v[0] + c.v[1] + c.v[2] + c.v[3]) / 4
	high := centre >= level
	if (code == 5) == high {
		// corners 1 and 3 cut off
		return []Segment{{A: pt(0), B: pt(1)}, {A: pt(2), B: pt(3)}}
	}
	return []Segment{{A: pt(3), B: pt(0)}, {A: pt(1), B: pt(2)}}
}

func onScreen(r image.Rectangle, a, b backend.Point) bool {
	minX, maxX := min(a.X, b.X), max(a.X, b.X)
	minY, maxY := min(a.Y, b.Y), max(a.Y, b.Y)
	return maxX >= float64(r.Min.X) && minX <= float64(r.Max.X) &&
		maxY >= float64(r.Min.Y) && minY <= float64(r.Max.Y)
}

// Draw strokes every segment that lands on the canvas.
func (l *Line) Draw(c backend.Canvas, p proj.Projector, col color.RGBA, width float64) {
	r := c.Bounds()
	for _, s := range l.Segments {
		ax, ay := p.ToScreen(s.A[1], s.A[0])
		bx, by := p.ToScreen(s.B[1], s.B[0])
		a, b := backend.Pt(ax, ay), backend.Pt(bx, by)
		if onScreen(r, a, b) {
			c.DrawLine(a, b, width, col)
		}
	}
}

// DrawLabels blits label centred on the midpoint of every density-th
// segment that lands on the canvas.
func (l *Line) DrawLabels(c backend.Canvas, p proj.Projector, label *image.RGBA) {
	if label == nil {
		return
	}
	density := max(l.density, 1)
	r := c.Bounds()
	lb := label.Bounds()
	for k := 0; k < len(l.Segments); k += density {
		s := l.Segments[k]
		x, y := p.ToScreen((s.A[1]+s.B[1])/2, (s.A[0]+s.B[0])/2)
		pt := image.Pt(int(x)-lb.Dx()/2, int(y)-lb.Dy()/2)
		if pt.In(r) {
			c.BlitRaster(label, pt.X, pt.Y, false)
		}
	}
}
