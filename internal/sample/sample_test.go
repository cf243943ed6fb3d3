package sample

import (
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wxmap/internal/field"
	"wxmap/internal/geom"
	"wxmap/internal/proj"
)

// pxPerDeg converts a pixels-per-degree zoom into a view scale.
func pxPerDeg(n float64) float64 { return n / (math.Pi / 180 * proj.EarthRadius) }

func TestInViewport(t *testing.T) {
	view := geom.BBox{MinX: -190, MinY: -10, MaxX: -170, MaxY: 10}
	assert.True(t, InViewport(view, 0, 175))
	assert.True(t, InViewport(view, 0, -175))
	assert.False(t, InViewport(view, 0, 0))
	assert.False(t, InViewport(view, 20, 175))
}

func TestPointsSpacing(t *testing.T) {
	g := field.NewGrid(90, 60, -45, -30, 1, 1)
	v := proj.NewView(0, 0, pxPerDeg(7), 800, 600)
	const spacing = 30.0

	pts := slices.Collect(Points(g, v, v.BBox(), spacing))
	require.NotEmpty(t, pts)

	cols := map[int][]Point{}
	var order []int
	for _, p := range pts {
		if _, ok := cols[p.I]; !ok {
			order = append(order, p.I)
		}
		cols[p.I] = append(cols[p.I], p)
	}
	mid := g.Lat(30)
	for k := 1; k < len(order); k++ {
		x0, _ := v.ToScreen(mid, g.Lon(order[k-1]))
		x1, _ := v.ToScreen(mid, g.Lon(order[k]))
		assert.GreaterOrEqual(t, math.Abs(x1-x0), spacing)
	}
	for _, col := range cols {
		for k := 1; k < len(col); k++ {
			assert.GreaterOrEqual(t, math.Abs(col[k].Y-col[k-1].Y), spacing)
		}
	}
	for _, p := range pts {
		assert.True(t, InViewport(v.BBox(), p.Lat, p.Lon))
	}
}

func TestPointsAntimeridian(t *testing.T) {
	// grid over 170..189 east, view centred on the dateline from the west
	g := field.NewGrid(20, 5, 170, -2, 1, 1)
	v := proj.NewView(0, -180, pxPerDeg(20), 400, 200)

	pts := slices.Collect(Points(g, v, v.BBox(), 1))
	require.NotEmpty(t, pts)
	seen := map[int]bool{}
	for _, p := range pts {
		seen[p.I] = true
		assert.GreaterOrEqual(t, p.X, -1.0)
		assert.LessOrEqual(t, p.X, 401.0)
		if g.Lon(p.I) > 180 {
			assert.Equal(t, g.Lon(p.I)-360, p.Lon)
		}
	}
	// columns on both sides of the seam are emitted
	assert.True(t, seen[9])
	assert.True(t, seen[15])
}

func TestPointsOutsideView(t *testing.T) {
	g := field.NewGrid(10, 10, 0, -80, 1, 1)
	v := proj.NewView(40, 0, pxPerDeg(5), 200, 200)
	assert.Empty(t, slices.Collect(Points(g, v, v.BBox(), 10)))
}

func TestPointsRestartAndBreak(t *testing.T) {
	g := field.NewGrid(40, 40, -20, -20, 1, 1)
	v := proj.NewView(0, 0, pxPerDeg(10), 300, 300)
	seq := Points(g, v, v.BBox(), 20)

	a := slices.Collect(seq)
	b := slices.Collect(seq)
	assert.Equal(t, a, b)

	n := 0
	for range seq {
		n++
		if n == 3 {
			break
		}
	}
	assert.Equal(t, 3, n)
}
