// Package sample walks a field's grid and picks the points that are far
// enough apart on screen to carry a glyph or label.
package sample

import (
	"iter"
	"math"

	"wxmap/internal/field"
	"wxmap/internal/geom"
	"wxmap/internal/proj"
)

// Point is one accepted grid sample and its screen position.
type Point struct {
	I, J     int
	Lon, Lat float64
	X, Y     float64
}

// InViewport reports whether (lat, lon) lies in the viewport box, either
// directly or one turn west (lon − 360).
func InViewport(view geom.BBox, lat, lon float64) bool {
	return view.Contains(lon, lat) || view.Contains(lon-360, lat)
}

// Points yields the samples of f spaced at least spacing pixels apart along
// both screen axes and lying inside view. Columns are thinned first, at the
// projected middle row; rows are then thinned within each kept column.
// Screen positions are taken at whichever longitude copy fell in view.
func Points(f field.Field, p proj.Projector, view geom.BBox, spacing float64) iter.Seq[Point] {
	return func(yield func(Point) bool) {
		ni, nj := f.Dims()
		if ni == 0 || nj == 0 {
			return
		}
		mid := f.Lat(nj / 2)
		var lastX float64
		haveX := false
		for i := 0; i < ni; i++ {
			lon := f.Lon(i)
			x, _ := p.ToScreen(mid, lon)
			if haveX && math.Abs(x-lastX) < spacing {
				continue
			}
			lastX, haveX = x, true

			var lastY float64
			haveY := false
			for j := 0; j < nj; j++ {
				lat := f.Lat(j)
				at := lon
				switch {
				case view.Contains(lon, lat):
				case view.Contains(lon-360, lat):
					at = lon - 360
				default:
					continue
				}
				sx, sy := p.ToScreen(lat, at)
				if haveY && math.Abs(sy-lastY) < spacing {
					continue
				}
				lastY, haveY = sy, true
				if !yield(Point{I: i, J: j, Lon: at, Lat: lat, X: sx, Y: sy}) {
					return
				}
			}
		}
	}
}
