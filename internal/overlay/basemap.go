package overlay

import (
	"image/color"

	"wxmap/internal/backend"
	"wxmap/internal/geom"
	"wxmap/internal/proj"
)

var basemapColor = color.RGBA{0x4b, 0x55, 0x63, 0xff}

// DrawBasemap strokes basemap polylines at each copy of the data one turn
// apart that overlaps the view.
func DrawBasemap(c backend.Canvas, v *proj.View, d geom.Data) {
	if len(d.Lines) == 0 {
		return
	}
	view := v.BBox()
	for _, dx := range []float64{-360, 0, 360} {
		if !d.BBox.ShiftX(dx).Intersects(view) {
			continue
		}
		p := proj.Shifted{Projector: v, DX: dx}
		for _, ls := range d.Lines {
			px, py := p.ToScreen(ls[0][1], ls[0][0])
			for _, pt := range ls[1:] {
				x, y := p.ToScreen(pt[1], pt[0])
				c.DrawLine(backend.Point{X: px, Y: py}, backend.Point{X: x, Y: y}, 1, basemapColor)
				px, py = x, y
			}
		}
	}
}
