package overlay

import (
	"image"
	"image/color"
	"math"

	"wxmap/internal/backend"
	"wxmap/internal/field"
	"wxmap/internal/geom"
	"wxmap/internal/proj"
)

// RasterAlpha is the opacity of a raster block with data.
const RasterAlpha = 220

// shifts are the longitude offsets tried when matching a field against the
// viewport: the field as stored and one turn west.
var shifts = [...]float64{0, -360}

// visibleShifts returns the offsets at which ext overlaps view.
func visibleShifts(ext, view geom.BBox) []float64 {
	var out []float64
	for _, s := range shifts {
		if ext.ShiftX(s).Intersects(view) {
			out = append(out, s)
		}
	}
	return out
}

// rasterEntry is the cached raster of one layer. A nil raster with refused
// set means the surface would not build it at this scale.
type rasterEntry struct {
	raster  backend.Raster
	refused bool
}

// rasterCache holds one raster per layer, valid for a single view scale.
type rasterCache struct {
	scale   float64
	set     bool
	entries map[Layer]*rasterEntry
}

func newRasterCache() *rasterCache {
	return &rasterCache{entries: make(map[Layer]*rasterEntry)}
}

// Sync starts a new epoch when scale differs from the cached one, releasing
// every raster on c. It reports whether the cache was cleared.
func (rc *rasterCache) Sync(scale float64, c backend.Canvas) bool {
	if rc.set && rc.scale == scale {
		return false
	}
	cleared := rc.set
	rc.Clear(c)
	rc.scale, rc.set = scale, true
	return cleared
}

// Clear releases every entry. c may be nil when nothing was ever drawn.
func (rc *rasterCache) Clear(c backend.Canvas) {
	for l, e := range rc.entries {
		if e.raster != nil && c != nil {
			e.raster.Release(c)
		}
		delete(rc.entries, l)
	}
}

func (rc *rasterCache) get(l Layer) (*rasterEntry, bool) {
	e, ok := rc.entries[l]
	return e, ok
}

func (rc *rasterCache) put(l Layer, e *rasterEntry) { rc.entries[l] = e }

// Len is the number of cached entries, refusals included.
func (rc *rasterCache) Len() int { return len(rc.entries) }

// colorFunc maps a display value to a colour.
type colorFunc func(v float64) color.RGBA

// rasterOrigin is the screen position of the top-left corner of ext.
func rasterOrigin(p proj.Projector, ext geom.BBox) (x, y float64) {
	return p.ToScreen(ext.MaxY, ext.MinX)
}

// buildRaster samples f over its whole extent in blocks of pixelSize screen
// pixels. Because the raster covers the extent rather than the viewport it
// stays valid while the view pans at one scale.
func buildRaster(c backend.Canvas, s backend.Surface, p proj.Projector, f field.Field, col colorFunc, pixelSize int) (*rasterEntry, error) {
	ext := f.Extent()
	x0, y0 := rasterOrigin(p, ext)
	x1, y1 := p.ToScreen(ext.MinY, ext.MaxX)
	w := int(math.Abs(x1 - x0))
	h := int(math.Abs(y1 - y0))
	if !s.Fits(w, h, pixelSize) {
		return &rasterEntry{refused: true}, nil
	}
	bw, bh := w/pixelSize, h/pixelSize
	if bw == 0 || bh == 0 {
		return &rasterEntry{}, nil
	}
	blocks := image.NewRGBA(image.Rect(0, 0, bw, bh))
	half := float64(pixelSize) / 2
	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			lat, lon := p.FromScreen(x0+float64(bx*pixelSize)+half, y0+float64(by*pixelSize)+half)
			v := f.Interpolated(lon, lat)
			if v == field.Missing {
				continue
			}
			blocks.SetRGBA(bx, by, premultiply(col(v), RasterAlpha))
		}
	}
	r, err := s.Build(c, blocks, pixelSize)
	if err != nil {
		return nil, err
	}
	return &rasterEntry{raster: r}, nil
}

// premultiply applies alpha a to an opaque colour.
func premultiply(c color.RGBA, a uint8) color.RGBA {
	return color.RGBAModel.Convert(color.NRGBA{R: c.R, G: c.G, B: c.B, A: a}).(color.RGBA)
}

// drawRaster draws e at every shift in which ext shows in the viewport.
func drawRaster(c backend.Canvas, p proj.Projector, e *rasterEntry, ext geom.BBox, at []float64) {
	if e.raster == nil {
		return
	}
	for _, s := range at {
		x, y := rasterOrigin(proj.Shifted{Projector: p, DX: s}, ext)
		e.raster.Draw(c, int(math.Round(x)), int(math.Round(y)))
	}
}
