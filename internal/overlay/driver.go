// Package overlay renders weather record sets onto a viewport: barbs and
// arrows, contour lines, colour rasters and value labels, layer by layer.
package overlay

import (
	"errors"
	"image"
	"image/color"
	"log/slog"
	"math"
	"slices"
	"strings"

	"wxmap/internal/backend"
	"wxmap/internal/colorscale"
	"wxmap/internal/config"
	"wxmap/internal/contour"
	"wxmap/internal/field"
	"wxmap/internal/geom"
	"wxmap/internal/glyph"
	"wxmap/internal/proj"
	"wxmap/internal/sample"
)

// ErrNoData is returned by Render before a record set is installed.
var ErrNoData = errors.New("overlay: no record set loaded")

// maxLevels caps the contour levels built for one layer.
const maxLevels = 200

var (
	barbColor    = color.RGBA{0xf0, 0xd0, 0x20, 0xff}
	arrowColor   = color.RGBA{0x60, 0xc0, 0xf0, 0xff}
	contourColor = color.RGBA{0xc8, 0xc8, 0xc8, 0xff}
	noticeText   = color.RGBA{0xff, 0xff, 0xff, 0xff}
	noticeBack   = color.RGBA{0xa0, 0x20, 0x20, 0xff}
)

// Contour is one built iso-line.
type Contour interface {
	Draw(c backend.Canvas, p proj.Projector, col color.RGBA, width float64)
	DrawLabels(c backend.Canvas, p proj.Projector, label *image.RGBA)
}

// ContourBuilder traces the iso-line of f at level. f is only valid for the
// duration of the call.
type ContourBuilder interface {
	Build(f field.Field, level float64) Contour
}

// marching adapts contour.Builder to ContourBuilder.
type marching struct{ b contour.Builder }

func (m marching) Build(f field.Field, level float64) Contour { return m.b.Build(f, level) }

// Progress reports contour building: done of total levels for layer l.
type Progress func(l Layer, done, total int)

type isoLine struct {
	level float64
	c     Contour
}

// Driver renders the enabled layers of one record set. It owns every cache
// and is not safe for concurrent use.
type Driver struct {
	cfg      *config.Config
	surface  backend.Surface
	contours ContourBuilder
	log      *slog.Logger
	progress Progress

	rec     *field.Record
	rasters *rasterCache
	iso     map[Layer][]isoLine
	labels  *LabelCache
	refused []Layer

	// canvas is the last canvas rendered to; cached textures live on it.
	canvas backend.Canvas
}

// Option configures a Driver.
type Option func(*Driver)

// WithSurface selects the raster surface.
func WithSurface(s backend.Surface) Option { return func(d *Driver) { d.surface = s } }

// WithContours replaces the marching-squares contour builder.
func WithContours(b ContourBuilder) Option { return func(d *Driver) { d.contours = b } }

func WithLogger(l *slog.Logger) Option { return func(d *Driver) { d.log = l } }

// WithProgress installs a contour build progress callback.
func WithProgress(p Progress) Option { return func(d *Driver) { d.progress = p } }

// New returns a driver drawing according to cfg. The surface defaults to the
// one named by cfg.RasterMode.
func New(cfg *config.Config, opts ...Option) *Driver {
	d := &Driver{
		cfg:      cfg,
		contours: marching{},
		log:      slog.Default(),
		rasters:  newRasterCache(),
		iso:      make(map[Layer][]isoLine),
		labels:   NewLabelCache(),
	}
	if s, ok := backend.SurfaceFor(cfg.RasterMode); ok {
		d.surface = s
	} else {
		d.surface = backend.BitmapSurface{}
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// SetRecord installs the record set to draw and drops everything built from
// the previous one.
func (d *Driver) SetRecord(rec *field.Record) {
	d.rec = rec
	d.Invalidate()
}

// Record returns the installed record set.
func (d *Driver) Record() *field.Record { return d.rec }

// Invalidate drops rasters and contours, e.g. after a configuration change.
func (d *Driver) Invalidate() {
	d.rasters.Clear(d.canvas)
	clear(d.iso)
}

// Close releases every cached raster, texture and label.
func (d *Driver) Close() {
	d.Invalidate()
	d.labels.Clear()
	d.canvas = nil
}

// Refused returns the layers whose raster was refused in the last Render.
func (d *Driver) Refused() []Layer { return slices.Clone(d.refused) }

// Labels exposes the label cache.
func (d *Driver) Labels() *LabelCache { return d.labels }

// Render draws every enabled layer of the record set onto c.
func (d *Driver) Render(c backend.Canvas, v *proj.View) error {
	if d.rec == nil {
		return ErrNoData
	}
	if d.canvas != nil && d.canvas != c {
		d.rasters.Clear(d.canvas)
	}
	d.canvas = c
	if d.rasters.Sync(v.Scale, c) {
		d.log.Debug("view scale changed, rasters dropped", "scale", v.Scale)
	}
	d.refused = d.refused[:0]
	view, p := v.Culling()

	for _, l := range Layers() {
		lc := l.Config(d.cfg)
		if !lc.Enabled {
			continue
		}
		src, ok := l.resolve(d.rec)
		if !ok {
			d.log.Debug("layer skipped, field missing", "layer", l, "needs", l.Fields())
			continue
		}
		if lc.Glyphs {
			d.glyphPass(c, p, view, l, lc, src)
		}
		if lc.Contours {
			d.contourPass(c, p, view, l, lc, src)
		}
		if lc.Raster {
			d.rasterPass(c, p, view, l, lc, src)
		}
		if lc.Numbers {
			d.numberPass(c, p, view, l, lc, src)
		}
	}
	if len(d.refused) > 0 {
		d.drawNotice(c)
	}
	return nil
}

func (d *Driver) glyphPass(c backend.Canvas, p proj.Projector, view geom.BBox, l Layer, lc *config.Layer, src source) {
	kind := l.Kind()
	if kind == Scalar {
		return
	}
	kn, speed := lc.Knots()
	barbs := lc.GlyphStyle == config.Barbs && speed
	r := glyph.Renderer{Canvas: c, Color: arrowColor, Width: 2}
	if barbs {
		r.Color = barbColor
	}
	// polar layers walk the direction grid
	walk := src.x
	if kind == Polar {
		walk = src.y
	}
	wi, wj := walk.Dims()
	for pt := range sample.Points(walk, p, view, lc.GlyphSpacing) {
		a, b := pairAt(src, kind, wi, wj, pt, walk)
		if a == field.Missing || b == field.Missing {
			continue
		}
		var angle, mag float64
		if kind == Polar {
			mag, angle = a, glyph.PolarAngle(b)
		} else {
			mag, angle = math.Hypot(a, b), glyph.ComponentAngle(a, b)
		}
		if barbs {
			r.Barb(pt.X, pt.Y, kn.Apply(mag), angle, pt.Lat < 0)
		} else {
			r.Arrow(pt.X, pt.Y, angle)
		}
	}
}

// pairAt returns the (u, v) or (magnitude, direction) values of a sampled
// point, reading by index where the grids match and interpolating otherwise.
func pairAt(src source, kind Kind, wi, wj int, pt sample.Point, walk field.Field) (float64, float64) {
	lon := walk.Lon(pt.I)
	read := func(f field.Field) float64 {
		if ni, nj := f.Dims(); ni == wi && nj == wj {
			return f.Value(pt.I, pt.J)
		}
		return f.Interpolated(lon, pt.Lat)
	}
	if kind == Polar {
		return read(src.x), walk.Value(pt.I, pt.J)
	}
	return walk.Value(pt.I, pt.J), read(src.y)
}

func (d *Driver) contourPass(c backend.Canvas, v proj.Projector, view geom.BBox, l Layer, lc *config.Layer, src source) {
	at := visibleShifts(src.x.Extent(), view)
	if len(at) == 0 {
		return
	}
	lines, ok := d.iso[l]
	if !ok {
		f, release := src.scalar(l.Kind())
		lines = d.buildContours(l, calibrated{Field: f, cal: lc.Calibration()}, lc.ContourSpacing)
		release()
		d.iso[l] = lines
	}
	for _, s := range at {
		p := proj.Shifted{Projector: v, DX: s}
		for _, ln := range lines {
			ln.c.Draw(c, p, contourColor, 1)
			ln.c.DrawLabels(c, p, d.labels.Get(ln.level))
		}
	}
}

// buildContours traces one line per multiple of spacing between the field's
// minimum and maximum.
func (d *Driver) buildContours(l Layer, f field.Field, spacing float64) []isoLine {
	lo, hi, ok := field.MinMax(f)
	if !ok || spacing <= 0 {
		return []isoLine{}
	}
	first := math.Ceil(lo/spacing) * spacing
	n := int(math.Floor((hi-first)/spacing)) + 1
	if n > maxLevels {
		d.log.Warn("too many contour levels, truncated", "layer", l, "levels", n, "max", maxLevels)
		n = maxLevels
	}
	lines := make([]isoLine, 0, max(n, 0))
	for k := 0; k < n; k++ {
		level := first + float64(k)*spacing
		lines = append(lines, isoLine{level: level, c: d.contours.Build(f, level)})
		if d.progress != nil {
			d.progress(l, k+1, n)
		}
	}
	d.log.Debug("contours built", "layer", l, "levels", len(lines))
	return lines
}

// rasterPass draws the layer's cached raster, building it on a miss. A
// surface that refuses the raster or fails to build it marks the layer
// refused for the rest of the epoch.
func (d *Driver) rasterPass(c backend.Canvas, v proj.Projector, view geom.BBox, l Layer, lc *config.Layer, src source) {
	at := visibleShifts(src.x.Extent(), view)
	if len(at) == 0 {
		return
	}
	e, ok := d.rasters.get(l)
	if !ok {
		f, release := src.scalar(l.Kind())
		defer release()
		cal := lc.Calibration()
		col := func(x float64) color.RGBA {
			return colorscale.Lookup(lc.ColorScale, colorscale.Normalize(cal.Apply(x), lc.Min, lc.Max), d.cfg.Gradual)
		}
		var err error
		e, err = buildRaster(c, d.surface, v, f, col, d.cfg.PixelSize)
		if err != nil {
			d.log.Warn("raster build failed", "layer", l, "err", err)
			e = &rasterEntry{refused: true}
		}
		d.rasters.put(l, e)
		d.log.Debug("raster built", "layer", l, "refused", e.refused)
	}
	if e.refused {
		d.refused = append(d.refused, l)
		return
	}
	drawRaster(c, v, e, src.x.Extent(), at)
}

func (d *Driver) numberPass(c backend.Canvas, v proj.Projector, view geom.BBox, l Layer, lc *config.Layer, src source) {
	f, release := src.scalar(l.Kind())
	defer release()
	cal := lc.Calibration()
	for pt := range sample.Points(f, v, view, lc.NumberSpacing) {
		x := f.Value(pt.I, pt.J)
		if x == field.Missing {
			continue
		}
		img := d.labels.Get(cal.Apply(x))
		b := img.Bounds()
		c.BlitRaster(img, int(pt.X)-b.Dx()/2, int(pt.Y)-b.Dy()/2, true)
	}
}

// drawNotice asks the user to zoom out to see the refused layers.
func (d *Driver) drawNotice(c backend.Canvas) {
	names := make([]string, len(d.refused))
	for i, l := range d.refused {
		names[i] = l.String()
	}
	img := renderText("Zoom out to view: "+strings.Join(names, ", "), noticeText, noticeBack)
	r := c.Bounds()
	c.BlitRaster(img, r.Min.X+4, r.Max.Y-img.Bounds().Dy()-4, false)
}
