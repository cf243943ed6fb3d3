package overlay

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wxmap/internal/backend"
	"wxmap/internal/backend/backendtest"
	"wxmap/internal/config"
	"wxmap/internal/field"
	"wxmap/internal/glyph"
	"wxmap/internal/proj"
)

func pxPerDeg(n float64) float64 { return n / (math.Pi / 180 * proj.EarthRadius) }

// only returns a config with every layer disabled but l, which has every
// pass off.
func only(l Layer) (*config.Config, *config.Layer) {
	cfg := config.Default()
	for _, n := range cfg.All() {
		n.Layer.Enabled = false
		n.Layer.Glyphs, n.Layer.Contours, n.Layer.Raster, n.Layer.Numbers = false, false, false, false
	}
	lc := l.Config(cfg)
	lc.Enabled = true
	return cfg, lc
}

func filled(ni, nj int, lon0, lat0, d, v float64) *field.Grid {
	g := field.NewGrid(ni, nj, lon0, lat0, d, d)
	for k := range g.Vals {
		g.Vals[k] = v
	}
	return g
}

func record(fields map[field.ID]field.Field) *field.Record {
	rec := field.NewRecord(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	for id, f := range fields {
		rec.Fields[id] = f
	}
	return rec
}

func TestRenderNoData(t *testing.T) {
	d := New(config.Default())
	rec := backendtest.New(100, 100)
	err := d.Render(rec, proj.NewView(0, 0, pxPerDeg(10), 100, 100))
	assert.ErrorIs(t, err, ErrNoData)
	assert.Zero(t, rec.DrawCount())
}

func TestRenderSingleBarb(t *testing.T) {
	cfg, lc := only(Wind)
	lc.Glyphs = true
	lc.SourceUnits, lc.Units = "kn", "kn"
	lc.GlyphSpacing = 1000

	d := New(cfg)
	d.SetRecord(record(map[field.ID]field.Field{
		field.WindU: filled(1, 1, 0, 0, 1, 3),
		field.WindV: filled(1, 1, 0, 0, 1, 4),
	}))
	rec := backendtest.New(400, 300)
	v := proj.NewView(0, 0, pxPerDeg(10), 400, 300)
	require.NoError(t, d.Render(rec, v))

	// shaft, two head strokes and one short barbule
	require.Len(t, rec.Lines, 4)
	x, y := v.ToScreen(0, 0)
	tr := glyph.Rotate(math.Atan2(4, -3), x, y)
	assert.Equal(t, tr.Apply(-13, 0), rec.Lines[0].A)
	assert.Equal(t, tr.Apply(13, 0), rec.Lines[0].B)
	assert.Equal(t, tr.Apply(9, 0), rec.Lines[3].A)
	assert.Equal(t, tr.Apply(11, 5), rec.Lines[3].B)
	assert.Empty(t, rec.Blits)
}

func TestRenderArrowsAndMissing(t *testing.T) {
	cfg, lc := only(Current)
	lc.Glyphs = true
	lc.GlyphStyle = config.Arrows
	lc.GlyphSpacing = 1

	u := filled(3, 1, -1, 0, 1, 1)
	u.Set(1, 0, field.Missing)
	d := New(cfg)
	d.SetRecord(record(map[field.ID]field.Field{
		field.CurrentU: u,
		field.CurrentV: filled(3, 1, -1, 0, 1, 1),
	}))
	rec := backendtest.New(400, 300)
	require.NoError(t, d.Render(rec, proj.NewView(0, 0, pxPerDeg(20), 400, 300)))
	// two arrows of three strokes; the missing sample draws nothing
	assert.Len(t, rec.Lines, 6)
	assert.Equal(t, arrowColor, rec.Lines[0].Color)
}

func TestRenderWaveArrows(t *testing.T) {
	cfg, lc := only(Wave)
	lc.Glyphs = true
	lc.GlyphSpacing = 1000
	d := New(cfg)
	d.SetRecord(record(map[field.ID]field.Field{
		field.WaveHeight:    filled(1, 1, 0, 0, 1, 2),
		field.WaveDirection: filled(1, 1, 0, 0, 1, 90),
	}))
	rec := backendtest.New(200, 200)
	v := proj.NewView(0, 0, pxPerDeg(10), 200, 200)
	require.NoError(t, d.Render(rec, v))
	require.Len(t, rec.Lines, 3)
	// direction 90 points the shaft along +x
	assert.InDelta(t, 87, rec.Lines[0].A.X, 1e-9)
	assert.InDelta(t, 113, rec.Lines[0].B.X, 1e-9)
}

func TestRenderSkipsLayerMissingComponent(t *testing.T) {
	cfg, lc := only(Wind)
	lc.Glyphs, lc.Raster, lc.Numbers = true, true, true
	d := New(cfg)
	d.SetRecord(record(map[field.ID]field.Field{
		field.WindU: filled(5, 5, -2, -2, 1, 3),
	}))
	rec := backendtest.New(200, 200)
	require.NoError(t, d.Render(rec, proj.NewView(0, 0, pxPerDeg(10), 200, 200)))
	assert.Zero(t, rec.DrawCount())
	assert.Zero(t, d.rasters.Len())
}

func TestRenderFieldBelowViewport(t *testing.T) {
	cfg, lc := only(Pressure)
	lc.Contours, lc.Raster = true, true
	g := field.NewGrid(10, 10, 0, -60, 1, 1)
	for j := 0; j < 10; j++ {
		for i := 0; i < 10; i++ {
			g.Set(i, j, 100000+float64(i)*100)
		}
	}
	d := New(cfg)
	d.SetRecord(record(map[field.ID]field.Field{field.Pressure: g}))
	rec := backendtest.New(300, 200)
	require.NoError(t, d.Render(rec, proj.NewView(40, 5, pxPerDeg(10), 300, 200)))
	assert.Zero(t, rec.DrawCount())
	assert.Zero(t, rec.Uploads)
	assert.Empty(t, d.iso)
	assert.Zero(t, d.rasters.Len())
}

func pressureRamp() *field.Grid {
	g := field.NewGrid(10, 10, 0, 0, 1, 1)
	for j := 0; j < 10; j++ {
		for i := 0; i < 10; i++ {
			g.Set(i, j, 100000+float64(i)*100)
		}
	}
	return g
}

func TestContoursCachedWithProgress(t *testing.T) {
	cfg, lc := only(Pressure)
	lc.Contours = true
	lc.ContourSpacing = 4

	type call struct{ done, total int }
	var calls []call
	d := New(cfg, WithProgress(func(l Layer, done, total int) {
		assert.Equal(t, Pressure, l)
		calls = append(calls, call{done, total})
	}))
	d.SetRecord(record(map[field.ID]field.Field{field.Pressure: pressureRamp()}))
	rec := backendtest.New(400, 400)
	v := proj.NewView(4.5, 4.5, pxPerDeg(30), 400, 400)
	require.NoError(t, d.Render(rec, v))

	assert.Equal(t, []call{{1, 3}, {2, 3}, {3, 3}}, calls)
	require.Len(t, d.iso[Pressure], 3)
	assert.Equal(t, []float64{1000, 1004, 1008}, []float64{
		d.iso[Pressure][0].level, d.iso[Pressure][1].level, d.iso[Pressure][2].level,
	})
	assert.NotEmpty(t, rec.Lines)
	assert.Equal(t, contourColor, rec.Lines[0].Color)

	// a second frame reuses the lines
	require.NoError(t, d.Render(rec, v))
	assert.Len(t, calls, 3)

	// a new record rebuilds them
	d.SetRecord(record(map[field.ID]field.Field{field.Pressure: pressureRamp()}))
	require.NoError(t, d.Render(rec, v))
	assert.Len(t, calls, 6)
}

type spyBuilder struct {
	seen []field.Field
}

func (s *spyBuilder) Build(f field.Field, level float64) Contour {
	s.seen = append(s.seen, f)
	return nopContour{}
}

type nopContour struct{}

func (nopContour) Draw(backend.Canvas, proj.Projector, color.RGBA, float64) {}
func (nopContour) DrawLabels(backend.Canvas, proj.Projector, *image.RGBA)    {}

func TestDerivedMagnitudeReleased(t *testing.T) {
	cfg, lc := only(Wind)
	lc.Contours = true
	lc.ContourSpacing = 1
	lc.SourceUnits, lc.Units = "kn", "kn"
	spy := &spyBuilder{}
	d := New(cfg, WithContours(spy))
	d.SetRecord(record(map[field.ID]field.Field{
		field.WindU: filled(4, 4, 0, 0, 1, 3),
		field.WindV: filled(4, 4, 0, 0, 1, 4),
	}))
	require.NoError(t, d.Render(backendtest.New(200, 200), proj.NewView(1.5, 1.5, pxPerDeg(20), 200, 200)))
	require.NotEmpty(t, spy.seen)
	m, ok := spy.seen[0].(calibrated).Field.(*field.Derived)
	require.True(t, ok)
	assert.True(t, m.Released())
}

func seaTemp() *field.Record {
	return record(map[field.ID]field.Field{field.SeaTemp: filled(11, 11, -5, -5, 1, 290)})
}

func TestRasterReusedAtSameScale(t *testing.T) {
	cfg, lc := only(SeaTemperature)
	lc.Raster = true
	pc := Pressure.Config(cfg)
	pc.Enabled, pc.Raster = true, true
	d := New(cfg)
	rec := seaTemp()
	rec.Fields[field.Pressure] = filled(11, 11, -5, -5, 1, 101000)
	d.SetRecord(rec)
	c := backendtest.New(400, 400)
	v := proj.NewView(0, 0, pxPerDeg(20), 400, 400)

	require.NoError(t, d.Render(c, v))
	sea, ok := d.rasters.get(SeaTemperature)
	require.True(t, ok)
	require.NotNil(t, sea.raster)
	pres, ok := d.rasters.get(Pressure)
	require.True(t, ok)
	require.NotNil(t, pres.raster)
	require.Len(t, c.Blits, 2)
	assert.True(t, c.Blits[0].Mask)
	assert.True(t, c.Blits[1].Mask)

	// panning keeps both rasters and moves them
	v.Pan(10, 0)
	require.NoError(t, d.Render(c, v))
	again, _ := d.rasters.get(SeaTemperature)
	assert.Same(t, sea, again)
	again, _ = d.rasters.get(Pressure)
	assert.Same(t, pres, again)
	require.Len(t, c.Blits, 4)
	for k := range 2 {
		assert.Same(t, c.Blits[k].Img, c.Blits[k+2].Img)
		assert.Equal(t, c.Blits[k].X-10, c.Blits[k+2].X)
	}

	// a new scale rebuilds every raster layer, not just the first
	v.Zoom(2)
	require.NoError(t, d.Render(c, v))
	rebuilt, ok := d.rasters.get(SeaTemperature)
	require.True(t, ok)
	assert.NotSame(t, sea, rebuilt)
	assert.NotNil(t, rebuilt.raster)
	rebuilt, ok = d.rasters.get(Pressure)
	require.True(t, ok)
	assert.NotSame(t, pres, rebuilt)
	assert.NotNil(t, rebuilt.raster)
	require.Len(t, c.Blits, 6)
	assert.Greater(t, c.Blits[4].Img.Bounds().Dx(), c.Blits[0].Img.Bounds().Dx())
}

func TestRasterTexturePath(t *testing.T) {
	cfg, lc := only(SeaTemperature)
	lc.Raster = true
	g := filled(11, 11, -5, -5, 1, 290)
	g.Set(0, 0, field.Missing)
	g.Set(1, 0, field.Missing)
	g.Set(0, 1, field.Missing)
	d := New(cfg, WithSurface(backend.TextureSurface{}))
	d.SetRecord(record(map[field.ID]field.Field{field.SeaTemp: g}))
	rec := backendtest.New(400, 400)
	v := proj.NewView(0, 0, pxPerDeg(20), 400, 400)

	require.NoError(t, d.Render(rec, v))
	require.NoError(t, d.Render(rec, v))
	assert.Equal(t, 1, rec.Uploads)
	assert.Len(t, rec.Draws, 2)
	assert.Equal(t, 4, rec.Draws[0].PixelSize)

	tex := rec.Textures[rec.Draws[0].Tex]
	b := tex.Bounds()
	// bottom-left block sits in the missing corner cell
	assert.Zero(t, tex.RGBAAt(0, b.Max.Y-1).A)
	assert.Equal(t, uint8(RasterAlpha), tex.RGBAAt(b.Dx()/2, b.Dy()/2).A)

	v.Zoom(1.5)
	require.NoError(t, d.Render(rec, v))
	assert.Equal(t, 2, rec.Uploads)
	assert.Len(t, rec.Deleted, 1)

	d.Close()
	assert.Len(t, rec.Deleted, 2)
	assert.Empty(t, rec.Textures)
}

func TestRasterRefusedShowsNotice(t *testing.T) {
	cfg, lc := only(SeaTemperature)
	lc.Raster = true
	d := New(cfg)
	d.SetRecord(seaTemp())
	rec := backendtest.New(400, 300)
	// 10 degrees at 200 px per degree is far over the bitmap cap
	v := proj.NewView(0, 0, pxPerDeg(200), 400, 300)

	require.NoError(t, d.Render(rec, v))
	assert.Equal(t, []Layer{SeaTemperature}, d.Refused())
	require.Len(t, rec.Blits, 1)
	assert.False(t, rec.Blits[0].Mask)

	e, ok := d.rasters.get(SeaTemperature)
	require.True(t, ok)
	assert.True(t, e.refused)

	v.Zoom(1.0 / 100)
	rec.Reset()
	require.NoError(t, d.Render(rec, v))
	assert.Empty(t, d.Refused())
	require.Len(t, rec.Blits, 1)
	assert.True(t, rec.Blits[0].Mask)
}

func TestRasterAntimeridianShift(t *testing.T) {
	cfg, lc := only(SeaTemperature)
	lc.Raster = true
	d := New(cfg)
	// grid on 170..190 east, viewed from the western side of the seam
	d.SetRecord(record(map[field.ID]field.Field{field.SeaTemp: filled(21, 5, 170, -2, 1, 290)}))
	rec := backendtest.New(400, 200)
	v := proj.NewView(0, -175, pxPerDeg(10), 400, 200)
	require.NoError(t, d.Render(rec, v))
	require.Len(t, rec.Blits, 1)
	x, _ := v.ToScreen(2, 170-360)
	assert.Equal(t, int(math.Round(x)), rec.Blits[0].X)
}

func TestGlyphsPastEastSeam(t *testing.T) {
	cfg, lc := only(Current)
	lc.Glyphs = true
	lc.GlyphStyle = config.Arrows
	lc.GlyphSpacing = 1
	d := New(cfg)
	// a −180..175 grid seen from a view centred at 175 east
	d.SetRecord(record(map[field.ID]field.Field{
		field.CurrentU: filled(72, 1, -180, 0, 5, 1),
		field.CurrentV: filled(72, 1, -180, 0, 5, 1),
	}))
	rec := backendtest.New(400, 200)
	require.NoError(t, d.Render(rec, proj.NewView(0, 175, pxPerDeg(10), 400, 200)))

	var xs []float64
	for k := 0; k < len(rec.Lines); k += 3 {
		l := rec.Lines[k]
		xs = append(xs, math.Round((l.A.X+l.B.X)/2))
	}
	assert.Contains(t, xs, 200.0) // 175E
	assert.Contains(t, xs, 250.0) // the seam
	assert.Contains(t, xs, 350.0) // 170W
}

func TestRefusedIsSnapshot(t *testing.T) {
	cfg, lc := only(SeaTemperature)
	lc.Raster = true
	d := New(cfg)
	d.SetRecord(seaTemp())
	c := backendtest.New(400, 300)
	v := proj.NewView(0, 0, pxPerDeg(200), 400, 300)
	require.NoError(t, d.Render(c, v))
	held := d.Refused()
	require.Equal(t, []Layer{SeaTemperature}, held)

	// at 20 px per degree only the wide pressure raster is still too large
	pc := Pressure.Config(cfg)
	pc.Enabled, pc.Raster = true, true
	rec := seaTemp()
	rec.Fields[field.Pressure] = filled(101, 11, -50, -5, 1, 101000)
	d.SetRecord(rec)
	v.Zoom(1.0 / 10)
	require.NoError(t, d.Render(c, v))
	assert.Equal(t, []Layer{Pressure}, d.Refused())
	assert.Equal(t, []Layer{SeaTemperature}, held)
}

func TestRasterUploadFailureRefusesLayer(t *testing.T) {
	cfg, lc := only(SeaTemperature)
	lc.Raster = true
	cc := Current.Config(cfg)
	cc.Enabled, cc.Glyphs = true, true
	cc.GlyphStyle = config.Arrows
	cc.GlyphSpacing = 1
	d := New(cfg, WithSurface(backend.TextureSurface{}))
	rec := seaTemp()
	rec.Fields[field.CurrentU] = filled(3, 1, -1, 0, 1, 1)
	rec.Fields[field.CurrentV] = filled(3, 1, -1, 0, 1, 1)
	d.SetRecord(rec)
	c := backendtest.New(400, 400)
	c.UploadErr = errors.New("device lost")
	v := proj.NewView(0, 0, pxPerDeg(20), 400, 400)

	require.NoError(t, d.Render(c, v))
	assert.Equal(t, 1, c.Uploads)
	assert.Equal(t, []Layer{SeaTemperature}, d.Refused())
	assert.Empty(t, c.Draws)
	// the current layer after it still draws, and the notice shows
	assert.Len(t, c.Lines, 9)
	require.Len(t, c.Blits, 1)
	assert.False(t, c.Blits[0].Mask)

	// the failure holds for the epoch
	c.Reset()
	require.NoError(t, d.Render(c, v))
	assert.Equal(t, 1, c.Uploads)
	assert.Equal(t, []Layer{SeaTemperature}, d.Refused())
}

func TestNumbersUseLabelCache(t *testing.T) {
	cfg, lc := only(Pressure)
	lc.Numbers = true
	lc.NumberSpacing = 1
	d := New(cfg)
	d.SetRecord(record(map[field.ID]field.Field{field.Pressure: filled(3, 1, -1, 0, 1, 101300)}))
	rec := backendtest.New(200, 200)
	require.NoError(t, d.Render(rec, proj.NewView(0, 0, pxPerDeg(20), 200, 200)))
	require.Len(t, rec.Blits, 3)
	assert.Same(t, rec.Blits[0].Img, rec.Blits[2].Img)
	assert.Equal(t, 1, d.Labels().Len())
}

func TestLabelCache(t *testing.T) {
	lc := NewLabelCache()
	a := lc.Get(1012.6)
	b := lc.Get(1013.4)
	assert.Same(t, a, b)
	assert.Equal(t, 1, lc.Len())
	c := lc.Get(-3)
	assert.NotSame(t, a, c)
	assert.Equal(t, 2, lc.Len())
	assert.Greater(t, a.Bounds().Dx(), c.Bounds().Dx())
	assert.Equal(t, 15, a.Bounds().Dy())

	lc.Clear()
	assert.Zero(t, lc.Len())
}

func TestLayerTable(t *testing.T) {
	assert.Equal(t, []Layer{Wind, Pressure, Wave, SeaTemperature, Current}, Layers())
	assert.Equal(t, Components, Wind.Kind())
	assert.Equal(t, Polar, Wave.Kind())
	assert.Equal(t, []field.ID{field.Pressure}, Pressure.Fields())
	assert.Equal(t, []field.ID{field.CurrentU, field.CurrentV}, Current.Fields())
	assert.Equal(t, "sea_temperature", SeaTemperature.String())
	assert.Panics(t, func() { Layer(9).Kind() })
}
