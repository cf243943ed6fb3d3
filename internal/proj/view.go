// Package proj maps geographic coordinates to viewport pixels.
package proj

import (
	"math"

	"wxmap/internal/geom"
)

// EarthRadius is the spherical Mercator radius, in metres.
const EarthRadius = 6378137.0

// Projector converts between lat/lon degrees and screen pixels.
type Projector interface {
	ToScreen(lat, lon float64) (x, y float64)
	FromScreen(x, y float64) (lat, lon float64)
}

// View is the current viewport: a spherical Mercator projection centred on
// (Lat, Lon) at Scale pixels per metre, Width×Height pixels large. Screen y
// grows downwards. Longitudes are not wrapped, so callers decide which copy
// of a longitude to project (see BBox).
type View struct {
	Lat, Lon      float64
	Scale         float64
	Width, Height int
}

// NewView returns a view with its centre longitude normalized to [-180, 180).
func NewView(lat, lon, scale float64, w, h int) *View {
	v := &View{Lat: lat, Scale: scale, Width: w, Height: h}
	v.SetCenter(lat, lon)
	return v
}

// SetCenter moves the view, normalizing the longitude and clamping the
// latitude to the Mercator limit.
func (v *View) SetCenter(lat, lon float64) {
	v.Lon = math.Mod(math.Mod(lon+180, 360)+360, 360) - 180
	v.Lat = math.Max(-85, math.Min(85, lat))
}

func mercY(lat float64) float64 {
	return EarthRadius * math.Log(math.Tan(math.Pi/4+lat*math.Pi/360))
}

func (v *View) ToScreen(lat, lon float64) (float64, float64) {
	x := float64(v.Width)/2 + (lon-v.Lon)*math.Pi/180*EarthRadius*v.Scale
	y := float64(v.Height)/2 - (mercY(lat)-mercY(v.Lat))*v.Scale
	return x, y
}

func (v *View) FromScreen(x, y float64) (float64, float64) {
	lon := v.Lon + (x-float64(v.Width)/2)/(v.Scale*EarthRadius)*180/math.Pi
	my := mercY(v.Lat) - (y-float64(v.Height)/2)/v.Scale
	lat := (2*math.Atan(math.Exp(my/EarthRadius)) - math.Pi/2) * 180 / math.Pi
	return lat, lon
}

// BBox returns the lon/lat box covered by the viewport. Its longitudes may
// run past ±180 when the view straddles the antimeridian.
func (v *View) BBox() geom.BBox {
	top, left := v.FromScreen(0, 0)
	bottom, right := v.FromScreen(float64(v.Width), float64(v.Height))
	return geom.BBox{MinX: left, MinY: bottom, MaxX: right, MaxY: top}
}

// Culling returns the box to match field longitudes against and the
// projector that places the matches. A box running past +180 is moved one
// turn west and its matches drawn one turn east, so a longitude or its copy
// at lon − 360 falls in the box for fields stored on 0..360 or −180..180.
func (v *View) Culling() (geom.BBox, Projector) {
	b := v.BBox()
	if b.MaxX > 180 {
		return b.ShiftX(-360), Shifted{Projector: v, DX: 360}
	}
	return b, v
}

// Zoom multiplies the scale by f, keeping the centre.
func (v *View) Zoom(f float64) { v.Scale *= f }

// Pan moves the centre by dx, dy pixels.
func (v *View) Pan(dx, dy float64) {
	lat, lon := v.FromScreen(float64(v.Width)/2+dx, float64(v.Height)/2+dy)
	v.SetCenter(lat, lon)
}

// Fit returns the scale at which the lon/lat box fills a w×h viewport.
func Fit(b geom.BBox, w, h int) float64 {
	dx := (b.MaxX - b.MinX) * math.Pi / 180 * EarthRadius
	dy := mercY(math.Min(b.MaxY, 85)) - mercY(math.Max(b.MinY, -85))
	if dx <= 0 || dy <= 0 {
		return 1e-5
	}
	return math.Min(float64(w)/dx, float64(h)/dy)
}

// Shifted projects longitudes moved by DX degrees, used to draw the copy of
// a field lying across the antimeridian.
type Shifted struct {
	Projector
	DX float64
}

func (s Shifted) ToScreen(lat, lon float64) (float64, float64) {
	return s.Projector.ToScreen(lat, lon+s.DX)
}

func (s Shifted) FromScreen(x, y float64) (float64, float64) {
	lat, lon := s.Projector.FromScreen(x, y)
	return lat, lon - s.DX
}
