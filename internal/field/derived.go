package field

import (
	"math"

	"wxmap/internal/geom"
)

// Derived is a field computed from other fields. It is owned by whoever
// created it and must be released once the pass using it is done; any use
// after Release panics.
type Derived struct {
	g *Grid
}

// Magnitude derives sqrt(u²+v²) on u's grid. Samples are Missing wherever
// either component is. v is read by index when it shares u's dimensions and
// interpolated otherwise.
func Magnitude(u, v Field) *Derived {
	ni, nj := u.Dims()
	vni, vnj := v.Dims()
	g := NewGrid(ni, nj, u.Lon(0), u.Lat(0), step(u.Lon, ni), step(u.Lat, nj))
	for j := 0; j < nj; j++ {
		for i := 0; i < ni; i++ {
			a := u.Value(i, j)
			var b float64
			if vni == ni && vnj == nj {
				b = v.Value(i, j)
			} else {
				b = v.Interpolated(u.Lon(i), u.Lat(j))
			}
			if a == Missing || b == Missing {
				continue
			}
			g.Set(i, j, math.Hypot(a, b))
		}
	}
	return &Derived{g: g}
}

func step(at func(int) float64, n int) float64 {
	if n < 2 {
		return 1
	}
	return (at(n-1) - at(0)) / float64(n-1)
}

func (d *Derived) Dims() (int, int)                     { return d.g.Dims() }
func (d *Derived) Lon(i int) float64                    { return d.g.Lon(i) }
func (d *Derived) Lat(j int) float64                    { return d.g.Lat(j) }
func (d *Derived) Value(i, j int) float64               { return d.g.Value(i, j) }
func (d *Derived) Interpolated(lon, lat float64) float64 { return d.g.Interpolated(lon, lat) }
func (d *Derived) Extent() geom.BBox                    { return d.g.Extent() }

// Release drops the derived samples.
func (d *Derived) Release() { d.g = nil }

// Released reports whether Release has been called.
func (d *Derived) Released() bool { return d.g == nil }
