package field

import (
	"math"

	"wxmap/internal/geom"
)

// Grid is a regular lon/lat grid. Values are row-major: Vals[j*Ni+i].
// DLat may be negative for grids stored north to south.
type Grid struct {
	Ni, Nj     int
	Lon0, Lat0 float64
	DLon, DLat float64
	Vals       []float64
}

// NewGrid returns a grid with every sample set to Missing.
func NewGrid(ni, nj int, lon0, lat0, dlon, dlat float64) *Grid {
	g := &Grid{Ni: ni, Nj: nj, Lon0: lon0, Lat0: lat0, DLon: dlon, DLat: dlat}
	g.Vals = make([]float64, ni*nj)
	for k := range g.Vals {
		g.Vals[k] = Missing
	}
	return g
}

func (g *Grid) Dims() (int, int)  { return g.Ni, g.Nj }
func (g *Grid) Lon(i int) float64 { return g.Lon0 + float64(i)*g.DLon }
func (g *Grid) Lat(j int) float64 { return g.Lat0 + float64(j)*g.DLat }

// Set stores v at column i, row j.
func (g *Grid) Set(i, j int, v float64) { g.Vals[j*g.Ni+i] = v }

func (g *Grid) Value(i, j int) float64 {
	if i < 0 || j < 0 || i >= g.Ni || j >= g.Nj {
		return Missing
	}
	return g.Vals[j*g.Ni+i]
}

func (g *Grid) Extent() geom.BBox {
	b := geom.BBox{MinX: g.Lon(0), MinY: g.Lat(0), MaxX: g.Lon(g.Ni - 1), MaxY: g.Lat(g.Nj - 1)}
	if b.MinX > b.MaxX {
		b.MinX, b.MaxX = b.MaxX, b.MinX
	}
	if b.MinY > b.MaxY {
		b.MinY, b.MaxY = b.MaxY, b.MinY
	}
	return b
}

// Interpolated is bilinear over the enclosing cell. A cell with fewer than
// three valid corners yields Missing. Longitudes outside the grid are retried
// shifted by +360 and -360.
func (g *Grid) Interpolated(lon, lat float64) float64 {
	if g.Ni == 0 || g.Nj == 0 || g.DLon == 0 || g.DLat == 0 {
		return Missing
	}
	fj := (lat - g.Lat0) / g.DLat
	if fj < 0 || fj > float64(g.Nj-1) {
		return Missing
	}
	fi := (lon - g.Lon0) / g.DLon
	if fi < 0 || fi > float64(g.Ni-1) {
		fi = (lon + 360 - g.Lon0) / g.DLon
		if fi < 0 || fi > float64(g.Ni-1) {
			fi = (lon - 360 - g.Lon0) / g.DLon
			if fi < 0 || fi > float64(g.Ni-1) {
				return Missing
			}
		}
	}
	i0, dx := cell(fi, g.Ni)
	j0, dy := cell(fj, g.Nj)
	i1, j1 := min(i0+1, g.Ni-1), min(j0+1, g.Nj-1)

	corners := [4]struct {
		v, w float64
	}{
		{g.Value(i0, j0), (1 - dx) * (1 - dy)},
		{g.Value(i1, j0), dx * (1 - dy)},
		{g.Value(i0, j1), (1 - dx) * dy},
		{g.Value(i1, j1), dx * dy},
	}
	var sum, wsum float64
	valid := 0
	for _, c := range corners {
		if c.v == Missing {
			continue
		}
		valid++
		sum += c.v * c.w
		wsum += c.w
	}
	if valid < 3 || wsum == 0 {
		return Missing
	}
	return sum / wsum
}

// cell splits a fractional index into the cell origin and the offset in it.
func cell(f float64, n int) (int, float64) {
	i := int(math.Floor(f))
	if i >= n-1 {
		i = max(n-2, 0)
	}
	return i, f - float64(i)
}

// MinMax returns the range of valid samples; ok is false when every sample
// is Missing.
func MinMax(f Field) (lo, hi float64, ok bool) {
	ni, nj := f.Dims()
	for j := 0; j < nj; j++ {
		for i := 0; i < ni; i++ {
			v := f.Value(i, j)
			if v == Missing {
				continue
			}
			if !ok {
				lo, hi, ok = v, v, true
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	return lo, hi, ok
}
