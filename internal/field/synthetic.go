package field

import (
	"math"
	"time"
)

// Synthetic builds a global 1° demo record: a cyclone centred at 50°N 340°E
// driving wind, pressure and waves, a latitudinal sea temperature gradient,
// and a western-boundary current. Land is not modelled. Units are SI (m/s,
// Pa, m, degrees, K).
func Synthetic(t time.Time) *Record {
	const ni, nj = 360, 161 // lon 0..359, lat -80..80
	rec := NewRecord(t)
	mk := func(id ID) *Grid {
		g := NewGrid(ni, nj, 0, -80, 1, 1)
		rec.Fields[id] = g
		return g
	}
	u, v := mk(WindU), mk(WindV)
	p := mk(Pressure)
	wh, wd := mk(WaveHeight), mk(WaveDirection)
	sst := mk(SeaTemp)
	cu, cv := mk(CurrentU), mk(CurrentV)

	// drift the low eastwards with time so timeline steps differ
	clon := 340 + math.Mod(float64(t.Unix())/3600, 24)
	clat := 50.0
	for j := 0; j < nj; j++ {
		lat := -80 + float64(j)
		for i := 0; i < ni; i++ {
			lon := float64(i)
			dx := math.Remainder(lon-clon, 360) * math.Cos(lat*math.Pi/180)
			dy := lat - clat
			r := math.Hypot(dx, dy)
			g := math.Exp(-r * r / (2 * 12 * 12))

			p.Set(i, j, 101325-3500*g+800*math.Cos(lat*math.Pi/45))

			// counter-clockwise circulation around the low plus westerlies
			speed := 35 * g * math.Min(1, r/4)
			ut, vt := 0.0, 0.0
			if r > 0 {
				ut, vt = -dy/r*speed, dx/r*speed
			}
			west := 8 * math.Sin(math.Abs(lat)*math.Pi/90)
			u.Set(i, j, ut+west)
			v.Set(i, j, vt)

			ws := math.Hypot(ut+west, vt)
			wh.Set(i, j, 0.02*ws*ws+0.5)
			// direction the waves come from, in degrees
			wd.Set(i, j, math.Mod(math.Atan2(-(ut+west), -vt)*180/math.Pi+360, 360))

			sst.Set(i, j, 273.15+28*math.Cos(lat*math.Pi/180)*math.Cos(lat*math.Pi/180)-1)

			jet := math.Exp(-math.Pow(math.Remainder(lon-285, 360)/3, 2)) * math.Exp(-math.Pow((lat-35)/10, 2))
			cu.Set(i, j, 0.3*jet)
			cv.Set(i, j, 1.2*jet)
		}
	}
	return rec
}
