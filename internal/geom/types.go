package geom

// BBox is a lon/lat box. X is longitude, Y is latitude, both in degrees.
// Longitudes are not wrapped: a viewport straddling the antimeridian may
// extend past -180 or +180.
type BBox struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// Valid reports whether the box has a positive area.
func (b BBox) Valid() bool {
	return b.MaxX > b.MinX && b.MaxY > b.MinY
}

// Contains reports whether (lon, lat) lies inside the box, edges included.
func (b BBox) Contains(lon, lat float64) bool {
	return lon >= b.MinX && lon <= b.MaxX && lat >= b.MinY && lat <= b.MaxY
}

// Intersects reports whether the two boxes overlap, edges included.
func (b BBox) Intersects(o BBox) bool {
	return b.MinX <= o.MaxX && o.MinX <= b.MaxX && b.MinY <= o.MaxY && o.MinY <= b.MaxY
}

// ShiftX returns the box moved by dx degrees of longitude.
func (b BBox) ShiftX(dx float64) BBox {
	return BBox{MinX: b.MinX + dx, MinY: b.MinY, MaxX: b.MaxX + dx, MaxY: b.MaxY}
}

// Extend grows the box to include (lon, lat).
func (b *BBox) Extend(lon, lat float64) {
	if lon < b.MinX {
		b.MinX = lon
	}
	if lat < b.MinY {
		b.MinY = lat
	}
	if lon > b.MaxX {
		b.MaxX = lon
	}
	if lat > b.MaxY {
		b.MaxY = lat
	}
}

// Data is a minimal basemap container: coastlines and borders as polylines.
// Polygon rings are stored as closed lines.
type Data struct {
	Lines [][][2]float64
	BBox  BBox
}

func (d *Data) addLine(ls [][2]float64) {
	if len(ls) < 2 {
		return
	}
	for i, p := range ls {
		if len(d.Lines) == 0 && i == 0 {
			d.BBox = BBox{MinX: p[0], MinY: p[1], MaxX: p[0], MaxY: p[1]}
			continue
		}
		d.BBox.Extend(p[0], p[1])
	}
	d.Lines = append(d.Lines, ls)
}
