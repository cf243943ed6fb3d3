// Package field holds gridded weather samples and the record sets the
// overlay renders from.
package field

import (
	"strings"
	"time"

	"wxmap/internal/geom"
)

// Missing marks a grid sample with no data.
const Missing = -999999999.0

// Field is a rectangular grid of scalar samples over longitude/latitude.
type Field interface {
	// Dims returns the number of columns (longitudes) and rows (latitudes).
	Dims() (ni, nj int)
	Lon(i int) float64
	Lat(j int) float64
	// Value returns the raw sample at column i, row j, or Missing.
	Value(i, j int) float64
	// Interpolated returns the value at an arbitrary position, or Missing.
	Interpolated(lon, lat float64) float64
	Extent() geom.BBox
}

// ID names one physical field of a record set.
type ID int

const (
	WindU ID = iota
	WindV
	Pressure
	WaveHeight
	WaveDirection
	SeaTemp
	CurrentU
	CurrentV
	idCount
)

var idNames = [idCount]string{
	WindU:         "wind_u",
	WindV:         "wind_v",
	Pressure:      "pressure",
	WaveHeight:    "wave_height",
	WaveDirection: "wave_dir",
	SeaTemp:       "sea_temp",
	CurrentU:      "current_u",
	CurrentV:      "current_v",
}

// aliases accepted in CSV headers, GRIB-style short names included
var idAliases = map[string]ID{
	"ugrd":  WindU,
	"u":     WindU,
	"vgrd":  WindV,
	"v":     WindV,
	"prmsl": Pressure,
	"mslp":  Pressure,
	"htsgw": WaveHeight,
	"swh":   WaveHeight,
	"wvdir": WaveDirection,
	"mwd":   WaveDirection,
	"sst":   SeaTemp,
	"wtmp":  SeaTemp,
	"uogrd": CurrentU,
	"vogrd": CurrentV,
}

func (id ID) String() string {
	if id < 0 || id >= idCount {
		return "unknown"
	}
	return idNames[id]
}

// ParseID maps a field name or a common alias to its ID.
func ParseID(s string) (ID, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for id, n := range idNames {
		if n == s {
			return ID(id), true
		}
	}
	id, ok := idAliases[s]
	return id, ok
}

// IDs lists every field ID in declaration order.
func IDs() []ID {
	ids := make([]ID, idCount)
	for i := range ids {
		ids[i] = ID(i)
	}
	return ids
}

// Record is one timeline record set: every field valid at Time.
type Record struct {
	Time   time.Time
	Fields map[ID]Field
}

// NewRecord returns an empty record for t.
func NewRecord(t time.Time) *Record {
	return &Record{Time: t, Fields: make(map[ID]Field)}
}

// Field returns the field stored under id, if any.
func (r *Record) Field(id ID) (Field, bool) {
	if r == nil {
		return nil, false
	}
	f, ok := r.Fields[id]
	return f, ok && f != nil
}

// Extent is the union of every field extent of r. It is invalid when r
// holds no fields.
func (r *Record) Extent() geom.BBox {
	var b geom.BBox
	first := true
	for _, id := range IDs() {
		f, ok := r.Field(id)
		if !ok {
			continue
		}
		e := f.Extent()
		if first {
			b, first = e, false
			continue
		}
		b.Extend(e.MinX, e.MinY)
		b.Extend(e.MaxX, e.MaxY)
	}
	return b
}
