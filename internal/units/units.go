// Package units converts field values between native and display units.
package units

import (
	"fmt"
	"strings"
)

// Dim is a physical dimension.
type Dim int

const (
	Speed Dim = iota
	Pressure
	Length
	Temperature
	Angle
)

func (d Dim) String() string {
	switch d {
	case Speed:
		return "speed"
	case Pressure:
		return "pressure"
	case Length:
		return "length"
	case Temperature:
		return "temperature"
	case Angle:
		return "angle"
	}
	return "unknown"
}

// unit maps a value to its dimension's base unit: base = v*scale + offset.
type unit struct {
	dim           Dim
	scale, offset float64
}

var table = map[string]unit{
	"m/s":  {Speed, 1, 0},
	"kn":   {Speed, 1852.0 / 3600, 0},
	"km/h": {Speed, 1000.0 / 3600, 0},
	"mph":  {Speed, 1609.344 / 3600, 0},
	"pa":   {Pressure, 1, 0},
	"hpa":  {Pressure, 100, 0},
	"mb":   {Pressure, 100, 0},
	"inhg": {Pressure, 3386.389, 0},
	"m":    {Length, 1, 0},
	"ft":   {Length, 0.3048, 0},
	"k":    {Temperature, 1, 0},
	"c":    {Temperature, 1, 273.15},
	"f":    {Temperature, 5.0 / 9, 273.15 - 32*5.0/9},
	"deg":  {Angle, 1, 0},
}

func lookup(name string) (unit, bool) {
	u, ok := table[strings.ToLower(strings.TrimSpace(name))]
	return u, ok
}

// Known reports whether name is a unit this package converts.
func Known(name string) bool {
	_, ok := lookup(name)
	return ok
}

// DimOf returns the dimension of a unit.
func DimOf(name string) (Dim, bool) {
	u, ok := lookup(name)
	return u.dim, ok
}

// Calibration is the linear map from native to display values.
type Calibration struct {
	Scale, Offset float64
}

// Identity leaves values unchanged.
var Identity = Calibration{Scale: 1}

// Convert returns the calibration taking values in from to values in to.
func Convert(from, to string) (Calibration, error) {
	f, ok := lookup(from)
	if !ok {
		return Calibration{}, fmt.Errorf("units: unknown unit %q", from)
	}
	t, ok := lookup(to)
	if !ok {
		return Calibration{}, fmt.Errorf("units: unknown unit %q", to)
	}
	if f.dim != t.dim {
		return Calibration{}, fmt.Errorf("units: cannot convert %s (%s) to %s (%s)", from, f.dim, to, t.dim)
	}
	// base = v*f.scale + f.offset; out = (base - t.offset)/t.scale
	return Calibration{
		Scale:  f.scale / t.scale,
		Offset: (f.offset - t.offset) / t.scale,
	}, nil
}

// Apply converts one value.
func (c Calibration) Apply(v float64) float64 { return v*c.Scale + c.Offset }

// Invert converts one display value back to native units.
func (c Calibration) Invert(v float64) float64 { return (v - c.Offset) / c.Scale }
