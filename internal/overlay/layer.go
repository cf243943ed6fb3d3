package overlay

import (
	"fmt"

	"wxmap/internal/config"
	"wxmap/internal/field"
	"wxmap/internal/units"
)

// Layer is one overlay the driver can draw.
type Layer int

const (
	Wind Layer = iota
	Pressure
	Wave
	SeaTemperature
	Current
	layerCount
)

// Kind is how a layer's fields combine.
type Kind int

const (
	// Scalar layers have one field.
	Scalar Kind = iota
	// Components layers have orthogonal u/v fields; their scalar is the
	// derived magnitude.
	Components
	// Polar layers have a magnitude and a direction field in degrees.
	Polar
)

type layerDef struct {
	name string
	kind Kind
	// x is the scalar, u or magnitude field; y the v or direction field.
	x, y field.ID
}

var layers = [layerCount]layerDef{
	Wind:           {"wind", Components, field.WindU, field.WindV},
	Pressure:       {"pressure", Scalar, field.Pressure, 0},
	Wave:           {"wave", Polar, field.WaveHeight, field.WaveDirection},
	SeaTemperature: {"sea_temperature", Scalar, field.SeaTemp, 0},
	Current:        {"current", Components, field.CurrentU, field.CurrentV},
}

// Layers returns every layer in drawing order.
func Layers() []Layer {
	out := make([]Layer, layerCount)
	for i := range out {
		out[i] = Layer(i)
	}
	return out
}

func (l Layer) def() layerDef {
	if l < 0 || l >= layerCount {
		panic(fmt.Sprintf("overlay: unknown layer %d", int(l)))
	}
	return layers[l]
}

func (l Layer) String() string {
	if l < 0 || l >= layerCount {
		return fmt.Sprintf("layer(%d)", int(l))
	}
	return layers[l].name
}

// Kind returns how the layer's fields combine.
func (l Layer) Kind() Kind { return l.def().kind }

// Fields returns the record fields the layer needs; a record missing any of
// them skips the layer.
func (l Layer) Fields() []field.ID {
	d := l.def()
	if d.kind == Scalar {
		return []field.ID{d.x}
	}
	return []field.ID{d.x, d.y}
}

// Config returns the layer's entry in cfg.
func (l Layer) Config(cfg *config.Config) *config.Layer {
	switch l {
	case Wind:
		return &cfg.Layers.Wind
	case Pressure:
		return &cfg.Layers.Pressure
	case Wave:
		return &cfg.Layers.Wave
	case SeaTemperature:
		return &cfg.Layers.SeaTemperature
	case Current:
		return &cfg.Layers.Current
	}
	panic(fmt.Sprintf("overlay: unknown layer %d", int(l)))
}

// source is a layer's fields resolved against one record.
type source struct {
	x, y field.Field
}

func (l Layer) resolve(rec *field.Record) (source, bool) {
	d := l.def()
	x, ok := rec.Field(d.x)
	if !ok {
		return source{}, false
	}
	if d.kind == Scalar {
		return source{x: x}, true
	}
	y, ok := rec.Field(d.y)
	if !ok {
		return source{}, false
	}
	return source{x: x, y: y}, true
}

// scalar returns the field that carries the layer's magnitude and a release
// func the caller must call when done with it.
func (s source) scalar(k Kind) (field.Field, func()) {
	if k == Components {
		m := field.Magnitude(s.x, s.y)
		return m, m.Release
	}
	return s.x, func() {}
}

// calibrated presents a field in display units.
type calibrated struct {
	field.Field
	cal units.Calibration
}

func (c calibrated) Value(i, j int) float64 { return c.apply(c.Field.Value(i, j)) }

func (c calibrated) Interpolated(lon, lat float64) float64 {
	return c.apply(c.Field.Interpolated(lon, lat))
}

func (c calibrated) apply(v float64) float64 {
	if v == field.Missing {
		return v
	}
	return c.cal.Apply(v)
}
