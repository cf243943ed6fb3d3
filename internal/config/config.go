// Package config holds the overlay settings: which layers draw which passes,
// in what units and colours.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"

	"wxmap/internal/backend"
	"wxmap/internal/colorscale"
	"wxmap/internal/units"
)

// DefaultPath is where Load looks when no path is given.
const DefaultPath = "~/.config/wxmap/config.yaml"

// GlyphStyle selects the vector glyph of a layer.
type GlyphStyle string

const (
	Barbs  GlyphStyle = "barbs"
	Arrows GlyphStyle = "arrows"
)

// Layer configures one overlay layer.
type Layer struct {
	Enabled  bool `yaml:"enabled"`
	Glyphs   bool `yaml:"glyphs"`
	Contours bool `yaml:"contours"`
	Raster   bool `yaml:"raster"`
	Numbers  bool `yaml:"numbers"`

	GlyphStyle GlyphStyle    `yaml:"glyph_style"`
	ColorScale colorscale.ID `yaml:"color_scale"`

	// SourceUnits are the units of the stored field, Units those shown.
	SourceUnits string `yaml:"source_units"`
	Units       string `yaml:"units"`

	// Min and Max bound the colour scale, in display units.
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`

	GlyphSpacing   float64 `yaml:"glyph_spacing"`
	NumberSpacing  float64 `yaml:"number_spacing"`
	ContourSpacing float64 `yaml:"contour_spacing"`
}

// Calibration maps stored values to display values.
func (l *Layer) Calibration() units.Calibration {
	c, err := units.Convert(l.SourceUnits, l.Units)
	if err != nil {
		return units.Identity
	}
	return c
}

// Knots maps stored values to knots, for barb selection. ok is false when
// the layer's source units are not a speed.
func (l *Layer) Knots() (c units.Calibration, ok bool) {
	c, err := units.Convert(l.SourceUnits, "kn")
	return c, err == nil
}

func (l *Layer) validate(name string) error {
	switch l.GlyphStyle {
	case Barbs, Arrows:
	default:
		return fmt.Errorf("%s: unknown glyph style %q", name, l.GlyphStyle)
	}
	if _, err := units.Convert(l.SourceUnits, l.Units); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if l.GlyphStyle == Barbs && l.Glyphs {
		if _, ok := l.Knots(); !ok {
			return fmt.Errorf("%s: barbs need speed units, have %q", name, l.SourceUnits)
		}
	}
	if l.Min >= l.Max {
		return fmt.Errorf("%s: min %g must be below max %g", name, l.Min, l.Max)
	}
	if l.GlyphSpacing <= 0 || l.NumberSpacing <= 0 || l.ContourSpacing <= 0 {
		return fmt.Errorf("%s: spacings must be positive", name)
	}
	return nil
}

// Layers holds one entry per overlay layer.
type Layers struct {
	Wind           Layer `yaml:"wind"`
	Pressure       Layer `yaml:"pressure"`
	Wave           Layer `yaml:"wave"`
	SeaTemperature Layer `yaml:"sea_temperature"`
	Current        Layer `yaml:"current"`
}

// Config is the whole overlay configuration.
type Config struct {
	// Gradual blends between colour-scale control points instead of stepping.
	Gradual bool `yaml:"gradual"`
	// RasterMode is "bitmap" or "texture".
	RasterMode string `yaml:"raster_mode"`
	// PixelSize is the raster block edge, in screen pixels.
	PixelSize int `yaml:"pixel_size"`
	// Basemap is an optional GeoJSON or shapefile drawn under the overlay.
	Basemap string `yaml:"basemap"`

	Layers Layers `yaml:"layers"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Gradual:    true,
		RasterMode: "bitmap",
		PixelSize:  4,
		Layers: Layers{
			Wind: Layer{
				Enabled: true, Glyphs: true, Contours: false, Raster: true,
				GlyphStyle: Barbs, ColorScale: colorscale.QuickScat,
				SourceUnits: "m/s", Units: "kn", Min: 0, Max: 80,
				GlyphSpacing: 30, NumberSpacing: 50, ContourSpacing: 10,
			},
			Pressure: Layer{
				Enabled: true, Contours: true, Numbers: false,
				GlyphStyle: Arrows, ColorScale: colorscale.Generic,
				SourceUnits: "pa", Units: "hpa", Min: 960, Max: 1050,
				GlyphSpacing: 30, NumberSpacing: 60, ContourSpacing: 4,
			},
			Wave: Layer{
				Glyphs: true, Raster: true,
				GlyphStyle: Arrows, ColorScale: colorscale.Generic,
				SourceUnits: "m", Units: "m", Min: 0, Max: 12,
				GlyphSpacing: 20, NumberSpacing: 50, ContourSpacing: 1,
			},
			SeaTemperature: Layer{
				Raster: true,
				GlyphStyle: Arrows, ColorScale: colorscale.SeaTemp,
				SourceUnits: "k", Units: "c", Min: -2, Max: 32,
				GlyphSpacing: 30, NumberSpacing: 50, ContourSpacing: 2,
			},
			Current: Layer{
				Glyphs: true, Raster: true,
				GlyphStyle: Barbs, ColorScale: colorscale.Current,
				SourceUnits: "m/s", Units: "kn", Min: 0, Max: 6,
				GlyphSpacing: 30, NumberSpacing: 50, ContourSpacing: 1,
			},
		},
	}
}

// All returns the layer entries in overlay order with their YAML names.
func (c *Config) All() []Named {
	return []Named{
		{"wind", &c.Layers.Wind},
		{"pressure", &c.Layers.Pressure},
		{"wave", &c.Layers.Wave},
		{"sea_temperature", &c.Layers.SeaTemperature},
		{"current", &c.Layers.Current},
	}
}

// Named pairs a layer entry with its name.
type Named struct {
	Name  string
	Layer *Layer
}

// Validate checks every setting the overlay relies on.
func (c *Config) Validate() error {
	if _, ok := backend.SurfaceFor(c.RasterMode); !ok {
		return fmt.Errorf("config: unknown raster mode %q", c.RasterMode)
	}
	if c.PixelSize <= 0 {
		return errors.New("config: pixel size must be positive")
	}
	for _, n := range c.All() {
		if err := n.Layer.validate(n.Name); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	return nil
}

// Load reads a YAML file over the defaults. An empty path reads DefaultPath
// and falls back to the defaults if it does not exist.
func Load(path string) (*Config, error) {
	optional := path == ""
	if optional {
		path = DefaultPath
	}
	p, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg := Default()
	b, err := os.ReadFile(p)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", p, err)
	}
	if cfg.Basemap != "" {
		bm, err := homedir.Expand(cfg.Basemap)
		if err != nil {
			return nil, fmt.Errorf("config: basemap: %w", err)
		}
		if !filepath.IsAbs(bm) {
			bm = filepath.Join(filepath.Dir(p), bm)
		}
		cfg.Basemap = bm
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg as YAML.
func Save(path string, cfg *Config) error {
	p, err := homedir.Expand(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return os.WriteFile(p, b, 0o644)
}
