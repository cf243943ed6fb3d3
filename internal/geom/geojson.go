package geom

import (
	"encoding/json"
	"errors"
	"io"
	"os"
)

// LoadGeoJSON reads a GeoJSON basemap and returns its line work.
// LineString, MultiLineString, Polygon and MultiPolygon geometries are kept;
// points carry no line work and are ignored.
func LoadGeoJSON(path string) (Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return Data{}, err
	}
	defer f.Close()
	return ReadGeoJSON(f)
}

// ReadGeoJSON is LoadGeoJSON over an open reader.
func ReadGeoJSON(r io.Reader) (Data, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Data{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Data{}, err
	}
	var d Data
	parsePoint := func(v any) (pt [2]float64, ok bool) {
		if a, ok := v.([]any); ok && len(a) >= 2 {
			lon, lok := a[0].(float64)
			lat, aok := a[1].(float64)
			if lok && aok {
				return [2]float64{lon, lat}, true
			}
		}
		return [2]float64{}, false
	}
	parseLineString := func(v any) (ls [][2]float64, ok bool) {
		arr, ok := v.([]any)
		if !ok {
			return nil, false
		}
		for _, el := range arr {
			if pt, ok := parsePoint(el); ok {
				ls = append(ls, pt)
			}
		}
		return ls, true
	}
	// rings of a polygon, or lines of a multilinestring
	parseLines := func(v any) (m [][][2]float64, ok bool) {
		arr, ok := v.([]any)
		if !ok {
			return nil, false
		}
		for _, el := range arr {
			if ls, ok := parseLineString(el); ok {
				m = append(m, ls)
			}
		}
		return m, true
	}
	var walkGeom func(g map[string]any)
	walkGeom = func(g map[string]any) {
		gt, _ := g["type"].(string)
		switch gt {
		case "LineString":
			if ls, ok := parseLineString(g["coordinates"]); ok {
				d.addLine(ls)
			}
		case "MultiLineString", "Polygon":
			if mls, ok := parseLines(g["coordinates"]); ok {
				for _, ls := range mls {
					d.addLine(ls)
				}
			}
		case "MultiPolygon":
			arr, _ := g["coordinates"].([]any)
			for _, el := range arr {
				if rings, ok := parseLines(el); ok {
					for _, ls := range rings {
						d.addLine(ls)
					}
				}
			}
		case "GeometryCollection":
			gs, _ := g["geometries"].([]any)
			for _, sub := range gs {
				if sm, ok := sub.(map[string]any); ok {
					walkGeom(sm)
				}
			}
		}
	}
	t, _ := raw["type"].(string)
	switch t {
	case "Feature":
		if g, ok := raw["geometry"].(map[string]any); ok {
			walkGeom(g)
		}
	case "FeatureCollection":
		if fs, ok := raw["features"].([]any); ok {
			for _, f := range fs {
				if fm, ok := f.(map[string]any); ok {
					if g, ok := fm["geometry"].(map[string]any); ok {
						walkGeom(g)
					}
				}
			}
		}
	default:
		if len(raw) > 0 {
			walkGeom(raw)
		}
	}
	if len(d.Lines) == 0 {
		return Data{}, errors.New("geojson: no line work found")
	}
	return d, nil
}
