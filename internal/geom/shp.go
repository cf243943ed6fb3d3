package geom

import (
	"errors"
	"fmt"

	"github.com/jonas-p/go-shp"
)

// LoadShapefile reads polygon and polyline shapes from an ESRI shapefile.
// Every part becomes one line.
func LoadShapefile(path string) (Data, error) {
	shape, err := shp.Open(path)
	if err != nil {
		return Data{}, fmt.Errorf("opening shapefile: %w", err)
	}
	defer shape.Close()

	var d Data
	for shape.Next() {
		_, p := shape.Shape()
		var parts []int32
		var points []shp.Point
		switch s := p.(type) {
		case *shp.Polygon:
			parts, points = s.Parts, s.Points
		case *shp.PolyLine:
			parts, points = s.Parts, s.Points
		default:
			continue
		}
		for k := range parts {
			start := int(parts[k])
			end := len(points)
			if k+1 < len(parts) {
				end = int(parts[k+1])
			}
			if start < 0 || end > len(points) || start >= end {
				continue
			}
			ls := make([][2]float64, 0, end-start)
			for _, pt := range points[start:end] {
				ls = append(ls, [2]float64{pt.X, pt.Y})
			}
			d.addLine(ls)
		}
	}
	if len(d.Lines) == 0 {
		return Data{}, errors.New("shp: no polygons or polylines found")
	}
	return d, nil
}
