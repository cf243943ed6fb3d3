package tui

import (
	"fmt"
	"math"

	table "github.com/charmbracelet/bubbles/table"

	"wxmap/internal/field"
	"wxmap/internal/overlay"
)

var probeColumns = []table.Column{
	{Title: "Name", Width: 16},
	{Title: "Value", Width: 12},
	{Title: "Units", Width: 8},
}

// probeAt reads f at lon/lat, trying the copies of the longitude one turn
// either side for grids stored on 0..360.
func probeAt(f field.Field, lon, lat float64) float64 {
	for _, dx := range []float64{0, 360, -360} {
		if v := f.Interpolated(lon+dx, lat); v != field.Missing {
			return v
		}
	}
	return field.Missing
}

func formatValue(v float64) string {
	if v == field.Missing {
		return "-"
	}
	return fmt.Sprintf("%.2f", v)
}

// probeRows lists the raw value of every field of rec at lon/lat followed by
// each enabled layer's value in display units.
func (m *Model) probeRows(rec *field.Record, lon, lat float64) []table.Row {
	var rows []table.Row
	for _, id := range field.IDs() {
		f, ok := rec.Field(id)
		if !ok {
			continue
		}
		rows = append(rows, table.Row{id.String(), formatValue(probeAt(f, lon, lat)), ""})
	}
	for _, l := range overlay.Layers() {
		lc := l.Config(m.cfg)
		if !lc.Enabled {
			continue
		}
		v, ok := layerValue(rec, l, lon, lat)
		if !ok {
			continue
		}
		if v != field.Missing {
			v = lc.Calibration().Apply(v)
		}
		rows = append(rows, table.Row{l.String(), formatValue(v), lc.Units})
	}
	return rows
}

// layerValue is the scalar a layer colours by: magnitude for components, the
// first field otherwise. ok is false when the record lacks the layer's fields.
func layerValue(rec *field.Record, l overlay.Layer, lon, lat float64) (float64, bool) {
	ids := l.Fields()
	x, ok := rec.Field(ids[0])
	if !ok {
		return 0, false
	}
	v := probeAt(x, lon, lat)
	if l.Kind() != overlay.Components {
		return v, true
	}
	y, ok := rec.Field(ids[1])
	if !ok {
		return 0, false
	}
	w := probeAt(y, lon, lat)
	if v == field.Missing || w == field.Missing {
		return field.Missing, true
	}
	return math.Hypot(v, w), true
}

// refreshProbe fills the probe table at the hover point, or the view centre
// when the mouse is off the map.
func (m *Model) refreshProbe() {
	rec := m.driver.Record()
	if rec == nil {
		m.tbl.SetRows(nil)
		m.status = "probe: no record set loaded"
		return
	}
	lat, lon := m.view.Lat, m.view.Lon
	if m.hovering && m.hoverHasGeo {
		lat, lon = m.hoverLat, m.hoverLon
	}
	rows := m.probeRows(rec, lon, lat)
	m.tbl.SetRows(nil)
	m.tbl.SetRows(rows)
	m.status = fmt.Sprintf("probe: lon=%.3f lat=%.3f", lon, lat)
}
