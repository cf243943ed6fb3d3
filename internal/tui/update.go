package tui

import (
	"fmt"
	"strings"

	list "github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"wxmap/internal/config"
	"wxmap/internal/overlay"
)

const zoomStep = 1.25

// layerKeys selects and toggles layers by number.
var layerKeys = map[string]overlay.Layer{
	"1": overlay.Wind,
	"2": overlay.Pressure,
	"3": overlay.Wave,
	"4": overlay.SeaTemperature,
	"5": overlay.Current,
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		lo := m.layout()
		m.resize(lo.mapW, lo.mapH)
		if m.showSidebar {
			m.l.SetSize(sidebarWidth-2, lo.contentH-2)
		}
	case fileChangedMsg:
		m.reload(msg.path)
		return m, waitForChange(m.watcher)
	case watchErrMsg:
		m.log.Warn("file watch", "err", msg.err)
		return m, waitForChange(m.watcher)
	case tea.KeyMsg:
		// If list is visible and filtering, send keys to list and ignore global commands
		if m.showSidebar && m.l.FilterState() == list.Filtering {
			var cmd tea.Cmd
			m.l, cmd = m.l.Update(msg)
			return m, cmd
		}
		if m.showProbe {
			switch msg.String() {
			case "a", "esc":
				m.showProbe = false
				return m, nil
			case "ctrl+c", "q":
				return m, tea.Quit
			}
			var cmd tea.Cmd
			m.tbl, cmd = m.tbl.Update(msg)
			return m, cmd
		}
		return m.handleKey(msg)
	case tea.MouseMsg:
		m.hover(msg.X, msg.Y)
	}
	// Pass messages to list when visible
	if m.showSidebar {
		var cmd tea.Cmd
		m.l, cmd = m.l.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if l, ok := layerKeys[key]; ok {
		lc := l.Config(m.cfg)
		if m.selected == l || !lc.Enabled {
			lc.Enabled = !lc.Enabled
		}
		m.selected = l
		m.driver.Invalidate()
		m.status = fmt.Sprintf("%s: %s", l, onOff(lc.Enabled))
		return m, nil
	}
	lc := m.selected.Config(m.cfg)
	switch key {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "g":
		m.togglePass("glyphs", &lc.Glyphs)
	case "c":
		m.togglePass("contours", &lc.Contours)
	case "b":
		m.togglePass("raster", &lc.Raster)
	case "n":
		m.togglePass("numbers", &lc.Numbers)
	case "v":
		if lc.GlyphStyle == config.Barbs {
			lc.GlyphStyle = config.Arrows
		} else if _, ok := lc.Knots(); ok {
			lc.GlyphStyle = config.Barbs
		}
		m.status = fmt.Sprintf("%s glyphs: %s", m.selected, lc.GlyphStyle)
	case "s":
		m.cfg.Gradual = !m.cfg.Gradual
		m.driver.Invalidate()
		m.status = "gradual colours: " + onOff(m.cfg.Gradual)
	case "[":
		m.step(-1)
	case "]":
		m.step(1)
	case "+", "=":
		m.view.Zoom(zoomStep)
		m.status = fmt.Sprintf("scale: %.3g px/m", m.view.Scale)
	case "-", "_":
		m.view.Zoom(1 / zoomStep)
		m.status = fmt.Sprintf("scale: %.3g px/m", m.view.Scale)
	case "up":
		m.view.Pan(0, -4)
	case "down":
		m.view.Pan(0, 4)
	case "left":
		m.view.Pan(-4, 0)
	case "right":
		m.view.Pan(4, 0)
	case "f":
		if rec := m.driver.Record(); rec != nil {
			m.fit(rec.Extent())
		}
	case "m":
		m.showBasemap = !m.showBasemap
		m.status = "basemap: " + onOff(m.showBasemap)
	case "tab":
		m.showSidebar = !m.showSidebar
		lo := m.layout()
		m.resize(lo.mapW, lo.mapH)
		if m.showSidebar {
			m.refreshDir()
			m.l.SetSize(sidebarWidth-2, lo.contentH-2)
		}
	case "h":
		m.helpVisible = !m.helpVisible
	case "a":
		m.showProbe = true
		m.refreshProbe()
	case "i":
		if m.inspectPopup != "" {
			m.inspectPopup = ""
			break
		}
		m.inspect()
	case "esc":
		m.inspectPopup = ""
	case "enter":
		if m.showSidebar {
			if it, ok := m.l.SelectedItem().(fileItem); ok {
				watching := m.watcher != nil
				m.loadPath(it.path)
				if !watching && m.watcher != nil {
					return m, waitForChange(m.watcher)
				}
			}
		}
	}
	if m.showSidebar {
		var cmd tea.Cmd
		m.l, cmd = m.l.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) togglePass(name string, on *bool) {
	*on = !*on
	m.driver.Invalidate()
	m.status = fmt.Sprintf("%s %s: %s", m.selected, name, onOff(*on))
}

// hover tracks the mouse over the map area.
func (m *Model) hover(x, y int) {
	lo := m.layout()
	if x < lo.mapX || x >= lo.mapX+lo.mapW || y < lo.mapY || y >= lo.mapY+lo.mapH {
		m.hovering = false
		m.hoverHasGeo = false
		return
	}
	m.hovering = true
	m.hoverCX, m.hoverCY = x-lo.mapX, y-lo.mapY
	lat, lon := m.view.FromScreen(float64(m.hoverCX*2+1), float64(m.hoverCY*4+2))
	m.hoverLat, m.hoverLon = lat, lon
	m.hoverHasGeo = true
}

// inspect fills the popup with the record and layer summary at the view
// centre or the hover point.
func (m *Model) inspect() {
	rec := m.driver.Record()
	if rec == nil {
		m.inspectPopup = "no record set loaded"
		m.status = m.inspectPopup
		return
	}
	lat, lon := m.view.Lat, m.view.Lon
	if m.hovering && m.hoverHasGeo {
		lat, lon = m.hoverLat, m.hoverLon
	}
	ext := rec.Extent()
	meta := []string{
		fmt.Sprintf("time: %s", rec.Time.UTC().Format("2006-01-02 15:04Z")),
		fmt.Sprintf("record: %d/%d", m.cur+1, max(1, len(m.records))),
		fmt.Sprintf("extent: [%.3f, %.3f, %.3f, %.3f]", ext.MinX, ext.MinY, ext.MaxX, ext.MaxY),
		fmt.Sprintf("at: lon=%.4f lat=%.4f", lon, lat),
	}
	for _, r := range m.probeRows(rec, lon, lat) {
		meta = append(meta, strings.TrimSpace(fmt.Sprintf("%s: %s %s", r[0], r[1], r[2])))
	}
	m.inspectPopup = strings.Join(meta, "\n")
	m.status = "inspect popup"
}
