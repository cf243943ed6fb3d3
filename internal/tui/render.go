package tui

import (
	"errors"
	"image/color"
	"strings"

	"wxmap/internal/backend"
	"wxmap/internal/overlay"
)

var hoverColor = color.RGBA{0xff, 0xa5, 0x00, 0xff}

// layout is the screen split shared by Update (mouse, resize) and View.
type layout struct {
	sidebarW         int
	mapX, mapY       int
	mapW, mapH       int
	contentW         int
	contentH         int
	headerH, footerH int
}

const sidebarWidth = 28

func (m Model) layout() layout {
	lo := layout{headerH: 1, footerH: 2}
	if m.showSidebar {
		lo.sidebarW = sidebarWidth
		lo.mapX = sidebarWidth + 1
	}
	lo.mapY = lo.headerH
	lo.contentH = max(4, m.height-lo.headerH-lo.footerH)
	lo.contentW = max(10, m.width)
	lo.mapW = max(8, lo.contentW-lo.sidebarW-1)
	lo.mapH = lo.contentH
	return lo
}

// resize matches the canvas and view to a map area of w×h cells.
func (m *Model) resize(w, h int) {
	m.mapW, m.mapH = w, h
	m.view.Width, m.view.Height = w*2, h*4
	if cw, ch := m.canvas.Size(); cw != w || ch != h {
		m.canvas.Resize(w, h)
	}
}

// renderMap draws the basemap and the overlay onto the braille canvas. The
// canvas is kept across frames so the overlay's raster caches stay valid.
func (m Model) renderMap() string {
	c := m.canvas
	c.Clear()
	if m.showBasemap {
		overlay.DrawBasemap(c, m.view, m.basemap)
	}
	if err := m.driver.Render(c, m.view); err != nil && !errors.Is(err, overlay.ErrNoData) {
		m.log.Error("rendering overlay", "err", err)
	}
	if m.hovering {
		x, y := float64(m.hoverCX*2+1), float64(m.hoverCY*4+2)
		c.DrawLine(backend.Point{X: x - 2, Y: y}, backend.Point{X: x + 2, Y: y}, 1, hoverColor)
		c.DrawLine(backend.Point{X: x, Y: y - 2}, backend.Point{X: x, Y: y + 2}, 1, hoverColor)
	}
	return strings.Join(c.Lines(), "\n")
}
