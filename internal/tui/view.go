package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	lo := m.layout()

	// Header
	header := titleStyle.Render(" wxmap ─ terminal weather overlay ")
	header = lipgloss.NewStyle().Width(lo.contentW).Padding(0).Render(header)

	// Sidebar
	var sidebar string
	if m.showSidebar {
		sidebar = lipgloss.NewStyle().Width(lo.sidebarW).Render(m.l.View())
	}

	var mapView string
	switch {
	case m.showProbe:
		colW := 0
		for _, c := range m.tbl.Columns() {
			colW += c.Width + 3
		}
		maxW := min(lo.mapW, max(32, colW))
		m.tbl.SetWidth(maxW - 4)
		m.tbl.SetHeight(min(lo.mapH-2, 20))
		probeBox := boxStyle.Width(maxW).Render(m.tbl.View())
		mapView = lipgloss.Place(lo.mapW, lo.mapH, lipgloss.Center, lipgloss.Center, probeBox)
	case m.inspectPopup != "":
		// popup replaces the map until esc
		maxPopupW := max(20, min(48, lo.mapW))
		box := boxStyle.MaxWidth(maxPopupW).Render(m.inspectPopup)
		mapView = lipgloss.Place(lo.mapW, lo.mapH, lipgloss.Left, lipgloss.Center, box)
	default:
		mapView = lipgloss.NewStyle().Width(lo.mapW).Height(lo.mapH).Render(m.renderMap())
	}

	body := mapView
	if m.showSidebar {
		body = lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " ", mapView)
	}

	footer := m.renderFooter(lo.contentW)
	ui := lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
	return appStyle.Width(lo.contentW).Height(m.height).Render(ui)
}

// renderFooter shows the status line and help, with record time, selected
// layer and cursor position on the right.
func (m Model) renderFooter(w int) string {
	status := dimStyle.Render(" " + m.status + " ")
	left := lipgloss.JoinHorizontal(lipgloss.Bottom, status, m.renderHelp())

	var info []string
	if rec := m.driver.Record(); rec != nil {
		info = append(info, rec.Time.UTC().Format("2006-01-02 15:04Z"))
		if len(m.records) > 1 {
			info = append(info, fmt.Sprintf("%d/%d", m.cur+1, len(m.records)))
		}
	}
	info = append(info, accentStyle.Render("["+m.selected.String()+"]"))
	if refused := m.driver.Refused(); len(refused) > 0 {
		names := make([]string, len(refused))
		for i, l := range refused {
			names[i] = l.String()
		}
		info = append(info, warnStyle.Render("zoom out: "+strings.Join(names, ",")))
	}
	if m.hoverHasGeo {
		info = append(info, fmt.Sprintf("lon=%.4f lat=%.4f", m.hoverLon, m.hoverLat))
	}
	right := dimStyle.Render("  " + strings.Join(info, "  ") + "  ")
	spacerW := max(0, w-lipgloss.Width(left)-lipgloss.Width(right))
	right = lipgloss.Place(spacerW+lipgloss.Width(right), 1, lipgloss.Right, lipgloss.Center, right)
	return lipgloss.NewStyle().Width(w).Render(lipgloss.JoinHorizontal(lipgloss.Bottom, left, right))
}

func (m Model) renderHelp() string {
	if !m.helpVisible {
		return ""
	}
	keys := []string{
		"↑↓←→ pan",
		"+/- zoom",
		"1-5 layer",
		"g/c/b/n passes",
		"v glyphs",
		"[ ] time",
		"Tab sidebar",
		"a probe",
		"i inspect",
		"h help",
		"q quit",
	}
	return dimStyle.Render("  " + strings.Join(keys, "  "))
}
