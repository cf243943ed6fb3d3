package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	list "github.com/charmbracelet/bubbles/list"

	"wxmap/internal/field"
	"wxmap/internal/geom"
	"wxmap/internal/store"
)

type fileItem struct {
	title, desc string
	path        string
}

func (f fileItem) Title() string       { return f.title }
func (f fileItem) Description() string { return f.desc }
func (f fileItem) FilterValue() string { return f.title }

// supported file extensions: grids and timelines first, then basemaps
var supported = map[string]bool{
	".csv":     true,
	".db":      true,
	".geojson": true,
	".json":    true,
	".shp":     true,
}

func (m *Model) refreshDir() {
	entries, err := os.ReadDir(m.cwd)
	if err != nil {
		m.status = "read dir error: " + err.Error()
		return
	}
	var items []list.Item
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if supported[ext] {
			items = append(items, fileItem{title: name, desc: ext, path: filepath.Join(m.cwd, name)})
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].(fileItem).Title() < items[j].(fileItem).Title() })
	m.items = items
	m.l.SetItems(items)
	if len(items) == 0 {
		m.status = "no supported files in current directory"
	}
}

// loadPath loads a grid, timeline or basemap file.
func (m *Model) loadPath(p string) {
	ext := strings.ToLower(filepath.Ext(p))
	switch ext {
	case ".csv":
		recs, err := field.LoadCSV(p)
		if err != nil {
			m.status = "load error: " + err.Error()
			return
		}
		m.selPath = p
		m.setTimeline(recs)
		m.watch(p)
		m.status = fmt.Sprintf("loaded: %s  records=%d", filepath.Base(p), len(recs))
	case ".db":
		recs, err := loadStore(p)
		if err != nil {
			m.status = "load error: " + err.Error()
			return
		}
		m.selPath = p
		m.setTimeline(recs)
		m.status = fmt.Sprintf("loaded: %s  records=%d", filepath.Base(p), len(recs))
	case ".geojson", ".json", ".shp":
		m.loadBasemap(p)
	default:
		m.status = "unsupported file: " + ext
	}
	if m.showProbe {
		m.refreshProbe()
	}
}

func loadStore(p string) ([]*field.Record, error) {
	s, err := store.Open(p)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.LoadAll(context.Background())
}

func (m *Model) loadBasemap(p string) {
	var (
		d   geom.Data
		err error
	)
	if strings.EqualFold(filepath.Ext(p), ".shp") {
		d, err = geom.LoadShapefile(p)
	} else {
		d, err = geom.LoadGeoJSON(p)
	}
	if err != nil {
		m.status = "basemap error: " + err.Error()
		return
	}
	m.basemap = d
	m.showBasemap = true
	m.status = fmt.Sprintf("basemap: %s  lines=%d", filepath.Base(p), len(d.Lines))
	if len(m.records) == 0 {
		m.fit(d.BBox)
	}
}
