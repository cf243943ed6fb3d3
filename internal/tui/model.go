package tui

import (
	"log/slog"
	"os"

	list "github.com/charmbracelet/bubbles/list"
	table "github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"wxmap/internal/config"
	"wxmap/internal/field"
	"wxmap/internal/geom"
	"wxmap/internal/overlay"
	"wxmap/internal/proj"
)

type Model struct {
	width  int
	height int

	showSidebar bool
	helpVisible bool

	status string

	// File explorer
	cwd     string
	l       list.Model
	items   []list.Item
	selPath string

	// Data
	cfg     *config.Config
	driver  *overlay.Driver
	records []*field.Record
	cur     int
	view    *proj.View
	canvas  *Canvas

	// basemap line work
	basemap     geom.Data
	showBasemap bool

	// layer the g/c/b/n keys act on
	selected overlay.Layer

	// last rendered map size, in cells
	mapW int
	mapH int

	// inspect popup
	inspectPopup string

	// hover state
	hovering    bool
	hoverCX     int
	hoverCY     int
	hoverHasGeo bool
	hoverLon    float64
	hoverLat    float64

	// probe table
	showProbe bool
	tbl       table.Model

	// reload on change
	watcher   *fsnotify.Watcher
	watchPath string

	log *slog.Logger
}

// Option configures a Model.
type Option func(*Model)

// WithConfig sets the overlay configuration.
func WithConfig(cfg *config.Config) Option { return func(m *Model) { m.cfg = cfg } }

func WithLogger(l *slog.Logger) Option { return func(m *Model) { m.log = l } }

// WithRecords preloads a timeline.
func WithRecords(recs []*field.Record) Option { return func(m *Model) { m.records = recs } }

func New(opts ...Option) Model {
	m := Model{
		helpVisible: true,
		status:      "wxmap ready",
		showBasemap: true,
		cfg:         config.Default(),
		log:         slog.Default(),
		view:        proj.NewView(0, 0, 1e-5, 160, 96),
		canvas:      NewCanvas(80, 24),
		mapW:        80,
		mapH:        24,
	}
	for _, o := range opts {
		o(&m)
	}
	m.driver = overlay.New(m.cfg, overlay.WithLogger(m.log))
	m.cwd, _ = os.Getwd()
	// list setup
	d := list.NewDefaultDelegate()
	d.ShowDescription = false
	m.l = list.New(nil, d, 0, 0)
	m.l.Title = "Files"
	m.l.SetShowHelp(false)
	m.l.SetShowStatusBar(false)
	m.l.SetFilteringEnabled(true)
	// probe table setup
	m.tbl = table.New(table.WithFocused(true), table.WithColumns(probeColumns))
	m.tbl.SetHeight(12)
	m.refreshDir()
	if len(m.records) > 0 {
		m.setTimeline(m.records)
	}
	if m.cfg.Basemap != "" {
		m.loadBasemap(m.cfg.Basemap)
	}
	return m
}

// NewWithPath preloads a file's data at launch.
func NewWithPath(path string, opts ...Option) Model {
	m := New(opts...)
	m.loadPath(path)
	return m
}

func (m Model) Init() tea.Cmd {
	if m.watcher != nil {
		return waitForChange(m.watcher)
	}
	return nil
}

// Close stops the file watcher and releases the overlay caches.
func (m Model) Close() {
	if m.watcher != nil {
		m.watcher.Close()
	}
	m.driver.Close()
}

// Shutdown closes the model a finished program returns. Watchers opened while
// running are held only by that final copy.
func Shutdown(final tea.Model) {
	if m, ok := final.(Model); ok {
		m.Close()
	}
}

// setTimeline installs recs and shows the first record set fitted to the map.
func (m *Model) setTimeline(recs []*field.Record) {
	m.records = recs
	m.cur = 0
	if len(recs) == 0 {
		m.driver.SetRecord(nil)
		return
	}
	m.driver.SetRecord(recs[0])
	m.fit(recs[0].Extent())
}

// fit centres the view on b and zooms so b fills the map.
func (m *Model) fit(b geom.BBox) {
	if !b.Valid() {
		return
	}
	w, h := m.mapW*2, m.mapH*4
	m.view.Width, m.view.Height = w, h
	m.view.Scale = proj.Fit(b, w, h)
	m.view.SetCenter((b.MinY+b.MaxY)/2, (b.MinX+b.MaxX)/2)
}

// step moves through the timeline by d records.
func (m *Model) step(d int) {
	if len(m.records) == 0 {
		m.status = "no timeline loaded"
		return
	}
	m.cur = (m.cur + d + len(m.records)) % len(m.records)
	m.driver.SetRecord(m.records[m.cur])
	m.status = "time: " + m.records[m.cur].Time.UTC().Format("2006-01-02 15:04Z")
}
