package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/color"
	"image/png"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"wxmap/internal/backend"
	"wxmap/internal/config"
	"wxmap/internal/field"
	"wxmap/internal/geom"
	"wxmap/internal/overlay"
	"wxmap/internal/proj"
	"wxmap/internal/store"
	"wxmap/internal/tui"
)

var background = color.RGBA{0x0b, 0x0f, 0x14, 0xff}

func main() {
	var (
		cfgPath  = flag.String("config", "", "config file (default "+config.DefaultPath+")")
		dbPath   = flag.String("db", "", "sqlite timeline to open or import into")
		pngOut   = flag.String("png", "", "render the first record to this PNG and exit")
		importIn = flag.String("import", "", "import a CSV grid file into -db and exit")
		verbose  = flag.Bool("v", false, "debug logging")
		width    = flag.Int("width", 1024, "PNG width in pixels")
		height   = flag.Int("height", 768, "PNG height in pixels")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}

	if *importIn != "" {
		if err := importCSV(*importIn, *dbPath); err != nil {
			log.Fatal(err)
		}
		return
	}

	path := flag.Arg(0)
	if path == "" {
		path = *dbPath
	}
	opts := []tui.Option{tui.WithConfig(cfg), tui.WithLogger(logger)}
	var m tui.Model
	if *pngOut == "" && strings.EqualFold(filepath.Ext(path), ".csv") {
		// the viewer loads and watches CSV grids itself
		m = tui.NewWithPath(path, opts...)
	} else {
		recs, err := loadRecords(path)
		if err != nil {
			log.Fatal(err)
		}
		if *pngOut != "" {
			if err := renderPNG(cfg, recs[0], *pngOut, *width, *height, logger); err != nil {
				log.Fatal(err)
			}
			return
		}
		m = tui.New(append(opts, tui.WithRecords(recs))...)
	}
	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion()).Run()
	if final == nil {
		final = m
	}
	tui.Shutdown(final)
	if err != nil {
		log.Fatal(err)
	}
}

// loadRecords reads a CSV grid file or a sqlite timeline, falling back to a
// synthetic record set when no path is given.
func loadRecords(path string) ([]*field.Record, error) {
	var (
		recs []*field.Record
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case "":
		if path == "" {
			return []*field.Record{field.Synthetic(time.Now().UTC().Truncate(time.Hour))}, nil
		}
		return nil, fmt.Errorf("unsupported input %q", path)
	case ".csv":
		recs, err = field.LoadCSV(path)
	case ".db":
		var s *store.Store
		if s, err = store.Open(path); err != nil {
			return nil, err
		}
		defer s.Close()
		recs, err = s.LoadAll(context.Background())
	default:
		return nil, fmt.Errorf("unsupported input %q", path)
	}
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("%s holds no records", path)
	}
	return recs, nil
}

func importCSV(in, db string) error {
	if db == "" {
		return errors.New("-import needs -db")
	}
	recs, err := field.LoadCSV(in)
	if err != nil {
		return fmt.Errorf("reading %s: %w", in, err)
	}
	s, err := store.Open(db)
	if err != nil {
		return err
	}
	defer s.Close()
	ctx := context.Background()
	for _, rec := range recs {
		if err := s.Put(ctx, rec); err != nil {
			return err
		}
	}
	slog.Info("imported records", "from", in, "into", db, "records", len(recs))
	return nil
}

// renderPNG draws rec fitted to a w×h bitmap over the configured basemap.
func renderPNG(cfg *config.Config, rec *field.Record, out string, w, h int, logger *slog.Logger) error {
	ext := rec.Extent()
	v := proj.NewView((ext.MinY+ext.MaxY)/2, (ext.MinX+ext.MaxX)/2, proj.Fit(ext, w, h), w, h)

	img := backend.NewImage(w, h)
	img.Fill(background)
	if cfg.Basemap != "" {
		var (
			d   geom.Data
			err error
		)
		if strings.EqualFold(filepath.Ext(cfg.Basemap), ".shp") {
			d, err = geom.LoadShapefile(cfg.Basemap)
		} else {
			d, err = geom.LoadGeoJSON(cfg.Basemap)
		}
		if err != nil {
			return fmt.Errorf("loading basemap: %w", err)
		}
		overlay.DrawBasemap(img, v, d)
	}

	d := overlay.New(cfg, overlay.WithLogger(logger))
	defer d.Close()
	d.SetRecord(rec)
	if err := d.Render(img, v); err != nil {
		return err
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img.Image()); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", out, err)
	}
	return f.Close()
}
